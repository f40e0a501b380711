package models

import "time"

// Schedule is a single lesson booking. TgNotified marks that the imminent-lesson
// reminder was already dispatched; it transitions false to true exactly once.
type Schedule struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	Note        *string   `json:"note" gorm:"type:text"`
	ScheduledAt time.Time `json:"scheduled_at" gorm:"not null;index" validate:"required"`
	TgNotified  bool      `json:"tg_notified" gorm:"not null;default:false"`

	User User `json:"user" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Schedule) TableName() string {
	return "schedule"
}
