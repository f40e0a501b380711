package models

import (
	"math/rand"
	"time"
)

const telegramHashLength = 12

// GenerateTelegramHash returns a random single-use link code binding a user
// to a Telegram chat. Collisions are possible but negligible at this scale.
func GenerateTelegramHash() string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	b := make([]byte, telegramHashLength)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return string(b)
}

type User struct {
	ID       uint    `json:"id" gorm:"primaryKey"`
	Username string  `json:"username" gorm:"uniqueIndex;not null;size:150" validate:"required,min=3,max=150"`
	FullName *string `json:"full_name" gorm:"size:200"`

	PasswordHash string `json:"-" gorm:"not null;size:100"`

	// Telegram linking
	TelegramID   *int64 `json:"tg_id" gorm:"index"`
	TelegramHash string `json:"tg_hash" gorm:"size:32"`

	// Status
	IsActive bool `json:"is_active" gorm:"not null;default:true"`
	IsSuper  bool `json:"is_super" gorm:"not null;default:false"`

	// Billing
	Balance     float64 `json:"balance" gorm:"type:decimal(12,2);not null;default:0"`
	LessonPrice float64 `json:"lesson_price" gorm:"type:decimal(12,2);not null;default:500"`

	CreatedAt time.Time `json:"created"`

	// Relations
	Schedules []Schedule `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Homeworks []Homework `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Notes     []Note     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

// Linked reports whether the user has redeemed a Telegram link code.
func (u *User) Linked() bool {
	return u.TelegramID != nil
}
