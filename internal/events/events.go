package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Topic is the single pub/sub topic notification events flow through.
const Topic = "tutoring.notifications"

const (
	Source  = "tutoring-service"
	Version = "1.0"
)

// Event types.
const (
	TypeScheduleCreated  = "schedule.created"
	TypeHomeworkCreated  = "homework.created"
	TypeNoteCreated      = "note.created"
	TypeScheduleReminder = "schedule.reminder"
)

// Event is the envelope published for every notification-worthy change.
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// NewEvent wraps a payload into the standard envelope.
func NewEvent(eventType string, payload interface{}) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    Source,
		Version:   Version,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}, nil
}

// DecodeData unmarshals the event payload into dest.
func (e Event) DecodeData(dest interface{}) error {
	return json.Unmarshal(e.Data, dest)
}

// LessonScheduledEvent is emitted when a new lesson is booked. TelegramID is
// the recipient snapshot captured at publish time; nil means the owner has no
// linked chat and dispatch is skipped.
type LessonScheduledEvent struct {
	ScheduleID  uint      `json:"schedule_id"`
	UserID      uint      `json:"user_id"`
	TelegramID  *int64    `json:"telegram_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// MaterialCreatedEvent is emitted when homework or a note is uploaded.
type MaterialCreatedEvent struct {
	Kind       string   `json:"kind"`
	MaterialID uint     `json:"material_id"`
	UserID     uint     `json:"user_id"`
	TelegramID *int64   `json:"telegram_id"`
	Name       string   `json:"name"`
	Files      []string `json:"files"`
}

// LessonReminderEvent is emitted by the reminder scanner for imminent lessons.
type LessonReminderEvent struct {
	ScheduleID  uint      `json:"schedule_id"`
	UserID      uint      `json:"user_id"`
	TelegramID  int64     `json:"telegram_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}
