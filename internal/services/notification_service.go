package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/tutorlab/tutoring-service/internal/events"
	"github.com/tutorlab/tutoring-service/internal/messenger"
)

// Outbound message bodies. The messenger wraps text sends in its own header
// template.
const (
	msgLessonScheduled = "Запланировано новое занятие на <b>%s</b>"
	msgNewHomework     = "Было добавлено новое домашнее задание:\n<b>%s</b>"
	msgNewNote         = "Был добавлен новый конспект:\n<b>%s</b>"
	msgLessonReminder  = "⏰ Скоро занятие!\n\nНа сегодня запланировано занятие в <b>%s</b>"
)

// NotificationDispatcher is the single consumer of the notification topic. It
// translates events into Telegram messages. Delivery is best effort: every
// event is acked exactly once and failures are logged, never retried.
type NotificationDispatcher struct {
	subscriber events.EventSubscriber
	messenger  messenger.Messenger
	logger     *slog.Logger
	tz         *time.Location
}

func NewNotificationDispatcher(subscriber events.EventSubscriber, m messenger.Messenger, logger *slog.Logger, tz *time.Location) *NotificationDispatcher {
	if tz == nil {
		tz = time.UTC
	}
	return &NotificationDispatcher{
		subscriber: subscriber,
		messenger:  m,
		logger:     logger,
		tz:         tz,
	}
}

// Run consumes events until ctx is cancelled or the subscription closes.
func (d *NotificationDispatcher) Run(ctx context.Context) error {
	messages, err := d.subscriber.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to notifications: %w", err)
	}

	d.logger.Info("Starting notification dispatcher")
	for msg := range messages {
		var evt events.Event
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			d.logger.Error("Dropping undecodable event", "message_id", msg.UUID, "error", err)
			msg.Ack()
			continue
		}

		if err := d.HandleEvent(ctx, evt); err != nil {
			d.logger.Warn("Notification delivery failed", "type", evt.Type, "event_id", evt.ID, "error", err)
		}
		msg.Ack()
	}

	d.logger.Info("Notification dispatcher stopped")
	return nil
}

// HandleEvent dispatches one event to the messaging channel. Events for users
// without a linked chat are silently skipped.
func (d *NotificationDispatcher) HandleEvent(ctx context.Context, evt events.Event) error {
	switch evt.Type {
	case events.TypeScheduleCreated:
		var payload events.LessonScheduledEvent
		if err := evt.DecodeData(&payload); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", evt.Type, err)
		}
		if payload.TelegramID == nil {
			return nil
		}
		text := fmt.Sprintf(msgLessonScheduled, payload.ScheduledAt.In(d.tz).Format("02.01.2006, 15:04:05"))
		return d.messenger.SendText(ctx, *payload.TelegramID, text)

	case events.TypeHomeworkCreated, events.TypeNoteCreated:
		var payload events.MaterialCreatedEvent
		if err := evt.DecodeData(&payload); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", evt.Type, err)
		}
		if payload.TelegramID == nil {
			return nil
		}
		template := msgNewHomework
		if evt.Type == events.TypeNoteCreated {
			template = msgNewNote
		}
		text := fmt.Sprintf(template, payload.Name)
		if len(payload.Files) == 0 {
			return d.messenger.SendText(ctx, *payload.TelegramID, text)
		}
		return d.messenger.SendFiles(ctx, *payload.TelegramID, text, payload.Files)

	case events.TypeScheduleReminder:
		var payload events.LessonReminderEvent
		if err := evt.DecodeData(&payload); err != nil {
			return fmt.Errorf("failed to decode %s payload: %w", evt.Type, err)
		}
		text := fmt.Sprintf(msgLessonReminder, payload.ScheduledAt.In(d.tz).Format("15:04"))
		return d.messenger.SendText(ctx, payload.TelegramID, text)

	default:
		d.logger.Debug("Ignoring event of unknown type", "type", evt.Type)
		return nil
	}
}
