package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tutorlab/tutoring-service/internal/events"
	"github.com/tutorlab/tutoring-service/internal/repositories"
)

// reminderWindow is how close a lesson has to be before its reminder fires.
const reminderWindow = time.Hour

// ReminderScanner periodically scans for imminent lessons and publishes one
// reminder event per lesson. The notified flag is flipped for the whole batch
// after the cycle so a lesson is never reminded twice.
type ReminderScanner struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	tz        *time.Location
	interval  time.Duration

	now func() time.Time
}

func NewReminderScanner(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, tz *time.Location, interval time.Duration) *ReminderScanner {
	if tz == nil {
		tz = time.UTC
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &ReminderScanner{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		tz:        tz,
		interval:  interval,
		now:       time.Now,
	}
}

// Run scans on a fixed interval until ctx is cancelled.
func (s *ReminderScanner) Run(ctx context.Context) {
	s.logger.Info("Starting reminder scanner", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Reminder scanner stopped")
			return
		case <-ticker.C:
			if err := s.RunCycle(ctx); err != nil {
				s.logger.Error("Reminder cycle failed", "error", err)
			}
		}
	}
}

// RunCycle performs one scan pass.
func (s *ReminderScanner) RunCycle(ctx context.Context) error {
	now := s.now().In(s.tz)

	pending, err := s.repo.Schedule().ListPendingReminders(ctx, nil, now)
	if err != nil {
		return fmt.Errorf("failed to list pending reminders: %w", err)
	}

	var notified []uint
	for _, schedule := range pending {
		if schedule.ScheduledAt.Sub(now) >= reminderWindow {
			continue
		}
		if schedule.User.TelegramID == nil {
			continue
		}

		publishEvent(ctx, s.publisher, s.logger, events.TypeScheduleReminder, events.LessonReminderEvent{
			ScheduleID:  schedule.ID,
			UserID:      schedule.UserID,
			TelegramID:  *schedule.User.TelegramID,
			ScheduledAt: schedule.ScheduledAt,
		})
		notified = append(notified, schedule.ID)
	}

	if len(notified) == 0 {
		return nil
	}
	if err := s.repo.Schedule().MarkNotified(ctx, nil, notified); err != nil {
		return fmt.Errorf("failed to mark reminders sent: %w", err)
	}

	s.logger.Info("Reminders dispatched", "count", len(notified))
	return nil
}
