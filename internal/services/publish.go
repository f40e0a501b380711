package services

import (
	"context"
	"log/slog"

	"github.com/tutorlab/tutoring-service/internal/events"
)

// publishEvent emits a notification event without letting delivery problems
// reach the caller. Notifications are best effort; the write they announce has
// already committed.
func publishEvent(ctx context.Context, pub events.EventPublisher, logger *slog.Logger, eventType string, payload interface{}) {
	evt, err := events.NewEvent(eventType, payload)
	if err != nil {
		logger.Error("Failed to build event", "type", eventType, "error", err)
		return
	}
	if err := pub.Publish(ctx, evt); err != nil {
		logger.Warn("Failed to publish event", "type", eventType, "error", err)
	}
}
