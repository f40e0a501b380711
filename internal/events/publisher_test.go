package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"
)

func TestGoChannelBus_RoundTrip(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	bus := NewGoChannelBus(logger)
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	messages, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("failed to subscribe: %v", err)
	}

	chatID := int64(42)
	sent, err := NewEvent(TypeScheduleCreated, LessonScheduledEvent{
		ScheduleID:  1,
		UserID:      2,
		TelegramID:  &chatID,
		ScheduledAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("failed to build event: %v", err)
	}
	if err := bus.Publish(ctx, sent); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	select {
	case msg := <-messages:
		var got Event
		if err := json.Unmarshal(msg.Payload, &got); err != nil {
			t.Fatalf("failed to decode message: %v", err)
		}
		msg.Ack()

		if got.ID != sent.ID {
			t.Errorf("expected id %s, got %s", sent.ID, got.ID)
		}
		if got.Type != TypeScheduleCreated {
			t.Errorf("expected type %s, got %s", TypeScheduleCreated, got.Type)
		}
		if got.Source != Source || got.Version != Version {
			t.Errorf("unexpected envelope: %+v", got)
		}

		var payload LessonScheduledEvent
		if err := got.DecodeData(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.ScheduleID != 1 || payload.TelegramID == nil || *payload.TelegramID != 42 {
			t.Errorf("unexpected payload: %+v", payload)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}

func TestMultiPublisher_FansOut(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	first := NewMockEventPublisher(logger)
	second := NewMockEventPublisher(logger)
	multi := NewMultiPublisher(first, second)

	evt, err := NewEvent(TypeNoteCreated, MaterialCreatedEvent{Kind: "note", MaterialID: 1})
	if err != nil {
		t.Fatalf("failed to build event: %v", err)
	}
	if err := multi.Publish(context.Background(), evt); err != nil {
		t.Fatalf("failed to publish: %v", err)
	}

	if len(first.GetPublishedEvents()) != 1 || len(second.GetPublishedEvents()) != 1 {
		t.Error("both publishers should receive the event")
	}
}
