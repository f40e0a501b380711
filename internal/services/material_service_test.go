package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/tutorlab/tutoring-service/internal/events"
	"github.com/tutorlab/tutoring-service/internal/models"
	"github.com/tutorlab/tutoring-service/internal/validator"
)

func newTestHomeworkService(t *testing.T) (MaterialService[models.Homework], *mockRepository, *events.MockEventPublisher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	svc := NewHomeworkService(repo, publisher, logger, validator.New())
	return svc, repo, publisher
}

func TestMaterialService_Create(t *testing.T) {
	ctx := context.Background()
	admin := &models.User{ID: 999, IsSuper: true}

	t.Run("publishes homework created event", func(t *testing.T) {
		svc, repo, publisher := newTestHomeworkService(t)
		student := seedLinkedStudent(t, repo, "anna", 100)

		hw, err := svc.Create(ctx, admin, &CreateMaterialRequest{
			UserID: student.ID,
			Name:   "Algebra worksheet",
			Files:  []string{"docs/a.pdf"},
		})
		if err != nil {
			t.Fatalf("failed to create homework: %v", err)
		}
		if hw.ID == 0 {
			t.Error("homework should receive an id")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.TypeHomeworkCreated {
			t.Errorf("expected %s, got %s", events.TypeHomeworkCreated, published[0].Type)
		}

		var payload events.MaterialCreatedEvent
		if err := published[0].DecodeData(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Kind != "homework" || payload.Name != "Algebra worksheet" {
			t.Errorf("unexpected payload: %+v", payload)
		}
	})

	t.Run("unknown owner", func(t *testing.T) {
		svc, _, _ := newTestHomeworkService(t)
		_, err := svc.Create(ctx, admin, &CreateMaterialRequest{UserID: 777, Name: "x"})
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("missing name fails validation", func(t *testing.T) {
		svc, repo, _ := newTestHomeworkService(t)
		student := seedLinkedStudent(t, repo, "boris", 200)
		_, err := svc.Create(ctx, admin, &CreateMaterialRequest{UserID: student.ID})
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			t.Errorf("expected ValidationErrors, got %v", err)
		}
	})
}

func TestMaterialService_Update(t *testing.T) {
	ctx := context.Background()
	admin := &models.User{ID: 999, IsSuper: true}
	svc, repo, _ := newTestHomeworkService(t)
	student := seedLinkedStudent(t, repo, "anna", 100)

	hw, err := svc.Create(ctx, admin, &CreateMaterialRequest{
		UserID: student.ID,
		Name:   "First draft",
		Files:  []string{"docs/a.pdf", "docs/b.pdf"},
	})
	if err != nil {
		t.Fatalf("failed to create homework: %v", err)
	}

	t.Run("empty file list keeps stored files", func(t *testing.T) {
		name := "Second draft"
		updated, err := svc.Update(ctx, admin, hw.ID, &UpdateMaterialRequest{Name: &name})
		if err != nil {
			t.Fatalf("failed to update: %v", err)
		}
		if updated.Name != "Second draft" {
			t.Errorf("expected renamed record, got %q", updated.Name)
		}
		if len(updated.Files) != 2 {
			t.Errorf("files should be untouched, got %v", updated.Files)
		}
	})

	t.Run("non-empty file list replaces", func(t *testing.T) {
		updated, err := svc.Update(ctx, admin, hw.ID, &UpdateMaterialRequest{Files: []string{"docs/c.pdf"}})
		if err != nil {
			t.Fatalf("failed to update: %v", err)
		}
		if len(updated.Files) != 1 || updated.Files[0] != "docs/c.pdf" {
			t.Errorf("expected replaced file list, got %v", updated.Files)
		}
		if updated.Name != "Second draft" {
			t.Errorf("name should be untouched, got %q", updated.Name)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := svc.Update(ctx, admin, 4242, &UpdateMaterialRequest{})
		if !errors.Is(err, ErrHomeworkNotFound) {
			t.Errorf("expected ErrHomeworkNotFound, got %v", err)
		}
	})
}

func TestMaterialService_ReadScope(t *testing.T) {
	ctx := context.Background()
	admin := &models.User{ID: 999, IsSuper: true}
	svc, repo, _ := newTestHomeworkService(t)

	anna := seedLinkedStudent(t, repo, "anna", 100)
	boris := seedLinkedStudent(t, repo, "boris", 200)

	mine, err := svc.Create(ctx, admin, &CreateMaterialRequest{UserID: anna.ID, Name: "Geometry problems"})
	if err != nil {
		t.Fatalf("failed to create homework: %v", err)
	}
	theirs, err := svc.Create(ctx, admin, &CreateMaterialRequest{UserID: boris.ID, Name: "Geometry extra"})
	if err != nil {
		t.Fatalf("failed to create homework: %v", err)
	}

	t.Run("owner reads own record", func(t *testing.T) {
		if _, err := svc.Get(ctx, anna, mine.ID); err != nil {
			t.Errorf("owner read failed: %v", err)
		}
	})

	t.Run("foreign record is denied", func(t *testing.T) {
		_, err := svc.Get(ctx, anna, theirs.ID)
		var permissionError *PermissionError
		if !errors.As(err, &permissionError) {
			t.Fatalf("expected PermissionError, got %v", err)
		}
	})

	t.Run("list is pinned to caller", func(t *testing.T) {
		resp, err := svc.List(ctx, anna, MaterialListQuery{})
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if resp.Total != 1 {
			t.Fatalf("expected 1 record, got %d", resp.Total)
		}
		if resp.Items[0].UserID != anna.ID {
			t.Error("leaked a foreign record")
		}
	})

	t.Run("search matches only own records", func(t *testing.T) {
		items, err := svc.Search(ctx, anna, "geometry", 0)
		if err != nil {
			t.Fatalf("failed to search: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected 1 match, got %d", len(items))
		}
		if items[0].UserID != anna.ID {
			t.Error("search leaked a foreign record")
		}
	})

	t.Run("blank query returns nothing", func(t *testing.T) {
		items, err := svc.Search(ctx, anna, "   ", 0)
		if err != nil {
			t.Fatalf("failed to search: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("expected no matches, got %d", len(items))
		}
	})
}

func TestNoteService_UsesOwnSentinel(t *testing.T) {
	ctx := context.Background()
	admin := &models.User{ID: 999, IsSuper: true}
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	svc := NewNoteService(repo, events.NewMockEventPublisher(logger), logger, validator.New())

	if err := svc.Delete(ctx, admin, 1); !errors.Is(err, ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
}
