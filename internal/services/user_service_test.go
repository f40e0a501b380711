package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/tutorlab/tutoring-service/internal/models"
	"github.com/tutorlab/tutoring-service/internal/validator"
)

func newTestUserService(t *testing.T) (UserService, *mockRepository) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	return NewUserService(repo, logger, validator.New()), repo
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()
	admin := &models.User{ID: 999, IsSuper: true}

	t.Run("creates active account with link code", func(t *testing.T) {
		svc, _ := newTestUserService(t)
		fullName := "Anna Ivanova"
		user, err := svc.Create(ctx, admin, &CreateUserRequest{
			Username: "anna",
			Password: "password123",
			FullName: &fullName,
		})
		if err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
		if !user.IsActive {
			t.Error("new accounts should be active")
		}
		if user.IsSuper {
			t.Error("new accounts must not be superusers")
		}
		if len(user.TelegramHash) == 0 {
			t.Error("new accounts need a link code")
		}
		if user.PasswordHash == "password123" {
			t.Error("password must be stored hashed")
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		svc, _ := newTestUserService(t)
		req := &CreateUserRequest{Username: "anna", Password: "password123"}
		if _, err := svc.Create(ctx, admin, req); err != nil {
			t.Fatalf("first create failed: %v", err)
		}
		if _, err := svc.Create(ctx, admin, req); !errors.Is(err, ErrUsernameTaken) {
			t.Errorf("expected ErrUsernameTaken, got %v", err)
		}
	})

	t.Run("short password fails validation", func(t *testing.T) {
		svc, _ := newTestUserService(t)
		_, err := svc.Create(ctx, admin, &CreateUserRequest{Username: "anna", Password: "short"})
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			t.Errorf("expected ValidationErrors, got %v", err)
		}
	})

	t.Run("non-admin is denied", func(t *testing.T) {
		svc, _ := newTestUserService(t)
		student := &models.User{ID: 5}
		_, err := svc.Create(ctx, student, &CreateUserRequest{Username: "x", Password: "password123"})
		var permissionError *PermissionError
		if !errors.As(err, &permissionError) {
			t.Errorf("expected PermissionError, got %v", err)
		}
	})
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	admin := &models.User{ID: 999, IsSuper: true}
	svc, _ := newTestUserService(t)

	user, err := svc.Create(ctx, admin, &CreateUserRequest{Username: "anna", Password: "password123"})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	t.Run("admin patches billing", func(t *testing.T) {
		balance := 1500.0
		updated, err := svc.Update(ctx, admin, &UpdateUserRequest{ID: user.ID, Balance: &balance})
		if err != nil {
			t.Fatalf("failed to update: %v", err)
		}
		if updated.Balance != 1500.0 {
			t.Errorf("expected balance 1500, got %v", updated.Balance)
		}
	})

	t.Run("self-service profile update", func(t *testing.T) {
		fullName := "Anna I."
		updated, err := svc.Update(ctx, user, &UpdateUserRequest{ID: user.ID, FullName: &fullName})
		if err != nil {
			t.Fatalf("failed to update own profile: %v", err)
		}
		if updated.FullName == nil || *updated.FullName != "Anna I." {
			t.Errorf("expected updated full name, got %v", updated.FullName)
		}
	})

	t.Run("self-service standing change is denied", func(t *testing.T) {
		active := false
		_, err := svc.Update(ctx, user, &UpdateUserRequest{ID: user.ID, IsActive: &active})
		var permissionError *PermissionError
		if !errors.As(err, &permissionError) {
			t.Errorf("expected PermissionError, got %v", err)
		}
	})

	t.Run("updating another account is denied", func(t *testing.T) {
		name := "sneaky"
		_, err := svc.Update(ctx, user, &UpdateUserRequest{ID: admin.ID, Username: &name})
		var permissionError *PermissionError
		if !errors.As(err, &permissionError) {
			t.Errorf("expected PermissionError, got %v", err)
		}
	})
}

func TestUserService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestUserService(t)

	admin := &models.User{
		Username:     "admin",
		PasswordHash: "x",
		IsActive:     true,
		IsSuper:      true,
	}
	if err := repo.user.Create(ctx, nil, admin); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	anna, err := svc.Create(ctx, admin, &CreateUserRequest{Username: "anna", Password: "password123"})
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if _, err := svc.Create(ctx, admin, &CreateUserRequest{Username: "boris", Password: "password123"}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	t.Run("list excludes superusers", func(t *testing.T) {
		resp, err := svc.List(ctx, admin, 0, 0)
		if err != nil {
			t.Fatalf("failed to list: %v", err)
		}
		if resp.Total != 2 {
			t.Errorf("expected 2 students, got %d", resp.Total)
		}
		for _, u := range resp.Users {
			if u.IsSuper {
				t.Error("superuser leaked into the roster")
			}
		}
	})

	t.Run("admin cannot delete self", func(t *testing.T) {
		err := svc.Delete(ctx, admin, admin.ID)
		var permissionError *PermissionError
		if !errors.As(err, &permissionError) {
			t.Errorf("expected PermissionError, got %v", err)
		}
	})

	t.Run("delete removes the account", func(t *testing.T) {
		if err := svc.Delete(ctx, admin, anna.ID); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if err := svc.Delete(ctx, admin, anna.ID); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestUserService_ExportRoster(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestUserService(t)
	admin := &models.User{ID: 999, IsSuper: true}

	if _, err := svc.Create(ctx, admin, &CreateUserRequest{Username: "anna", Password: "password123"}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	if _, err := svc.Create(ctx, admin, &CreateUserRequest{Username: "boris", Password: "password123"}); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	data, err := svc.ExportRoster(ctx, admin)
	if err != nil {
		t.Fatalf("failed to export roster: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("export is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Students")
	if err != nil {
		t.Fatalf("failed to read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[0][1] != "Username" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	t.Run("students may not export", func(t *testing.T) {
		_, err := svc.ExportRoster(ctx, &models.User{ID: 5})
		var permissionError *PermissionError
		if !errors.As(err, &permissionError) {
			t.Errorf("expected PermissionError, got %v", err)
		}
	})
}
