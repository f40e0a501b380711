package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/tutorlab/tutoring-service/internal/models"
	"github.com/tutorlab/tutoring-service/internal/repositories"
	"github.com/tutorlab/tutoring-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator) UserService {
	return &userService{repo: repo, logger: logger, validator: v}
}

func (s *userService) Create(ctx context.Context, principal *models.User, req *CreateUserRequest) (*models.User, error) {
	if err := requireSuper(principal, "user", "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		FullName:     req.FullName,
		PasswordHash: hash,
		TelegramHash: models.GenerateTelegramHash(),
		IsActive:     true,
		Balance:      req.Balance,
		LessonPrice:  req.LessonPrice,
	}
	if err := s.repo.User().Create(ctx, nil, user); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *userService) Get(ctx context.Context, principal *models.User, id uint) (*models.User, error) {
	if !principal.IsSuper && principal.ID != id {
		return nil, NewPermissionError(principal.ID, "user", "read", "not the owner")
	}

	user, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, principal *models.User, limit, offset int) (*UserListResponse, error) {
	if err := requireSuper(principal, "user", "list"); err != nil {
		return nil, err
	}

	limit, offset = repositories.Normalize(limit, offset)
	users, total, err := s.repo.User().List(ctx, nil, repositories.UserFilters{Limit: limit, Offset: offset})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return &UserListResponse{Users: users, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *userService) Update(ctx context.Context, principal *models.User, req *UpdateUserRequest) (*models.User, error) {
	if !principal.IsSuper {
		if principal.ID != req.ID {
			return nil, NewPermissionError(principal.ID, "user", "update", "not the owner")
		}
		// Account standing stays admin-only.
		if req.IsActive != nil {
			return nil, NewPermissionError(principal.ID, "user", "update", "requires superuser")
		}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User().GetByID(ctx, nil, req.ID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.FullName != nil {
		user.FullName = req.FullName
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Balance != nil {
		user.Balance = *req.Balance
	}
	if req.LessonPrice != nil {
		user.LessonPrice = *req.LessonPrice
	}
	if req.Password != nil {
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.repo.User().Update(ctx, nil, user); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.Info("User updated", "user_id", user.ID)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, principal *models.User, id uint) error {
	if err := requireSuper(principal, "user", "delete"); err != nil {
		return err
	}
	if principal.ID == id {
		return NewPermissionError(principal.ID, "user", "delete", "cannot delete own account")
	}

	target, err := s.repo.User().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if target.IsSuper {
		return NewPermissionError(principal.ID, "user", "delete", "cannot delete superuser")
	}

	if err := s.repo.User().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.Info("User deleted", "user_id", id)
	return nil
}

var rosterHeader = []string{"ID", "Username", "Full name", "Balance", "Lesson price", "Active", "Telegram linked", "Created"}

func (s *userService) ExportRoster(ctx context.Context, principal *models.User) ([]byte, error) {
	if err := requireSuper(principal, "user", "export"); err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Students"
	f.SetSheetName("Sheet1", sheet)
	for i, h := range rosterHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	row := 2
	offset := 0
	for {
		users, _, err := s.repo.User().List(ctx, nil, repositories.UserFilters{Limit: repositories.MaxPageSize, Offset: offset})
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		if len(users) == 0 {
			break
		}

		for _, u := range users {
			fullName := ""
			if u.FullName != nil {
				fullName = *u.FullName
			}
			values := []interface{}{u.ID, u.Username, fullName, u.Balance, u.LessonPrice, u.IsActive, u.Linked(), u.CreatedAt.Format("2006-01-02 15:04")}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				if err := f.SetCellValue(sheet, cell, v); err != nil {
					return nil, fmt.Errorf("failed to write row: %w", err)
				}
			}
			row++
		}
		offset += len(users)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
