package services

import (
	"context"
	"time"

	"github.com/tutorlab/tutoring-service/internal/models"
)

// ===== REQUEST / RESPONSE DTOS =====

type LoginRequest struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

type CreateUserRequest struct {
	Username    string  `json:"username" validate:"required,min=3,max=150"`
	Password    string  `json:"password" validate:"required,min=8"`
	FullName    *string `json:"full_name" validate:"omitempty,max=200"`
	Balance     float64 `json:"balance"`
	LessonPrice float64 `json:"lesson_price" validate:"omitempty,gt=0"`
}

// UpdateUserRequest patches an account; nil fields stay untouched.
type UpdateUserRequest struct {
	ID          uint     `json:"-"`
	Username    *string  `json:"username" validate:"omitempty,min=3,max=150"`
	Password    *string  `json:"password" validate:"omitempty,min=8"`
	FullName    *string  `json:"full_name" validate:"omitempty,max=200"`
	IsActive    *bool    `json:"is_active"`
	Balance     *float64 `json:"balance"`
	LessonPrice *float64 `json:"lesson_price" validate:"omitempty,gt=0"`
}

type UserListResponse struct {
	Users  []*models.User `json:"users"`
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

type CreateScheduleRequest struct {
	UserID      uint      `json:"user_id" validate:"required"`
	ScheduledAt time.Time `json:"dt" validate:"required"`
	Note        *string   `json:"note" validate:"omitempty,max=500"`
}

type UpdateScheduleRequest struct {
	ID          uint      `json:"-"`
	ScheduledAt time.Time `json:"dt" validate:"required"`
}

type ScheduleListQuery struct {
	UserID     *uint
	ActiveOnly bool
	Limit      int
	Offset     int
}

type ScheduleListResponse struct {
	Schedules []*models.Schedule `json:"schedules"`
	Total     int64              `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

type CreateMaterialRequest struct {
	UserID uint   `json:"user_id" validate:"required"`
	Name   string `json:"name" validate:"required,max=300"`
	Files  []string
}

// UpdateMaterialRequest patches a material. An empty Files slice means the
// file list stays as is; replacement requires at least one file.
type UpdateMaterialRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=300"`
	Files []string
}

type MaterialListQuery struct {
	UserID *uint
	Limit  int
	Offset int
}

type MaterialListResponse[T any] struct {
	Items  []*T  `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	// Authenticate checks credentials and returns the account, rejecting
	// inactive users.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)

	// IssueToken signs a bearer token for the user.
	IssueToken(user *models.User) (*TokenResponse, error)

	// VerifyToken parses a bearer token and loads its account.
	VerifyToken(ctx context.Context, token string) (*models.User, error)

	ChangePassword(ctx context.Context, principal *models.User, req *ChangePasswordRequest) error

	// EnsureSuperuser creates the bootstrap admin account if no account with
	// that username exists yet.
	EnsureSuperuser(ctx context.Context, username, password string) error
}

type UserService interface {
	Create(ctx context.Context, principal *models.User, req *CreateUserRequest) (*models.User, error)
	Get(ctx context.Context, principal *models.User, id uint) (*models.User, error)
	List(ctx context.Context, principal *models.User, limit, offset int) (*UserListResponse, error)
	Update(ctx context.Context, principal *models.User, req *UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, principal *models.User, id uint) error

	// ExportRoster renders the full account list as an xlsx workbook.
	ExportRoster(ctx context.Context, principal *models.User) ([]byte, error)
}

type ScheduleService interface {
	Create(ctx context.Context, principal *models.User, req *CreateScheduleRequest) (*models.Schedule, error)
	List(ctx context.Context, principal *models.User, query ScheduleListQuery) (*ScheduleListResponse, error)
	Update(ctx context.Context, principal *models.User, req *UpdateScheduleRequest) (*models.Schedule, error)
	Delete(ctx context.Context, principal *models.User, id uint) error
}

// MaterialService covers homework and study notes with one implementation
// instantiated per table.
type MaterialService[T any] interface {
	Create(ctx context.Context, principal *models.User, req *CreateMaterialRequest) (*T, error)
	Get(ctx context.Context, principal *models.User, id uint) (*T, error)
	List(ctx context.Context, principal *models.User, query MaterialListQuery) (*MaterialListResponse[T], error)
	Search(ctx context.Context, principal *models.User, query string, offset int) ([]*T, error)
	Update(ctx context.Context, principal *models.User, id uint, req *UpdateMaterialRequest) (*T, error)
	Delete(ctx context.Context, principal *models.User, id uint) error
}

type LinkService interface {
	// Redeem binds a Telegram chat to the account owning the link code and
	// returns the account's display name for the confirmation message.
	Redeem(ctx context.Context, hash string, telegramID int64) (string, error)
}

// ServiceManager wires every service over one repository and owns their
// lifecycle.
type ServiceManager interface {
	Auth() AuthService
	User() UserService
	Schedule() ScheduleService
	Homework() MaterialService[models.Homework]
	Note() MaterialService[models.Note]
	Link() LinkService

	Dispatcher() *NotificationDispatcher
	Reminder() *ReminderScanner

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
