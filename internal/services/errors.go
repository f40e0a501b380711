package services

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced to the HTTP boundary.
var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
	ErrInactiveUser       = errors.New("inactive user")

	ErrUserNotFound     = errors.New("user not found")
	ErrScheduleNotFound = errors.New("schedule not found")
	ErrHomeworkNotFound = errors.New("homework not found")
	ErrNoteNotFound     = errors.New("note not found")
	ErrLinkCodeInvalid  = errors.New("unknown link code")

	ErrUsernameTaken    = errors.New("username already taken")
	ErrSamePassword     = errors.New("new password is same as old")
	ErrPasswordMismatch = errors.New("old password mismatch")
)

// PermissionError carries the denied action for logging and the 403 body.
type PermissionError struct {
	UserID   uint
	Resource string
	Action   string
	Reason   string
}

func NewPermissionError(userID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d may not %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
}
