package services

import "github.com/tutorlab/tutoring-service/internal/models"

// resolveOwnerScope applies the shared read policy: superusers see any scope
// they ask for (nil meaning all owners), regular users are always pinned to
// their own records regardless of what they requested.
func resolveOwnerScope(principal *models.User, requested *uint, resource string) (*uint, error) {
	if principal.IsSuper {
		return requested, nil
	}
	if requested != nil && *requested != principal.ID {
		return nil, NewPermissionError(principal.ID, resource, "read", "not the owner")
	}
	id := principal.ID
	return &id, nil
}

// requireSuper gates write operations reserved for administrators.
func requireSuper(principal *models.User, resource, action string) error {
	if principal.IsSuper {
		return nil
	}
	return NewPermissionError(principal.ID, resource, action, "requires superuser")
}
