package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tutorlab/tutoring-service/internal/events"
	"github.com/tutorlab/tutoring-service/internal/models"
	"github.com/tutorlab/tutoring-service/internal/repositories"
	"github.com/tutorlab/tutoring-service/internal/validator"
)

// materialService implements MaterialService for one material table. The kind
// drives event payloads and which not-found sentinel is surfaced.
type materialService[T any, PT models.MaterialPtr[T]] struct {
	kind      models.MaterialKind
	notFound  error
	eventType string

	repo      repositories.Repository
	materials repositories.MaterialRepository[T]
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewHomeworkService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) MaterialService[models.Homework] {
	return &materialService[models.Homework, *models.Homework]{
		kind:      models.KindHomework,
		notFound:  ErrHomeworkNotFound,
		eventType: events.TypeHomeworkCreated,
		repo:      repo,
		materials: repo.Homework(),
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func NewNoteService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) MaterialService[models.Note] {
	return &materialService[models.Note, *models.Note]{
		kind:      models.KindNote,
		notFound:  ErrNoteNotFound,
		eventType: events.TypeNoteCreated,
		repo:      repo,
		materials: repo.Note(),
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func (s *materialService[T, PT]) Create(ctx context.Context, principal *models.User, req *CreateMaterialRequest) (*T, error) {
	if err := requireSuper(principal, string(s.kind), "create"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	owner, err := s.repo.User().GetByID(ctx, nil, req.UserID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get material owner: %w", err)
	}

	row := new(T)
	record := PT(row).Record()
	record.Name = req.Name
	record.UserID = owner.ID
	record.Files = req.Files

	if err := s.materials.Create(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", s.kind, err)
	}

	s.logger.Info("Material created", "kind", s.kind, "id", record.ID, "user_id", owner.ID)

	publishEvent(ctx, s.publisher, s.logger, s.eventType, events.MaterialCreatedEvent{
		Kind:       string(s.kind),
		MaterialID: record.ID,
		UserID:     owner.ID,
		TelegramID: owner.TelegramID,
		Name:       record.Name,
		Files:      record.Files,
	})
	return row, nil
}

func (s *materialService[T, PT]) Get(ctx context.Context, principal *models.User, id uint) (*T, error) {
	row, err := s.materials.GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, s.notFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", s.kind, err)
	}

	if !principal.IsSuper && PT(row).Record().UserID != principal.ID {
		return nil, NewPermissionError(principal.ID, string(s.kind), "read", "not the owner")
	}
	return row, nil
}

func (s *materialService[T, PT]) List(ctx context.Context, principal *models.User, query MaterialListQuery) (*MaterialListResponse[T], error) {
	scope, err := resolveOwnerScope(principal, query.UserID, string(s.kind))
	if err != nil {
		return nil, err
	}

	limit, offset := repositories.Normalize(query.Limit, query.Offset)
	items, total, err := s.materials.List(ctx, nil, repositories.MaterialFilters{
		UserID: scope,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.kind, err)
	}
	return &MaterialListResponse[T]{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *materialService[T, PT]) Search(ctx context.Context, principal *models.User, query string, offset int) ([]*T, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*T{}, nil
	}
	if offset < 0 {
		offset = 0
	}

	// Search is always scoped to the caller's own records.
	items, err := s.materials.Search(ctx, nil, principal.ID, query, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", s.kind, err)
	}
	return items, nil
}

func (s *materialService[T, PT]) Update(ctx context.Context, principal *models.User, id uint, req *UpdateMaterialRequest) (*T, error) {
	if err := requireSuper(principal, string(s.kind), "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	row, err := s.materials.GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, s.notFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", s.kind, err)
	}

	record := PT(row).Record()
	if req.Name != nil && *req.Name != "" {
		record.Name = *req.Name
	}
	// An empty upload keeps the stored files; only a non-empty list replaces
	// them.
	if len(req.Files) > 0 {
		record.Files = req.Files
	}

	if err := s.materials.Update(ctx, nil, row); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", s.kind, err)
	}

	s.logger.Info("Material updated", "kind", s.kind, "id", record.ID)
	return row, nil
}

func (s *materialService[T, PT]) Delete(ctx context.Context, principal *models.User, id uint) error {
	if err := requireSuper(principal, string(s.kind), "delete"); err != nil {
		return err
	}

	if err := s.materials.Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return s.notFound
		}
		return fmt.Errorf("failed to delete %s: %w", s.kind, err)
	}

	s.logger.Info("Material deleted", "kind", s.kind, "id", id)
	return nil
}
