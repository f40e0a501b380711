package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tutorlab/tutoring-service/internal/events"
	"github.com/tutorlab/tutoring-service/internal/models"
	"github.com/tutorlab/tutoring-service/internal/repositories"
	"github.com/tutorlab/tutoring-service/internal/validator"
)

type scheduleService struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *validator.Validator
}

func NewScheduleService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) ScheduleService {
	return &scheduleService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		validator: v,
	}
}

func (s *scheduleService) Create(ctx context.Context, principal *models.User, req *CreateScheduleRequest) (*models.Schedule, error) {
	if err := requireSuper(principal, "schedule", "create"); err != nil {
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
		return nil, fmt.Errorf("failed to get schedule owner: %w", err)
	}

	schedule := &models.Schedule{
		UserID:      owner.ID,
		Note:        req.Note,
		ScheduledAt: req.ScheduledAt,
	}
	if err := s.repo.Schedule().Create(ctx, nil, schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	s.logger.Info("Schedule created", "schedule_id", schedule.ID, "user_id", owner.ID)

	publishEvent(ctx, s.publisher, s.logger, events.TypeScheduleCreated, events.LessonScheduledEvent{
		ScheduleID:  schedule.ID,
		UserID:      owner.ID,
		TelegramID:  owner.TelegramID,
		ScheduledAt: schedule.ScheduledAt,
	})
	return schedule, nil
}

func (s *scheduleService) List(ctx context.Context, principal *models.User, query ScheduleListQuery) (*ScheduleListResponse, error) {
	scope, err := resolveOwnerScope(principal, query.UserID, "schedule")
	if err != nil {
		return nil, err
	}

	limit, offset := repositories.Normalize(query.Limit, query.Offset)
	schedules, total, err := s.repo.Schedule().List(ctx, nil, repositories.ScheduleFilters{
		UserID:     scope,
		ActiveOnly: query.ActiveOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return &ScheduleListResponse{Schedules: schedules, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *scheduleService) Update(ctx context.Context, principal *models.User, req *UpdateScheduleRequest) (*models.Schedule, error) {
	if err := requireSuper(principal, "schedule", "update"); err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	schedule, err := s.repo.Schedule().UpdateTime(ctx, nil, req.ID, req.ScheduledAt)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}

	s.logger.Info("Schedule rescheduled", "schedule_id", schedule.ID)
	return schedule, nil
}

func (s *scheduleService) Delete(ctx context.Context, principal *models.User, id uint) error {
	if err := requireSuper(principal, "schedule", "delete"); err != nil {
		return err
	}

	if err := s.repo.Schedule().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrScheduleNotFound
		}
		return fmt.Errorf("failed to delete schedule: %w", err)
	}

	s.logger.Info("Schedule deleted", "schedule_id", id)
	return nil
}
