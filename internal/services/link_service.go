package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tutorlab/tutoring-service/internal/repositories"
)

type linkService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewLinkService(repo repositories.Repository, logger *slog.Logger) LinkService {
	return &linkService{repo: repo, logger: logger}
}

func (s *linkService) Redeem(ctx context.Context, hash string, telegramID int64) (string, error) {
	if hash == "" {
		return "", ErrLinkCodeInvalid
	}

	// The cached lookup rejects unknown codes before the write path; every
	// /start deep link lands here, valid or not.
	if _, err := s.repo.User().GetByTelegramHash(ctx, nil, hash); err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrLinkCodeInvalid
		}
		return "", fmt.Errorf("failed to resolve link code: %w", err)
	}

	user, err := s.repo.User().RedeemLink(ctx, nil, hash, telegramID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return "", ErrLinkCodeInvalid
		}
		return "", fmt.Errorf("failed to redeem link code: %w", err)
	}

	s.logger.Info("Telegram chat linked", "user_id", user.ID, "tg_id", telegramID)

	if user.FullName != nil && *user.FullName != "" {
		return *user.FullName, nil
	}
	return user.Username, nil
}
