package notification

import (
	"context"
	"fmt"
	"log/slog"
)

// Service exposes the notification surface. Notify is best-effort: producers
// treat a failed write as advisory and never roll back their own work for it.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Notify records a notification, logging instead of failing the caller.
func (s *Service) Notify(ctx context.Context, params CreateParams) {
	if params.UserID == "" {
		return
	}
	if _, err := s.repo.Create(ctx, params); err != nil {
		s.logger.Error("notification write failed", "user_id", params.UserID, "type", params.Type, "err", err)
	}
}

// Create records a notification and propagates failures (staff surface).
func (s *Service) Create(ctx context.Context, params CreateParams) (Notification, error) {
	if params.UserID == "" {
		return Notification{}, fmt.Errorf("notification: user id required")
	}
	if params.Title == "" || params.Message == "" {
		return Notification{}, fmt.Errorf("notification: title and message required")
	}
	return s.repo.Create(ctx, params)
}

func (s *Service) ListForUser(ctx context.Context, userID string, limit, offset int) ([]Notification, int, error) {
	return s.repo.ListForUser(ctx, userID, limit, offset)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}
