package notification

import (
	"context"
	"fmt"

	"github.com/go-insurance-api/internal/domain"
)

type Service interface {
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, callerID, notificationID string) (*domain.Notification, error)
}

type notificationStore interface {
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) (*domain.Notification, error)
}

type service struct {
	notificationRepo notificationStore
}

func NewService(notificationRepo notificationStore) Service {
	return &service{notificationRepo: notificationRepo}
}

func (s *service) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.notificationRepo.ListUnread(ctx, userID)
}

func (s *service) MarkAsRead(ctx context.Context, callerID, notificationID string) (*domain.Notification, error) {
	n, err := s.notificationRepo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != callerID {
		return nil, fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	return s.notificationRepo.MarkAsRead(ctx, notificationID)
}
