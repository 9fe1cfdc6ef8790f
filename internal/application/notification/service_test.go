package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/go-insurance-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockNotificationStore struct{ mock.Mock }

func (m *mockNotificationStore) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockNotificationStore) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Notification), args.Error(1)
}
func (m *mockNotificationStore) MarkAsRead(ctx context.Context, notificationID string) (*domain.Notification, error) {
	args := m.Called(ctx, notificationID)
	if n, _ := args.Get(0).(*domain.Notification); n != nil {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestMarkAsRead_OwnerOnly(t *testing.T) {
	repo := &mockNotificationStore{}
	repo.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "u1"}, nil)

	svc := NewService(repo)
	_, err := svc.MarkAsRead(context.Background(), "someone-else", "n1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	repo.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything)
}

func TestMarkAsRead_HappyPath(t *testing.T) {
	repo := &mockNotificationStore{}
	repo.On("Get", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "u1"}, nil)
	repo.On("MarkAsRead", mock.Anything, "n1").Return(&domain.Notification{NotificationID: "n1", UserID: "u1", Readed: true}, nil)

	svc := NewService(repo)
	n, err := svc.MarkAsRead(context.Background(), "u1", "n1")

	require.NoError(t, err)
	assert.True(t, n.Readed)
}
