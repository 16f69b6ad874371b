package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/S3lorm/internship-robot-sub000/internal/models"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
)

type mockNotificationStore struct {
	notifications []*models.Notification
	createErr     error
}

func (m *mockNotificationStore) Create(ctx context.Context, notification *models.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	if notification.ID == "" {
		notification.ID = "n-new"
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	m.notifications = append(m.notifications, notification)
	return nil
}

func (m *mockNotificationStore) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error) {
	var out []models.Notification
	for _, notification := range m.notifications {
		if notification.UserID != filter.UserID {
			continue
		}
		if filter.UnreadOnly && notification.IsRead {
			continue
		}
		out = append(out, *notification)
	}
	return out, len(out), nil
}

func (m *mockNotificationStore) CountUnread(ctx context.Context, userID string) (int, error) {
	count := 0
	for _, notification := range m.notifications {
		if notification.UserID == userID && !notification.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	for _, notification := range m.notifications {
		if notification.ID == id && notification.UserID == userID {
			notification.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (m *mockNotificationStore) MarkAllRead(ctx context.Context, userID string) (int, error) {
	updated := 0
	for _, notification := range m.notifications {
		if notification.UserID == userID && !notification.IsRead {
			notification.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func TestNotificationServiceDispatchAndList(t *testing.T) {
	store := &mockNotificationStore{}
	svc := NewNotificationService(store, nil, zap.NewNop())

	err := svc.Dispatch(context.Background(), &models.Notification{
		UserID:  "u1",
		Type:    models.NotificationTypeApplicationStatus,
		Title:   "Application status updated",
		Message: "approved",
	})
	require.NoError(t, err)

	notifications, pagination, err := svc.List(context.Background(), models.NotificationFilter{UserID: "u1", Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, 1, pagination.TotalCount)

	count, err := svc.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNotificationServiceDispatchRequiresUser(t *testing.T) {
	svc := NewNotificationService(&mockNotificationStore{}, nil, zap.NewNop())

	err := svc.Dispatch(context.Background(), &models.Notification{Title: "orphan"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestNotificationServiceMarkRead(t *testing.T) {
	store := &mockNotificationStore{notifications: []*models.Notification{
		{ID: "n1", UserID: "u1"},
		{ID: "n2", UserID: "u2"},
	}}
	svc := NewNotificationService(store, nil, zap.NewNop())

	require.NoError(t, svc.MarkRead(context.Background(), "n1", "u1"))
	assert.True(t, store.notifications[0].IsRead)

	// marking another user's notification reports not found
	err := svc.MarkRead(context.Background(), "n2", "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestNotificationServiceMarkAllRead(t *testing.T) {
	store := &mockNotificationStore{notifications: []*models.Notification{
		{ID: "n1", UserID: "u1"},
		{ID: "n2", UserID: "u1"},
		{ID: "n3", UserID: "u1", IsRead: true},
	}}
	svc := NewNotificationService(store, nil, zap.NewNop())

	updated, err := svc.MarkAllRead(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, updated)
}
