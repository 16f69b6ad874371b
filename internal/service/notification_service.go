package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/S3lorm/internship-robot-sub000/internal/models"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
)

type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// NotificationService manages the in-app notification inbox. Workflow services
// call Dispatch as a side effect and treat its failure as non-fatal.
type NotificationService struct {
	store   notificationStore
	metrics *MetricsService
	logger  *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(store notificationStore, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{store: store, metrics: metrics, logger: logger}
}

// Dispatch inserts a notification row for a user.
func (s *NotificationService) Dispatch(ctx context.Context, notification *models.Notification) error {
	if notification.UserID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "notification user required")
	}
	if err := s.store.Create(ctx, notification); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}
	s.metrics.IncNotificationDispatched()
	return nil
}

// List returns a user's notifications, latest first.
func (s *NotificationService) List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, models.Pagination, error) {
	if filter.UserID == "" {
		return nil, models.Pagination{}, appErrors.Clone(appErrors.ErrValidation, "user required")
	}
	notifications, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, paginationFor(filter.Page, filter.PageSize, total), nil
}

// UnreadCount returns the number of unread notifications for a user.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notifications")
	}
	return count, nil
}

// MarkRead marks a single notification as read for its owner.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	ok, err := s.store.MarkRead(ctx, id, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notification read")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read and returns
// how many rows changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	updated, err := s.store.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return updated, nil
}

// paginationFor normalises page arguments the same way the repositories do.
func paginationFor(page, pageSize, total int) models.Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
}
