package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/S3lorm/internship-robot-sub000/internal/models"
	"github.com/S3lorm/internship-robot-sub000/pkg/config"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
)

type reminderEvaluationStore interface {
	ListPendingAcknowledgment(ctx context.Context, limit int) ([]models.Evaluation, error)
}

type reminderApplicationStore interface {
	ListPending(ctx context.Context, limit int) ([]models.Application, error)
}

// ReminderRunResult summarises one sweep.
type ReminderRunResult struct {
	EvaluationsScanned  int `json:"evaluationsScanned"`
	ApplicationsScanned int `json:"applicationsScanned"`
	RemindersSent       int `json:"remindersSent"`
}

// ReminderService runs the externally triggered reminder sweep. Matching is a
// pure day-offset comparison with no dedup key: re-running the sweep inside
// the same day window emits the same reminders again.
type ReminderService struct {
	evaluations  reminderEvaluationStore
	applications reminderApplicationStore
	notifier     studentNotifier
	metrics      *MetricsService
	logger       *zap.Logger
	cfg          config.RemindersConfig
}

// NewReminderService constructs the service.
func NewReminderService(evaluations reminderEvaluationStore, applications reminderApplicationStore,
	notifier studentNotifier, metrics *MetricsService, logger *zap.Logger, cfg config.RemindersConfig) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{
		evaluations:  evaluations,
		applications: applications,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger,
		cfg:          cfg,
	}
}

// Run executes one sweep over pending acknowledgments and stale applications.
func (s *ReminderService) Run(ctx context.Context) (*ReminderRunResult, error) {
	if !s.cfg.Enabled {
		return &ReminderRunResult{}, nil
	}
	now := time.Now().UTC()
	result := &ReminderRunResult{}

	evaluations, err := s.evaluations.ListPendingAcknowledgment(ctx, s.cfg.MaxNoticesPerRun)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending acknowledgments")
	}
	result.EvaluationsScanned = len(evaluations)
	for i := range evaluations {
		evaluation := &evaluations[i]
		if evaluation.Deadline == nil {
			continue
		}
		daysLeft := daysBetween(now, *evaluation.Deadline)
		if !containsDay(s.cfg.DeadlineOffsets, daysLeft) {
			continue
		}
		s.remindEvaluation(ctx, evaluation, daysLeft, result)
	}

	applications, err := s.applications.ListPending(ctx, s.cfg.MaxNoticesPerRun)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load pending applications")
	}
	result.ApplicationsScanned = len(applications)
	for i := range applications {
		application := &applications[i]
		daysWaiting := daysBetween(application.AppliedAt, now)
		if !containsDay(s.cfg.StaleReviewDays, daysWaiting) {
			continue
		}
		s.remindApplication(ctx, application, daysWaiting, result)
	}

	s.logger.Info("reminder sweep finished",
		zap.Int("evaluations_scanned", result.EvaluationsScanned),
		zap.Int("applications_scanned", result.ApplicationsScanned),
		zap.Int("reminders_sent", result.RemindersSent))
	return result, nil
}

func (s *ReminderService) remindEvaluation(ctx context.Context, evaluation *models.Evaluation, daysLeft int, result *ReminderRunResult) {
	link := fmt.Sprintf("/evaluations/%s", evaluation.ID)
	notification := &models.Notification{
		UserID:    evaluation.StudentID,
		Type:      models.NotificationTypeReminder,
		Title:     "Acknowledgment deadline approaching",
		Message:   fmt.Sprintf("Your evaluation feedback must be acknowledged within %d day(s).", daysLeft),
		Link:      &link,
		Priority:  priorityForDaysLeft(daysLeft),
		RelatedID: &evaluation.ID,
	}
	if err := s.notifier.Dispatch(ctx, notification); err != nil {
		s.logger.Warn("failed to send evaluation reminder", zap.String("evaluation_id", evaluation.ID), zap.Error(err))
		return
	}
	s.metrics.IncReminderEmitted()
	result.RemindersSent++
}

func (s *ReminderService) remindApplication(ctx context.Context, application *models.Application, daysWaiting int, result *ReminderRunResult) {
	link := fmt.Sprintf("/applications/%s", application.ID)
	notification := &models.Notification{
		UserID:    application.StudentID,
		Type:      models.NotificationTypeReminder,
		Title:     "Application still in review",
		Message:   fmt.Sprintf("Your internship application has been awaiting review for %d day(s).", daysWaiting),
		Link:      &link,
		Priority:  models.NotificationPriorityLow,
		RelatedID: &application.ID,
	}
	if err := s.notifier.Dispatch(ctx, notification); err != nil {
		s.logger.Warn("failed to send application reminder", zap.String("application_id", application.ID), zap.Error(err))
		return
	}
	s.metrics.IncReminderEmitted()
	result.RemindersSent++
}

// daysBetween counts whole calendar days from a to b in UTC.
func daysBetween(a, b time.Time) int {
	aDay := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bDay := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bDay.Sub(aDay).Hours() / 24)
}

func containsDay(days []int, day int) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

func priorityForDaysLeft(daysLeft int) models.NotificationPriority {
	if daysLeft <= 1 {
		return models.NotificationPriorityHigh
	}
	return models.NotificationPriorityNormal
}
