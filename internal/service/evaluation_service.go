package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/S3lorm/internship-robot-sub000/internal/dto"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
)

type evaluationStore interface {
	Create(ctx context.Context, evaluation *models.Evaluation) error
	GetByID(ctx context.Context, id string) (*models.Evaluation, error)
	List(ctx context.Context, filter models.EvaluationFilter) ([]models.Evaluation, int, error)
	Release(ctx context.Context, id string) (bool, error)
	MarkViewed(ctx context.Context, id string, ts time.Time) (bool, error)
	Acknowledge(ctx context.Context, id string, ts time.Time) (bool, error)
}

// EvaluationService manages evaluation release, first-view stamping, and
// feedback acknowledgment. viewed_at and feedback_acknowledged_at are
// write-once: repeated calls succeed without rewriting the stamp or re-firing
// side effects.
type EvaluationService struct {
	store     evaluationStore
	notifier  studentNotifier
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEvaluationService constructs the service.
func NewEvaluationService(store evaluationStore, notifier studentNotifier, validate *validator.Validate, logger *zap.Logger) *EvaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EvaluationService{store: store, notifier: notifier, validator: validate, logger: logger}
}

// Create registers a new evaluation. It stays hidden from the student until an
// admin releases it.
func (s *EvaluationService) Create(ctx context.Context, adminID string, req dto.CreateEvaluationRequest) (*models.Evaluation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid evaluation payload")
	}
	var feedback *string
	if req.Feedback != "" {
		feedback = &req.Feedback
	}
	evaluation := &models.Evaluation{
		StudentID:              req.StudentID,
		InternshipID:           req.InternshipID,
		Feedback:               feedback,
		IsAvailable:            false,
		RequiresAcknowledgment: req.RequiresAcknowledgment,
		Deadline:               req.Deadline,
		CreatedBy:              adminID,
	}
	if err := s.store.Create(ctx, evaluation); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create evaluation")
	}
	return evaluation, nil
}

// Release makes the evaluation visible to its student and notifies them. A
// second release is a no-op that does not notify again.
func (s *EvaluationService) Release(ctx context.Context, id string) (*models.Evaluation, error) {
	evaluation, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}

	released, err := s.store.Release(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to release evaluation")
	}
	evaluation.IsAvailable = true
	if !released {
		return evaluation, nil
	}

	link := fmt.Sprintf("/evaluations/%s", evaluation.ID)
	if err := s.notifier.Dispatch(ctx, &models.Notification{
		UserID:    evaluation.StudentID,
		Type:      models.NotificationTypeEvaluationReady,
		Title:     "Evaluation available",
		Message:   "A new internship evaluation is available for you.",
		Link:      &link,
		Priority:  models.NotificationPriorityNormal,
		RelatedID: &evaluation.ID,
	}); err != nil {
		s.logger.Warn("failed to notify evaluation release", zap.String("evaluation_id", id), zap.Error(err))
	}
	return evaluation, nil
}

// List returns evaluations matching the filter.
func (s *EvaluationService) List(ctx context.Context, filter models.EvaluationFilter) ([]models.Evaluation, models.Pagination, error) {
	evaluations, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	if evaluations == nil {
		evaluations = []models.Evaluation{}
	}
	return evaluations, paginationFor(filter.Page, filter.PageSize, total), nil
}

// View returns a released evaluation to its student, stamping viewed_at on the
// first read only.
func (s *EvaluationService) View(ctx context.Context, id, requesterID string) (*models.Evaluation, error) {
	evaluation, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	if evaluation.StudentID != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "evaluation belongs to another student")
	}
	if !evaluation.IsAvailable {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
	}

	now := time.Now().UTC()
	stamped, err := s.store.MarkViewed(ctx, id, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record evaluation view")
	}
	if stamped {
		evaluation.ViewedAt = &now
	}
	return evaluation, nil
}

// AcknowledgeFeedback records the student's acknowledgment. Availability is
// not rechecked here; the stamp is write-once and only the first transition
// notifies the evaluating admin.
func (s *EvaluationService) AcknowledgeFeedback(ctx context.Context, id, requesterID string) (*models.Evaluation, error) {
	evaluation, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "evaluation not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load evaluation")
	}
	if evaluation.StudentID != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "evaluation belongs to another student")
	}
	if !evaluation.RequiresAcknowledgment {
		return nil, appErrors.Clone(appErrors.ErrValidation, "evaluation does not require acknowledgment")
	}
	if evaluation.Feedback == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "evaluation has no feedback to acknowledge")
	}

	now := time.Now().UTC()
	stamped, err := s.store.Acknowledge(ctx, id, now)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record acknowledgment")
	}
	if !stamped {
		return evaluation, nil
	}
	evaluation.FeedbackAcknowledgedAt = &now

	link := fmt.Sprintf("/evaluations/%s", evaluation.ID)
	if err := s.notifier.Dispatch(ctx, &models.Notification{
		UserID:    evaluation.CreatedBy,
		Type:      models.NotificationTypeAcknowledgment,
		Title:     "Evaluation acknowledged",
		Message:   "A student has acknowledged their evaluation feedback.",
		Link:      &link,
		Priority:  models.NotificationPriorityLow,
		RelatedID: &evaluation.ID,
	}); err != nil {
		s.logger.Warn("failed to notify acknowledgment", zap.String("evaluation_id", id), zap.Error(err))
	}
	return evaluation, nil
}
