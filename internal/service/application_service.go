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
	"github.com/S3lorm/internship-robot-sub000/internal/repository"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
	"github.com/S3lorm/internship-robot-sub000/pkg/mailer"
)

type applicationStore interface {
	Create(ctx context.Context, application *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	GetByStudentAndInternship(ctx context.Context, studentID, internshipID string) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	UpdateStatus(ctx context.Context, params repository.UpdateApplicationParams) error
}

type applicationInternshipStore interface {
	GetByID(ctx context.Context, id string) (*models.Internship, error)
}

type applicationUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type studentNotifier interface {
	Dispatch(ctx context.Context, notification *models.Notification) error
}

type mailEnqueuer interface {
	Enqueue(msg mailer.Message, onDelivered func(context.Context)) error
}

// ApplicationService manages internship applications and their review
// lifecycle. A status update, its notification, and its email are three
// independent operations: only the status write can fail the call.
type ApplicationService struct {
	store       applicationStore
	internships applicationInternshipStore
	users       applicationUserStore
	notifier    studentNotifier
	mail        mailEnqueuer
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewApplicationService constructs the service.
func NewApplicationService(store applicationStore, internships applicationInternshipStore, users applicationUserStore,
	notifier studentNotifier, mail mailEnqueuer, validate *validator.Validate, logger *zap.Logger) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ApplicationService{
		store:       store,
		internships: internships,
		users:       users,
		notifier:    notifier,
		mail:        mail,
		validator:   validate,
		logger:      logger,
	}
}

// Apply submits a new application for the given student. Each student may hold
// at most one application per internship.
func (s *ApplicationService) Apply(ctx context.Context, studentID string, req dto.ApplyRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	internship, err := s.internships.GetByID(ctx, req.InternshipID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "internship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load internship")
	}
	if !internship.IsOpen {
		return nil, appErrors.Clone(appErrors.ErrValidation, "internship is not accepting applications")
	}
	if internship.Deadline != nil && time.Now().UTC().After(*internship.Deadline) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "internship application deadline has passed")
	}

	if _, err := s.store.GetByStudentAndInternship(ctx, studentID, req.InternshipID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "application already submitted for this internship")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing application")
	}

	application := &models.Application{
		StudentID:    studentID,
		InternshipID: req.InternshipID,
		CoverLetter:  req.CoverLetter,
		CVURL:        req.CVURL,
		Status:       models.ApplicationStatusPending,
	}
	if err := s.store.Create(ctx, application); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}
	return application, nil
}

// Get returns one application. Students may only read their own.
func (s *ApplicationService) Get(ctx context.Context, id, requesterID string, isAdmin bool) (*models.Application, error) {
	application, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if !isAdmin && application.StudentID != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "application belongs to another student")
	}
	return application, nil
}

// List returns applications matching the filter.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, models.Pagination, error) {
	applications, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	if applications == nil {
		applications = []models.Application{}
	}
	return applications, paginationFor(filter.Page, filter.PageSize, total), nil
}

// UpdateStatus applies a review decision. Any status may replace any other,
// including a terminal one; every call re-fires the student notification and
// email even when the status did not change.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id, reviewerID string, req dto.UpdateApplicationStatusRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !models.KnownApplicationStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown application status %q", req.Status))
	}

	application, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	var feedback *string
	if req.Feedback != "" {
		feedback = &req.Feedback
	}
	reviewedAt := time.Now().UTC()

	if err := s.store.UpdateStatus(ctx, repository.UpdateApplicationParams{
		ID:         id,
		Status:     req.Status,
		Feedback:   feedback,
		ReviewedBy: reviewerID,
		ReviewedAt: reviewedAt,
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}

	application.Status = req.Status
	application.Feedback = feedback
	application.ReviewedBy = &reviewerID
	application.ReviewedAt = &reviewedAt

	s.notifyStatusChange(ctx, application)
	s.emailStatusChange(ctx, application)

	return application, nil
}

// BulkUpdateStatus applies one decision to many applications, reporting a
// per-ID outcome. A failing ID does not stop the rest.
func (s *ApplicationService) BulkUpdateStatus(ctx context.Context, reviewerID string, req dto.BulkActionRequest) ([]models.BulkActionResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk payload")
	}
	if !models.KnownApplicationStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown application status %q", req.Status))
	}

	results := make([]models.BulkActionResult, 0, len(req.IDs))
	for _, id := range req.IDs {
		_, err := s.UpdateStatus(ctx, id, reviewerID, dto.UpdateApplicationStatusRequest{Status: req.Status, Feedback: req.Feedback})
		if err != nil {
			results = append(results, models.BulkActionResult{ID: id, OK: false, Error: appErrors.FromError(err).Message})
			continue
		}
		results = append(results, models.BulkActionResult{ID: id, OK: true})
	}
	return results, nil
}

func (s *ApplicationService) notifyStatusChange(ctx context.Context, application *models.Application) {
	priority := models.NotificationPriorityNormal
	if application.Status == models.ApplicationStatusApproved || application.Status == models.ApplicationStatusRejected {
		priority = models.NotificationPriorityHigh
	}
	link := fmt.Sprintf("/applications/%s", application.ID)
	notification := &models.Notification{
		UserID:    application.StudentID,
		Type:      models.NotificationTypeApplicationStatus,
		Title:     "Application status updated",
		Message:   fmt.Sprintf("Your internship application is now %s.", application.Status),
		Link:      &link,
		Priority:  priority,
		RelatedID: &application.ID,
	}
	if err := s.notifier.Dispatch(ctx, notification); err != nil {
		s.logger.Warn("failed to notify application status change",
			zap.String("application_id", application.ID), zap.Error(err))
	}
}

func (s *ApplicationService) emailStatusChange(ctx context.Context, application *models.Application) {
	student, err := s.users.FindByID(ctx, application.StudentID)
	if err != nil {
		s.logger.Warn("failed to load student for status email",
			zap.String("application_id", application.ID), zap.Error(err))
		return
	}
	body := fmt.Sprintf("Dear %s,\n\nYour internship application has been updated to: %s.\n", student.FullName, application.Status)
	if application.Feedback != nil && *application.Feedback != "" {
		body += fmt.Sprintf("\nReviewer feedback: %s\n", *application.Feedback)
	}
	if err := s.mail.Enqueue(mailer.Message{
		To:      student.Email,
		Subject: "Internship application update",
		Text:    body,
	}, nil); err != nil {
		s.logger.Warn("failed to enqueue status email",
			zap.String("application_id", application.ID), zap.Error(err))
	}
}
