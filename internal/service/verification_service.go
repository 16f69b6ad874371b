package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/S3lorm/internship-robot-sub000/internal/dto"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
)

// invalidDocumentMessage is returned for every lookup miss. Wrong code and
// unknown reference produce identical responses.
const invalidDocumentMessage = "document could not be verified"

type verificationStore interface {
	FindByReferenceAndCode(ctx context.Context, referenceNumber, verificationCode string) (*models.VerificationRecord, error)
	IncrementVerificationCount(ctx context.Context, id string) (int, error)
}

// VerificationService answers third-party authenticity checks for generated
// documents.
type VerificationService struct {
	store     verificationStore
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVerificationService constructs the service.
func NewVerificationService(store verificationStore, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &VerificationService{store: store, metrics: metrics, validator: validate, logger: logger}
}

// Verify looks up a document by reference number and verification code. Every
// hit increments the verification counter; every miss yields the same generic
// invalid result with a 200 response.
func (s *VerificationService) Verify(ctx context.Context, req dto.VerifyDocumentRequest) (*models.VerificationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}

	record, err := s.store.FindByReferenceAndCode(ctx, req.ReferenceNumber, req.VerificationCode)
	if err != nil {
		s.metrics.IncDocumentVerification(false)
		return &models.VerificationResult{IsValid: false, Message: invalidDocumentMessage}, nil
	}

	count, err := s.store.IncrementVerificationCount(ctx, record.ID)
	if err != nil {
		s.logger.Warn("failed to increment verification count", zap.String("record_id", record.ID), zap.Error(err))
		count = record.VerificationCount + 1
	}

	s.metrics.IncDocumentVerification(true)
	generatedAt := record.GeneratedAt
	return &models.VerificationResult{
		IsValid:           true,
		Message:           "document is authentic",
		DocumentType:      record.DocumentType,
		DocumentID:        record.DocumentID,
		GeneratedAt:       &generatedAt,
		VerificationCount: count,
	}, nil
}
