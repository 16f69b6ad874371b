package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/S3lorm/internship-robot-sub000/internal/dto"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	"github.com/S3lorm/internship-robot-sub000/internal/repository"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
	"github.com/S3lorm/internship-robot-sub000/pkg/letterdoc"
	"github.com/S3lorm/internship-robot-sub000/pkg/mailer"
	"github.com/S3lorm/internship-robot-sub000/pkg/storage"
)

type letterStore interface {
	Create(ctx context.Context, request *models.LetterRequest) error
	GetByID(ctx context.Context, id string) (*models.LetterRequest, error)
	List(ctx context.Context, filter models.LetterRequestFilter) ([]models.LetterRequest, int, error)
	UpdateStatus(ctx context.Context, params repository.UpdateLetterStatusParams) error
	AttachDocument(ctx context.Context, params repository.AttachDocumentParams) error
	MarkEmailSent(ctx context.Context, id string) error
	IncrementDownloadCount(ctx context.Context, id string) (int, error)
	CreateTransmission(ctx context.Context, transmission *models.LetterTransmission) error
}

type letterUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type verificationRecorder interface {
	Create(ctx context.Context, record *models.VerificationRecord) error
}

type letterStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

// DownloadMeta identifies who fetched a letter and from where.
type DownloadMeta struct {
	UserID    string
	IPAddress string
	UserAgent string
}

// LetterService manages recommendation letter requests: review decisions,
// write-once document generation, signed download links, and transmission
// logging. Document generation failure never rolls back an approval.
type LetterService struct {
	store         letterStore
	users         letterUserStore
	verifications verificationRecorder
	renderer      *letterdoc.Renderer
	files         letterStorage
	signer        *storage.SignedURLSigner
	notifier      studentNotifier
	mail          mailEnqueuer
	metrics       *MetricsService
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewLetterService constructs the service.
func NewLetterService(store letterStore, users letterUserStore, verifications verificationRecorder,
	renderer *letterdoc.Renderer, files letterStorage, signer *storage.SignedURLSigner,
	notifier studentNotifier, mail mailEnqueuer, metrics *MetricsService,
	validate *validator.Validate, logger *zap.Logger) *LetterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LetterService{
		store:         store,
		users:         users,
		verifications: verifications,
		renderer:      renderer,
		files:         files,
		signer:        signer,
		notifier:      notifier,
		mail:          mail,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
	}
}

// CreateRequest registers a new letter request for the student.
func (s *LetterService) CreateRequest(ctx context.Context, studentID string, req dto.CreateLetterRequest) (*models.LetterRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid letter request payload")
	}
	request := &models.LetterRequest{
		StudentID:          studentID,
		CompanyName:        req.CompanyName,
		Purpose:            req.Purpose,
		InternshipDuration: req.InternshipDuration,
		Status:             models.LetterRequestStatusPending,
	}
	if err := s.store.Create(ctx, request); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create letter request")
	}
	return request, nil
}

// Get returns one letter request. Students may only read their own.
func (s *LetterService) Get(ctx context.Context, id, requesterID string, isAdmin bool) (*models.LetterRequest, error) {
	request, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "letter request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load letter request")
	}
	if !isAdmin && request.StudentID != requesterID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "letter request belongs to another student")
	}
	return request, nil
}

// List returns letter requests matching the filter.
func (s *LetterService) List(ctx context.Context, filter models.LetterRequestFilter) ([]models.LetterRequest, models.Pagination, error) {
	requests, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, models.Pagination{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list letter requests")
	}
	if requests == nil {
		requests = []models.LetterRequest{}
	}
	return requests, paginationFor(filter.Page, filter.PageSize, total), nil
}

// UpdateRequestStatus applies a review decision. On the first transition into
// approved the official document is generated and attached; a render or store
// failure is logged and the approval stands without a document. The student
// notification and the approval email are likewise independent of the status
// write.
func (s *LetterService) UpdateRequestStatus(ctx context.Context, id, reviewerID string, req dto.UpdateLetterStatusRequest) (*models.LetterRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	if !models.KnownLetterRequestStatus(req.Status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown letter request status %q", req.Status))
	}

	request, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "letter request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load letter request")
	}

	student, err := s.users.FindByID(ctx, request.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load requesting student")
	}

	var adminNotes *string
	if req.AdminNotes != "" {
		adminNotes = &req.AdminNotes
	}
	reviewedAt := time.Now().UTC()

	if err := s.store.UpdateStatus(ctx, repository.UpdateLetterStatusParams{
		ID:         id,
		Status:     req.Status,
		AdminNotes: adminNotes,
		ReviewedBy: reviewerID,
		ReviewedAt: reviewedAt,
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "letter request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update letter request status")
	}

	request.Status = req.Status
	request.AdminNotes = adminNotes
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &reviewedAt

	if req.Status == models.LetterRequestStatusApproved && request.PDFURL == nil {
		if err := s.generateDocument(ctx, request, student); err != nil {
			s.logger.Warn("letter document generation failed, approval recorded without document",
				zap.String("request_id", request.ID), zap.Error(err))
		}
	}

	s.notifyLetterStatus(ctx, request)

	if req.Status == models.LetterRequestStatusApproved && (req.SendEmail == nil || *req.SendEmail) {
		s.emailApproval(ctx, request, student)
	}

	return request, nil
}

// Download streams the generated document to its owner. Every successful call
// increments the download counter and appends a transmission log row.
func (s *LetterService) Download(ctx context.Context, id string, isAdmin bool, meta DownloadMeta) (*os.File, *models.LetterRequest, error) {
	request, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "letter request not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load letter request")
	}
	if !isAdmin && request.StudentID != meta.UserID {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "letter request belongs to another student")
	}
	if request.Status != models.LetterRequestStatusApproved || request.PDFURL == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "letter document is not available")
	}
	return s.openAndLog(ctx, request, *request.PDFURL, meta)
}

// DownloadByToken streams the document referenced by a signed link without
// requiring a session, for students following the approval email.
func (s *LetterService) DownloadByToken(ctx context.Context, token string, meta DownloadMeta) (*os.File, *models.LetterRequest, error) {
	requestID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download link")
	}
	request, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "letter request not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load letter request")
	}
	if meta.UserID == "" {
		meta.UserID = request.StudentID
	}
	return s.openAndLog(ctx, request, relPath, meta)
}

func (s *LetterService) openAndLog(ctx context.Context, request *models.LetterRequest, relPath string, meta DownloadMeta) (*os.File, *models.LetterRequest, error) {
	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open letter document")
	}

	count, err := s.store.IncrementDownloadCount(ctx, request.ID)
	if err != nil {
		s.logger.Warn("failed to increment download count", zap.String("request_id", request.ID), zap.Error(err))
	} else {
		request.DownloadCount = count
	}

	if err := s.store.CreateTransmission(ctx, &models.LetterTransmission{
		RequestID:    request.ID,
		DownloadedBy: meta.UserID,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}); err != nil {
		s.logger.Warn("failed to log letter transmission", zap.String("request_id", request.ID), zap.Error(err))
	}

	return file, request, nil
}

func (s *LetterService) generateDocument(ctx context.Context, request *models.LetterRequest, student *models.User) error {
	referenceNumber := fmt.Sprintf("LTR-%d-%s", time.Now().UTC().Year(), strings.ToUpper(uuid.NewString()[:8]))
	verificationCode, err := generateVerificationCode()
	if err != nil {
		return fmt.Errorf("generate verification code: %w", err)
	}

	program := ""
	if student.Program != nil {
		program = *student.Program
	}
	issuedAt := time.Now().UTC()

	pdfBytes, contentHash, err := s.renderer.Render(letterdoc.Letter{
		ReferenceNumber:  referenceNumber,
		VerificationCode: verificationCode,
		StudentName:      student.FullName,
		StudentProgram:   program,
		CompanyName:      request.CompanyName,
		Purpose:          request.Purpose,
		Duration:         request.InternshipDuration,
		IssuedAt:         issuedAt,
	})
	if err != nil {
		return fmt.Errorf("render letter: %w", err)
	}

	relPath, err := s.files.Save(fmt.Sprintf("letters/%s.pdf", request.ID), pdfBytes)
	if err != nil {
		return fmt.Errorf("store letter: %w", err)
	}

	if err := s.store.AttachDocument(ctx, repository.AttachDocumentParams{
		ID:               request.ID,
		ReferenceNumber:  referenceNumber,
		VerificationCode: verificationCode,
		PDFURL:           relPath,
		PDFGeneratedAt:   issuedAt,
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost the race against a concurrent approval; the first document wins.
			return nil
		}
		return fmt.Errorf("attach letter document: %w", err)
	}

	if err := s.verifications.Create(ctx, &models.VerificationRecord{
		ReferenceNumber:  referenceNumber,
		VerificationCode: verificationCode,
		DocumentType:     "recommendation_letter",
		DocumentID:       request.ID,
		ContentHash:      contentHash,
		GeneratedAt:      issuedAt,
	}); err != nil {
		s.logger.Warn("failed to record verification entry", zap.String("request_id", request.ID), zap.Error(err))
	}

	request.ReferenceNumber = &referenceNumber
	request.VerificationCode = &verificationCode
	request.PDFURL = &relPath
	request.PDFGeneratedAt = &issuedAt
	s.metrics.IncLetterGenerated()
	return nil
}

func (s *LetterService) notifyLetterStatus(ctx context.Context, request *models.LetterRequest) {
	link := fmt.Sprintf("/letters/requests/%s", request.ID)
	notification := &models.Notification{
		UserID:    request.StudentID,
		Type:      models.NotificationTypeLetterStatus,
		Title:     "Letter request updated",
		Message:   fmt.Sprintf("Your recommendation letter request for %s is now %s.", request.CompanyName, request.Status),
		Link:      &link,
		Priority:  models.NotificationPriorityHigh,
		RelatedID: &request.ID,
	}
	if err := s.notifier.Dispatch(ctx, notification); err != nil {
		s.logger.Warn("failed to notify letter status change", zap.String("request_id", request.ID), zap.Error(err))
	}
}

func (s *LetterService) emailApproval(ctx context.Context, request *models.LetterRequest, student *models.User) {
	body := fmt.Sprintf("Dear %s,\n\nYour recommendation letter for %s has been approved.\n", student.FullName, request.CompanyName)
	if request.PDFURL != nil {
		if token, _, err := s.signer.Generate(request.ID, *request.PDFURL); err == nil {
			body += fmt.Sprintf("\nDownload your letter: /api/v1/letters/download?token=%s\n", token)
		} else {
			s.logger.Warn("failed to sign download link", zap.String("request_id", request.ID), zap.Error(err))
		}
	}

	requestID := request.ID
	if err := s.mail.Enqueue(mailer.Message{
		To:      student.Email,
		Subject: "Recommendation letter approved",
		Text:    body,
	}, func(cbCtx context.Context) {
		if err := s.store.MarkEmailSent(cbCtx, requestID); err != nil {
			s.logger.Warn("failed to mark letter email sent", zap.String("request_id", requestID), zap.Error(err))
		}
	}); err != nil {
		s.logger.Warn("failed to enqueue approval email", zap.String("request_id", request.ID), zap.Error(err))
	}
}

func generateVerificationCode() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}
