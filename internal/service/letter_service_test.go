package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/S3lorm/internship-robot-sub000/internal/dto"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	"github.com/S3lorm/internship-robot-sub000/internal/repository"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
	"github.com/S3lorm/internship-robot-sub000/pkg/letterdoc"
	"github.com/S3lorm/internship-robot-sub000/pkg/storage"
)

type mockLetterStore struct {
	requests      map[string]*models.LetterRequest
	attached      []repository.AttachDocumentParams
	attachErr     error
	emailSentIDs  []string
	transmissions []*models.LetterTransmission
	downloadCount int
}

func (m *mockLetterStore) Create(ctx context.Context, request *models.LetterRequest) error {
	if request.ID == "" {
		request.ID = "lr-new"
	}
	if m.requests == nil {
		m.requests = make(map[string]*models.LetterRequest)
	}
	m.requests[request.ID] = request
	return nil
}

func (m *mockLetterStore) GetByID(ctx context.Context, id string) (*models.LetterRequest, error) {
	request, ok := m.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *request
	return &copied, nil
}

func (m *mockLetterStore) List(ctx context.Context, filter models.LetterRequestFilter) ([]models.LetterRequest, int, error) {
	var out []models.LetterRequest
	for _, request := range m.requests {
		if filter.StudentID != "" && request.StudentID != filter.StudentID {
			continue
		}
		out = append(out, *request)
	}
	return out, len(out), nil
}

func (m *mockLetterStore) UpdateStatus(ctx context.Context, params repository.UpdateLetterStatusParams) error {
	request, ok := m.requests[params.ID]
	if !ok {
		return sql.ErrNoRows
	}
	request.Status = params.Status
	request.AdminNotes = params.AdminNotes
	request.ReviewedBy = &params.ReviewedBy
	request.ReviewedAt = &params.ReviewedAt
	return nil
}

func (m *mockLetterStore) AttachDocument(ctx context.Context, params repository.AttachDocumentParams) error {
	if m.attachErr != nil {
		return m.attachErr
	}
	request, ok := m.requests[params.ID]
	if !ok || request.PDFURL != nil {
		return sql.ErrNoRows
	}
	request.ReferenceNumber = &params.ReferenceNumber
	request.VerificationCode = &params.VerificationCode
	request.PDFURL = &params.PDFURL
	request.PDFGeneratedAt = &params.PDFGeneratedAt
	m.attached = append(m.attached, params)
	return nil
}

func (m *mockLetterStore) MarkEmailSent(ctx context.Context, id string) error {
	m.emailSentIDs = append(m.emailSentIDs, id)
	return nil
}

func (m *mockLetterStore) IncrementDownloadCount(ctx context.Context, id string) (int, error) {
	m.downloadCount++
	return m.downloadCount, nil
}

func (m *mockLetterStore) CreateTransmission(ctx context.Context, transmission *models.LetterTransmission) error {
	m.transmissions = append(m.transmissions, transmission)
	return nil
}

type mockVerificationRecorder struct {
	records []*models.VerificationRecord
}

func (m *mockVerificationRecorder) Create(ctx context.Context, record *models.VerificationRecord) error {
	m.records = append(m.records, record)
	return nil
}

func newLetterFixture(t *testing.T, store *mockLetterStore, users *stubUserStore, notifier *stubNotifier, mail *stubMail) (*LetterService, *mockVerificationRecorder) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	verifications := &mockVerificationRecorder{}
	svc := NewLetterService(store, users, verifications,
		letterdoc.NewRenderer("Test University", "Dr. Jane Smith", "Internship Coordinator"),
		files, storage.NewSignedURLSigner("test-secret", time.Hour),
		notifier, mail, nil, validator.New(), zap.NewNop())
	return svc, verifications
}

func pendingLetterRequest(id, studentID string) *models.LetterRequest {
	return &models.LetterRequest{
		ID:                 id,
		StudentID:          studentID,
		CompanyName:        "Acme Corp",
		Purpose:            "Internship placement",
		InternshipDuration: "3 months",
		Status:             models.LetterRequestStatusPending,
	}
}

func letterStudent(id string) *models.User {
	program := "BSc Computer Science"
	return &models.User{ID: id, Email: id + "@uni.edu", FullName: "Sam Doe", Program: &program}
}

func TestLetterServiceApproveGeneratesDocument(t *testing.T) {
	store := &mockLetterStore{requests: map[string]*models.LetterRequest{"lr1": pendingLetterRequest("lr1", "s1")}}
	users := &stubUserStore{users: map[string]*models.User{"s1": letterStudent("s1")}}
	notifier := &stubNotifier{}
	mail := &stubMail{}
	svc, verifications := newLetterFixture(t, store, users, notifier, mail)

	updated, err := svc.UpdateRequestStatus(context.Background(), "lr1", "admin-1", dto.UpdateLetterStatusRequest{
		Status: models.LetterRequestStatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LetterRequestStatusApproved, updated.Status)
	require.NotNil(t, updated.PDFURL)
	require.NotNil(t, updated.ReferenceNumber)
	require.NotNil(t, updated.VerificationCode)
	assert.Len(t, *updated.VerificationCode, 8)

	require.Len(t, store.attached, 1)
	require.Len(t, verifications.records, 1)
	assert.Equal(t, *updated.ReferenceNumber, verifications.records[0].ReferenceNumber)
	assert.Equal(t, "recommendation_letter", verifications.records[0].DocumentType)
	assert.NotEmpty(t, verifications.records[0].ContentHash)

	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, models.NotificationTypeLetterStatus, notifier.notifications[0].Type)

	require.Len(t, mail.messages, 1)
	assert.Equal(t, "s1@uni.edu", mail.messages[0].To)

	// email_sent flips only after the queue reports delivery
	assert.Empty(t, store.emailSentIDs)
	require.NotNil(t, mail.delivered[0])
	mail.delivered[0](context.Background())
	assert.Equal(t, []string{"lr1"}, store.emailSentIDs)
}

func TestLetterServiceApproveRenderFailureStillApproves(t *testing.T) {
	store := &mockLetterStore{requests: map[string]*models.LetterRequest{"lr1": pendingLetterRequest("lr1", "s1")}}
	student := letterStudent("s1")
	student.FullName = ""
	users := &stubUserStore{users: map[string]*models.User{"s1": student}}
	svc, verifications := newLetterFixture(t, store, users, &stubNotifier{}, &stubMail{})

	updated, err := svc.UpdateRequestStatus(context.Background(), "lr1", "admin-1", dto.UpdateLetterStatusRequest{
		Status: models.LetterRequestStatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LetterRequestStatusApproved, updated.Status)
	assert.Nil(t, updated.PDFURL)
	assert.Empty(t, verifications.records)
}

func TestLetterServiceApproveSkipsExistingDocument(t *testing.T) {
	existing := pendingLetterRequest("lr1", "s1")
	pdfURL := "letters/lr1.pdf"
	existing.PDFURL = &pdfURL
	store := &mockLetterStore{requests: map[string]*models.LetterRequest{"lr1": existing}}
	users := &stubUserStore{users: map[string]*models.User{"s1": letterStudent("s1")}}
	svc, verifications := newLetterFixture(t, store, users, &stubNotifier{}, &stubMail{})

	_, err := svc.UpdateRequestStatus(context.Background(), "lr1", "admin-1", dto.UpdateLetterStatusRequest{
		Status: models.LetterRequestStatusApproved,
	})
	require.NoError(t, err)
	assert.Empty(t, store.attached)
	assert.Empty(t, verifications.records)
}

func TestLetterServiceRejectDoesNotEmail(t *testing.T) {
	store := &mockLetterStore{requests: map[string]*models.LetterRequest{"lr1": pendingLetterRequest("lr1", "s1")}}
	users := &stubUserStore{users: map[string]*models.User{"s1": letterStudent("s1")}}
	notifier := &stubNotifier{}
	mail := &stubMail{}
	svc, _ := newLetterFixture(t, store, users, notifier, mail)

	updated, err := svc.UpdateRequestStatus(context.Background(), "lr1", "admin-1", dto.UpdateLetterStatusRequest{
		Status:     models.LetterRequestStatusRejected,
		AdminNotes: "missing transcript",
	})
	require.NoError(t, err)
	assert.Equal(t, models.LetterRequestStatusRejected, updated.Status)
	assert.Nil(t, updated.PDFURL)
	assert.Empty(t, mail.messages)
	require.Len(t, notifier.notifications, 1)
}

func TestLetterServiceApproveSendEmailFalseSuppressesEmail(t *testing.T) {
	store := &mockLetterStore{requests: map[string]*models.LetterRequest{"lr1": pendingLetterRequest("lr1", "s1")}}
	users := &stubUserStore{users: map[string]*models.User{"s1": letterStudent("s1")}}
	mail := &stubMail{}
	svc, _ := newLetterFixture(t, store, users, &stubNotifier{}, mail)

	sendEmail := false
	_, err := svc.UpdateRequestStatus(context.Background(), "lr1", "admin-1", dto.UpdateLetterStatusRequest{
		Status:    models.LetterRequestStatusApproved,
		SendEmail: &sendEmail,
	})
	require.NoError(t, err)
	assert.Empty(t, mail.messages)
}

func TestLetterServiceDownloadIncrementsAndLogs(t *testing.T) {
	store := &mockLetterStore{requests: map[string]*models.LetterRequest{"lr1": pendingLetterRequest("lr1", "s1")}}
	users := &stubUserStore{users: map[string]*models.User{"s1": letterStudent("s1")}}
	svc, _ := newLetterFixture(t, store, users, &stubNotifier{}, &stubMail{})

	_, err := svc.UpdateRequestStatus(context.Background(), "lr1", "admin-1", dto.UpdateLetterStatusRequest{
		Status: models.LetterRequestStatusApproved,
	})
	require.NoError(t, err)

	file, request, err := svc.Download(context.Background(), "lr1", false, DownloadMeta{UserID: "s1", IPAddress: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck

	assert.Equal(t, 1, request.DownloadCount)
	require.Len(t, store.transmissions, 1)
	assert.Equal(t, "lr1", store.transmissions[0].RequestID)
	assert.Equal(t, "s1", store.transmissions[0].DownloadedBy)

	file2, request2, err := svc.Download(context.Background(), "lr1", false, DownloadMeta{UserID: "s1"})
	require.NoError(t, err)
	defer file2.Close() //nolint:errcheck
	assert.Equal(t, 2, request2.DownloadCount)
	assert.Len(t, store.transmissions, 2)
}

func TestLetterServiceDownloadForbiddenForOtherStudent(t *testing.T) {
	approved := pendingLetterRequest("lr1", "s1")
	approved.Status = models.LetterRequestStatusApproved
	pdfURL := "letters/lr1.pdf"
	approved.PDFURL = &pdfURL
	store := &mockLetterStore{requests: map[string]*models.LetterRequest{"lr1": approved}}
	svc, _ := newLetterFixture(t, store, &stubUserStore{}, &stubNotifier{}, &stubMail{})

	_, _, err := svc.Download(context.Background(), "lr1", false, DownloadMeta{UserID: "s2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestLetterServiceDownloadPendingRequest(t *testing.T) {
	store := &mockLetterStore{requests: map[string]*models.LetterRequest{"lr1": pendingLetterRequest("lr1", "s1")}}
	svc, _ := newLetterFixture(t, store, &stubUserStore{}, &stubNotifier{}, &stubMail{})

	_, _, err := svc.Download(context.Background(), "lr1", false, DownloadMeta{UserID: "s1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestLetterServiceDownloadByToken(t *testing.T) {
	store := &mockLetterStore{requests: map[string]*models.LetterRequest{"lr1": pendingLetterRequest("lr1", "s1")}}
	users := &stubUserStore{users: map[string]*models.User{"s1": letterStudent("s1")}}
	svc, _ := newLetterFixture(t, store, users, &stubNotifier{}, &stubMail{})

	updated, err := svc.UpdateRequestStatus(context.Background(), "lr1", "admin-1", dto.UpdateLetterStatusRequest{
		Status: models.LetterRequestStatusApproved,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.PDFURL)

	token, _, err := storage.NewSignedURLSigner("test-secret", time.Hour).Generate("lr1", *updated.PDFURL)
	require.NoError(t, err)

	file, request, err := svc.DownloadByToken(context.Background(), token, DownloadMeta{IPAddress: "10.0.0.2"})
	require.NoError(t, err)
	defer file.Close() //nolint:errcheck
	assert.Equal(t, "lr1", request.ID)
	require.Len(t, store.transmissions, 1)
	assert.Equal(t, "s1", store.transmissions[0].DownloadedBy)
}

func TestLetterServiceDownloadByTokenRejectsTamper(t *testing.T) {
	store := &mockLetterStore{requests: map[string]*models.LetterRequest{}}
	svc, _ := newLetterFixture(t, store, &stubUserStore{}, &stubNotifier{}, &stubMail{})

	_, _, err := svc.DownloadByToken(context.Background(), "not.a.valid.token", DownloadMeta{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
