package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S3lorm/internship-robot-sub000/internal/dto"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	"github.com/S3lorm/internship-robot-sub000/internal/service"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
)

type fakeLetterSrv struct {
	request  *models.LetterRequest
	file     *os.File
	err      error
	lastMeta service.DownloadMeta
	lastReq  dto.UpdateLetterStatusRequest
}

func (f *fakeLetterSrv) CreateRequest(context.Context, string, dto.CreateLetterRequest) (*models.LetterRequest, error) {
	return f.request, f.err
}

func (f *fakeLetterSrv) Get(context.Context, string, string, bool) (*models.LetterRequest, error) {
	return f.request, f.err
}

func (f *fakeLetterSrv) List(context.Context, models.LetterRequestFilter) ([]models.LetterRequest, models.Pagination, error) {
	if f.err != nil {
		return nil, models.Pagination{}, f.err
	}
	return []models.LetterRequest{*f.request}, models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (f *fakeLetterSrv) UpdateRequestStatus(_ context.Context, id, reviewerID string, req dto.UpdateLetterStatusRequest) (*models.LetterRequest, error) {
	f.lastReq = req
	return f.request, f.err
}

func (f *fakeLetterSrv) Download(_ context.Context, id string, isAdmin bool, meta service.DownloadMeta) (*os.File, *models.LetterRequest, error) {
	f.lastMeta = meta
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.file, f.request, nil
}

func (f *fakeLetterSrv) DownloadByToken(_ context.Context, token string, meta service.DownloadMeta) (*os.File, *models.LetterRequest, error) {
	f.lastMeta = meta
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.file, f.request, nil
}

func tempPDF(t *testing.T) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "letter.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o644))
	file, err := os.Open(path)
	require.NoError(t, err)
	return file
}

func TestLetterHandlerCreate(t *testing.T) {
	svc := &fakeLetterSrv{request: &models.LetterRequest{ID: "lr1", StudentID: "s1", Status: models.LetterRequestStatusPending}}
	handler := NewLetterHandler(svc)

	c, rec := studentContext(httptest.NewRecorder(), http.MethodPost, "/letters/requests",
		`{"companyName":"Acme","purpose":"placement","internshipDuration":"3 months"}`)
	handler.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestLetterHandlerUpdateStatusPassesSendEmail(t *testing.T) {
	svc := &fakeLetterSrv{request: &models.LetterRequest{ID: "lr1", Status: models.LetterRequestStatusApproved}}
	handler := NewLetterHandler(svc)

	c, rec := studentContext(httptest.NewRecorder(), http.MethodPatch, "/letters/requests/lr1/status",
		`{"status":"approved","sendEmail":false}`)
	c.Params = gin.Params{{Key: "id", Value: "lr1"}}
	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastReq.SendEmail)
	assert.False(t, *svc.lastReq.SendEmail)
}

func TestLetterHandlerDownloadStreamsFile(t *testing.T) {
	reference := "LTR-2026-ABCD1234"
	svc := &fakeLetterSrv{
		request: &models.LetterRequest{ID: "lr1", StudentID: "s1", ReferenceNumber: &reference},
		file:    tempPDF(t),
	}
	handler := NewLetterHandler(svc)

	c, rec := studentContext(httptest.NewRecorder(), http.MethodGet, "/letters/requests/lr1/download", "")
	c.Params = gin.Params{{Key: "id", Value: "lr1"}}
	handler.Download(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), reference)
	assert.Equal(t, "s1", svc.lastMeta.UserID)
}

func TestLetterHandlerDownloadNotAvailable(t *testing.T) {
	svc := &fakeLetterSrv{err: appErrors.Clone(appErrors.ErrNotFound, "letter document is not available")}
	handler := NewLetterHandler(svc)

	c, rec := studentContext(httptest.NewRecorder(), http.MethodGet, "/letters/requests/lr1/download", "")
	c.Params = gin.Params{{Key: "id", Value: "lr1"}}
	handler.Download(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLetterHandlerDownloadByTokenRequiresToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewLetterHandler(&fakeLetterSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/letters/download", nil)

	handler.DownloadByToken(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLetterHandlerDownloadByToken(t *testing.T) {
	svc := &fakeLetterSrv{
		request: &models.LetterRequest{ID: "lr1", StudentID: "s1"},
		file:    tempPDF(t),
	}
	handler := NewLetterHandler(svc)

	rec := httptest.NewRecorder()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/letters/download?token=abc.def.ghi.jkl", nil)

	handler.DownloadByToken(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}
