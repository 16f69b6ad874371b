package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S3lorm/internship-robot-sub000/internal/dto"
	"github.com/S3lorm/internship-robot-sub000/internal/middleware"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
)

type responseEnvelope struct {
	Data map[string]interface{} `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}

type fakeApplicationSrv struct {
	application *models.Application
	results     []models.BulkActionResult
	err         error
	lastStudent string
	lastStatus  dto.UpdateApplicationStatusRequest
}

func (f *fakeApplicationSrv) Apply(_ context.Context, studentID string, req dto.ApplyRequest) (*models.Application, error) {
	f.lastStudent = studentID
	return f.application, f.err
}

func (f *fakeApplicationSrv) Get(context.Context, string, string, bool) (*models.Application, error) {
	return f.application, f.err
}

func (f *fakeApplicationSrv) List(context.Context, models.ApplicationFilter) ([]models.Application, models.Pagination, error) {
	if f.err != nil {
		return nil, models.Pagination{}, f.err
	}
	return []models.Application{*f.application}, models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (f *fakeApplicationSrv) UpdateStatus(_ context.Context, id, reviewerID string, req dto.UpdateApplicationStatusRequest) (*models.Application, error) {
	f.lastStatus = req
	return f.application, f.err
}

func (f *fakeApplicationSrv) BulkUpdateStatus(context.Context, string, dto.BulkActionRequest) ([]models.BulkActionResult, error) {
	return f.results, f.err
}

func studentContext(rec *httptest.ResponseRecorder, method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(rec)
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "s1", Role: models.RoleStudent})
	return c, rec
}

func TestApplicationHandlerApplyCreated(t *testing.T) {
	svc := &fakeApplicationSrv{application: &models.Application{ID: "a1", StudentID: "s1", Status: models.ApplicationStatusPending}}
	handler := NewApplicationHandler(svc)

	c, rec := studentContext(httptest.NewRecorder(), http.MethodPost, "/applications", `{"internshipId":"i1"}`)
	handler.Apply(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "s1", svc.lastStudent)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "a1", envelope.Data["id"])
}

func TestApplicationHandlerApplyConflict(t *testing.T) {
	svc := &fakeApplicationSrv{err: appErrors.Clone(appErrors.ErrConflict, "application already submitted for this internship")}
	handler := NewApplicationHandler(svc)

	c, rec := studentContext(httptest.NewRecorder(), http.MethodPost, "/applications", `{"internshipId":"i1"}`)
	handler.Apply(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestApplicationHandlerApplyRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewApplicationHandler(&fakeApplicationSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/applications", strings.NewReader(`{"internshipId":"i1"}`))

	handler.Apply(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApplicationHandlerUpdateStatusBindsPayload(t *testing.T) {
	svc := &fakeApplicationSrv{application: &models.Application{ID: "a1", Status: models.ApplicationStatusApproved}}
	handler := NewApplicationHandler(svc)

	c, rec := studentContext(httptest.NewRecorder(), http.MethodPatch, "/applications/a1/status", `{"status":"approved","feedback":"nice"}`)
	c.Params = gin.Params{{Key: "id", Value: "a1"}}
	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ApplicationStatusApproved, svc.lastStatus.Status)
	assert.Equal(t, "nice", svc.lastStatus.Feedback)
}

func TestApplicationHandlerUpdateStatusRejectsBadJSON(t *testing.T) {
	handler := NewApplicationHandler(&fakeApplicationSrv{})

	c, rec := studentContext(httptest.NewRecorder(), http.MethodPatch, "/applications/a1/status", `{`)
	c.Params = gin.Params{{Key: "id", Value: "a1"}}
	handler.UpdateStatus(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApplicationHandlerBulkStatus(t *testing.T) {
	svc := &fakeApplicationSrv{results: []models.BulkActionResult{
		{ID: "a1", OK: true},
		{ID: "a2", OK: false, Error: "application not found"},
	}}
	handler := NewApplicationHandler(svc)

	c, rec := studentContext(httptest.NewRecorder(), http.MethodPost, "/applications/bulk-action", `{"ids":["a1","a2"],"status":"rejected"}`)
	handler.BulkUpdateStatus(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "application not found")
}
