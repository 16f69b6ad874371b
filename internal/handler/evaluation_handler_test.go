package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/S3lorm/internship-robot-sub000/internal/dto"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
)

type fakeEvaluationSrv struct {
	evaluation *models.Evaluation
	err        error
	viewed     string
	acked      string
}

func (f *fakeEvaluationSrv) Create(context.Context, string, dto.CreateEvaluationRequest) (*models.Evaluation, error) {
	return f.evaluation, f.err
}

func (f *fakeEvaluationSrv) Release(context.Context, string) (*models.Evaluation, error) {
	return f.evaluation, f.err
}

func (f *fakeEvaluationSrv) List(context.Context, models.EvaluationFilter) ([]models.Evaluation, models.Pagination, error) {
	if f.err != nil {
		return nil, models.Pagination{}, f.err
	}
	return []models.Evaluation{*f.evaluation}, models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (f *fakeEvaluationSrv) View(_ context.Context, id, requesterID string) (*models.Evaluation, error) {
	f.viewed = id
	return f.evaluation, f.err
}

func (f *fakeEvaluationSrv) AcknowledgeFeedback(_ context.Context, id, requesterID string) (*models.Evaluation, error) {
	f.acked = id
	return f.evaluation, f.err
}

func TestEvaluationHandlerViewStampsThroughService(t *testing.T) {
	svc := &fakeEvaluationSrv{evaluation: &models.Evaluation{ID: "ev1", StudentID: "s1", IsAvailable: true}}
	handler := NewEvaluationHandler(svc)

	c, rec := studentContext(httptest.NewRecorder(), http.MethodPost, "/evaluations/ev1/view", "")
	c.Params = gin.Params{{Key: "id", Value: "ev1"}}
	handler.View(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ev1", svc.viewed)
}

func TestEvaluationHandlerViewForbidden(t *testing.T) {
	svc := &fakeEvaluationSrv{err: appErrors.Clone(appErrors.ErrForbidden, "evaluation belongs to another student")}
	handler := NewEvaluationHandler(svc)

	c, rec := studentContext(httptest.NewRecorder(), http.MethodPost, "/evaluations/ev1/view", "")
	c.Params = gin.Params{{Key: "id", Value: "ev1"}}
	handler.View(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEvaluationHandlerAcknowledge(t *testing.T) {
	svc := &fakeEvaluationSrv{evaluation: &models.Evaluation{ID: "ev1", StudentID: "s1"}}
	handler := NewEvaluationHandler(svc)

	c, rec := studentContext(httptest.NewRecorder(), http.MethodPost, "/evaluations/ev1/acknowledge", "")
	c.Params = gin.Params{{Key: "id", Value: "ev1"}}
	handler.Acknowledge(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ev1", svc.acked)
}

func TestEvaluationHandlerAcknowledgeWithoutRequirement(t *testing.T) {
	svc := &fakeEvaluationSrv{err: appErrors.Clone(appErrors.ErrValidation, "evaluation does not require acknowledgment")}
	handler := NewEvaluationHandler(svc)

	c, rec := studentContext(httptest.NewRecorder(), http.MethodPost, "/evaluations/ev1/acknowledge", "")
	c.Params = gin.Params{{Key: "id", Value: "ev1"}}
	handler.Acknowledge(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluationHandlerCreateRejectsBadJSON(t *testing.T) {
	handler := NewEvaluationHandler(&fakeEvaluationSrv{})

	c, rec := studentContext(httptest.NewRecorder(), http.MethodPost, "/evaluations", `{`)
	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
