package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/S3lorm/internship-robot-sub000/internal/dto"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
	"github.com/S3lorm/internship-robot-sub000/pkg/response"
)

type evaluationService interface {
	Create(ctx context.Context, adminID string, req dto.CreateEvaluationRequest) (*models.Evaluation, error)
	Release(ctx context.Context, id string) (*models.Evaluation, error)
	List(ctx context.Context, filter models.EvaluationFilter) ([]models.Evaluation, models.Pagination, error)
	View(ctx context.Context, id, requesterID string) (*models.Evaluation, error)
	AcknowledgeFeedback(ctx context.Context, id, requesterID string) (*models.Evaluation, error)
}

// EvaluationHandler exposes REST endpoints for student evaluations.
type EvaluationHandler struct {
	service evaluationService
}

// NewEvaluationHandler constructs the handler.
func NewEvaluationHandler(service evaluationService) *EvaluationHandler {
	return &EvaluationHandler{service: service}
}

// Create godoc
// @Summary Register a student evaluation
// @Tags Evaluations
// @Accept json
// @Produce json
// @Param payload body dto.CreateEvaluationRequest true "Evaluation payload"
// @Success 201 {object} response.Envelope
// @Router /evaluations [post]
func (h *EvaluationHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateEvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid evaluation payload"))
		return
	}
	evaluation, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, evaluation)
}

// Release godoc
// @Summary Release an evaluation to its student
// @Tags Evaluations
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} response.Envelope
// @Router /evaluations/{id}/release [post]
func (h *EvaluationHandler) Release(c *gin.Context) {
	evaluation, err := h.service.Release(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluation, nil)
}

// List godoc
// @Summary List evaluations for administration
// @Tags Evaluations
// @Produce json
// @Param studentId query string false "Student filter"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /evaluations [get]
func (h *EvaluationHandler) List(c *gin.Context) {
	filter := models.EvaluationFilter{
		StudentID: c.Query("studentId"),
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "pageSize", 20),
	}
	evaluations, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluations, &pagination)
}

// ListMine godoc
// @Summary List the caller's released evaluations
// @Tags Evaluations
// @Produce json
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /evaluations/me [get]
func (h *EvaluationHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := models.EvaluationFilter{
		StudentID:     claims.UserID,
		AvailableOnly: true,
		Page:          queryInt(c, "page", 1),
		PageSize:      queryInt(c, "pageSize", 20),
	}
	evaluations, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluations, &pagination)
}

// View godoc
// @Summary View an evaluation
// @Description Returns the evaluation and stamps the first view time.
// @Tags Evaluations
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} response.Envelope
// @Router /evaluations/{id}/view [post]
func (h *EvaluationHandler) View(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	evaluation, err := h.service.View(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluation, nil)
}

// Acknowledge godoc
// @Summary Acknowledge evaluation feedback
// @Tags Evaluations
// @Produce json
// @Param id path string true "Evaluation ID"
// @Success 200 {object} response.Envelope
// @Router /evaluations/{id}/acknowledge [post]
func (h *EvaluationHandler) Acknowledge(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	evaluation, err := h.service.AcknowledgeFeedback(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, evaluation, nil)
}
