package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/S3lorm/internship-robot-sub000/internal/dto"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
	"github.com/S3lorm/internship-robot-sub000/pkg/response"
)

type applicationService interface {
	Apply(ctx context.Context, studentID string, req dto.ApplyRequest) (*models.Application, error)
	Get(ctx context.Context, id, requesterID string, isAdmin bool) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, models.Pagination, error)
	UpdateStatus(ctx context.Context, id, reviewerID string, req dto.UpdateApplicationStatusRequest) (*models.Application, error)
	BulkUpdateStatus(ctx context.Context, reviewerID string, req dto.BulkActionRequest) ([]models.BulkActionResult, error)
}

// ApplicationHandler exposes REST endpoints for internship applications.
type ApplicationHandler struct {
	service applicationService
}

// NewApplicationHandler constructs the handler.
func NewApplicationHandler(service applicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// Apply godoc
// @Summary Submit an internship application
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.ApplyRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applications [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid application payload"))
		return
	}
	application, err := h.service.Apply(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, application)
}

// ListMine godoc
// @Summary List the caller's applications
// @Tags Applications
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /applications/me [get]
func (h *ApplicationHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := applicationFilterFromQuery(c)
	filter.StudentID = claims.UserID
	applications, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applications, &pagination)
}

// List godoc
// @Summary List applications for review
// @Tags Applications
// @Produce json
// @Param internshipId query string false "Internship filter"
// @Param status query string false "Comma separated statuses"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /applications [get]
func (h *ApplicationHandler) List(c *gin.Context) {
	filter := applicationFilterFromQuery(c)
	filter.InternshipID = strings.TrimSpace(c.Query("internshipId"))
	applications, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, applications, &pagination)
}

// Get godoc
// @Summary Get application detail
// @Tags Applications
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /applications/{id} [get]
func (h *ApplicationHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	application, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role == models.RoleAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, application, nil)
}

// UpdateStatus godoc
// @Summary Review an application
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.UpdateApplicationStatusRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Router /applications/{id}/status [patch]
func (h *ApplicationHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateApplicationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	application, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, application, nil)
}

// BulkUpdateStatus godoc
// @Summary Apply one review decision to many applications
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body dto.BulkActionRequest true "Bulk decision"
// @Success 200 {object} response.Envelope
// @Router /applications/bulk-action [post]
func (h *ApplicationHandler) BulkUpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.BulkActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid bulk payload"))
		return
	}
	results, err := h.service.BulkUpdateStatus(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

func applicationFilterFromQuery(c *gin.Context) models.ApplicationFilter {
	filter := models.ApplicationFilter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 20),
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		parts := strings.Split(rawStatus, ",")
		statuses := make([]models.ApplicationStatus, 0, len(parts))
		for _, part := range parts {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			statuses = append(statuses, models.ApplicationStatus(part))
		}
		filter.Status = statuses
	}
	return filter
}
