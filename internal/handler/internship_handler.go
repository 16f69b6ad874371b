package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/S3lorm/internship-robot-sub000/internal/dto"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
	"github.com/S3lorm/internship-robot-sub000/pkg/response"
)

type internshipService interface {
	Create(ctx context.Context, adminID string, req dto.CreateInternshipRequest) (*models.Internship, error)
	Get(ctx context.Context, id string) (*models.Internship, error)
	List(ctx context.Context, filter models.InternshipFilter) ([]models.Internship, models.Pagination, error)
	Update(ctx context.Context, id string, req dto.UpdateInternshipRequest) (*models.Internship, error)
	Delete(ctx context.Context, id string) error
}

// InternshipHandler exposes REST endpoints for internship postings.
type InternshipHandler struct {
	service internshipService
}

// NewInternshipHandler constructs the handler.
func NewInternshipHandler(service internshipService) *InternshipHandler {
	return &InternshipHandler{service: service}
}

// Create godoc
// @Summary Post a new internship
// @Tags Internships
// @Accept json
// @Produce json
// @Param payload body dto.CreateInternshipRequest true "Internship payload"
// @Success 201 {object} response.Envelope
// @Router /internships [post]
func (h *InternshipHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateInternshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid internship payload"))
		return
	}
	internship, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, internship)
}

// List godoc
// @Summary List internship postings
// @Tags Internships
// @Produce json
// @Param search query string false "Title or company search"
// @Param location query string false "Location filter"
// @Param open query bool false "Only open postings"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /internships [get]
func (h *InternshipHandler) List(c *gin.Context) {
	filter := models.InternshipFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Location: strings.TrimSpace(c.Query("location")),
		OpenOnly: c.Query("open") == "true",
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 20),
	}
	internships, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, internships, &pagination)
}

// Get godoc
// @Summary Get internship detail
// @Tags Internships
// @Produce json
// @Param id path string true "Internship ID"
// @Success 200 {object} response.Envelope
// @Router /internships/{id} [get]
func (h *InternshipHandler) Get(c *gin.Context) {
	internship, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, internship, nil)
}

// Update godoc
// @Summary Update an internship posting
// @Tags Internships
// @Accept json
// @Produce json
// @Param id path string true "Internship ID"
// @Param payload body dto.UpdateInternshipRequest true "Internship payload"
// @Success 200 {object} response.Envelope
// @Router /internships/{id} [put]
func (h *InternshipHandler) Update(c *gin.Context) {
	var req dto.UpdateInternshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid internship payload"))
		return
	}
	internship, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, internship, nil)
}

// Delete godoc
// @Summary Delete an internship posting
// @Tags Internships
// @Param id path string true "Internship ID"
// @Success 204 {object} response.Envelope
// @Router /internships/{id} [delete]
func (h *InternshipHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
