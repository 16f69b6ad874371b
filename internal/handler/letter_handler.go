package handler

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/S3lorm/internship-robot-sub000/internal/dto"
	"github.com/S3lorm/internship-robot-sub000/internal/models"
	"github.com/S3lorm/internship-robot-sub000/internal/service"
	appErrors "github.com/S3lorm/internship-robot-sub000/pkg/errors"
	"github.com/S3lorm/internship-robot-sub000/pkg/response"
)

type letterService interface {
	CreateRequest(ctx context.Context, studentID string, req dto.CreateLetterRequest) (*models.LetterRequest, error)
	Get(ctx context.Context, id, requesterID string, isAdmin bool) (*models.LetterRequest, error)
	List(ctx context.Context, filter models.LetterRequestFilter) ([]models.LetterRequest, models.Pagination, error)
	UpdateRequestStatus(ctx context.Context, id, reviewerID string, req dto.UpdateLetterStatusRequest) (*models.LetterRequest, error)
	Download(ctx context.Context, id string, isAdmin bool, meta service.DownloadMeta) (*os.File, *models.LetterRequest, error)
	DownloadByToken(ctx context.Context, token string, meta service.DownloadMeta) (*os.File, *models.LetterRequest, error)
}

// LetterHandler exposes REST endpoints for recommendation letter requests.
type LetterHandler struct {
	service letterService
}

// NewLetterHandler constructs the handler.
func NewLetterHandler(service letterService) *LetterHandler {
	return &LetterHandler{service: service}
}

// Create godoc
// @Summary Request a recommendation letter
// @Tags Letters
// @Accept json
// @Produce json
// @Param payload body dto.CreateLetterRequest true "Letter request payload"
// @Success 201 {object} response.Envelope
// @Router /letters/requests [post]
func (h *LetterHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CreateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid letter request payload"))
		return
	}
	request, err := h.service.CreateRequest(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// ListMine godoc
// @Summary List the caller's letter requests
// @Tags Letters
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /letters/requests/me [get]
func (h *LetterHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	filter := letterFilterFromQuery(c)
	filter.StudentID = claims.UserID
	requests, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, &pagination)
}

// List godoc
// @Summary List letter requests for review
// @Tags Letters
// @Produce json
// @Param status query string false "Comma separated statuses"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /letters/requests [get]
func (h *LetterHandler) List(c *gin.Context) {
	requests, pagination, err := h.service.List(c.Request.Context(), letterFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, &pagination)
}

// Get godoc
// @Summary Get letter request detail
// @Tags Letters
// @Produce json
// @Param id path string true "Letter request ID"
// @Success 200 {object} response.Envelope
// @Router /letters/requests/{id} [get]
func (h *LetterHandler) Get(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	request, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role == models.RoleAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// UpdateStatus godoc
// @Summary Review a letter request
// @Tags Letters
// @Accept json
// @Produce json
// @Param id path string true "Letter request ID"
// @Param payload body dto.UpdateLetterStatusRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Router /letters/requests/{id}/status [patch]
func (h *LetterHandler) UpdateStatus(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.UpdateLetterStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	request, err := h.service.UpdateRequestStatus(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Download godoc
// @Summary Download the generated letter document
// @Tags Letters
// @Produce application/pdf
// @Param id path string true "Letter request ID"
// @Success 200 {file} binary
// @Router /letters/requests/{id}/download [get]
func (h *LetterHandler) Download(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	file, request, err := h.service.Download(c.Request.Context(), c.Param("id"), claims.Role == models.RoleAdmin, service.DownloadMeta{
		UserID:    claims.UserID,
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	streamLetter(c, file, request)
}

// DownloadByToken godoc
// @Summary Download a letter via a signed link
// @Tags Letters
// @Produce application/pdf
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Router /letters/download [get]
func (h *LetterHandler) DownloadByToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "token required"))
		return
	}
	file, request, err := h.service.DownloadByToken(c.Request.Context(), token, service.DownloadMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	streamLetter(c, file, request)
}

func streamLetter(c *gin.Context, file *os.File, request *models.LetterRequest) {
	defer file.Close() //nolint:errcheck
	filename := fmt.Sprintf("recommendation-letter-%s.pdf", request.ID)
	if request.ReferenceNumber != nil {
		filename = fmt.Sprintf("%s.pdf", *request.ReferenceNumber)
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Header("Content-Type", "application/pdf")
	c.File(file.Name())
}

func letterFilterFromQuery(c *gin.Context) models.LetterRequestFilter {
	filter := models.LetterRequestFilter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "pageSize", 20),
	}
	if rawStatus := c.Query("status"); rawStatus != "" {
		parts := strings.Split(rawStatus, ",")
		statuses := make([]models.LetterRequestStatus, 0, len(parts))
		for _, part := range parts {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			statuses = append(statuses, models.LetterRequestStatus(part))
		}
		filter.Status = statuses
	}
	return filter
}
