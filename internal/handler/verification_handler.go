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

type verificationService interface {
	Verify(ctx context.Context, req dto.VerifyDocumentRequest) (*models.VerificationResult, error)
}

// VerificationHandler exposes the public document verification endpoint.
type VerificationHandler struct {
	service verificationService
}

// NewVerificationHandler constructs the handler.
func NewVerificationHandler(service verificationService) *VerificationHandler {
	return &VerificationHandler{service: service}
}

// Verify godoc
// @Summary Verify a generated document
// @Description Confirms document authenticity by reference number and verification code.
// @Tags Verification
// @Accept json
// @Produce json
// @Param payload body dto.VerifyDocumentRequest true "Verification payload"
// @Success 200 {object} response.Envelope
// @Router /security/verify-document [post]
func (h *VerificationHandler) Verify(c *gin.Context) {
	var req dto.VerifyDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid verification payload"))
		return
	}
	result, err := h.service.Verify(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
