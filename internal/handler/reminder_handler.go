package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/S3lorm/internship-robot-sub000/internal/service"
	"github.com/S3lorm/internship-robot-sub000/pkg/response"
)

type reminderService interface {
	Run(ctx context.Context) (*service.ReminderRunResult, error)
}

// ReminderHandler exposes the cron-triggered reminder sweep.
type ReminderHandler struct {
	service reminderService
}

// NewReminderHandler constructs the handler.
func NewReminderHandler(service reminderService) *ReminderHandler {
	return &ReminderHandler{service: service}
}

// Run godoc
// @Summary Run the reminder sweep
// @Description Emits deadline and stale-review reminders. Intended for an external scheduler.
// @Tags Internal
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /internal/reminders/run [post]
func (h *ReminderHandler) Run(c *gin.Context) {
	result, err := h.service.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
