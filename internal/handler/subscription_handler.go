package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edulane/tutor-booking-api/internal/dto"
	"github.com/edulane/tutor-booking-api/internal/models"
	"github.com/edulane/tutor-booking-api/internal/service"
	appErrors "github.com/edulane/tutor-booking-api/pkg/errors"
	"github.com/edulane/tutor-booking-api/pkg/response"
)

// SubscriptionHandler exposes operator actions addressed by subscription id.
type SubscriptionHandler struct {
	subscriptions *service.SubscriptionService
}

// NewSubscriptionHandler constructs SubscriptionHandler.
func NewSubscriptionHandler(subscriptions *service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions}
}

// SetStatus godoc
// @Summary Toggle a subscription's status
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param payload body dto.UpdateSubscriptionStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /subscriptions/{id}/status [put]
func (h *SubscriptionHandler) SetStatus(c *gin.Context) {
	var req dto.UpdateSubscriptionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sub, err := h.subscriptions.SetStatus(c.Request.Context(), c.Param("id"), models.SubscriptionStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub, nil)
}
