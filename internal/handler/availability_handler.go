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

// AvailabilityHandler exposes slot availability endpoints.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// Teachers godoc
// @Summary List teachers available for a slot
// @Tags Availability
// @Produce json
// @Param date query string true "ISO date (YYYY-MM-DD)"
// @Param time query string true "Start time (HH:MM)"
// @Param duration query int true "Duration in minutes (20 or 40)"
// @Param level query string false "Student level filter"
// @Success 200 {object} response.Envelope
// @Router /availability/teachers [get]
func (h *AvailabilityHandler) Teachers(c *gin.Context) {
	var query dto.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	teachers, err := h.availability.TeachersForSlot(c.Request.Context(), service.SlotQuery{
		Date:     query.Date,
		Time:     query.Time,
		Duration: query.Duration,
		Level:    models.Level(query.Level),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, teachers, nil)
}

// Students godoc
// @Summary List students free to take a slot
// @Tags Availability
// @Produce json
// @Param date query string true "ISO date (YYYY-MM-DD)"
// @Param time query string true "Start time (HH:MM)"
// @Param duration query int true "Duration in minutes (20 or 40)"
// @Success 200 {object} response.Envelope
// @Router /availability/students [get]
func (h *AvailabilityHandler) Students(c *gin.Context) {
	var query dto.AvailabilityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	students, err := h.availability.StudentsForSlot(c.Request.Context(), service.SlotQuery{
		Date:     query.Date,
		Time:     query.Time,
		Duration: query.Duration,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}
