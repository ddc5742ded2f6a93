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

// LessonHandler exposes booking, cancellation and lesson listing endpoints.
type LessonHandler struct {
	bookings *service.BookingService
}

// NewLessonHandler constructs LessonHandler.
func NewLessonHandler(bookings *service.BookingService) *LessonHandler {
	return &LessonHandler{bookings: bookings}
}

// List godoc
// @Summary List lessons
// @Tags Lessons
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param teacher_id query string false "Filter by teacher"
// @Param date_from query string false "Start of date range"
// @Param date_to query string false "End of date range"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	var query dto.ListLessonsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	lessons, total, err := h.bookings.ListLessons(c.Request.Context(), query.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, &models.Pagination{
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get a lesson
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id} [get]
func (h *LessonHandler) Get(c *gin.Context) {
	lesson, err := h.bookings.GetLesson(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lesson, nil)
}

// Create godoc
// @Summary Book a lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body dto.CreateLessonRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Router /lessons [post]
func (h *LessonHandler) Create(c *gin.Context) {
	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	lesson, err := h.bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// Cancel godoc
// @Summary Cancel a lesson
// @Tags Lessons
// @Produce json
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /lessons/{id}/cancel [post]
func (h *LessonHandler) Cancel(c *gin.Context) {
	result, err := h.bookings.CancelLesson(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
