package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/edulane/tutor-booking-api/internal/dto"
	"github.com/edulane/tutor-booking-api/internal/models"
	"github.com/edulane/tutor-booking-api/internal/service"
	appErrors "github.com/edulane/tutor-booking-api/pkg/errors"
	"github.com/edulane/tutor-booking-api/pkg/response"
)

// StudentHandler exposes student roster and subscription endpoints.
type StudentHandler struct {
	students      *service.StudentService
	subscriptions *service.SubscriptionService
	ledger        *service.LedgerService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService, subscriptions *service.SubscriptionService, ledger *service.LedgerService) *StudentHandler {
	return &StudentHandler{students: students, subscriptions: subscriptions, ledger: ledger}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name, email or id number"
// @Param level query string false "Filter by level"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	var filter models.StudentFilter
	filter.Search = c.Query("search")
	filter.Level = models.Level(c.Query("level"))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort_by")
	filter.SortOrder = c.Query("sort_order")

	students, total, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Get a student with their current subscription
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	detail, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Register a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update a student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.students.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// ValidateBooking godoc
// @Summary Check whether a student's subscription could pay for a lesson
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Param date query string false "As-of date (YYYY-MM-DD), defaults to today"
// @Param duration query int true "Duration in minutes (20 or 40)"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/booking-validation [get]
func (h *StudentHandler) ValidateBooking(c *gin.Context) {
	var query dto.BookingValidationQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	asOf := query.Date
	if asOf == "" {
		asOf = time.Now().Format("2006-01-02")
	}
	_, err := h.ledger.ValidateBooking(c.Request.Context(), c.Param("id"), asOf, query.Duration)
	if err != nil {
		// Subscription verdicts are a normal answer here, not a failure.
		if verdict := appErrors.FromError(err); verdict.Status == http.StatusUnprocessableEntity {
			response.JSON(c, http.StatusOK, dto.BookingValidationResponse{
				Valid:   false,
				Code:    verdict.Code,
				Message: verdict.Message,
			}, nil)
			return
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.BookingValidationResponse{Valid: true}, nil)
}

// Balance godoc
// @Summary Get a student's subscription balance
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/balance [get]
func (h *StudentHandler) Balance(c *gin.Context) {
	summary, err := h.subscriptions.Balance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// AssignSubscription godoc
// @Summary Assign a package to a student
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.CreateSubscriptionRequest true "Subscription payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/subscriptions [post]
func (h *StudentHandler) AssignSubscription(c *gin.Context) {
	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	sub, err := h.subscriptions.Assign(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sub)
}

// SubscriptionHistory godoc
// @Summary List a student's archived subscriptions
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/subscriptions/history [get]
func (h *StudentHandler) SubscriptionHistory(c *gin.Context) {
	subs, err := h.subscriptions.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs, nil)
}
