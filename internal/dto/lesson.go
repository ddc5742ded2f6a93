package dto

import "github.com/edulane/tutor-booking-api/internal/models"

// CreateLessonRequest is the booking payload.
type CreateLessonRequest struct {
	StudentID string `json:"student_id" binding:"required,uuid4" validate:"required"`
	TeacherID string `json:"teacher_id" binding:"required,uuid4" validate:"required"`
	Date      string `json:"date" binding:"required" validate:"required"`
	StartTime string `json:"start_time" binding:"required" validate:"required"`
	Duration  int    `json:"duration" binding:"required" validate:"required"`
}

// ListLessonsQuery captures lesson listing filters.
type ListLessonsQuery struct {
	StudentID string `form:"student_id"`
	TeacherID string `form:"teacher_id"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	Status    string `form:"status"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=50"`
}

// Filter converts the query into a repository filter.
func (q ListLessonsQuery) Filter() models.LessonFilter {
	return models.LessonFilter{
		StudentID: q.StudentID,
		TeacherID: q.TeacherID,
		DateFrom:  q.DateFrom,
		DateTo:    q.DateTo,
		Status:    models.LessonStatus(q.Status),
		Page:      q.Page,
		PageSize:  q.PageSize,
	}
}
