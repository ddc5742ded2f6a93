package models

import "time"

// LessonStatus tracks the one-way lesson lifecycle:
// Scheduled -> Cancelled or Scheduled -> Completed, both terminal.
type LessonStatus string

const (
	LessonScheduled LessonStatus = "Scheduled"
	LessonCompleted LessonStatus = "Completed"
	LessonCancelled LessonStatus = "Cancelled"
)

// Lesson is a booked slot. Student and teacher ids are weak references; the
// level is captured at booking time and never re-derived from the student.
type Lesson struct {
	ID        string       `db:"id" json:"id"`
	StudentID string       `db:"student_id" json:"student_id"`
	TeacherID string       `db:"teacher_id" json:"teacher_id"`
	Date      string       `db:"lesson_date" json:"date"`
	StartTime string       `db:"start_time" json:"start_time"`
	Duration  int          `db:"duration" json:"duration"`
	Status    LessonStatus `db:"status" json:"status"`
	Level     Level        `db:"level" json:"level"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// LessonFilter describes query params for listing lessons.
type LessonFilter struct {
	StudentID string
	TeacherID string
	DateFrom  string
	DateTo    string
	Status    LessonStatus
	Page      int
	PageSize  int
}

// CancellationResult reports the outcome of cancelling a lesson, including
// whether the notice period earned a balance refund.
type CancellationResult struct {
	Lesson           Lesson  `json:"lesson"`
	Refunded         bool    `json:"refunded"`
	RefundedUnits    int     `json:"refunded_units"`
	HoursUntilLesson float64 `json:"hours_until_lesson"`
}
