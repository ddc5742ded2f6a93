package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/edulane/tutor-booking-api/internal/models"
)

const lessonColumns = "id, student_id, teacher_id, lesson_date, start_time, duration, status, level, created_at, updated_at"

// LessonRepository persists booked lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// List returns lessons matching filters along with total count.
func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	base := "FROM lessons WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.DateFrom != "" {
		conditions = append(conditions, fmt.Sprintf("lesson_date >= $%d", len(args)+1))
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		conditions = append(conditions, fmt.Sprintf("lesson_date <= $%d", len(args)+1))
		args = append(args, filter.DateTo)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY lesson_date ASC, start_time ASC LIMIT %d OFFSET %d", lessonColumns, base, size, offset)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lessons: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count lessons: %w", err)
	}

	return lessons, total, nil
}

// ListOnDate returns every lesson on the given date regardless of entity.
// Overlap checks always scan this full ground-truth set and filter by id.
func (r *LessonRepository) ListOnDate(ctx context.Context, date string) ([]models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE lesson_date = $1 ORDER BY start_time ASC", lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, date); err != nil {
		return nil, fmt.Errorf("list lessons on date: %w", err)
	}
	return lessons, nil
}

// ListScheduledThrough returns Scheduled lessons dated on or before the given
// date, for the completion sweep.
func (r *LessonRepository) ListScheduledThrough(ctx context.Context, date string) ([]models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE status = $1 AND lesson_date <= $2 ORDER BY lesson_date ASC, start_time ASC", lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, models.LessonScheduled, date); err != nil {
		return nil, fmt.Errorf("list scheduled lessons: %w", err)
	}
	return lessons, nil
}

// FindByID fetches a lesson by ID.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE id = $1", lessonColumns)
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Create inserts a new lesson row.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now

	const query = `INSERT INTO lessons (id, student_id, teacher_id, lesson_date, start_time, duration, status, level, created_at, updated_at)
		VALUES (:id, :student_id, :teacher_id, :lesson_date, :start_time, :duration, :status, :level, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// UpdateStatus transitions the lesson to a new status.
func (r *LessonRepository) UpdateStatus(ctx context.Context, id string, status models.LessonStatus) error {
	const query = `UPDATE lessons SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update lesson status: %w", err)
	}
	return nil
}

// CompleteLessons marks the given Scheduled lessons as Completed.
func (r *LessonRepository) CompleteLessons(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	const query = `UPDATE lessons SET status = $1, updated_at = $2 WHERE id = ANY($3) AND status = $4`
	res, err := r.db.ExecContext(ctx, query, models.LessonCompleted, time.Now().UTC(), pq.Array(ids), models.LessonScheduled)
	if err != nil {
		return 0, fmt.Errorf("complete lessons: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("complete lessons affected: %w", err)
	}
	return affected, nil
}
