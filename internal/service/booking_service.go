package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edulane/tutor-booking-api/internal/dto"
	"github.com/edulane/tutor-booking-api/internal/models"
	"github.com/edulane/tutor-booking-api/internal/timeslot"
	appErrors "github.com/edulane/tutor-booking-api/pkg/errors"
)

const availabilityCachePattern = "availability:*"

type bookingLessonRepo interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error)
	ListOnDate(ctx context.Context, date string) ([]models.Lesson, error)
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	UpdateStatus(ctx context.Context, id string, status models.LessonStatus) error
}

type bookingTeacherRepo interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type bookingStudentRepo interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// BookingService orchestrates lesson creation and cancellation. All writes
// are serialised through a single mutex so the overlap and balance checks
// cannot race a concurrent booking.
type BookingService struct {
	lessons  bookingLessonRepo
	teachers bookingTeacherRepo
	students bookingStudentRepo
	ledger   *LedgerService
	cache    *CacheService
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger

	refundNoticeHours float64
	loc               *time.Location
	now               func() time.Time

	mu sync.Mutex
}

// NewBookingService constructs a BookingService. The cache and metrics may be
// nil; refundNoticeHours defaults to 24 when non-positive.
func NewBookingService(
	lessons bookingLessonRepo,
	teachers bookingTeacherRepo,
	students bookingStudentRepo,
	ledger *LedgerService,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	refundNoticeHours float64,
	loc *time.Location,
	logger *zap.Logger,
) *BookingService {
	if refundNoticeHours <= 0 {
		refundNoticeHours = 24
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BookingService{
		lessons:           lessons,
		teachers:          teachers,
		students:          students,
		ledger:            ledger,
		cache:             cache,
		metrics:           metrics,
		validate:          validate,
		logger:            logger,
		refundNoticeHours: refundNoticeHours,
		loc:               loc,
		now:               time.Now,
	}
}

// CreateBooking books a lesson after re-running every gate inside the write
// lock: slot shape, teacher availability, student double-booking, then the
// subscription ledger. The lesson level is captured from the student at
// booking time.
func (s *BookingService) CreateBooking(ctx context.Context, req dto.CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validate.Struct(req); err != nil {
		s.metrics.RecordBookingOperation("book", "invalid")
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	if err := validateSlotShape(req.Date, req.StartTime, req.Duration); err != nil {
		s.metrics.RecordBookingOperation("book", "invalid")
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordBookingOperation("book", "invalid")
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordBookingOperation("book", "invalid")
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	lessons, err := s.lessons.ListOnDate(ctx, req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}

	if err := s.checkTeacherAvailable(teacher, student.Level, req, lessons); err != nil {
		s.metrics.RecordBookingOperation("book", "rejected")
		return nil, err
	}
	if hasConflict(lessons, req.Date, req.StartTime, req.Duration, func(l models.Lesson) bool { return l.StudentID == student.ID }) {
		s.metrics.RecordBookingOperation("book", "rejected")
		return nil, appErrors.ErrStudentDoubleBooked
	}

	// The subscription window is checked against the booking moment, not the
	// lesson date.
	today := s.now().In(s.loc).Format("2006-01-02")
	sub, err := s.ledger.ValidateBooking(ctx, student.ID, today, req.Duration)
	if err != nil {
		s.metrics.RecordBookingOperation("book", "rejected")
		return nil, err
	}

	lesson := &models.Lesson{
		StudentID: student.ID,
		TeacherID: teacher.ID,
		Date:      req.Date,
		StartTime: req.StartTime,
		Duration:  req.Duration,
		Status:    models.LessonScheduled,
		Level:     student.Level,
	}
	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
	}
	if err := s.ledger.ApplyBookingCost(ctx, sub.ID, req.Duration); err != nil {
		return nil, err
	}

	_ = s.cache.Invalidate(ctx, availabilityCachePattern)
	s.metrics.RecordBookingOperation("book", "success")
	s.logger.Info("lesson booked",
		zap.String("lesson_id", lesson.ID),
		zap.String("student_id", student.ID),
		zap.String("teacher_id", teacher.ID),
		zap.String("date", req.Date),
		zap.String("start_time", req.StartTime),
		zap.Int("duration", req.Duration))
	return lesson, nil
}

// CancelLesson transitions a Scheduled lesson to Cancelled. The lesson cost
// is credited back only when the notice period strictly exceeds the refund
// window; an exactly-on-the-boundary cancellation forfeits the units.
func (s *BookingService) CancelLesson(ctx context.Context, lessonID string) (*models.CancellationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lesson, err := s.lessons.FindByID(ctx, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	if lesson.Status != models.LessonScheduled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "only scheduled lessons can be cancelled")
	}

	start, err := timeslot.Instant(lesson.Date, lesson.StartTime, s.loc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve lesson start")
	}
	hoursUntil := start.Sub(s.now()).Hours()

	if err := s.lessons.UpdateStatus(ctx, lesson.ID, models.LessonCancelled); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel lesson")
	}
	lesson.Status = models.LessonCancelled

	result := &models.CancellationResult{
		Lesson:           *lesson,
		HoursUntilLesson: hoursUntil,
	}
	if hoursUntil > s.refundNoticeHours {
		sub, err := s.ledger.CurrentSubscription(ctx, lesson.StudentID)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			units, err := s.ledger.ApplyCancellationRefund(ctx, sub.ID, lesson.Duration)
			if err != nil {
				return nil, err
			}
			result.Refunded = true
			result.RefundedUnits = units
		}
	}

	_ = s.cache.Invalidate(ctx, availabilityCachePattern)
	s.metrics.RecordBookingOperation("cancel", "success")
	s.logger.Info("lesson cancelled",
		zap.String("lesson_id", lesson.ID),
		zap.Bool("refunded", result.Refunded),
		zap.Float64("hours_until_lesson", hoursUntil))
	return result, nil
}

// ListLessons returns lessons matching the filter with the total count.
func (s *BookingService) ListLessons(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	lessons, total, err := s.lessons.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	return lessons, total, nil
}

// GetLesson fetches one lesson.
func (s *BookingService) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	return lesson, nil
}

func (s *BookingService) checkTeacherAvailable(teacher *models.Teacher, level models.Level, req dto.CreateLessonRequest, lessons []models.Lesson) error {
	if !teacher.Active {
		return appErrors.Clone(appErrors.ErrTeacherUnavailable, "teacher is no longer active")
	}
	if !teacher.Teaches(level) {
		return appErrors.Clone(appErrors.ErrTeacherUnavailable, "teacher does not teach the student's level")
	}
	dayName, err := timeslot.DayName(req.Date)
	if err != nil {
		return appErrors.Clone(appErrors.ErrInvalidInput, "date must be an ISO YYYY-MM-DD value")
	}
	block := teacher.BlockFor(dayName)
	if block == nil {
		return appErrors.Clone(appErrors.ErrTeacherUnavailable, "teacher does not work on this day")
	}
	if !timeslot.InRange(req.StartTime, block.StartTime, block.EndTime) {
		return appErrors.Clone(appErrors.ErrTeacherUnavailable, "slot starts outside the teacher's working hours")
	}
	if timeslot.After(timeslot.AddMinutes(req.StartTime, req.Duration), block.EndTime) {
		return appErrors.Clone(appErrors.ErrTeacherUnavailable, "lesson would run past the teacher's working hours")
	}
	if hasConflict(lessons, req.Date, req.StartTime, req.Duration, func(l models.Lesson) bool { return l.TeacherID == teacher.ID }) {
		return appErrors.Clone(appErrors.ErrTeacherUnavailable, "teacher already has a lesson at this time")
	}
	return nil
}

func validateSlotShape(date, start string, duration int) error {
	if !timeslot.IsValidClock(start) {
		return appErrors.Clone(appErrors.ErrInvalidInput, "start time must be a zero-padded 24h HH:MM value")
	}
	if !timeslot.IsValidDuration(duration) {
		return appErrors.Clone(appErrors.ErrInvalidInput, "duration must be 20 or 40 minutes")
	}
	if _, err := timeslot.DayName(date); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidInput, "date must be an ISO YYYY-MM-DD value")
	}
	return nil
}
