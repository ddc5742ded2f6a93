package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edulane/tutor-booking-api/internal/models"
	"github.com/edulane/tutor-booking-api/internal/timeslot"
	appErrors "github.com/edulane/tutor-booking-api/pkg/errors"
)

type availabilityTeacherRepo interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
}

type availabilityStudentRepo interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type availabilityLessonRepo interface {
	ListOnDate(ctx context.Context, date string) ([]models.Lesson, error)
}

type availabilitySubscriptionRepo interface {
	ListCurrent(ctx context.Context) ([]models.Subscription, error)
}

// SlotQuery identifies a candidate (date, start time, duration) triple.
type SlotQuery struct {
	Date     string
	Time     string
	Duration int
	Level    models.Level
}

// AvailabilityService answers which teachers and students qualify for a slot.
// All evaluation is read-only and runs against the full roster and lesson set
// so overlap checks are always computed from ground truth.
type AvailabilityService struct {
	teachers      availabilityTeacherRepo
	students      availabilityStudentRepo
	subscriptions availabilitySubscriptionRepo
	lessons       availabilityLessonRepo
	cache         *CacheService
	cacheTTL      time.Duration
	logger        *zap.Logger
}

// NewAvailabilityService builds the service. The cache may be nil.
func NewAvailabilityService(
	teachers availabilityTeacherRepo,
	students availabilityStudentRepo,
	subscriptions availabilitySubscriptionRepo,
	lessons availabilityLessonRepo,
	cache *CacheService,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *AvailabilityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AvailabilityService{
		teachers:      teachers,
		students:      students,
		subscriptions: subscriptions,
		lessons:       lessons,
		cache:         cache,
		cacheTTL:      cacheTTL,
		logger:        logger,
	}
}

// TeachersForSlot returns the teachers bookable for the slot, optionally
// pre-filtered by the student's proficiency level.
func (s *AvailabilityService) TeachersForSlot(ctx context.Context, query SlotQuery) ([]models.Teacher, error) {
	if err := validateSlotQuery(query); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("availability:teachers:%s:%s:%d:%s", query.Date, query.Time, query.Duration, query.Level)
	var cached []models.Teacher
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher roster")
	}
	lessons, err := s.lessons.ListOnDate(ctx, query.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}

	available, err := AvailableTeachersForSlot(query.Date, query.Time, query.Duration, teachers, lessons, query.Level)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, appErrors.ErrInvalidInput.Status, "invalid slot date")
	}

	_ = s.cache.Set(ctx, cacheKey, available, s.cacheTTL)
	return available, nil
}

// StudentsForSlot returns the students free to take the slot. Only the
// subscription status gate applies here; date window and balance are the
// booking validator's concern.
func (s *AvailabilityService) StudentsForSlot(ctx context.Context, query SlotQuery) ([]models.Student, error) {
	if err := validateSlotQuery(query); err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("availability:students:%s:%s:%d", query.Date, query.Time, query.Duration)
	var cached []models.Student
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return cached, nil
	}

	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student roster")
	}
	subscriptions, err := s.subscriptions.ListCurrent(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscriptions")
	}
	lessons, err := s.lessons.ListOnDate(ctx, query.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}

	details := attachSubscriptions(students, subscriptions)
	availableDetails := AvailableStudentsForSlot(query.Date, query.Time, query.Duration, details, lessons)

	available := make([]models.Student, 0, len(availableDetails))
	for _, d := range availableDetails {
		available = append(available, d.Student)
	}

	_ = s.cache.Set(ctx, cacheKey, available, s.cacheTTL)
	return available, nil
}

// AvailableTeachersForSlot filters the roster down to teachers who can take
// the slot: a working-hour block covers both the start and the end of the
// lesson, and no non-cancelled lesson of theirs on that date overlaps it.
// Output preserves roster order.
func AvailableTeachersForSlot(date, start string, duration int, teachers []models.Teacher, lessons []models.Lesson, studentLevel models.Level) ([]models.Teacher, error) {
	dayName, err := timeslot.DayName(date)
	if err != nil {
		return nil, err
	}

	end := timeslot.AddMinutes(start, duration)
	available := make([]models.Teacher, 0, len(teachers))
	for _, teacher := range teachers {
		if studentLevel != "" && !teacher.Teaches(studentLevel) {
			continue
		}
		block := teacher.BlockFor(dayName)
		if block == nil {
			continue
		}
		if !timeslot.InRange(start, block.StartTime, block.EndTime) {
			continue
		}
		if timeslot.After(end, block.EndTime) {
			continue
		}
		if hasConflict(lessons, date, start, duration, func(l models.Lesson) bool { return l.TeacherID == teacher.ID }) {
			continue
		}
		available = append(available, teacher)
	}
	return available, nil
}

// AvailableStudentsForSlot filters the roster down to students with an Active
// current subscription and no colliding non-cancelled lesson on that date.
// Level and teacher compatibility are the caller's responsibility.
func AvailableStudentsForSlot(date, start string, duration int, students []models.StudentDetail, lessons []models.Lesson) []models.StudentDetail {
	available := make([]models.StudentDetail, 0, len(students))
	for _, student := range students {
		if student.CurrentSubscription == nil || student.CurrentSubscription.Status != models.SubscriptionActive {
			continue
		}
		sid := student.ID
		if hasConflict(lessons, date, start, duration, func(l models.Lesson) bool { return l.StudentID == sid }) {
			continue
		}
		available = append(available, student)
	}
	return available
}

// hasConflict scans the full lesson set, keeping only the entity's own
// non-cancelled lessons on the date, and tests interval overlap.
func hasConflict(lessons []models.Lesson, date, start string, duration int, owns func(models.Lesson) bool) bool {
	for _, lesson := range lessons {
		if !owns(lesson) {
			continue
		}
		if lesson.Date != date || lesson.Status == models.LessonCancelled {
			continue
		}
		if timeslot.Overlaps(start, duration, lesson.StartTime, lesson.Duration) {
			return true
		}
	}
	return false
}

func attachSubscriptions(students []models.Student, subscriptions []models.Subscription) []models.StudentDetail {
	byStudent := make(map[string]*models.Subscription, len(subscriptions))
	for i := range subscriptions {
		byStudent[subscriptions[i].StudentID] = &subscriptions[i]
	}
	details := make([]models.StudentDetail, 0, len(students))
	for _, student := range students {
		details = append(details, models.StudentDetail{
			Student:             student,
			CurrentSubscription: byStudent[student.ID],
		})
	}
	return details
}

func validateSlotQuery(query SlotQuery) error {
	if !timeslot.IsValidClock(query.Time) {
		return appErrors.Clone(appErrors.ErrInvalidInput, "start time must be a zero-padded 24h HH:MM value")
	}
	if !timeslot.IsValidDuration(query.Duration) {
		return appErrors.Clone(appErrors.ErrInvalidInput, "duration must be 20 or 40 minutes")
	}
	if _, err := timeslot.DayName(query.Date); err != nil {
		return appErrors.Clone(appErrors.ErrInvalidInput, "date must be an ISO YYYY-MM-DD value")
	}
	if query.Level != "" && !query.Level.IsValid() {
		return appErrors.Clone(appErrors.ErrInvalidInput, "unknown proficiency level")
	}
	return nil
}
