package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edulane/tutor-booking-api/internal/dto"
	"github.com/edulane/tutor-booking-api/internal/models"
	appErrors "github.com/edulane/tutor-booking-api/pkg/errors"
)

type fakeLessonStore struct {
	lessons map[string]models.Lesson
	created *models.Lesson
	status  map[string]models.LessonStatus
}

func (f *fakeLessonStore) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	var out []models.Lesson
	for _, l := range f.lessons {
		out = append(out, l)
	}
	return out, len(out), nil
}

func (f *fakeLessonStore) ListOnDate(ctx context.Context, date string) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, l := range f.lessons {
		if l.Date == date {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLessonStore) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	if l, ok := f.lessons[id]; ok {
		return &l, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeLessonStore) Create(ctx context.Context, lesson *models.Lesson) error {
	if f.lessons == nil {
		f.lessons = make(map[string]models.Lesson)
	}
	if lesson.ID == "" {
		lesson.ID = "new-lesson"
	}
	f.lessons[lesson.ID] = *lesson
	f.created = lesson
	return nil
}

func (f *fakeLessonStore) UpdateStatus(ctx context.Context, id string, status models.LessonStatus) error {
	if f.status == nil {
		f.status = make(map[string]models.LessonStatus)
	}
	f.status[id] = status
	if l, ok := f.lessons[id]; ok {
		l.Status = status
		f.lessons[id] = l
	}
	return nil
}

type fakeTeacherReader struct{ teachers map[string]*models.Teacher }

func (f *fakeTeacherReader) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := f.teachers[id]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

type fakeStudentReader struct{ students map[string]*models.Student }

func (f *fakeStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if s, ok := f.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type bookingFixture struct {
	svc      *BookingService
	lessons  *fakeLessonStore
	subs     *fakeSubscriptionLedger
	teachers *fakeTeacherReader
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	teacher := mondayTeacher("t1", `["Kids","Basic"]`, `[{"day_of_week":"Monday","start_time":"09:00","end_time":"17:00"}]`)
	lessons := &fakeLessonStore{lessons: map[string]models.Lesson{}}
	teachers := &fakeTeacherReader{teachers: map[string]*models.Teacher{"t1": &teacher}}
	students := &fakeStudentReader{students: map[string]*models.Student{
		"s1": {ID: "s1", FullName: "Student One", Level: models.LevelKids},
	}}
	// Open the window before the fixture clock below so bookings pass the
	// as-of check.
	sub := activeGoldSub("s1", 0)
	sub.StartDate = "2023-11-01"
	subs := &fakeSubscriptionLedger{subs: map[string]*models.Subscription{"s1": sub}}
	ledger := NewLedgerService(subs, zap.NewNop())

	svc := NewBookingService(lessons, teachers, students, ledger, nil, nil, validator.New(), 24, time.UTC, zap.NewNop())
	svc.now = func() time.Time {
		// Well before the test lesson dates.
		return time.Date(2023, 12, 1, 12, 0, 0, 0, time.UTC)
	}
	return &bookingFixture{svc: svc, lessons: lessons, subs: subs, teachers: teachers}
}

func validBookingRequest() dto.CreateLessonRequest {
	return dto.CreateLessonRequest{
		StudentID: "s1",
		TeacherID: "t1",
		Date:      mondayDate,
		StartTime: "10:00",
		Duration:  40,
	}
}

func TestBookingServiceCreateBooking(t *testing.T) {
	fx := newBookingFixture(t)

	lesson, err := fx.svc.CreateBooking(context.Background(), validBookingRequest())
	require.NoError(t, err)
	require.NotNil(t, fx.lessons.created)
	assert.Equal(t, models.LessonScheduled, lesson.Status)
	assert.Equal(t, models.LevelKids, lesson.Level)
	assert.Equal(t, 2, fx.subs.applied["sub-s1"])
}

func TestBookingServiceCreateBookingRejectsUnknownEntities(t *testing.T) {
	fx := newBookingFixture(t)

	req := validBookingRequest()
	req.StudentID = "missing"
	_, err := fx.svc.CreateBooking(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

	req = validBookingRequest()
	req.TeacherID = "missing"
	_, err = fx.svc.CreateBooking(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestBookingServiceCreateBookingTeacherGates(t *testing.T) {
	fx := newBookingFixture(t)

	// Outside working hours.
	req := validBookingRequest()
	req.StartTime = "16:30"
	_, err := fx.svc.CreateBooking(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrTeacherUnavailable))

	// Wrong day.
	req = validBookingRequest()
	req.Date = "2024-01-02"
	_, err = fx.svc.CreateBooking(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrTeacherUnavailable))

	// Level mismatch.
	fx.teachers.teachers["t1"].Levels = []byte(`["Business"]`)
	req = validBookingRequest()
	_, err = fx.svc.CreateBooking(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrTeacherUnavailable))
}

func TestBookingServiceCreateBookingConflicts(t *testing.T) {
	fx := newBookingFixture(t)
	fx.lessons.lessons["l1"] = models.Lesson{
		ID: "l1", TeacherID: "t1", StudentID: "s9",
		Date: mondayDate, StartTime: "10:20", Duration: 20, Status: models.LessonScheduled,
	}

	_, err := fx.svc.CreateBooking(context.Background(), validBookingRequest())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrTeacherUnavailable))

	// Same clash on the student side with a different teacher's lesson.
	fx = newBookingFixture(t)
	fx.lessons.lessons["l1"] = models.Lesson{
		ID: "l1", TeacherID: "t9", StudentID: "s1",
		Date: mondayDate, StartTime: "10:20", Duration: 20, Status: models.LessonScheduled,
	}
	_, err = fx.svc.CreateBooking(context.Background(), validBookingRequest())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStudentDoubleBooked))
}

func TestBookingServiceCreateBookingLedgerGate(t *testing.T) {
	fx := newBookingFixture(t)
	fx.subs.subs["s1"].LessonsUsed = 25

	_, err := fx.svc.CreateBooking(context.Background(), validBookingRequest())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInsufficientBalance))
	assert.Nil(t, fx.lessons.created)
}

func TestBookingServiceCreateBookingWindowChecksBookingMoment(t *testing.T) {
	fx := newBookingFixture(t)

	// The lesson date lands inside the window, but the booking is placed
	// before the window opens.
	fx.subs.subs["s1"].StartDate = mondayDate
	_, err := fx.svc.CreateBooking(context.Background(), validBookingRequest())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSubscriptionExpired))
	assert.Nil(t, fx.lessons.created)

	// Same when the window has already closed.
	fx.subs.subs["s1"].StartDate = "2023-01-01"
	fx.subs.subs["s1"].EndDate = "2023-11-30"
	_, err = fx.svc.CreateBooking(context.Background(), validBookingRequest())
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSubscriptionExpired))
}

func TestBookingServiceCreateBookingInvalidSlot(t *testing.T) {
	fx := newBookingFixture(t)

	req := validBookingRequest()
	req.Duration = 30
	_, err := fx.svc.CreateBooking(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidInput))

	req = validBookingRequest()
	req.StartTime = "10:5"
	_, err = fx.svc.CreateBooking(context.Background(), req)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidInput))
}

func TestBookingServiceCancelWithAmpleNoticeRefunds(t *testing.T) {
	fx := newBookingFixture(t)

	lesson, err := fx.svc.CreateBooking(context.Background(), validBookingRequest())
	require.NoError(t, err)
	require.Equal(t, 2, fx.subs.subs["s1"].LessonsUsed)

	// More than 24 hours before the lesson.
	fx.svc.now = func() time.Time { return time.Date(2023, 12, 30, 10, 0, 0, 0, time.UTC) }

	result, err := fx.svc.CancelLesson(context.Background(), lesson.ID)
	require.NoError(t, err)
	assert.True(t, result.Refunded)
	assert.Equal(t, 2, result.RefundedUnits)
	assert.Equal(t, models.LessonCancelled, result.Lesson.Status)
	assert.Equal(t, 0, fx.subs.subs["s1"].LessonsUsed)
}

func TestBookingServiceCancelLateForfeitsUnits(t *testing.T) {
	fx := newBookingFixture(t)

	lesson, err := fx.svc.CreateBooking(context.Background(), validBookingRequest())
	require.NoError(t, err)

	// Under 24 hours of notice.
	fx.svc.now = func() time.Time { return time.Date(2023, 12, 31, 12, 0, 0, 0, time.UTC) }

	result, err := fx.svc.CancelLesson(context.Background(), lesson.ID)
	require.NoError(t, err)
	assert.False(t, result.Refunded)
	assert.Equal(t, 0, result.RefundedUnits)
	assert.Equal(t, models.LessonCancelled, result.Lesson.Status)
	assert.Equal(t, 2, fx.subs.subs["s1"].LessonsUsed)
}

func TestBookingServiceCancelExactlyOnBoundaryForfeits(t *testing.T) {
	fx := newBookingFixture(t)

	lesson, err := fx.svc.CreateBooking(context.Background(), validBookingRequest())
	require.NoError(t, err)

	// Exactly 24 hours before the 10:00 start: not strictly more, no refund.
	fx.svc.now = func() time.Time { return time.Date(2023, 12, 31, 10, 0, 0, 0, time.UTC) }

	result, err := fx.svc.CancelLesson(context.Background(), lesson.ID)
	require.NoError(t, err)
	assert.False(t, result.Refunded)
}

func TestBookingServiceCancelGuards(t *testing.T) {
	fx := newBookingFixture(t)

	_, err := fx.svc.CancelLesson(context.Background(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

	fx.lessons.lessons["done"] = models.Lesson{
		ID: "done", StudentID: "s1", TeacherID: "t1",
		Date: mondayDate, StartTime: "09:00", Duration: 20, Status: models.LessonCompleted,
	}
	_, err = fx.svc.CancelLesson(context.Background(), "done")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))

	fx.lessons.lessons["gone"] = models.Lesson{
		ID: "gone", StudentID: "s1", TeacherID: "t1",
		Date: mondayDate, StartTime: "09:00", Duration: 20, Status: models.LessonCancelled,
	}
	_, err = fx.svc.CancelLesson(context.Background(), "gone")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))
}

func TestBookingServiceBookCancelRoundTrip(t *testing.T) {
	fx := newBookingFixture(t)
	before := fx.subs.subs["s1"].LessonsUsed

	lesson, err := fx.svc.CreateBooking(context.Background(), validBookingRequest())
	require.NoError(t, err)

	fx.svc.now = func() time.Time { return time.Date(2023, 12, 1, 12, 0, 0, 0, time.UTC) }
	result, err := fx.svc.CancelLesson(context.Background(), lesson.ID)
	require.NoError(t, err)
	require.True(t, result.Refunded)

	// Booking then cancelling with ample notice leaves the ledger unchanged.
	assert.Equal(t, before, fx.subs.subs["s1"].LessonsUsed)
}
