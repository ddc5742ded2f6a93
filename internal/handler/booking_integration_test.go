package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edulane/tutor-booking-api/internal/models"
	"github.com/edulane/tutor-booking-api/internal/service"
)

// 2024-01-01 is a Monday; all fixture teachers work Mondays 09:00-17:00.
const testMonday = "2024-01-01"

type fixtureStore struct {
	teachers map[string]*models.Teacher
	students map[string]*models.Student
	subs     map[string]*models.Subscription
	lessons  map[string]models.Lesson
}

func newFixtureStore() *fixtureStore {
	teacher := &models.Teacher{
		ID:           "11111111-1111-4111-8111-111111111111",
		FullName:     "Nina Petrova",
		Email:        "nina@school.test",
		Levels:       []byte(`["Kids","Basic"]`),
		WorkingHours: []byte(`[{"day_of_week":"Monday","start_time":"09:00","end_time":"17:00"}]`),
		Active:       true,
	}
	student := &models.Student{
		ID:       "22222222-2222-4222-8222-222222222222",
		FullName: "Ada Mensah",
		Email:    "ada@school.test",
		Level:    models.LevelKids,
	}
	// The window must cover the wall clock: the booking service checks the
	// subscription against the moment of booking, not the lesson date.
	sub := &models.Subscription{
		ID:             "sub-1",
		StudentID:      student.ID,
		PackageType:    models.PackageGold,
		InitialBalance: 25,
		Status:         models.SubscriptionActive,
		StartDate:      "2023-12-01",
		EndDate:        "2099-12-31",
	}
	return &fixtureStore{
		teachers: map[string]*models.Teacher{teacher.ID: teacher},
		students: map[string]*models.Student{student.ID: student},
		subs:     map[string]*models.Subscription{student.ID: sub},
		lessons:  map[string]models.Lesson{},
	}
}

func (f *fixtureStore) ListActive(ctx context.Context) ([]models.Teacher, error) {
	var out []models.Teacher
	for _, t := range f.teachers {
		if t.Active {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fixtureStore) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := f.teachers[id]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fixtureStore) ListAll(ctx context.Context) ([]models.Student, error) {
	var out []models.Student
	for _, s := range f.students {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fixtureStore) ListCurrent(ctx context.Context) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, s := range f.subs {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fixtureStore) ListOnDate(ctx context.Context, date string) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, l := range f.lessons {
		if l.Date == date {
			out = append(out, l)
		}
	}
	return out, nil
}

type studentStore struct{ f *fixtureStore }

func (s studentStore) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if st, ok := s.f.students[id]; ok {
		return st, nil
	}
	return nil, sql.ErrNoRows
}

type lessonStore struct{ f *fixtureStore }

func (s lessonStore) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	var out []models.Lesson
	for _, l := range s.f.lessons {
		out = append(out, l)
	}
	return out, len(out), nil
}

func (s lessonStore) ListOnDate(ctx context.Context, date string) ([]models.Lesson, error) {
	return s.f.ListOnDate(ctx, date)
}

func (s lessonStore) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	if l, ok := s.f.lessons[id]; ok {
		return &l, nil
	}
	return nil, sql.ErrNoRows
}

func (s lessonStore) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = "lesson-1"
	}
	s.f.lessons[lesson.ID] = *lesson
	return nil
}

func (s lessonStore) UpdateStatus(ctx context.Context, id string, status models.LessonStatus) error {
	if l, ok := s.f.lessons[id]; ok {
		l.Status = status
		s.f.lessons[id] = l
	}
	return nil
}

type subStore struct{ f *fixtureStore }

func (s subStore) FindCurrentByStudent(ctx context.Context, studentID string) (*models.Subscription, error) {
	if sub, ok := s.f.subs[studentID]; ok {
		copied := *sub
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s subStore) ApplyUsage(ctx context.Context, id string, units int) error {
	for _, sub := range s.f.subs {
		if sub.ID == id {
			sub.LessonsUsed += units
		}
	}
	return nil
}

func (s subStore) RefundUsage(ctx context.Context, id string, units int) error {
	for _, sub := range s.f.subs {
		if sub.ID == id {
			sub.LessonsUsed -= units
			if sub.LessonsUsed < 0 {
				sub.LessonsUsed = 0
			}
		}
	}
	return nil
}

func buildBookingRouter(store *fixtureStore) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	ledger := service.NewLedgerService(subStore{store}, logger)
	availability := service.NewAvailabilityService(store, store, store, store, nil, 0, logger)
	booking := service.NewBookingService(lessonStore{store}, store, studentStore{store}, ledger, nil, nil, validator.New(), 24, time.UTC, logger)

	router := gin.New()
	RegisterRoutes(router, "/api/v1", Handlers{
		Availability:  NewAvailabilityHandler(availability),
		Lessons:       NewLessonHandler(booking),
		Teachers:      NewTeacherHandler(service.NewTeacherService(nil, nil, logger), nil),
		Students:      NewStudentHandler(service.NewStudentService(nil, nil, nil, logger), service.NewSubscriptionService(nil, studentStore{store}, ledger, logger), ledger),
		Subscriptions: NewSubscriptionHandler(service.NewSubscriptionService(nil, studentStore{store}, ledger, logger)),
	})
	return router
}

func performRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBookingRoutesIntegration(t *testing.T) {
	store := newFixtureStore()
	router := buildBookingRouter(store)

	t.Run("teacher availability", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/availability/teachers?date="+testMonday+"&time=10:00&duration=40&level=Kids", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), "Nina Petrova")
	})

	t.Run("student availability", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/availability/students?date="+testMonday+"&time=10:00&duration=40", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), "Ada Mensah")
	})

	t.Run("availability rejects bad duration", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/availability/teachers?date="+testMonday+"&time=10:00&duration=30", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("booking validation verdict", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/students/22222222-2222-4222-8222-222222222222/booking-validation?date="+testMonday+"&duration=40", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"valid":true`)
	})

	t.Run("booking validation defaults to today", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/students/22222222-2222-4222-8222-222222222222/booking-validation?duration=20", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"valid":true`)
	})

	t.Run("booking validation verdict for missing subscription", func(t *testing.T) {
		store.subs = map[string]*models.Subscription{}
		defer func() { store.subs = newFixtureStore().subs }()

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/students/22222222-2222-4222-8222-222222222222/booking-validation?date="+testMonday+"&duration=40", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"valid":false`)
		require.Contains(t, resp.Body.String(), "NO_SUBSCRIPTION")
	})

	t.Run("book a lesson", func(t *testing.T) {
		payload := `{"student_id":"22222222-2222-4222-8222-222222222222","teacher_id":"11111111-1111-4111-8111-111111111111","date":"` + testMonday + `","start_time":"10:00","duration":40}`
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/lessons", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusCreated, resp.Code)
		require.Contains(t, resp.Body.String(), `"status":"Scheduled"`)
	})

	t.Run("double booking rejected", func(t *testing.T) {
		payload := `{"student_id":"22222222-2222-4222-8222-222222222222","teacher_id":"11111111-1111-4111-8111-111111111111","date":"` + testMonday + `","start_time":"10:20","duration":20}`
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/lessons", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("cancel booked lesson", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/lessons/lesson-1/cancel", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"status":"Cancelled"`)
	})

	t.Run("cancel unknown lesson", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/lessons/missing/cancel", nil)
		resp := performRequest(router, req)
		require.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("malformed booking payload", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/lessons", bytes.NewBufferString(`{"student_id":"not-a-uuid"}`))
		req.Header.Set("Content-Type", "application/json")
		resp := performRequest(router, req)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})
}
