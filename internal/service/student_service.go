package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/edulane/tutor-booking-api/internal/dto"
	"github.com/edulane/tutor-booking-api/internal/models"
	appErrors "github.com/edulane/tutor-booking-api/pkg/errors"
)

type studentRepo interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
}

type studentSubscriptionRepo interface {
	FindCurrentByStudent(ctx context.Context, studentID string) (*models.Subscription, error)
}

// StudentService manages the student roster.
type StudentService struct {
	students      studentRepo
	subscriptions studentSubscriptionRepo
	cache         *CacheService
	logger        *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(students studentRepo, subscriptions studentSubscriptionRepo, cache *CacheService, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, subscriptions: subscriptions, cache: cache, logger: logger}
}

// List returns students matching the filter with the total count.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, total, nil
}

// Get fetches one student together with their current subscription.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	detail := &models.StudentDetail{Student: *student}
	sub, err := s.subscriptions.FindCurrentByStudent(ctx, id)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscription")
	}
	detail.CurrentSubscription = sub
	return detail, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*models.Student, error) {
	level := models.Level(req.Level)
	if !level.IsValid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown level %q", req.Level))
	}

	student := &models.Student{
		FullName:           req.FullName,
		Email:              req.Email,
		Phone:              req.Phone,
		Phone2:             req.Phone2,
		IDNumber:           req.IDNumber,
		Level:              level,
		PreferredTeacherID: req.PreferredTeacherID,
	}
	if err := s.students.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	_ = s.cache.Invalidate(ctx, availabilityCachePattern)
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return student, nil
}

// Update edits a student. Only non-nil fields are applied. Changing the level
// does not touch already-booked lessons; their level stays as captured at
// booking time.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*models.Student, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	student := detail.Student

	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.Phone != nil {
		student.Phone = *req.Phone
	}
	if req.Phone2 != nil {
		student.Phone2 = req.Phone2
	}
	if req.IDNumber != nil {
		student.IDNumber = *req.IDNumber
	}
	if req.Level != nil {
		level := models.Level(*req.Level)
		if !level.IsValid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown level %q", *req.Level))
		}
		student.Level = level
	}
	if req.PreferredTeacherID != nil {
		student.PreferredTeacherID = req.PreferredTeacherID
	}

	if err := s.students.Update(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	_ = s.cache.Invalidate(ctx, availabilityCachePattern)
	s.logger.Info("student updated", zap.String("student_id", student.ID))
	return &student, nil
}
