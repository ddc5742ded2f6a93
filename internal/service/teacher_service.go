package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/edulane/tutor-booking-api/internal/dto"
	"github.com/edulane/tutor-booking-api/internal/models"
	"github.com/edulane/tutor-booking-api/internal/timeslot"
	appErrors "github.com/edulane/tutor-booking-api/pkg/errors"
)

// minBlockMinutes is the shortest working-hour block the roster accepts.
// Shorter blocks produce schedules with too few bookable slots to be useful.
const minBlockMinutes = 5 * 60

var dayNames = map[string]bool{
	"Sunday": true, "Monday": true, "Tuesday": true, "Wednesday": true,
	"Thursday": true, "Friday": true, "Saturday": true,
}

type teacherRepo interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Deactivate(ctx context.Context, id string) error
}

// TeacherService manages the teacher roster. Working-hour validation happens
// here, at write time, so the availability evaluator can trust the stored
// schedule documents.
type TeacherService struct {
	teachers teacherRepo
	cache    *CacheService
	logger   *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(teachers teacherRepo, cache *CacheService, logger *zap.Logger) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{teachers: teachers, cache: cache, logger: logger}
}

// List returns teachers matching the filter with the total count.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	teachers, total, err := s.teachers.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, total, nil
}

// Get fetches one teacher.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a teacher after validating levels and working hours.
func (s *TeacherService) Create(ctx context.Context, req dto.CreateTeacherRequest) (*models.Teacher, error) {
	levels, err := parseLevels(req.Levels)
	if err != nil {
		return nil, err
	}
	blocks, err := parseWorkingHours(req.WorkingHours)
	if err != nil {
		return nil, err
	}

	exists, err := s.teachers.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "a teacher with this email already exists")
	}

	levelsDoc, _ := json.Marshal(levels)
	hoursDoc, _ := json.Marshal(blocks)

	teacher := &models.Teacher{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Levels:       levelsDoc,
		WorkingHours: hoursDoc,
		Active:       true,
	}
	if err := s.teachers.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}

	s.invalidateAvailability(ctx)
	s.logger.Info("teacher created", zap.String("teacher_id", teacher.ID))
	return teacher, nil
}

// Update edits a teacher. Only non-nil fields are applied.
func (s *TeacherService) Update(ctx context.Context, id string, req dto.UpdateTeacherRequest) (*models.Teacher, error) {
	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		teacher.FullName = *req.FullName
	}
	if req.Email != nil && *req.Email != teacher.Email {
		exists, err := s.teachers.ExistsByEmail(ctx, *req.Email, teacher.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher email")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a teacher with this email already exists")
		}
		teacher.Email = *req.Email
	}
	if req.Phone != nil {
		teacher.Phone = req.Phone
	}
	if req.Levels != nil {
		levels, err := parseLevels(req.Levels)
		if err != nil {
			return nil, err
		}
		doc, _ := json.Marshal(levels)
		teacher.Levels = doc
	}
	if req.WorkingHours != nil {
		blocks, err := parseWorkingHours(req.WorkingHours)
		if err != nil {
			return nil, err
		}
		doc, _ := json.Marshal(blocks)
		teacher.WorkingHours = doc
	}
	if req.Active != nil {
		teacher.Active = *req.Active
	}

	if err := s.teachers.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}

	s.invalidateAvailability(ctx)
	s.logger.Info("teacher updated", zap.String("teacher_id", teacher.ID))
	return teacher, nil
}

// Deactivate removes the teacher from the bookable roster. Existing lessons
// are untouched.
func (s *TeacherService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.teachers.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate teacher")
	}
	s.invalidateAvailability(ctx)
	s.logger.Info("teacher deactivated", zap.String("teacher_id", id))
	return nil
}

func (s *TeacherService) invalidateAvailability(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, availabilityCachePattern)
}

func parseLevels(raw []string) ([]models.Level, error) {
	levels := make([]models.Level, 0, len(raw))
	for _, l := range raw {
		level := models.Level(l)
		if !level.IsValid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown level %q", l))
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func parseWorkingHours(raw []dto.WorkingHourInput) ([]models.WorkingHour, error) {
	seen := make(map[string]bool, len(raw))
	blocks := make([]models.WorkingHour, 0, len(raw))
	for _, in := range raw {
		if !dayNames[in.DayOfWeek] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown day of week %q", in.DayOfWeek))
		}
		if seen[in.DayOfWeek] {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate working-hour block for %s", in.DayOfWeek))
		}
		if !timeslot.IsValidClock(in.StartTime) || !timeslot.IsValidClock(in.EndTime) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "working-hour times must be zero-padded 24h HH:MM values")
		}
		if !timeslot.After(in.EndTime, in.StartTime) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "working-hour block must end after it starts")
		}
		if timeslot.Minutes(in.EndTime)-timeslot.Minutes(in.StartTime) < minBlockMinutes {
			return nil, appErrors.Clone(appErrors.ErrValidation, "working-hour block must cover at least five hours")
		}
		seen[in.DayOfWeek] = true
		blocks = append(blocks, models.WorkingHour{
			DayOfWeek: in.DayOfWeek,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
		})
	}
	return blocks, nil
}
