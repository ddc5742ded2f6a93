package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/edulane/tutor-booking-api/internal/models"
	"github.com/edulane/tutor-booking-api/internal/timeslot"
	appErrors "github.com/edulane/tutor-booking-api/pkg/errors"
)

type completionLessonRepo interface {
	ListScheduledThrough(ctx context.Context, date string) ([]models.Lesson, error)
	CompleteLessons(ctx context.Context, ids []string) (int64, error)
}

// CompletionService sweeps Scheduled lessons whose end time has passed and
// marks them Completed. Cancelled lessons are never touched, and completion
// never refunds anything.
type CompletionService struct {
	lessons completionLessonRepo
	logger  *zap.Logger
	loc     *time.Location
	now     func() time.Time
}

// NewCompletionService constructs a CompletionService.
func NewCompletionService(lessons completionLessonRepo, loc *time.Location, logger *zap.Logger) *CompletionService {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionService{lessons: lessons, loc: loc, logger: logger, now: time.Now}
}

// MarkElapsed completes every Scheduled lesson whose end instant is at or
// before now, returning how many rows were transitioned. The repository
// re-checks the Scheduled status in the update so a lesson cancelled between
// the read and the write stays cancelled.
func (s *CompletionService) MarkElapsed(ctx context.Context) (int64, error) {
	now := s.now().In(s.loc)
	candidates, err := s.lessons.ListScheduledThrough(ctx, now.Format("2006-01-02"))
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load scheduled lessons")
	}

	var elapsed []string
	for _, lesson := range candidates {
		start, err := timeslot.Instant(lesson.Date, lesson.StartTime, s.loc)
		if err != nil {
			s.logger.Warn("skipping lesson with malformed slot",
				zap.String("lesson_id", lesson.ID), zap.Error(err))
			continue
		}
		end := start.Add(time.Duration(lesson.Duration) * time.Minute)
		if !end.After(now) {
			elapsed = append(elapsed, lesson.ID)
		}
	}
	if len(elapsed) == 0 {
		return 0, nil
	}

	completed, err := s.lessons.CompleteLessons(ctx, elapsed)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to complete lessons")
	}
	s.logger.Info("completion sweep finished",
		zap.Int("candidates", len(candidates)),
		zap.Int64("completed", completed))
	return completed, nil
}
