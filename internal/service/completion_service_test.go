package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edulane/tutor-booking-api/internal/models"
)

type fakeSweepStore struct {
	scheduled []models.Lesson
	completed []string
}

func (f *fakeSweepStore) ListScheduledThrough(ctx context.Context, date string) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, l := range f.scheduled {
		if l.Date <= date {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeSweepStore) CompleteLessons(ctx context.Context, ids []string) (int64, error) {
	f.completed = append(f.completed, ids...)
	return int64(len(ids)), nil
}

func TestCompletionServiceMarkElapsed(t *testing.T) {
	store := &fakeSweepStore{scheduled: []models.Lesson{
		{ID: "past", Date: "2024-01-01", StartTime: "09:00", Duration: 40, Status: models.LessonScheduled},
		{ID: "ending-now", Date: "2024-01-02", StartTime: "11:20", Duration: 40, Status: models.LessonScheduled},
		{ID: "in-progress", Date: "2024-01-02", StartTime: "11:40", Duration: 40, Status: models.LessonScheduled},
		{ID: "later-today", Date: "2024-01-02", StartTime: "15:00", Duration: 20, Status: models.LessonScheduled},
		{ID: "tomorrow", Date: "2024-01-03", StartTime: "09:00", Duration: 20, Status: models.LessonScheduled},
	}}
	svc := NewCompletionService(store, time.UTC, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC) }

	completed, err := svc.MarkElapsed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), completed)
	assert.ElementsMatch(t, []string{"past", "ending-now"}, store.completed)
}

func TestCompletionServiceNothingElapsed(t *testing.T) {
	store := &fakeSweepStore{scheduled: []models.Lesson{
		{ID: "l1", Date: "2024-01-02", StartTime: "15:00", Duration: 20, Status: models.LessonScheduled},
	}}
	svc := NewCompletionService(store, time.UTC, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC) }

	completed, err := svc.MarkElapsed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, completed)
	assert.Empty(t, store.completed)
}

func TestCompletionServiceSkipsMalformedSlots(t *testing.T) {
	store := &fakeSweepStore{scheduled: []models.Lesson{
		{ID: "bad", Date: "2024-01-01", StartTime: "9am", Duration: 20, Status: models.LessonScheduled},
		{ID: "good", Date: "2024-01-01", StartTime: "09:00", Duration: 20, Status: models.LessonScheduled},
	}}
	svc := NewCompletionService(store, time.UTC, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 12, 0, 0, 0, time.UTC) }

	completed, err := svc.MarkElapsed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), completed)
	assert.Equal(t, []string{"good"}, store.completed)
}
