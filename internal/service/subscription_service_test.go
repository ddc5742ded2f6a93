package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edulane/tutor-booking-api/internal/dto"
	"github.com/edulane/tutor-booking-api/internal/models"
	appErrors "github.com/edulane/tutor-booking-api/pkg/errors"
)

type fakeSubscriptionStore struct {
	byID     map[string]models.Subscription
	history  map[string][]models.Subscription
	archived []string
	created  *models.Subscription
	statuses map[string]models.SubscriptionStatus
}

func (f *fakeSubscriptionStore) FindCurrentByStudent(ctx context.Context, studentID string) (*models.Subscription, error) {
	for _, sub := range f.byID {
		if sub.StudentID == studentID && !sub.Archived {
			return &sub, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSubscriptionStore) FindByID(ctx context.Context, id string) (*models.Subscription, error) {
	if sub, ok := f.byID[id]; ok {
		return &sub, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSubscriptionStore) ListHistoryByStudent(ctx context.Context, studentID string) ([]models.Subscription, error) {
	return f.history[studentID], nil
}

func (f *fakeSubscriptionStore) Create(ctx context.Context, sub *models.Subscription) error {
	if f.byID == nil {
		f.byID = make(map[string]models.Subscription)
	}
	if sub.ID == "" {
		sub.ID = "new-sub"
	}
	f.byID[sub.ID] = *sub
	f.created = sub
	return nil
}

func (f *fakeSubscriptionStore) ArchiveCurrent(ctx context.Context, studentID string) error {
	f.archived = append(f.archived, studentID)
	for id, sub := range f.byID {
		if sub.StudentID == studentID && !sub.Archived {
			sub.Archived = true
			f.byID[id] = sub
		}
	}
	return nil
}

func (f *fakeSubscriptionStore) UpdateStatus(ctx context.Context, id string, status models.SubscriptionStatus) error {
	if f.statuses == nil {
		f.statuses = make(map[string]models.SubscriptionStatus)
	}
	f.statuses[id] = status
	if sub, ok := f.byID[id]; ok {
		sub.Status = status
		f.byID[id] = sub
	}
	return nil
}

func newSubscriptionFixture() (*SubscriptionService, *fakeSubscriptionStore) {
	store := &fakeSubscriptionStore{}
	students := &fakeStudentReader{students: map[string]*models.Student{
		"s1": {ID: "s1", FullName: "Student One", Level: models.LevelKids},
	}}
	ledgerRepo := &fakeSubscriptionLedger{subs: map[string]*models.Subscription{}}
	svc := NewSubscriptionService(store, students, NewLedgerService(ledgerRepo, zap.NewNop()), zap.NewNop())
	return svc, store
}

func TestSubscriptionServiceAssign(t *testing.T) {
	svc, store := newSubscriptionFixture()

	sub, err := svc.Assign(context.Background(), "s1", dto.CreateSubscriptionRequest{
		PackageType: "Topaz",
		GiftLessons: 3,
		StartDate:   "2024-01-01",
		EndDate:     "2024-06-30",
	})
	require.NoError(t, err)
	assert.Equal(t, 60, sub.InitialBalance)
	assert.Equal(t, 3, sub.GiftLessons)
	assert.Equal(t, 0, sub.LessonsUsed)
	assert.Equal(t, models.SubscriptionActive, sub.Status)
	assert.Equal(t, 63, sub.Remaining())
	assert.Contains(t, store.archived, "s1")
}

func TestSubscriptionServiceAssignArchivesPrevious(t *testing.T) {
	svc, store := newSubscriptionFixture()
	store.byID = map[string]models.Subscription{
		"old": {ID: "old", StudentID: "s1", PackageType: models.PackageGold, InitialBalance: 25, LessonsUsed: 20, Status: models.SubscriptionActive},
	}

	sub, err := svc.Assign(context.Background(), "s1", dto.CreateSubscriptionRequest{
		PackageType: "Premium",
		StartDate:   "2024-07-01",
		EndDate:     "2024-12-31",
	})
	require.NoError(t, err)
	assert.True(t, store.byID["old"].Archived)
	// Remaining units from the old package do not carry over.
	assert.Equal(t, 120, sub.Remaining())
}

func TestSubscriptionServiceAssignValidation(t *testing.T) {
	svc, _ := newSubscriptionFixture()

	_, err := svc.Assign(context.Background(), "missing", dto.CreateSubscriptionRequest{
		PackageType: "Gold", StartDate: "2024-01-01", EndDate: "2024-06-30",
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))

	_, err = svc.Assign(context.Background(), "s1", dto.CreateSubscriptionRequest{
		PackageType: "Diamond", StartDate: "2024-01-01", EndDate: "2024-06-30",
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))

	_, err = svc.Assign(context.Background(), "s1", dto.CreateSubscriptionRequest{
		PackageType: "Gold", StartDate: "2024-06-30", EndDate: "2024-01-01",
	})
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestSubscriptionServiceSetStatus(t *testing.T) {
	svc, store := newSubscriptionFixture()
	store.byID = map[string]models.Subscription{
		"sub1": {ID: "sub1", StudentID: "s1", Status: models.SubscriptionActive},
		"old":  {ID: "old", StudentID: "s1", Status: models.SubscriptionActive, Archived: true},
	}

	sub, err := svc.SetStatus(context.Background(), "sub1", models.SubscriptionNonActive)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionNonActive, sub.Status)
	assert.Equal(t, models.SubscriptionNonActive, store.statuses["sub1"])

	_, err = svc.SetStatus(context.Background(), "old", models.SubscriptionNonActive)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrConflict))

	_, err = svc.SetStatus(context.Background(), "missing", models.SubscriptionActive)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestSubscriptionServiceHistory(t *testing.T) {
	svc, store := newSubscriptionFixture()
	store.history = map[string][]models.Subscription{
		"s1": {{ID: "old2"}, {ID: "old1"}},
	}

	subs, err := svc.History(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, subs, 2)
}
