package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edulane/tutor-booking-api/internal/models"
	appErrors "github.com/edulane/tutor-booking-api/pkg/errors"
)

type fakeSubscriptionLedger struct {
	subs     map[string]*models.Subscription
	applied  map[string]int
	refunded map[string]int
}

func (f *fakeSubscriptionLedger) FindCurrentByStudent(ctx context.Context, studentID string) (*models.Subscription, error) {
	if sub, ok := f.subs[studentID]; ok {
		copied := *sub
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSubscriptionLedger) ApplyUsage(ctx context.Context, id string, units int) error {
	if f.applied == nil {
		f.applied = make(map[string]int)
	}
	f.applied[id] += units
	for _, sub := range f.subs {
		if sub.ID == id {
			sub.LessonsUsed += units
		}
	}
	return nil
}

func (f *fakeSubscriptionLedger) RefundUsage(ctx context.Context, id string, units int) error {
	if f.refunded == nil {
		f.refunded = make(map[string]int)
	}
	f.refunded[id] += units
	for _, sub := range f.subs {
		if sub.ID == id {
			sub.LessonsUsed -= units
			if sub.LessonsUsed < 0 {
				sub.LessonsUsed = 0
			}
		}
	}
	return nil
}

func activeGoldSub(studentID string, used int) *models.Subscription {
	return &models.Subscription{
		ID:             "sub-" + studentID,
		StudentID:      studentID,
		PackageType:    models.PackageGold,
		InitialBalance: 25,
		LessonsUsed:    used,
		Status:         models.SubscriptionActive,
		StartDate:      "2024-01-01",
		EndDate:        "2024-06-30",
	}
}

func TestLedgerValidateBookingOrder(t *testing.T) {
	tests := []struct {
		name     string
		sub      *models.Subscription
		asOf     string
		duration int
		want     *appErrors.Error
		wantMsg  string
	}{
		{"no subscription", nil, "2024-02-01", 20, appErrors.ErrNoSubscription, ""},
		{
			"inactive wins over expired",
			&models.Subscription{Status: models.SubscriptionNonActive, StartDate: "2024-01-01", EndDate: "2024-01-31", InitialBalance: 25},
			"2024-03-01", 20, appErrors.ErrSubscriptionInactive, "",
		},
		{
			"expired wins over balance",
			&models.Subscription{Status: models.SubscriptionActive, StartDate: "2024-01-01", EndDate: "2024-01-31", InitialBalance: 1, LessonsUsed: 1},
			"2024-03-01", 20, appErrors.ErrSubscriptionExpired, "",
		},
		{
			"before window start",
			&models.Subscription{Status: models.SubscriptionActive, StartDate: "2024-02-01", EndDate: "2024-06-30", InitialBalance: 25},
			"2024-01-31", 20, appErrors.ErrSubscriptionExpired, "",
		},
		{
			"insufficient for long lesson",
			&models.Subscription{Status: models.SubscriptionActive, StartDate: "2024-01-01", EndDate: "2024-06-30", InitialBalance: 5, LessonsUsed: 4},
			"2024-02-01", 40, appErrors.ErrInsufficientBalance, "insufficient lesson balance (1 left)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSubscriptionForBooking(tt.sub, tt.asOf, tt.duration)
			assert.True(t, appErrors.HasCode(err, tt.want), "got %v", err)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, appErrors.FromError(err).Message)
			}
		})
	}
}

func TestLedgerValidateBookingWindowInclusive(t *testing.T) {
	sub := activeGoldSub("s1", 0)

	assert.NoError(t, ValidateSubscriptionForBooking(sub, "2024-01-01", 20))
	assert.NoError(t, ValidateSubscriptionForBooking(sub, "2024-06-30", 20))
}

func TestLedgerValidateBookingExactBalance(t *testing.T) {
	// One unit left: a short lesson fits, a long one does not.
	sub := activeGoldSub("s1", 24)

	assert.NoError(t, ValidateSubscriptionForBooking(sub, "2024-02-01", 20))
	err := ValidateSubscriptionForBooking(sub, "2024-02-01", 40)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInsufficientBalance))
	assert.Equal(t, "insufficient lesson balance (1 left)", appErrors.FromError(err).Message)
}

func TestLedgerGiftLessonsExtendBalance(t *testing.T) {
	sub := activeGoldSub("s1", 25)
	sub.GiftLessons = 2

	assert.NoError(t, ValidateSubscriptionForBooking(sub, "2024-02-01", 40))
}

func TestLedgerApplyAndRefund(t *testing.T) {
	repo := &fakeSubscriptionLedger{subs: map[string]*models.Subscription{"s1": activeGoldSub("s1", 0)}}
	svc := NewLedgerService(repo, zap.NewNop())

	require.NoError(t, svc.ApplyBookingCost(context.Background(), "sub-s1", 40))
	assert.Equal(t, 2, repo.applied["sub-s1"])

	units, err := svc.ApplyCancellationRefund(context.Background(), "sub-s1", 40)
	require.NoError(t, err)
	assert.Equal(t, 2, units)
	assert.Equal(t, 0, repo.subs["s1"].LessonsUsed)
}

func TestLedgerBalance(t *testing.T) {
	repo := &fakeSubscriptionLedger{subs: map[string]*models.Subscription{"s1": activeGoldSub("s1", 10)}}
	svc := NewLedgerService(repo, zap.NewNop())

	summary, err := svc.Balance(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 25, summary.Total)
	assert.Equal(t, 10, summary.Used)
	assert.Equal(t, 15, summary.Remaining)

	_, err = svc.Balance(context.Background(), "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNoSubscription))
}
