package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/edulane/tutor-booking-api/internal/models"
	"github.com/edulane/tutor-booking-api/internal/timeslot"
	appErrors "github.com/edulane/tutor-booking-api/pkg/errors"
)

type ledgerSubscriptionRepo interface {
	FindCurrentByStudent(ctx context.Context, studentID string) (*models.Subscription, error)
	ApplyUsage(ctx context.Context, id string, units int) error
	RefundUsage(ctx context.Context, id string, units int) error
}

// LedgerService guards the subscription lesson balance. Every booking must
// pass its ordered validation before any lesson row is written, and every
// balance mutation flows through it.
type LedgerService struct {
	subscriptions ledgerSubscriptionRepo
	logger        *zap.Logger
}

// NewLedgerService constructs a LedgerService.
func NewLedgerService(subscriptions ledgerSubscriptionRepo, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{subscriptions: subscriptions, logger: logger}
}

// CurrentSubscription returns the student's current ledger, or nil when the
// student has none.
func (s *LedgerService) CurrentSubscription(ctx context.Context, studentID string) (*models.Subscription, error) {
	sub, err := s.subscriptions.FindCurrentByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscription")
	}
	return sub, nil
}

// ValidateBooking checks whether the student's current subscription can pay
// for a lesson of the given duration. asOf is the date the booking is placed,
// not the lesson date: an attempt made before the validity window opens or
// after it closes is rejected even when the lesson itself would land inside
// the window. Checks run in a fixed order and the first failure wins: missing
// subscription, inactive status, window, then insufficient balance.
func (s *LedgerService) ValidateBooking(ctx context.Context, studentID, asOf string, duration int) (*models.Subscription, error) {
	sub, err := s.CurrentSubscription(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if err := ValidateSubscriptionForBooking(sub, asOf, duration); err != nil {
		return nil, err
	}
	return sub, nil
}

// ValidateSubscriptionForBooking is the pure validation behind ValidateBooking.
// Both window bounds are inclusive, so an attempt made on the start or end
// date itself is still in window.
func ValidateSubscriptionForBooking(sub *models.Subscription, asOf string, duration int) error {
	if sub == nil {
		return appErrors.ErrNoSubscription
	}
	if sub.Status != models.SubscriptionActive {
		return appErrors.ErrSubscriptionInactive
	}
	if asOf < sub.StartDate || asOf > sub.EndDate {
		return appErrors.ErrSubscriptionExpired
	}
	if sub.Remaining() < timeslot.Cost(duration) {
		return appErrors.Clone(appErrors.ErrInsufficientBalance, fmt.Sprintf("insufficient lesson balance (%d left)", sub.Remaining()))
	}
	return nil
}

// ApplyBookingCost debits the subscription for a confirmed booking.
func (s *LedgerService) ApplyBookingCost(ctx context.Context, subscriptionID string, duration int) error {
	units := timeslot.Cost(duration)
	if err := s.subscriptions.ApplyUsage(ctx, subscriptionID, units); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to debit subscription")
	}
	s.logger.Info("subscription debited",
		zap.String("subscription_id", subscriptionID),
		zap.Int("units", units))
	return nil
}

// ApplyCancellationRefund credits the lesson cost back onto the subscription.
// The repository floors the used counter at zero, so a refund can never push
// the balance above the purchased total.
func (s *LedgerService) ApplyCancellationRefund(ctx context.Context, subscriptionID string, duration int) (int, error) {
	units := timeslot.Cost(duration)
	if err := s.subscriptions.RefundUsage(ctx, subscriptionID, units); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to refund subscription")
	}
	s.logger.Info("subscription refunded",
		zap.String("subscription_id", subscriptionID),
		zap.Int("units", units))
	return units, nil
}

// Balance summarises the student's current ledger for display. A student
// without a subscription yields ErrNoSubscription.
func (s *LedgerService) Balance(ctx context.Context, studentID string) (*models.BalanceSummary, error) {
	sub, err := s.CurrentSubscription(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, appErrors.ErrNoSubscription
	}
	return &models.BalanceSummary{
		PackageType: sub.PackageType,
		Status:      sub.Status,
		Total:       sub.Total(),
		Used:        sub.LessonsUsed,
		Remaining:   sub.Remaining(),
		StartDate:   sub.StartDate,
		EndDate:     sub.EndDate,
	}, nil
}
