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

type subscriptionRepo interface {
	FindCurrentByStudent(ctx context.Context, studentID string) (*models.Subscription, error)
	FindByID(ctx context.Context, id string) (*models.Subscription, error)
	ListHistoryByStudent(ctx context.Context, studentID string) ([]models.Subscription, error)
	Create(ctx context.Context, sub *models.Subscription) error
	ArchiveCurrent(ctx context.Context, studentID string) error
	UpdateStatus(ctx context.Context, id string, status models.SubscriptionStatus) error
}

type subscriptionStudentRepo interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// SubscriptionService covers the operator-facing subscription actions:
// assigning packages, toggling status and browsing history. Balance mutations
// during booking stay in the LedgerService.
type SubscriptionService struct {
	subscriptions subscriptionRepo
	students      subscriptionStudentRepo
	ledger        *LedgerService
	logger        *zap.Logger
}

// NewSubscriptionService constructs a SubscriptionService.
func NewSubscriptionService(subscriptions subscriptionRepo, students subscriptionStudentRepo, ledger *LedgerService, logger *zap.Logger) *SubscriptionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubscriptionService{subscriptions: subscriptions, students: students, ledger: ledger, logger: logger}
}

// Assign gives the student a fresh package. Any existing current subscription
// is archived first; its remaining units do not carry over.
func (s *SubscriptionService) Assign(ctx context.Context, studentID string, req dto.CreateSubscriptionRequest) (*models.Subscription, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	pkg := models.PackageType(req.PackageType)
	if !pkg.IsValid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown package type %q", req.PackageType))
	}
	if req.StartDate > req.EndDate {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subscription must end on or after its start date")
	}

	if err := s.subscriptions.ArchiveCurrent(ctx, studentID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive subscription")
	}

	sub := &models.Subscription{
		StudentID:      studentID,
		PackageType:    pkg,
		InitialBalance: models.PackageAmounts[pkg],
		GiftLessons:    req.GiftLessons,
		LessonsUsed:    0,
		Status:         models.SubscriptionActive,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	}
	if err := s.subscriptions.Create(ctx, sub); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subscription")
	}

	s.logger.Info("subscription assigned",
		zap.String("student_id", studentID),
		zap.String("subscription_id", sub.ID),
		zap.String("package", string(pkg)))
	return sub, nil
}

// SetStatus toggles the subscription's operator-controlled status flag.
// Archived subscriptions are history and stay untouched.
func (s *SubscriptionService) SetStatus(ctx context.Context, id string, status models.SubscriptionStatus) (*models.Subscription, error) {
	sub, err := s.subscriptions.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subscription not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subscription")
	}
	if sub.Archived {
		return nil, appErrors.Clone(appErrors.ErrConflict, "archived subscriptions cannot be modified")
	}

	if err := s.subscriptions.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subscription status")
	}
	sub.Status = status

	s.logger.Info("subscription status updated",
		zap.String("subscription_id", id),
		zap.String("status", string(status)))
	return sub, nil
}

// Balance returns the student's current ledger summary.
func (s *SubscriptionService) Balance(ctx context.Context, studentID string) (*models.BalanceSummary, error) {
	return s.ledger.Balance(ctx, studentID)
}

// History lists the student's archived subscriptions, most recent first.
func (s *SubscriptionService) History(ctx context.Context, studentID string) ([]models.Subscription, error) {
	subs, err := s.subscriptions.ListHistoryByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subscription history")
	}
	return subs, nil
}
