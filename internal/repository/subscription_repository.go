package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edulane/tutor-booking-api/internal/models"
)

const subscriptionColumns = "id, student_id, package_type, initial_balance, gift_lessons, lessons_used, status, start_date, end_date, archived, created_at, updated_at"

// SubscriptionRepository persists subscription ledgers.
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository constructs a SubscriptionRepository.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// FindCurrentByStudent returns the student's current (non-archived)
// subscription. sql.ErrNoRows means the student has none.
func (r *SubscriptionRepository) FindCurrentByStudent(ctx context.Context, studentID string) (*models.Subscription, error) {
	query := fmt.Sprintf("SELECT %s FROM subscriptions WHERE student_id = $1 AND archived = FALSE", subscriptionColumns)
	var sub models.Subscription
	if err := r.db.GetContext(ctx, &sub, query, studentID); err != nil {
		return nil, err
	}
	return &sub, nil
}

// FindByID fetches a subscription by ID.
func (r *SubscriptionRepository) FindByID(ctx context.Context, id string) (*models.Subscription, error) {
	query := fmt.Sprintf("SELECT %s FROM subscriptions WHERE id = $1", subscriptionColumns)
	var sub models.Subscription
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListHistoryByStudent returns archived subscriptions, most recent first.
func (r *SubscriptionRepository) ListHistoryByStudent(ctx context.Context, studentID string) ([]models.Subscription, error) {
	query := fmt.Sprintf("SELECT %s FROM subscriptions WHERE student_id = $1 AND archived = TRUE ORDER BY created_at DESC", subscriptionColumns)
	var subs []models.Subscription
	if err := r.db.SelectContext(ctx, &subs, query, studentID); err != nil {
		return nil, fmt.Errorf("list subscription history: %w", err)
	}
	return subs, nil
}

// ListCurrent returns every non-archived subscription, used to annotate the
// student roster during slot evaluation.
func (r *SubscriptionRepository) ListCurrent(ctx context.Context) ([]models.Subscription, error) {
	query := fmt.Sprintf("SELECT %s FROM subscriptions WHERE archived = FALSE", subscriptionColumns)
	var subs []models.Subscription
	if err := r.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, fmt.Errorf("list current subscriptions: %w", err)
	}
	return subs, nil
}

// Create inserts a new subscription ledger row.
func (r *SubscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	const query = `INSERT INTO subscriptions (id, student_id, package_type, initial_balance, gift_lessons, lessons_used, status, start_date, end_date, archived, created_at, updated_at)
		VALUES (:id, :student_id, :package_type, :initial_balance, :gift_lessons, :lessons_used, :status, :start_date, :end_date, :archived, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sub); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}

// ArchiveCurrent moves any current subscription of the student into history.
func (r *SubscriptionRepository) ArchiveCurrent(ctx context.Context, studentID string) error {
	const query = `UPDATE subscriptions SET archived = TRUE, updated_at = $2 WHERE student_id = $1 AND archived = FALSE`
	if _, err := r.db.ExecContext(ctx, query, studentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("archive subscription: %w", err)
	}
	return nil
}

// UpdateStatus toggles the operator-controlled status flag.
func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, id string, status models.SubscriptionStatus) error {
	const query = `UPDATE subscriptions SET status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}
	return nil
}

// ApplyUsage increments the consumed lesson counter by the booking cost.
func (r *SubscriptionRepository) ApplyUsage(ctx context.Context, id string, units int) error {
	const query = `UPDATE subscriptions SET lessons_used = lessons_used + $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, units, time.Now().UTC()); err != nil {
		return fmt.Errorf("apply subscription usage: %w", err)
	}
	return nil
}

// RefundUsage credits units back, floored at zero. The floor protects
// against double-refund bugs.
func (r *SubscriptionRepository) RefundUsage(ctx context.Context, id string, units int) error {
	const query = `UPDATE subscriptions SET lessons_used = GREATEST(lessons_used - $2, 0), updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, units, time.Now().UTC()); err != nil {
		return fmt.Errorf("refund subscription usage: %w", err)
	}
	return nil
}
