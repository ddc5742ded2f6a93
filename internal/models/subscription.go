package models

import "time"

// SubscriptionStatus is toggled manually by an operator, independent of the
// subscription date window.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "Active"
	SubscriptionNonActive SubscriptionStatus = "Non-Active"
)

// PackageType enumerates the lesson packages sold by the school.
type PackageType string

const (
	PackageGold    PackageType = "Gold"
	PackageTopaz   PackageType = "Topaz"
	PackagePremium PackageType = "Premium"
)

// PackageAmounts maps each package to its base lesson-unit balance.
var PackageAmounts = map[PackageType]int{
	PackageGold:    25,
	PackageTopaz:   60,
	PackagePremium: 120,
}

// IsValid reports whether the package type is known.
func (p PackageType) IsValid() bool {
	_, ok := PackageAmounts[p]
	return ok
}

// Subscription is the lesson-balance ledger for a student. A student has at
// most one current subscription; replaced subscriptions are kept as archived
// history rows and never mutated again.
type Subscription struct {
	ID             string             `db:"id" json:"id"`
	StudentID      string             `db:"student_id" json:"student_id"`
	PackageType    PackageType        `db:"package_type" json:"package_type"`
	InitialBalance int                `db:"initial_balance" json:"initial_balance"`
	GiftLessons    int                `db:"gift_lessons" json:"gift_lessons"`
	LessonsUsed    int                `db:"lessons_used" json:"lessons_used"`
	Status         SubscriptionStatus `db:"status" json:"status"`
	StartDate      string             `db:"start_date" json:"start_date"`
	EndDate        string             `db:"end_date" json:"end_date"`
	Archived       bool               `db:"archived" json:"archived"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `db:"updated_at" json:"updated_at"`
}

// Total is the full purchased balance including gifted units.
func (s *Subscription) Total() int {
	return s.InitialBalance + s.GiftLessons
}

// Remaining is always derived, never persisted. It can be transiently
// negative only through manual operator edits of LessonsUsed.
func (s *Subscription) Remaining() int {
	return s.Total() - s.LessonsUsed
}

// BalanceSummary mirrors the sidebar balance card of the booking UI.
type BalanceSummary struct {
	PackageType PackageType        `json:"package_type"`
	Status      SubscriptionStatus `json:"status"`
	Total       int                `json:"total"`
	Used        int                `json:"used"`
	Remaining   int                `json:"remaining"`
	StartDate   string             `json:"start_date"`
	EndDate     string             `json:"end_date"`
}
