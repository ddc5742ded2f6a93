package dto

// CreateSubscriptionRequest assigns a new package to a student. Any existing
// current subscription is archived first.
type CreateSubscriptionRequest struct {
	PackageType string `json:"package_type" binding:"required"`
	GiftLessons int    `json:"gift_lessons" binding:"gte=0"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
}

// UpdateSubscriptionStatusRequest toggles the operator-controlled status.
type UpdateSubscriptionStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=Active Non-Active"`
}
