package dto

// AvailabilityQuery identifies the slot being evaluated. Level applies only to
// teacher lookups and is ignored for the student side.
type AvailabilityQuery struct {
	Date     string `form:"date" binding:"required"`
	Time     string `form:"time" binding:"required"`
	Duration int    `form:"duration" binding:"required"`
	Level    string `form:"level"`
}

// BookingValidationQuery asks whether a student's subscription could pay for
// a lesson booked now. Date overrides the as-of date and defaults to today.
type BookingValidationQuery struct {
	Date     string `form:"date"`
	Duration int    `form:"duration" binding:"required"`
}

// BookingValidationResponse reports the verdict without mutating anything.
type BookingValidationResponse struct {
	Valid   bool   `json:"valid"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
