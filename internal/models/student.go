package models

import "time"

// Student represents a learner registered with the school. The preferred
// teacher is a weak reference: a dangling id simply means no preference.
type Student struct {
	ID                 string    `db:"id" json:"id"`
	FullName           string    `db:"full_name" json:"full_name"`
	Email              string    `db:"email" json:"email"`
	Phone              string    `db:"phone" json:"phone"`
	Phone2             *string   `db:"phone2" json:"phone2,omitempty"`
	IDNumber           string    `db:"id_number" json:"id_number"`
	Level              Level     `db:"level" json:"level"`
	PreferredTeacherID *string   `db:"preferred_teacher_id" json:"preferred_teacher_id,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}

// StudentDetail pairs a student with their current (non-archived)
// subscription, when one exists.
type StudentDetail struct {
	Student
	CurrentSubscription *Subscription `json:"current_subscription,omitempty"`
}

// StudentFilter encapsulates search parameters for listing students.
type StudentFilter struct {
	Search    string
	Level     Level
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
