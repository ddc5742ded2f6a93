package dto

// WorkingHourInput is one weekly availability block in a teacher payload.
type WorkingHourInput struct {
	DayOfWeek string `json:"day_of_week" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// CreateTeacherRequest is the payload for registering a teacher.
type CreateTeacherRequest struct {
	FullName     string             `json:"full_name" binding:"required,min=2,max=120"`
	Email        string             `json:"email" binding:"required,email"`
	Phone        *string            `json:"phone"`
	Levels       []string           `json:"levels" binding:"required,min=1"`
	WorkingHours []WorkingHourInput `json:"working_hours" binding:"required,min=1,dive"`
}

// UpdateTeacherRequest is the payload for editing a teacher. Nil fields are
// left unchanged.
type UpdateTeacherRequest struct {
	FullName     *string            `json:"full_name" binding:"omitempty,min=2,max=120"`
	Email        *string            `json:"email" binding:"omitempty,email"`
	Phone        *string            `json:"phone"`
	Levels       []string           `json:"levels" binding:"omitempty,min=1"`
	WorkingHours []WorkingHourInput `json:"working_hours" binding:"omitempty,min=1,dive"`
	Active       *bool              `json:"active"`
}

// ListTeachersQuery captures teacher listing filters.
type ListTeachersQuery struct {
	Search    string `form:"search"`
	Active    *bool  `form:"active"`
	Level     string `form:"level"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}
