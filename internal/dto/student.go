package dto

// CreateStudentRequest is the payload for registering a student.
type CreateStudentRequest struct {
	FullName           string  `json:"full_name" binding:"required,min=2,max=120"`
	Email              string  `json:"email" binding:"required,email"`
	Phone              string  `json:"phone" binding:"required"`
	Phone2             *string `json:"phone2"`
	IDNumber           string  `json:"id_number" binding:"required"`
	Level              string  `json:"level" binding:"required"`
	PreferredTeacherID *string `json:"preferred_teacher_id" binding:"omitempty,uuid4"`
}

// UpdateStudentRequest is the payload for editing a student. Nil fields are
// left unchanged.
type UpdateStudentRequest struct {
	FullName           *string `json:"full_name" binding:"omitempty,min=2,max=120"`
	Email              *string `json:"email" binding:"omitempty,email"`
	Phone              *string `json:"phone"`
	Phone2             *string `json:"phone2"`
	IDNumber           *string `json:"id_number"`
	Level              *string `json:"level"`
	PreferredTeacherID *string `json:"preferred_teacher_id" binding:"omitempty,uuid4"`
}

// ListStudentsQuery captures student listing filters.
type ListStudentsQuery struct {
	Search    string `form:"search"`
	Level     string `form:"level"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
}
