package handler

import "github.com/gin-gonic/gin"

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Availability  *AvailabilityHandler
	Lessons       *LessonHandler
	Teachers      *TeacherHandler
	Students      *StudentHandler
	Subscriptions *SubscriptionHandler
}

// RegisterRoutes mounts the API routes under the given prefix.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers) {
	api := r.Group(prefix)

	api.GET("/availability/teachers", h.Availability.Teachers)
	api.GET("/availability/students", h.Availability.Students)

	api.GET("/lessons", h.Lessons.List)
	api.POST("/lessons", h.Lessons.Create)
	api.GET("/lessons/:id", h.Lessons.Get)
	api.POST("/lessons/:id/cancel", h.Lessons.Cancel)

	api.GET("/teachers", h.Teachers.List)
	api.POST("/teachers", h.Teachers.Create)
	api.GET("/teachers/:id", h.Teachers.Get)
	api.PUT("/teachers/:id", h.Teachers.Update)
	api.DELETE("/teachers/:id", h.Teachers.Delete)
	api.GET("/teachers/:id/schedule/export", h.Teachers.ExportSchedule)

	api.GET("/students", h.Students.List)
	api.POST("/students", h.Students.Create)
	api.GET("/students/:id", h.Students.Get)
	api.PUT("/students/:id", h.Students.Update)
	api.GET("/students/:id/booking-validation", h.Students.ValidateBooking)
	api.GET("/students/:id/balance", h.Students.Balance)
	api.POST("/students/:id/subscriptions", h.Students.AssignSubscription)
	api.GET("/students/:id/subscriptions/history", h.Students.SubscriptionHistory)

	api.PUT("/subscriptions/:id/status", h.Subscriptions.SetStatus)
}
