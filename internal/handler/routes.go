package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/danceflow/attendance-api/internal/middleware"
	"github.com/danceflow/attendance-api/internal/service"
)

// Handlers bundles every HTTP handler for route registration.
type Handlers struct {
	Auth    *AuthHandler
	Batch   *BatchHandler
	Student *StudentHandler
	Session *SessionHandler
	Export  *ExportHandler
	User    *UserHandler

	ExportEnabled bool
}

// New builds the handler set from the service layer.
func New(auth *service.AuthService, batch *service.BatchService, student *service.StudentService, session *service.SessionService, export *service.ExportService, user *service.UserService, exportEnabled bool) *Handlers {
	return &Handlers{
		Auth:          NewAuthHandler(auth),
		Batch:         NewBatchHandler(batch),
		Student:       NewStudentHandler(student),
		Session:       NewSessionHandler(session),
		Export:        NewExportHandler(export),
		User:          NewUserHandler(user),
		ExportEnabled: exportEnabled,
	}
}

// Register mounts the API under the prefix. Everything except login sits
// behind the JWT middleware.
func (h *Handlers) Register(r *gin.Engine, prefix string, authService *service.AuthService) {
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)

	protected := api.Group("")
	protected.Use(middleware.JWT(authService))

	protected.GET("/users/instructors", h.User.Instructors)

	protected.GET("/batches", h.Batch.List)
	protected.POST("/batches", h.Batch.Create)
	protected.GET("/batches/:id", h.Batch.Get)
	protected.PUT("/batches/:id", h.Batch.Update)
	protected.DELETE("/batches/:id", h.Batch.Delete)

	protected.GET("/batches/:id/students", h.Student.List)
	protected.POST("/batches/:id/students", h.Student.Add)
	protected.DELETE("/batches/:id/students/:studentId", h.Student.Remove)

	protected.GET("/batches/:id/sessions", h.Session.ListForBatch)
	protected.POST("/batches/:id/sessions", h.Session.StartClass)

	if h.ExportEnabled {
		protected.GET("/batches/:id/register", h.Export.Register)
	}

	protected.GET("/sessions/:id", h.Session.Get)
	protected.PUT("/sessions/:id/attendance", h.Session.SaveAttendance)
	protected.GET("/sessions/:id/sync", h.Session.SyncState)
	protected.PATCH("/sessions/:id/date", h.Session.Reschedule)
	protected.DELETE("/sessions/:id", h.Session.Delete)
}
