package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danceflow/attendance-api/internal/service"
	"github.com/danceflow/attendance-api/pkg/response"
)

// UserHandler exposes user lookups.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new handler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// Instructors godoc
// @Summary List instructors
// @Description List users with the teacher role for batch assignment
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /users/instructors [get]
// @Security BearerAuth
func (h *UserHandler) Instructors(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.Instructors(c.Request.Context()), nil)
}
