package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danceflow/attendance-api/internal/service"
	appErrors "github.com/danceflow/attendance-api/pkg/errors"
	"github.com/danceflow/attendance-api/pkg/response"
)

// StudentHandler wires roster endpoints to the student service.
type StudentHandler struct {
	service *service.StudentService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(svc *service.StudentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// List godoc
// @Summary List a batch's students
// @Tags Students
// @Produce json
// @Param id path int true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id}/students [get]
// @Security BearerAuth
func (h *StudentHandler) List(c *gin.Context) {
	batchID, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.service.ListForBatch(c.Request.Context(), batchID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Add godoc
// @Summary Enroll a new student
// @Description Register a student and enroll them in the batch
// @Tags Students
// @Accept json
// @Produce json
// @Param id path int true "Batch ID"
// @Param payload body service.AddStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id}/students [post]
// @Security BearerAuth
func (h *StudentHandler) Add(c *gin.Context) {
	batchID, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AddStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid student payload"))
		return
	}
	student, err := h.service.Add(c.Request.Context(), claimsFromContext(c), batchID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Remove godoc
// @Summary Remove a student from a batch
// @Description Drop the student from the roster; marked history is kept
// @Tags Students
// @Param id path int true "Batch ID"
// @Param studentId path int true "Student ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id}/students/{studentId} [delete]
// @Security BearerAuth
func (h *StudentHandler) Remove(c *gin.Context) {
	batchID, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	studentID, err := intParam(c, "studentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Remove(c.Request.Context(), claimsFromContext(c), batchID, studentID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
