package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danceflow/attendance-api/internal/service"
	appErrors "github.com/danceflow/attendance-api/pkg/errors"
	"github.com/danceflow/attendance-api/pkg/response"
)

// SessionHandler wires session lifecycle endpoints to the session service.
type SessionHandler struct {
	service *service.SessionService
}

// NewSessionHandler creates a new handler.
func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// ListForBatch godoc
// @Summary List a batch's sessions and slot statuses
// @Tags Sessions
// @Produce json
// @Param id path int true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id}/sessions [get]
// @Security BearerAuth
func (h *SessionHandler) ListForBatch(c *gin.Context) {
	batchID, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.service.ListForBatch(c.Request.Context(), batchID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// StartClass godoc
// @Summary Start the batch's next class
// @Description Create the next session dated today with every student unmarked
// @Tags Sessions
// @Produce json
// @Param id path int true "Batch ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /batches/{id}/sessions [post]
// @Security BearerAuth
func (h *SessionHandler) StartClass(c *gin.Context) {
	batchID, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	session, err := h.service.StartClass(c.Request.Context(), claimsFromContext(c), batchID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Get godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [get]
// @Security BearerAuth
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// SaveAttendance godoc
// @Summary Save session attendance
// @Description Commit attendance locally and push it to the sheet backend asynchronously
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.SaveAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/attendance [put]
// @Security BearerAuth
func (h *SessionHandler) SaveAttendance(c *gin.Context) {
	var req service.SaveAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}
	res, err := h.service.SaveAttendance(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// SyncState godoc
// @Summary Report the session's sheet sync state
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/sync [get]
// @Security BearerAuth
func (h *SessionHandler) SyncState(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.service.SyncState(c.Param("id")), nil)
}

// Reschedule godoc
// @Summary Reschedule session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.RescheduleSessionRequest true "New date"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id}/date [patch]
// @Security BearerAuth
func (h *SessionHandler) Reschedule(c *gin.Context) {
	var req service.RescheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reschedule payload"))
		return
	}
	if err := h.service.Reschedule(c.Request.Context(), claimsFromContext(c), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Delete session
// @Tags Sessions
// @Param id path string true "Session ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{id} [delete]
// @Security BearerAuth
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
