package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danceflow/attendance-api/internal/models"
	"github.com/danceflow/attendance-api/internal/service"
	appErrors "github.com/danceflow/attendance-api/pkg/errors"
	"github.com/danceflow/attendance-api/pkg/response"
)

// BatchHandler wires HTTP endpoints to the batch service.
type BatchHandler struct {
	service *service.BatchService
}

// NewBatchHandler creates a new handler.
func NewBatchHandler(svc *service.BatchService) *BatchHandler {
	return &BatchHandler{service: svc}
}

// List godoc
// @Summary List batches
// @Description List batches visible to the caller, optionally sorted
// @Tags Batches
// @Produce json
// @Param sort query string false "Sort key" Enums(name-asc, name-desc, instructor-asc, students-desc)
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /batches [get]
// @Security BearerAuth
func (h *BatchHandler) List(c *gin.Context) {
	batches, err := h.service.List(c.Request.Context(), claimsFromContext(c), models.SortOption(c.Query("sort")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches, nil)
}

// Get godoc
// @Summary Get batch
// @Tags Batches
// @Produce json
// @Param id path int true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id} [get]
// @Security BearerAuth
func (h *BatchHandler) Get(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	batch, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Create godoc
// @Summary Create batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param payload body service.SaveBatchRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /batches [post]
// @Security BearerAuth
func (h *BatchHandler) Create(c *gin.Context) {
	var req service.SaveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}
	batch, err := h.service.Save(c.Request.Context(), claimsFromContext(c), req, nil)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, batch)
}

// Update godoc
// @Summary Update batch
// @Tags Batches
// @Accept json
// @Produce json
// @Param id path int true "Batch ID"
// @Param payload body service.SaveBatchRequest true "Batch payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id} [put]
// @Security BearerAuth
func (h *BatchHandler) Update(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.SaveBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid batch payload"))
		return
	}
	batch, err := h.service.Save(c.Request.Context(), claimsFromContext(c), req, &id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// Delete godoc
// @Summary Delete batch
// @Description Delete a batch and all of its sessions
// @Tags Batches
// @Param id path int true "Batch ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id} [delete]
// @Security BearerAuth
func (h *BatchHandler) Delete(c *gin.Context) {
	id, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
