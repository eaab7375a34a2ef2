package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/danceflow/attendance-api/internal/service"
	"github.com/danceflow/attendance-api/pkg/response"
)

// ExportHandler serves rendered attendance registers.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Register godoc
// @Summary Export a batch's attendance register
// @Description Render the student-by-class register as CSV (default) or PDF
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Batch ID"
// @Param format query string false "Output format" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /batches/{id}/register [get]
// @Security BearerAuth
func (h *ExportHandler) Register(c *gin.Context) {
	batchID, err := intParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.service.Register(c.Request.Context(), claimsFromContext(c), batchID, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, doc.Content)
}
