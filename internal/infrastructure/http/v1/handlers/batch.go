package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"essenza/internal/domain/batch"
	"essenza/internal/domain/document"
	"essenza/internal/infrastructure/http/v1/dto"
)

// BatchHandler handles batch stock operations.
type BatchHandler struct {
	*BaseHandler
	orchestrator *batch.Orchestrator
}

func NewBatchHandler(base *BaseHandler, orchestrator *batch.Orchestrator) *BatchHandler {
	return &BatchHandler{BaseHandler: base, orchestrator: orchestrator}
}

// Execute runs a batch operation and returns per-line outcomes. Partial
// success is a 200 with failed lines carried in the body, not an error.
// POST /api/v1/batches
func (h *BatchHandler) Execute(c *gin.Context) {
	var req dto.ExecuteBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.orchestrator.Execute(c.Request.Context(), document.Kind(req.Kind), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
