package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"essenza/internal/domain/quality"
	"essenza/internal/infrastructure/http/v1/dto"
)

// QualityHandler handles quality-check operations.
type QualityHandler struct {
	*BaseHandler
	service *quality.Service
}

func NewQualityHandler(base *BaseHandler, service *quality.Service) *QualityHandler {
	return &QualityHandler{BaseHandler: base, service: service}
}

// Create runs an inspection and persists the check with its outcome.
// POST /api/v1/quality-checks
func (h *QualityHandler) Create(c *gin.Context) {
	var req dto.CreateCheckRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	check, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, check)
}

// Get returns a quality check.
// GET /api/v1/quality-checks/:id
func (h *QualityHandler) Get(c *gin.Context) {
	checkID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	check, err := h.service.Get(c.Request.Context(), checkID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, check)
}

// List returns all quality checks as summaries.
// GET /api/v1/quality-checks
func (h *QualityHandler) List(c *gin.Context) {
	checks, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.CheckSummary, 0, len(checks))
	for i := range checks {
		items = append(items, dto.ToCheckSummary(&checks[i]))
	}
	h.OK(c, gin.H{"items": items, "count": len(items)})
}

// Rework re-evaluates a check after rework with new counts.
// POST /api/v1/quality-checks/:id/rework
func (h *QualityHandler) Rework(c *gin.Context) {
	checkID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.ReworkRequest
	if !h.BindJSON(c, &req) {
		return
	}

	check, err := h.service.Rework(c.Request.Context(), req.ToDecision(checkID))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, check)
}
