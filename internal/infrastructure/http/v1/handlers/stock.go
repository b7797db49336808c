package handlers

import (
	"github.com/gin-gonic/gin"

	"essenza/internal/domain/ledger"
	"essenza/internal/infrastructure/http/v1/dto"
)

// StockHandler exposes the stock ledger: units and movement history.
type StockHandler struct {
	*BaseHandler
	service *ledger.Service
}

func NewStockHandler(base *BaseHandler, service *ledger.Service) *StockHandler {
	return &StockHandler{BaseHandler: base, service: service}
}

// List returns all stock units ordered by SKU.
// GET /api/v1/stock/units
func (h *StockHandler) List(c *gin.Context) {
	units, err := h.service.List(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": units, "count": len(units)})
}

// Get returns a single stock unit.
// GET /api/v1/stock/units/:id
func (h *StockHandler) Get(c *gin.Context) {
	unitID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	unit, err := h.service.Get(c.Request.Context(), unitID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, unit)
}

// Put creates or replaces a stock unit (seeding, admin corrections).
// PUT /api/v1/stock/units
func (h *StockHandler) Put(c *gin.Context) {
	var req dto.PutStockUnitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	unit, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Put(c.Request.Context(), unit); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, unit.ID.String())
}

// ListMovements returns filtered movement history, newest first.
// GET /api/v1/stock/movements
func (h *StockHandler) ListMovements(c *gin.Context) {
	var query dto.MovementsQuery
	if !h.BindQuery(c, &query) {
		return
	}

	filter, err := query.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}
	movements, err := h.service.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": movements, "count": len(movements)})
}

// Movements returns the movements a document recorded.
// GET /api/v1/stock/movements/:recorderId
func (h *StockHandler) Movements(c *gin.Context) {
	recorderID, ok := h.ParseID(c, "recorderId")
	if !ok {
		return
	}

	movements, err := h.service.MovementsByRecorder(c.Request.Context(), recorderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": movements, "count": len(movements)})
}
