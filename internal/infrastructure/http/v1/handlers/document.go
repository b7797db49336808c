package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"essenza/internal/core/id"
	"essenza/internal/domain/document"
	"essenza/internal/domain/lifecycle"
	"essenza/internal/infrastructure/http/v1/dto"
)

// TransitionHistorian reads the persisted transition trail of a document.
type TransitionHistorian interface {
	History(ctx context.Context, documentID id.ID, limit int) ([]lifecycle.TransitionRecord, error)
}

// DocumentHandler handles document drafts and lifecycle operations.
type DocumentHandler struct {
	*BaseHandler
	service *document.Service
	engine  *lifecycle.Engine
	history TransitionHistorian
}

// NewDocumentHandler creates a document handler. history may be nil when
// the deployment carries no transition audit.
func NewDocumentHandler(base *BaseHandler, service *document.Service, engine *lifecycle.Engine, history TransitionHistorian) *DocumentHandler {
	return &DocumentHandler{BaseHandler: base, service: service, engine: engine, history: history}
}

// Create creates a document draft.
// POST /api/v1/documents
func (h *DocumentHandler) Create(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToDraftInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.CreateDraft(c.Request.Context(), document.Kind(req.Kind), in)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// Get returns a document with its lines.
// GET /api/v1/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.Get(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// List returns documents matching the filter, newest first.
// GET /api/v1/documents
func (h *DocumentHandler) List(c *gin.Context) {
	var q dto.ListDocumentsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	docs, err := h.service.List(c.Request.Context(), q.ToFilter())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": docs, "count": len(docs)})
}

// Update replaces a draft's header and lines.
// PUT /api/v1/documents/:id
func (h *DocumentHandler) Update(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateDocumentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	in, err := req.ToDraftInput()
	if err != nil {
		h.Error(c, err)
		return
	}

	doc, err := h.service.UpdateDraft(c.Request.Context(), docID, in)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Transition moves a document to the target status.
// POST /api/v1/documents/:id/transition
func (h *DocumentHandler) Transition(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.engine.Transition(c.Request.Context(), docID, document.Status(req.Target))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, doc)
}

// Reverse creates a compensating draft for a completed document.
// POST /api/v1/documents/:id/reverse
func (h *DocumentHandler) Reverse(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	rev, err := h.engine.Reverse(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, rev)
}

// Transitions returns the document's transition trail, newest first.
// GET /api/v1/documents/:id/transitions
func (h *DocumentHandler) Transitions(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	if h.history == nil {
		h.OK(c, gin.H{"items": []lifecycle.TransitionRecord{}})
		return
	}

	records, err := h.history.History(c.Request.Context(), docID, h.limit(c))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"items": records})
}

func (h *DocumentHandler) limit(c *gin.Context) int {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return 50
	}
	q.Defaults()
	return q.Limit
}
