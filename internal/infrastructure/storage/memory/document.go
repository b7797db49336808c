package memory

import (
	"context"
	"sort"
	"sync"

	"essenza/internal/core/apperror"
	"essenza/internal/core/id"
	"essenza/internal/domain/document"
	"essenza/internal/domain/quality"
)

// DocumentStore implements document.Store over a map with optimistic
// locking on the version column equivalent.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[id.ID]document.Document
}

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[id.ID]document.Document)}
}

func (s *DocumentStore) Get(_ context.Context, docID id.ID) (*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("document", docID.String())
	}
	d.Lines = append([]document.Line(nil), d.Lines...)
	return &d, nil
}

func (s *DocumentStore) Save(_ context.Context, doc *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.docs[doc.ID]; ok && doc.Version != stored.Version+1 {
		return apperror.NewConcurrentModification("document", doc.ID.String()).
			WithDetail("storedVersion", stored.Version).
			WithDetail("version", doc.Version)
	}

	cp := *doc
	cp.Lines = append([]document.Line(nil), doc.Lines...)
	s.docs[doc.ID] = cp
	return nil
}

func (s *DocumentStore) List(_ context.Context, filter document.Filter) ([]document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]document.Document, 0)
	for _, d := range s.docs {
		if filter.Kind != nil && d.Kind != *filter.Kind {
			continue
		}
		if filter.Status != nil && d.Status != *filter.Status {
			continue
		}
		d.Lines = append([]document.Line(nil), d.Lines...)
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []document.Document{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

// CheckStore implements quality.Store over a map.
type CheckStore struct {
	mu     sync.RWMutex
	checks map[id.ID]quality.Check
}

func NewCheckStore() *CheckStore {
	return &CheckStore{checks: make(map[id.ID]quality.Check)}
}

func (s *CheckStore) Get(_ context.Context, checkID id.ID) (*quality.Check, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.checks[checkID]
	if !ok {
		return nil, apperror.NewNotFound("quality_check", checkID.String())
	}
	c.Lines = append([]document.Line(nil), c.Lines...)
	c.DefectTags = append([]string(nil), c.DefectTags...)
	return &c, nil
}

func (s *CheckStore) Save(_ context.Context, check *quality.Check) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.checks[check.ID]; ok && check.Version != stored.Version+1 {
		return apperror.NewConcurrentModification("quality_check", check.ID.String()).
			WithDetail("storedVersion", stored.Version).
			WithDetail("version", check.Version)
	}

	cp := *check
	cp.Lines = append([]document.Line(nil), check.Lines...)
	cp.DefectTags = append([]string(nil), check.DefectTags...)
	s.checks[check.ID] = cp
	return nil
}

func (s *CheckStore) List(_ context.Context) ([]quality.Check, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]quality.Check, 0, len(s.checks))
	for _, c := range s.checks {
		c.Lines = append([]document.Line(nil), c.Lines...)
		c.DefectTags = append([]string(nil), c.DefectTags...)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
