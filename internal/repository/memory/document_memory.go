package memory

import (
	"context"
	"fmt"
	"sync"

	"docflow/internal/model"
	"docflow/internal/repository"
)

// DocumentMemory is an in-memory implementation of
// repository.DocumentRegistry. A single RWMutex guards the map; Update
// mutates a clone and commits it only if the mutator succeeds, so a failed
// transition never leaves a half-written record.
type DocumentMemory struct {
	mu   sync.RWMutex
	docs map[string]*model.Document
}

// NewDocumentMemory creates an empty registry. Construct once and pass by
// handle; there is no package-level state.
func NewDocumentMemory() *DocumentMemory {
	return &DocumentMemory{docs: make(map[string]*model.Document)}
}

var _ repository.DocumentRegistry = (*DocumentMemory)(nil)

// Insert stores a new document record.
func (r *DocumentMemory) Insert(_ context.Context, doc *model.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; ok {
		return fmt.Errorf("document %s already exists", doc.ID)
	}
	r.docs[doc.ID] = doc.Clone()
	return nil
}

// FindByID returns a copy of the document, or repository.ErrNotFound.
func (r *DocumentMemory) FindByID(_ context.Context, id string) (*model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return doc.Clone(), nil
}

// Update applies fn to a clone of the stored record under the write lock
// and commits the clone only when fn succeeds.
func (r *DocumentMemory) Update(_ context.Context, id string, fn func(*model.Document) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return repository.ErrNotFound
	}
	next := doc.Clone()
	if err := fn(next); err != nil {
		return err
	}
	r.docs[id] = next
	return nil
}

// List returns snapshot copies of all documents.
func (r *DocumentMemory) List(_ context.Context) ([]model.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]model.Document, 0, len(r.docs))
	for _, doc := range r.docs {
		out = append(out, *doc.Clone())
	}
	return out, nil
}
