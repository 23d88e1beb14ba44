package repository

import (
	"context"

	"docflow/internal/model"
)

// DocumentRegistry is the authoritative store of document records, keyed by
// id. Implementations must serialize mutations: Update runs its mutator
// under the registry's write lock so concurrent transitions on the same id
// cannot interleave. No business logic here, strictly storage operations.
type DocumentRegistry interface {
	// Insert stores a new document record. The caller provides the ID.
	Insert(ctx context.Context, doc *model.Document) error

	// FindByID returns a copy of the document, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// Update applies fn to the stored record under the write lock.
	// If fn returns an error the record is left unchanged and the error is
	// returned. Returns ErrNotFound if the id does not exist.
	Update(ctx context.Context, id string, fn func(*model.Document) error) error

	// List returns snapshot copies of all documents. Mutations after the
	// call are not visible in the returned slice.
	List(ctx context.Context) ([]model.Document, error)
}
