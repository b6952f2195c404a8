package store

import (
	"context"
	"errors"
)

// Document is one record of a collection with its generated id merged in.
type Document map[string]any

// ID returns the document id, or "" when the store has not assigned one.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// ErrNotFound is returned by Get, Update and Delete when no document with the
// given id exists in the collection.
var ErrNotFound = errors.New("document not found")

// Store is the minimal document-store contract the resource services run
// against. Collections are independent; there are no cross-collection
// transactions and no schema enforcement below the service layer.
type Store interface {
	// Insert persists a new document and returns its generated id. The
	// caller is responsible for stamping createdAt before inserting, in a
	// fixed-width encoding whose lexicographic order is chronological.
	Insert(ctx context.Context, collection string, fields map[string]any) (string, error)

	// List returns every document of the collection ordered by createdAt
	// descending. Ties keep a stable relative order within one response.
	// An empty collection yields an empty slice, not an error.
	List(ctx context.Context, collection string) ([]Document, error)

	// Get returns a single document by id.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Update applies a partial merge: supplied fields overwrite, all
	// others stay untouched.
	Update(ctx context.Context, collection, id string, fields map[string]any) error

	// Delete removes the document. No cascading effects.
	Delete(ctx context.Context, collection, id string) error

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error

	Close() error
}
