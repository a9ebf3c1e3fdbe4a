// Package store persists layout histories.
//
// Three backends implement [Store]: [FileStore] keeps one compressed
// ".mmbh" file per layout, [MongoStore] keeps one document per layout in a
// MongoDB collection, and [MemoryStore] keeps everything in process.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/MUDMapBuilder/MUDMapBuilder-sub000/pkg/history"
)

// ErrNotFound is returned when no layout has the requested id.
var ErrNotFound = errors.New("layout not found")

// Store persists history documents.
type Store interface {
	// Save stores doc, assigning a new id when doc.ID is empty. It returns
	// the id.
	Save(ctx context.Context, doc *history.Document) (string, error)
	// Load returns the document with the given id or ErrNotFound.
	Load(ctx context.Context, id string) (*history.Document, error)
	// List returns summaries of every stored layout, newest first.
	List(ctx context.Context) ([]history.Summary, error)
	// Delete removes a layout. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error
	// Close releases backend resources.
	Close() error
}

// NewID returns a fresh layout id.
func NewID() string { return uuid.NewString() }

func assignID(doc *history.Document) string {
	if doc.ID == "" {
		doc.ID = NewID()
	}
	return doc.ID
}
