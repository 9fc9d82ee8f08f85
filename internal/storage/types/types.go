package types

import (
	"context"
)

// Document represents a stored document in the database
type Document struct {
	// Id is the unique, immutable identifier supplied by the client
	Id string `json:"id" bson:"_id" db:"id"`

	// UpdatedAt is the server-assigned timestamp of the last write (Unix milliseconds).
	// Writes to the same id never reuse a timestamp.
	UpdatedAt int64 `json:"updatedAt" bson:"updated_at" db:"updated_at"`

	// Data is the application payload. The engine never interprets its
	// fields; it only strips the reserved protocol keys on ingest.
	Data map[string]interface{} `json:"data" bson:"data"`
}

// DocumentStore defines the interface for document persistence.
//
// ScanAfter and ScanAll return documents ordered ascending by
// (updatedAt, id). That ordering is what makes a replication
// checkpoint a resumable cursor, so every backend must honor it.
type DocumentStore interface {
	// Get retrieves a document by id. Returns model.ErrNotFound if missing.
	Get(ctx context.Context, id string) (*Document, error)

	// Upsert inserts or fully replaces a document.
	Upsert(ctx context.Context, doc *Document) error

	// ScanAfter returns up to limit documents strictly after the
	// (updatedAt, id) position under the lexicographic order.
	ScanAfter(ctx context.Context, updatedAt int64, id string, limit int) ([]*Document, error)

	// ScanAll returns up to limit documents from the beginning of the order.
	ScanAll(ctx context.Context, limit int) ([]*Document, error)

	// Latest returns the document with the greatest (updatedAt, id).
	// Returns model.ErrEmptyStore when no documents exist.
	Latest(ctx context.Context) (*Document, error)

	// Close closes the connection to the backend
	Close(ctx context.Context) error
}
