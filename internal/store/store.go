// Package store persists session records behind a small key-value port.
//
// Sessions are stored as opaque serialized payloads keyed by id, with
// type and status columns for filtered listing. Two adapters ship:
// an in-memory map (default) and a single-table SQLite store.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no record exists for the given id.
var ErrNotFound = errors.New("record not found")

// Record is one persisted session.
type Record struct {
	// ID is the session id.
	ID string

	// Type discriminates decision vs thinking sessions.
	Type string

	// Status mirrors the session status for filtered listing.
	Status string

	// Data is the serialized session payload.
	Data []byte

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Filter narrows List results. Zero values match everything.
type Filter struct {
	Type   string
	Status string
}

// Store is the session persistence port. Writes are last-write-wins;
// there is no cross-record transaction or locking discipline.
type Store interface {
	// Save upserts a record by id.
	Save(ctx context.Context, rec *Record) error

	// Get retrieves a record by id. Returns ErrNotFound if missing.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns records matching the filter, newest first.
	List(ctx context.Context, f Filter) ([]*Record, error)

	// Delete removes a record. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// Close releases any underlying resources.
	Close() error
}
