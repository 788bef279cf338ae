// Package store defines the persistence port for the household document.
package store

import (
	"context"
	"errors"

	"spokoj/internal/core"
)

// ErrNotFound is returned by Load when no document has ever been saved.
var ErrNotFound = errors.New("document not found")

// DocumentStore persists the single household document. Save replaces the
// whole document; there is no per-entity merge, so concurrent writers are
// last-write-wins at field-group granularity.
type DocumentStore interface {
	Load(ctx context.Context) (core.Document, error)
	Save(ctx context.Context, doc core.Document) error
}
