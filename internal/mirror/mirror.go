// Package mirror defines the port for the remote document mirror the worker
// writes to. Mirroring is one-way: the local store stays authoritative and a
// mirror failure only delays the next attempt.
package mirror

import (
	"context"

	"spokoj/internal/core"
)

// DocumentMirror replaces the remote copy of the household document with the
// given snapshot.
type DocumentMirror interface {
	WriteSnapshot(ctx context.Context, doc core.Document, revision int64) error
}
