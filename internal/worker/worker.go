// Package worker mirrors persisted document snapshots to the remote mirror.
// It reacts to AMQP sync messages and also runs a periodic safety-net pass
// for messages that were lost.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"spokoj/internal/amqp"
	"spokoj/internal/mirror"
	"spokoj/internal/store"
)

var (
	mirrorSyncs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spokoj",
		Name:      "mirror_syncs_total",
		Help:      "Number of successful document mirror writes",
	})
	mirrorFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spokoj",
		Name:      "mirror_failures_total",
		Help:      "Number of failed document mirror writes",
	})
)

// MirrorWorker reloads the document from the store on every sync message and
// pushes it to the mirror. The store is the source of truth; the message only
// signals that something changed.
type MirrorWorker struct {
	store  store.DocumentStore
	mirror mirror.DocumentMirror
	logger *slog.Logger

	mu           sync.Mutex
	lastRevision int64
}

func NewMirrorWorker(st store.DocumentStore, m mirror.DocumentMirror, logger *slog.Logger) *MirrorWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &MirrorWorker{store: st, mirror: m, logger: logger}
}

// HandleSyncMessage is the AMQP consume callback. Returning an error requeues
// the message.
func (w *MirrorWorker) HandleSyncMessage(ctx context.Context) func(*amqp.DocumentSyncMessage) error {
	return func(msg *amqp.DocumentSyncMessage) error {
		w.mu.Lock()
		stale := msg.Revision != 0 && msg.Revision <= w.lastRevision
		w.mu.Unlock()
		if stale {
			// A newer revision has already been mirrored; the store holds
			// the latest state either way.
			w.logger.DebugContext(ctx, "Skipping stale sync message",
				"revision", msg.Revision)
			return nil
		}

		if err := w.mirrorOnce(ctx, msg.Revision); err != nil {
			return err
		}

		w.mu.Lock()
		if msg.Revision > w.lastRevision {
			w.lastRevision = msg.Revision
		}
		w.mu.Unlock()
		return nil
	}
}

// PeriodicSync mirrors the current document unconditionally. Used by the
// worker's ticker to cover lost messages.
func (w *MirrorWorker) PeriodicSync(ctx context.Context) error {
	return w.mirrorOnce(ctx, 0)
}

func (w *MirrorWorker) mirrorOnce(ctx context.Context, revision int64) error {
	doc, err := w.store.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		// Nothing persisted yet, nothing to mirror.
		return nil
	}
	if err != nil {
		mirrorFailures.Inc()
		return fmt.Errorf("load document: %w", err)
	}

	if err := w.mirror.WriteSnapshot(ctx, doc, revision); err != nil {
		mirrorFailures.Inc()
		return fmt.Errorf("write snapshot: %w", err)
	}

	mirrorSyncs.Inc()
	w.logger.InfoContext(ctx, "Mirrored document snapshot", "revision", revision)
	return nil
}
