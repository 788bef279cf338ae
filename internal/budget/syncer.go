package budget

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"spokoj/internal/store"
)

var (
	snapshotsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spokoj",
		Name:      "snapshots_saved_total",
		Help:      "Number of document snapshots persisted to the local store",
	})
	snapshotsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spokoj",
		Name:      "snapshots_failed_total",
		Help:      "Number of document snapshot persist attempts that failed",
	})
	snapshotsCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "spokoj",
		Name:      "snapshots_coalesced_total",
		Help:      "Number of snapshots dropped in favour of a newer one before persisting",
	})
)

// Publisher announces a freshly persisted snapshot to the mirror worker.
// Publishing is fire-and-forget: a failure only degrades connectivity.
type Publisher interface {
	PublishDocumentSync(ctx context.Context, revision int64) error
}

// Syncer is the effect queue between the in-memory document and persistence.
// It keeps at most one pending snapshot: a newer snapshot replaces an
// unpersisted older one, so a burst of edits collapses into a single write.
type Syncer struct {
	store     store.DocumentStore
	publisher Publisher
	logger    *slog.Logger

	latest chan Snapshot
	online atomic.Bool

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

var _ Persister = (*Syncer)(nil)

// NewSyncer builds a syncer over the given store. publisher may be nil when
// no message bus is configured.
func NewSyncer(st store.DocumentStore, publisher Publisher, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Syncer{
		store:     st,
		publisher: publisher,
		logger:    logger,
		latest:    make(chan Snapshot, 1),
	}
	s.online.Store(true)
	return s
}

// Enqueue hands the latest snapshot to the syncer without blocking the
// mutation path. An unpersisted older snapshot is replaced.
func (s *Syncer) Enqueue(snap Snapshot) {
	for {
		select {
		case s.latest <- snap:
			return
		default:
			select {
			case <-s.latest:
				snapshotsCoalesced.Inc()
			default:
			}
		}
	}
}

// Online reports whether the last persist and publish both succeeded. The
// in-memory state stays authoritative either way.
func (s *Syncer) Online() bool {
	return s.online.Load()
}

// Start begins the persist loop. Returns an error if already running.
func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("syncer is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)
	s.logger.InfoContext(ctx, "Snapshot syncer started")
	return nil
}

// Stop drains the pending snapshot, persists it and waits for the loop to
// finish or the context to expire.
func (s *Syncer) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	close(s.stopCh)

	select {
	case <-s.doneCh:
		s.logger.InfoContext(ctx, "Snapshot syncer stopped")
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Snapshot syncer stop timed out")
		return ctx.Err()
	}

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return nil
}

func (s *Syncer) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	for {
		select {
		case <-s.stopCh:
			// Final drain so a snapshot enqueued just before shutdown
			// is not lost.
			select {
			case snap := <-s.latest:
				s.persist(context.Background(), snap)
			default:
			}
			return
		case <-ctx.Done():
			return
		case snap := <-s.latest:
			s.persist(ctx, snap)
		}
	}
}

func (s *Syncer) persist(ctx context.Context, snap Snapshot) {
	saveCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.store.Save(saveCtx, snap.Doc); err != nil {
		snapshotsFailed.Inc()
		s.online.Store(false)
		s.logger.ErrorContext(ctx, "Failed to persist snapshot",
			"revision", snap.Revision, "error", err)
		return
	}
	snapshotsSaved.Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishDocumentSync(saveCtx, snap.Revision); err != nil {
			s.online.Store(false)
			s.logger.WarnContext(ctx, "Failed to publish sync message",
				"revision", snap.Revision, "error", err)
			return
		}
	}

	s.online.Store(true)
	s.logger.DebugContext(ctx, "Snapshot persisted", "revision", snap.Revision)
}
