package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/legacyvault/admin-trust/internal/api/metrics"
	"github.com/legacyvault/admin-trust/internal/core/domain"
	"github.com/legacyvault/admin-trust/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	appendTimeout  = 5 * time.Second
)

// AuditWriter persists audit entries asynchronously through a fixed set of
// workers, sharded by actor id with consistent hashing so causally related
// entries for one actor reach the store in program order.
//
// A failed append must never silently drop an entry: the full entry is
// logged through the fallback channel, since losing audit data is itself a
// security-relevant event.
type AuditWriter struct {
	workers []chan domain.AuditEntry
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewAuditWriter creates a writer with numWorkers sharded workers. If
// numWorkers <= 0, defaultWorkers is used.
func NewAuditWriter(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *AuditWriter {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	w := &AuditWriter{
		workers: make([]chan domain.AuditEntry, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range w.workers {
		w.workers[i] = make(chan domain.AuditEntry, channelBuffer)
	}
	return w
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (w *AuditWriter) Start(ctx context.Context) {
	for i, ch := range w.workers {
		go w.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an entry to the worker responsible for its actor. If the
// worker channel is full the entry is written to the fallback log instead
// of blocking the request path.
func (w *AuditWriter) Enqueue(entry domain.AuditEntry) {
	select {
	case w.workers[w.shardIndex(entry.ActorID)] <- entry:
	default:
		w.fallback(entry, "audit queue full")
	}
}

// shardIndex maps an actor id deterministically to a worker index.
func (w *AuditWriter) shardIndex(actorID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actorID))
	return int(h.Sum32()) % len(w.workers)
}

func (w *AuditWriter) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEntry) {
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			appendCtx, cancel := context.WithTimeout(context.Background(), appendTimeout)
			err := w.repo.Append(appendCtx, entry)
			cancel()
			if err != nil {
				w.log.Error().Err(err).Int("worker_id", id).Msg("audit append failed")
				w.fallback(entry, "store append failed")
				continue
			}
			metrics.AuditWritesTotal.WithLabelValues("ok").Inc()
		}
	}
}

// fallback emits the complete entry as a structured log line so it remains
// recoverable when the durable store is unreachable.
func (w *AuditWriter) fallback(entry domain.AuditEntry, reason string) {
	metrics.AuditWritesTotal.WithLabelValues("fallback").Inc()
	w.log.Error().
		Str("fallback_reason", reason).
		Str("entry_id", entry.ID).
		Time("entry_ts", entry.Timestamp).
		Str("actor_id", entry.ActorID).
		Str("actor_email", entry.ActorEmail).
		Str("action", string(entry.Action)).
		Str("target_id", entry.TargetID).
		Str("target_type", entry.TargetType).
		Str("details", entry.Details).
		Str("ip", entry.Origin.IP).
		Str("outcome", string(entry.Outcome)).
		Str("error_message", entry.ErrorMessage).
		Msg("audit entry not persisted")
}
