package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcus/mx/internal/db"
	"github.com/marcus/mx/internal/models"
	"github.com/marcus/mx/internal/syncclient"
)

// Engine runs the upload and download pipelines over a set of entity types.
type Engine struct {
	store    *db.DB
	entities []EntityOps
	logger   *slog.Logger

	// now is swappable for tests
	now func() time.Time
}

// NewEngine creates an engine over the given entity types.
func NewEngine(store *db.DB, entities []EntityOps, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    store,
		entities: entities,
		logger:   logger,
		now:      time.Now,
	}
}

// Entities returns the entity types this engine syncs, in order.
func (e *Engine) Entities() []EntityOps {
	return e.entities
}

func (e *Engine) opsFor(entityType string) EntityOps {
	for _, ops := range e.entities {
		if ops.EntityType() == entityType {
			return ops
		}
	}
	return nil
}

// uploadOutcome is the result of one outbox entry attempt.
type uploadOutcome struct {
	entry           db.OutboxEntry
	serverUpdatedAt time.Time
	stale           bool // local entity vanished, entry should be dropped
	err             error
}

// Upload drains eligible outbox entries in concurrent batches.
//
// Foreground passes first run an orphan scan: items still marked local that
// have no outbox row (a crash between insert and enqueue) are re-queued as
// creates. Background passes skip the scan to stay cheap.
func (e *Engine) Upload(ctx context.Context, opts Options) *Result {
	res := &Result{Success: true, StartedAt: e.now()}
	defer func() { res.FinishedAt = e.now() }()

	if !opts.Background {
		if err := e.enqueueOrphans(); err != nil {
			res.fail(fmt.Sprintf("orphan scan: %v", err))
		}
	}

	entries, err := e.store.ListPendingOutbox(MaxRetryCount)
	if err != nil {
		return res.fail(fmt.Sprintf("list outbox: %v", err))
	}

	now := e.now()
	eligible := entries[:0:0]
	for _, entry := range entries {
		if entryEligible(entry, now) {
			eligible = append(eligible, entry)
		}
	}
	if len(eligible) == 0 {
		return res
	}

	var history []db.SyncHistoryEntry
	for start := 0; start < len(eligible); start += UploadBatchSize {
		end := start + UploadBatchSize
		if end > len(eligible) {
			end = len(eligible)
		}
		for _, out := range e.uploadBatch(ctx, eligible[start:end]) {
			entry := out.entry
			if out.stale {
				// Nothing left to upload for this entry.
				if err := e.store.RemoveOutboxEntry(entry.ID); err != nil {
					res.fail(fmt.Sprintf("drop stale outbox %d: %v", entry.ID, err))
				}
				continue
			}
			if out.err != nil {
				res.Failed++
				res.Success = false
				res.Errors = append(res.Errors, fmt.Sprintf("%s %s/%s: %v", entry.Action, entry.EntityType, entry.EntityID, out.err))
				if err := e.store.RecordOutboxFailure(entry.ID, out.err.Error(), e.now()); err != nil {
					e.logger.Debug("record outbox failure", "id", entry.ID, "error", err)
				}
				continue
			}

			if err := e.store.RemoveOutboxEntry(entry.ID); err != nil {
				res.fail(fmt.Sprintf("remove outbox %d: %v", entry.ID, err))
				continue
			}
			if entry.Action != models.OutboxDelete {
				if ops := e.opsFor(entry.EntityType); ops != nil {
					if err := ops.MarkSynced(entry.EntityID, out.serverUpdatedAt); err != nil {
						e.logger.Debug("mark item synced", "id", entry.EntityID, "error", err)
					}
				}
			}
			res.Uploaded++
			history = append(history, db.SyncHistoryEntry{
				Direction:  "upload",
				Action:     string(entry.Action),
				EntityType: entry.EntityType,
				EntityID:   entry.EntityID,
			})
		}
	}

	if err := e.store.RecordSyncHistory(history); err != nil {
		e.logger.Debug("record sync history", "error", err)
	}
	return res
}

// uploadBatch dispatches the batch concurrently and waits for every entry.
func (e *Engine) uploadBatch(ctx context.Context, batch []db.OutboxEntry) []uploadOutcome {
	results := make(chan uploadOutcome, len(batch))
	for _, entry := range batch {
		go func(entry db.OutboxEntry) {
			results <- e.uploadEntry(ctx, entry)
		}(entry)
	}
	outcomes := make([]uploadOutcome, 0, len(batch))
	for range batch {
		outcomes = append(outcomes, <-results)
	}
	return outcomes
}

func (e *Engine) uploadEntry(ctx context.Context, entry db.OutboxEntry) uploadOutcome {
	out := uploadOutcome{entry: entry}

	ops := e.opsFor(entry.EntityType)
	if ops == nil {
		out.err = fmt.Errorf("unknown entity type %q", entry.EntityType)
		return out
	}

	if entry.Action == models.OutboxDelete {
		err := ops.DeleteRemote(ctx, entry.EntityID)
		if errors.Is(err, syncclient.ErrNotFound) {
			// Already gone server-side; the tombstone took effect.
			err = nil
		}
		out.err = err
		out.serverUpdatedAt = e.now()
		return out
	}

	var rec syncclient.MediaRecord
	if err := json.Unmarshal([]byte(entry.Payload), &rec); err != nil {
		out.err = fmt.Errorf("decode payload: %w", err)
		return out
	}
	if rec.ID == "" {
		// Pre-payload entries fall back to the current local state.
		item, err := ops.Get(entry.EntityID)
		if err != nil {
			out.err = err
			return out
		}
		if item == nil {
			out.stale = true
			return out
		}
		rec = *recordFromItem(item)
	}

	resp, err := ops.UpsertRemote(ctx, &rec)
	if err != nil {
		out.err = err
		return out
	}
	out.serverUpdatedAt = resp.UpdatedAt
	if out.serverUpdatedAt.IsZero() {
		out.serverUpdatedAt = e.now()
	}
	return out
}

// enqueueOrphans queues creates for items stuck in the local state with no
// outbox entry.
func (e *Engine) enqueueOrphans() error {
	for _, ops := range e.entities {
		items, err := ops.ListLocalOnly()
		if err != nil {
			return fmt.Errorf("%s: %w", ops.EntityType(), err)
		}
		for i := range items {
			item := &items[i]
			queued, err := ops.HasQueued(item.ID)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", ops.EntityType(), item.ID, err)
			}
			if queued {
				continue
			}
			payload, err := json.Marshal(recordFromItem(item))
			if err != nil {
				return fmt.Errorf("%s/%s: %w", ops.EntityType(), item.ID, err)
			}
			if err := e.store.EnqueueOutbox(ops.EntityType(), item.ID, models.OutboxCreate, payload); err != nil {
				return err
			}
			e.logger.Debug("requeued orphaned item", "entity", ops.EntityType(), "id", item.ID)
		}
	}
	return nil
}
