package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/marcus/mx/internal/db"
	"github.com/marcus/mx/internal/syncclient"
)

// Download pulls remote changes for every entity type and merges them into
// the local store. Each entity type runs an independent pass: a page-fetch
// failure aborts that type without touching the others.
func (e *Engine) Download(ctx context.Context, opts Options) *Result {
	res := &Result{Success: true, StartedAt: e.now()}
	defer func() { res.FinishedAt = e.now() }()

	for _, ops := range e.entities {
		e.downloadEntity(ctx, ops, opts, res)
	}
	return res
}

func (e *Engine) downloadEntity(ctx context.Context, ops EntityOps, opts Options, res *Result) {
	entityType := ops.EntityType()

	// The cursor persisted after a successful pass is the time the pass
	// started, not the newest record seen. Records written server-side while
	// the pass ran are picked up again next time instead of being lost.
	passStart := e.now()

	stored, err := e.store.GetSyncCursor(entityType)
	if err != nil {
		res.fail(fmt.Sprintf("cursor %s: %v", entityType, err))
		return
	}
	hadCursor := stored != nil

	// Zero watermark means no filter: the server returns everything.
	var watermark time.Time
	if hadCursor && !opts.Force {
		watermark = stored.LastSyncAt
	}

	merged := 0
	var history []db.SyncHistoryEntry
	pageAfter := watermark
	for {
		page, err := ops.ListRemote(ctx, DownloadPageSize, pageAfter)
		if err != nil {
			// Abort this entity type; the cursor stays put so nothing is
			// skipped on the next pass.
			res.fail(fmt.Sprintf("list %s: %v", entityType, err))
			return
		}

		var pageMax time.Time
		for i := range page.Records {
			rec := &page.Records[i]
			if rec.UpdatedAt.After(pageMax) {
				pageMax = rec.UpdatedAt
			}
			if err := e.mergeRecord(ops, rec); err != nil {
				res.Failed++
				res.Success = false
				res.Errors = append(res.Errors, fmt.Sprintf("merge %s/%s: %v", entityType, rec.ID, err))
				continue
			}
			merged++
			history = append(history, db.SyncHistoryEntry{
				Direction:  "download",
				Action:     "merge",
				EntityType: entityType,
				EntityID:   rec.ID,
			})
		}

		// A short page means the server has nothing further. On a full page
		// the watermark moves to the newest updated_at observed; the order
		// the server returned records in does not matter.
		if len(page.Records) < DownloadPageSize {
			break
		}
		if !pageMax.After(pageAfter) {
			// Full page that cannot advance the watermark; stop rather
			// than re-request the same window.
			break
		}
		pageAfter = pageMax
	}

	if merged > 0 || !hadCursor {
		if err := e.store.SetSyncCursor(entityType, passStart); err != nil {
			res.fail(fmt.Sprintf("advance cursor %s: %v", entityType, err))
		}
	}

	if err := e.store.RecordSyncHistory(history); err != nil {
		e.logger.Debug("record sync history", "error", err)
	}
	res.Downloaded += merged
}

// mergeRecord validates and applies one remote record to the local store.
func (e *Engine) mergeRecord(ops EntityOps, rec *syncclient.MediaRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	local, err := ops.Get(rec.ID)
	if err != nil {
		return err
	}

	remote := itemFromRecord(rec)
	if local == nil {
		if remote.Deleted() {
			// A tombstone for something this device never had.
			return nil
		}
		return ops.Put(remote)
	}

	return ops.Put(Resolve(local, remote))
}
