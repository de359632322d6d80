package sync

import (
	"time"

	"github.com/marcus/mx/internal/db"
)

const (
	// UploadBatchSize is how many outbox entries are dispatched concurrently.
	UploadBatchSize = 10

	// DownloadPageSize is how many records one download request asks for.
	DownloadPageSize = 50

	// MaxRetryCount is the outbox retry budget. Entries that fail this many
	// times are parked until manually reset.
	MaxRetryCount = db.DefaultMaxRetries

	// baseRetryDelay seeds the retry schedule. An entry with n recorded
	// failures waits baseRetryDelay doubled n times: 2s, 4s, 8s, 16s, 32s.
	baseRetryDelay = 1000 * time.Millisecond
)

// Options controls one sync invocation.
type Options struct {
	// Background runs silently: errors are logged at debug level instead of
	// surfaced, and the pre-upload orphan scan is skipped.
	Background bool

	// Force ignores download cursors and re-scans the full remote library.
	Force bool
}

// Result summarizes one sync pass.
type Result struct {
	Success    bool
	Uploaded   int
	Downloaded int
	Failed     int
	Errors     []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Synced returns the total number of records moved in either direction.
func (r *Result) Synced() int {
	return r.Uploaded + r.Downloaded
}

func (r *Result) fail(msg string) *Result {
	r.Success = false
	r.Errors = append(r.Errors, msg)
	return r
}

// backoffDelay returns the wait imposed by n recorded failures.
func backoffDelay(failures int) time.Duration {
	return baseRetryDelay << failures
}

// entryEligible reports whether an outbox entry may be attempted now.
// Entries that never failed are always eligible.
func entryEligible(e db.OutboxEntry, now time.Time) bool {
	if e.RetryCount == 0 || e.LastAttemptAt == nil {
		return true
	}
	return !now.Before(e.LastAttemptAt.Add(backoffDelay(e.RetryCount)))
}
