package sync

import (
	"testing"
	"time"

	"github.com/marcus/mx/internal/db"
)

func TestBackoffDelay(t *testing.T) {
	cases := []struct {
		failures int
		want     time.Duration
	}{
		{0, time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 32 * time.Second},
	}
	for _, tc := range cases {
		if got := backoffDelay(tc.failures); got != tc.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tc.failures, got, tc.want)
		}
	}
}

func TestEntryEligible(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	twoSecondsAgo := now.Add(-2 * time.Second)
	momentAgo := now.Add(-1500 * time.Millisecond)

	cases := []struct {
		name  string
		entry db.OutboxEntry
		want  bool
	}{
		{
			name:  "never attempted",
			entry: db.OutboxEntry{RetryCount: 0},
			want:  true,
		},
		{
			name:  "failed but no attempt timestamp",
			entry: db.OutboxEntry{RetryCount: 3},
			want:  true,
		},
		{
			name:  "one failure, exactly at the 2s boundary",
			entry: db.OutboxEntry{RetryCount: 1, LastAttemptAt: &twoSecondsAgo},
			want:  true,
		},
		{
			name:  "one failure, inside the 2s window",
			entry: db.OutboxEntry{RetryCount: 1, LastAttemptAt: &momentAgo},
			want:  false,
		},
		{
			name:  "two failures, inside the 4s window",
			entry: db.OutboxEntry{RetryCount: 2, LastAttemptAt: &twoSecondsAgo},
			want:  false,
		},
	}
	for _, tc := range cases {
		if got := entryEligible(tc.entry, now); got != tc.want {
			t.Errorf("%s: entryEligible = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestResultSynced(t *testing.T) {
	r := &Result{Uploaded: 3, Downloaded: 4}
	if r.Synced() != 7 {
		t.Errorf("Synced mismatch: got %d, want 7", r.Synced())
	}
}
