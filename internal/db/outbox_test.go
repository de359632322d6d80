package db

import (
	"testing"
	"time"

	"github.com/marcus/mx/internal/models"
)

func TestEnqueueAndListOutbox(t *testing.T) {
	db := testDB(t)

	entries := []struct {
		entityType string
		entityID   string
		action     models.OutboxAction
	}{
		{"audio", "aud-00000001", models.OutboxCreate},
		{"audio", "aud-00000002", models.OutboxUpdate},
		{"video", "vid-00000001", models.OutboxDelete},
	}
	for _, e := range entries {
		if err := db.EnqueueOutbox(e.entityType, e.entityID, e.action, []byte(`{"id":"x"}`)); err != nil {
			t.Fatalf("EnqueueOutbox failed: %v", err)
		}
	}

	pending, err := db.ListPendingOutbox(DefaultMaxRetries)
	if err != nil {
		t.Fatalf("ListPendingOutbox failed: %v", err)
	}
	if len(pending) != 3 {
		t.Fatalf("expected 3 pending entries, got %d", len(pending))
	}

	// FIFO: listed in the order they were enqueued.
	for i, e := range entries {
		if pending[i].EntityID != e.entityID {
			t.Errorf("entry %d: got %s, want %s", i, pending[i].EntityID, e.entityID)
		}
		if pending[i].Action != e.action {
			t.Errorf("entry %d action: got %s, want %s", i, pending[i].Action, e.action)
		}
		if pending[i].RetryCount != 0 {
			t.Errorf("entry %d: fresh entry has retry_count %d", i, pending[i].RetryCount)
		}
	}
}

func TestEnqueueOutboxDedup(t *testing.T) {
	db := testDB(t)

	if err := db.EnqueueOutbox("audio", "aud-00000001", models.OutboxUpdate, []byte(`{"title":"v1"}`)); err != nil {
		t.Fatalf("EnqueueOutbox failed: %v", err)
	}
	first, err := db.ListPendingOutbox(DefaultMaxRetries)
	if err != nil {
		t.Fatalf("ListPendingOutbox failed: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(first))
	}

	// Simulate a failed attempt, then re-enqueue the same change.
	if err := db.RecordOutboxFailure(first[0].ID, "boom", time.Now().UTC()); err != nil {
		t.Fatalf("RecordOutboxFailure failed: %v", err)
	}
	if err := db.EnqueueOutbox("audio", "aud-00000001", models.OutboxUpdate, []byte(`{"title":"v2"}`)); err != nil {
		t.Fatalf("EnqueueOutbox (dedup) failed: %v", err)
	}

	after, err := db.ListPendingOutbox(DefaultMaxRetries)
	if err != nil {
		t.Fatalf("ListPendingOutbox failed: %v", err)
	}
	if len(after) != 1 {
		t.Fatalf("dedup should keep a single entry, got %d", len(after))
	}
	e := after[0]
	if e.Payload != `{"title":"v2"}` {
		t.Errorf("payload not replaced: got %s", e.Payload)
	}
	if e.RetryCount != 0 {
		t.Errorf("retry_count not reset: got %d", e.RetryCount)
	}
	if e.LastError != "" {
		t.Errorf("last_error not cleared: got %q", e.LastError)
	}
	if e.LastAttemptAt != nil {
		t.Error("last_attempt_at not cleared")
	}
	if !e.CreatedAt.Equal(first[0].CreatedAt) {
		t.Errorf("created_at changed on dedup: got %v, want %v", e.CreatedAt, first[0].CreatedAt)
	}

	// A different action for the same entity is a separate entry.
	if err := db.EnqueueOutbox("audio", "aud-00000001", models.OutboxDelete, nil); err != nil {
		t.Fatalf("EnqueueOutbox failed: %v", err)
	}
	both, _ := db.ListPendingOutbox(DefaultMaxRetries)
	if len(both) != 2 {
		t.Errorf("expected 2 entries for distinct actions, got %d", len(both))
	}
}

func TestEnqueueOutboxInvalidAction(t *testing.T) {
	db := testDB(t)

	if err := db.EnqueueOutbox("audio", "aud-00000001", "rename", nil); err == nil {
		t.Error("expected error for invalid action")
	}
}

func TestEnqueueOutboxEmptyPayload(t *testing.T) {
	db := testDB(t)

	if err := db.EnqueueOutbox("audio", "aud-00000001", models.OutboxDelete, nil); err != nil {
		t.Fatalf("EnqueueOutbox failed: %v", err)
	}
	entries, _ := db.ListPendingOutbox(DefaultMaxRetries)
	if len(entries) != 1 || entries[0].Payload != "{}" {
		t.Errorf("empty payload should be stored as {}, got %q", entries[0].Payload)
	}
}

func TestOutboxRetryBudget(t *testing.T) {
	db := testDB(t)

	if err := db.EnqueueOutbox("video", "vid-00000001", models.OutboxCreate, nil); err != nil {
		t.Fatalf("EnqueueOutbox failed: %v", err)
	}
	entries, _ := db.ListPendingOutbox(DefaultMaxRetries)
	id := entries[0].ID

	for i := 0; i < DefaultMaxRetries; i++ {
		if err := db.RecordOutboxFailure(id, "connection refused", time.Now().UTC()); err != nil {
			t.Fatalf("RecordOutboxFailure %d failed: %v", i, err)
		}
	}

	pending, err := db.ListPendingOutbox(DefaultMaxRetries)
	if err != nil {
		t.Fatalf("ListPendingOutbox failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("exhausted entry should leave the pending list, got %d", len(pending))
	}

	failed, err := db.ListFailedOutbox(DefaultMaxRetries)
	if err != nil {
		t.Fatalf("ListFailedOutbox failed: %v", err)
	}
	if len(failed) != 1 {
		t.Fatalf("expected 1 failed entry, got %d", len(failed))
	}
	if failed[0].RetryCount != DefaultMaxRetries {
		t.Errorf("retry_count mismatch: got %d, want %d", failed[0].RetryCount, DefaultMaxRetries)
	}
	if failed[0].LastError != "connection refused" {
		t.Errorf("last_error mismatch: got %q", failed[0].LastError)
	}
	if failed[0].LastAttemptAt == nil {
		t.Error("last_attempt_at not recorded")
	}

	np, _ := db.CountPendingOutbox(DefaultMaxRetries)
	nf, _ := db.CountFailedOutbox(DefaultMaxRetries)
	if np != 0 || nf != 1 {
		t.Errorf("counts mismatch: pending=%d failed=%d", np, nf)
	}

	// Reset puts the entry back in rotation.
	if err := db.ResetOutboxEntry(id); err != nil {
		t.Fatalf("ResetOutboxEntry failed: %v", err)
	}
	pending, _ = db.ListPendingOutbox(DefaultMaxRetries)
	if len(pending) != 1 {
		t.Fatalf("reset entry should be pending again, got %d", len(pending))
	}
	if pending[0].RetryCount != 0 || pending[0].LastError != "" || pending[0].LastAttemptAt != nil {
		t.Error("reset did not clear retry state")
	}
}

func TestResetOutboxEntryNotFound(t *testing.T) {
	db := testDB(t)

	if err := db.ResetOutboxEntry(42); err == nil {
		t.Error("expected error resetting unknown entry")
	}
}

func TestGetOutboxEntry(t *testing.T) {
	db := testDB(t)

	if err := db.EnqueueOutbox("audio", "aud-00000001", models.OutboxCreate, []byte(`{"id":"aud-00000001"}`)); err != nil {
		t.Fatalf("EnqueueOutbox failed: %v", err)
	}
	entries, _ := db.ListPendingOutbox(DefaultMaxRetries)

	e, err := db.GetOutboxEntry(entries[0].ID)
	if err != nil {
		t.Fatalf("GetOutboxEntry failed: %v", err)
	}
	if e.EntityID != "aud-00000001" {
		t.Errorf("EntityID mismatch: got %s", e.EntityID)
	}

	if _, err := db.GetOutboxEntry(9999); err == nil {
		t.Error("expected error for unknown entry ID")
	}
}

func TestHasOutboxEntry(t *testing.T) {
	db := testDB(t)

	ok, err := db.HasOutboxEntry("audio", "aud-00000001")
	if err != nil {
		t.Fatalf("HasOutboxEntry failed: %v", err)
	}
	if ok {
		t.Error("HasOutboxEntry should be false on empty queue")
	}

	if err := db.EnqueueOutbox("audio", "aud-00000001", models.OutboxUpdate, nil); err != nil {
		t.Fatalf("EnqueueOutbox failed: %v", err)
	}
	ok, _ = db.HasOutboxEntry("audio", "aud-00000001")
	if !ok {
		t.Error("HasOutboxEntry should be true after enqueue")
	}
	ok, _ = db.HasOutboxEntry("video", "aud-00000001")
	if ok {
		t.Error("HasOutboxEntry should match on entity type too")
	}
}

func TestRemoveAndClearOutbox(t *testing.T) {
	db := testDB(t)

	for _, id := range []string{"aud-00000001", "aud-00000002"} {
		if err := db.EnqueueOutbox("audio", id, models.OutboxCreate, nil); err != nil {
			t.Fatalf("EnqueueOutbox failed: %v", err)
		}
	}
	entries, _ := db.ListPendingOutbox(DefaultMaxRetries)

	if err := db.RemoveOutboxEntry(entries[0].ID); err != nil {
		t.Fatalf("RemoveOutboxEntry failed: %v", err)
	}
	left, _ := db.ListPendingOutbox(DefaultMaxRetries)
	if len(left) != 1 || left[0].EntityID != "aud-00000002" {
		t.Errorf("wrong entry removed, %d left", len(left))
	}

	if err := db.ClearOutbox(); err != nil {
		t.Fatalf("ClearOutbox failed: %v", err)
	}
	left, _ = db.ListPendingOutbox(DefaultMaxRetries)
	if len(left) != 0 {
		t.Errorf("expected empty queue after clear, got %d", len(left))
	}
}
