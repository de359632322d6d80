package db

import (
	"fmt"
	"testing"
)

func TestRecordSyncHistory(t *testing.T) {
	db := testDB(t)

	// Empty batch is a no-op.
	if err := db.RecordSyncHistory(nil); err != nil {
		t.Fatalf("RecordSyncHistory(nil) failed: %v", err)
	}

	entries := []SyncHistoryEntry{
		{Direction: "upload", Action: "create", EntityType: "audio", EntityID: "aud-00000001"},
		{Direction: "upload", Action: "delete", EntityType: "video", EntityID: "vid-00000001"},
		{Direction: "download", Action: "merge", EntityType: "audio", EntityID: "aud-00000002"},
	}
	if err := db.RecordSyncHistory(entries); err != nil {
		t.Fatalf("RecordSyncHistory failed: %v", err)
	}

	tail, err := db.GetSyncHistoryTail(10)
	if err != nil {
		t.Fatalf("GetSyncHistoryTail failed: %v", err)
	}
	if len(tail) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(tail))
	}
	// Oldest first.
	if tail[0].EntityID != "aud-00000001" || tail[2].EntityID != "aud-00000002" {
		t.Errorf("tail order wrong: %s .. %s", tail[0].EntityID, tail[2].EntityID)
	}
	for _, e := range tail {
		if e.Timestamp.IsZero() {
			t.Errorf("entry %d has zero timestamp", e.ID)
		}
	}
}

func TestGetSyncHistoryTailLimit(t *testing.T) {
	db := testDB(t)

	for i := 0; i < 5; i++ {
		entry := SyncHistoryEntry{
			Direction: "upload", Action: "create",
			EntityType: "audio", EntityID: fmt.Sprintf("aud-%08d", i),
		}
		if err := db.RecordSyncHistory([]SyncHistoryEntry{entry}); err != nil {
			t.Fatalf("RecordSyncHistory failed: %v", err)
		}
	}

	tail, err := db.GetSyncHistoryTail(2)
	if err != nil {
		t.Fatalf("GetSyncHistoryTail failed: %v", err)
	}
	if len(tail) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(tail))
	}
	// The newest two, oldest first.
	if tail[0].EntityID != "aud-00000003" || tail[1].EntityID != "aud-00000004" {
		t.Errorf("tail contents wrong: %s, %s", tail[0].EntityID, tail[1].EntityID)
	}
}

func TestPruneSyncHistory(t *testing.T) {
	db := testDB(t)

	for i := 0; i < 10; i++ {
		entry := SyncHistoryEntry{
			Direction: "download", Action: "merge",
			EntityType: "video", EntityID: fmt.Sprintf("vid-%08d", i),
		}
		if err := db.RecordSyncHistory([]SyncHistoryEntry{entry}); err != nil {
			t.Fatalf("RecordSyncHistory failed: %v", err)
		}
	}

	if err := db.PruneSyncHistory(3); err != nil {
		t.Fatalf("PruneSyncHistory failed: %v", err)
	}

	tail, err := db.GetSyncHistoryTail(100)
	if err != nil {
		t.Fatalf("GetSyncHistoryTail failed: %v", err)
	}
	if len(tail) != 3 {
		t.Fatalf("expected 3 entries after prune, got %d", len(tail))
	}
	if tail[0].EntityID != "vid-00000007" {
		t.Errorf("prune kept the wrong rows, oldest is %s", tail[0].EntityID)
	}
}
