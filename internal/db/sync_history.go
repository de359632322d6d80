package db

import (
	"fmt"
	"time"
)

// SyncHistoryEntry represents a row from the sync_history table.
type SyncHistoryEntry struct {
	ID         int64
	Direction  string // "upload" or "download"
	Action     string // "create", "update", "delete", "merge"
	EntityType string
	EntityID   string
	Detail     string
	Timestamp  time.Time
}

// RecordSyncHistory appends entries to the history log. Returns nil if
// entries is empty.
func (db *DB) RecordSyncHistory(entries []SyncHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return db.withWriteLock(func() error {
		stmt, err := db.conn.Prepare(`
			INSERT INTO sync_history (direction, action, entity_type, entity_id, detail, timestamp)
			VALUES (?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range entries {
			ts := e.Timestamp
			if ts.IsZero() {
				ts = time.Now().UTC()
			}
			if _, err := stmt.Exec(e.Direction, e.Action, e.EntityType, e.EntityID, e.Detail, timeToDB(ts)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetSyncHistoryTail returns the last N entries in chronological order (oldest first).
func (db *DB) GetSyncHistoryTail(limit int) ([]SyncHistoryEntry, error) {
	rows, err := db.conn.Query(`
		SELECT id, direction, action, entity_type, entity_id, detail, timestamp
		FROM sync_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []SyncHistoryEntry
	for rows.Next() {
		var e SyncHistoryEntry
		var ts string
		if err := rows.Scan(&e.ID, &e.Direction, &e.Action, &e.EntityType, &e.EntityID, &e.Detail, &ts); err != nil {
			return nil, err
		}
		if e.Timestamp, err = parseTimestamp(ts); err != nil {
			return nil, fmt.Errorf("sync_history %d timestamp: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// PruneSyncHistory keeps the newest `keep` entries and deletes the rest.
func (db *DB) PruneSyncHistory(keep int) error {
	return db.withWriteLock(func() error {
		_, err := db.conn.Exec(`
			DELETE FROM sync_history WHERE id NOT IN (
				SELECT id FROM sync_history ORDER BY id DESC LIMIT ?
			)
		`, keep)
		return err
	})
}
