package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SyncCursor tracks the download watermark for one entity type.
type SyncCursor struct {
	EntityType string
	LastSyncAt time.Time
	UpdatedAt  time.Time
}

// GetSyncCursor returns the cursor for the entity type, or nil if no
// download pass has completed yet.
func (db *DB) GetSyncCursor(entityType string) (*SyncCursor, error) {
	var (
		c          SyncCursor
		lastSyncAt string
		updatedAt  string
	)
	err := db.conn.QueryRow(`
		SELECT entity_type, last_sync_at, updated_at FROM sync_cursors WHERE entity_type = ?
	`, entityType).Scan(&c.EntityType, &lastSyncAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get sync cursor %s: %w", entityType, err)
	}
	if c.LastSyncAt, err = parseTimestamp(lastSyncAt); err != nil {
		return nil, fmt.Errorf("cursor %s last_sync_at: %w", entityType, err)
	}
	if c.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("cursor %s updated_at: %w", entityType, err)
	}
	return &c, nil
}

// SetSyncCursor advances the cursor. The watermark never moves backward;
// a stale value is silently ignored. Use ClearSyncCursor to force a full
// re-download.
func (db *DB) SetSyncCursor(entityType string, at time.Time) error {
	return db.withWriteLock(func() error {
		// Timestamps are stored as fixed-format UTC strings, so the
		// lexical comparison below matches chronological order.
		_, err := db.conn.Exec(`
			INSERT INTO sync_cursors (entity_type, last_sync_at, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(entity_type) DO UPDATE SET
				last_sync_at = excluded.last_sync_at,
				updated_at = excluded.updated_at
			WHERE excluded.last_sync_at > sync_cursors.last_sync_at
		`, entityType, timeToDB(at), timeToDB(time.Now().UTC()))
		if err != nil {
			return fmt.Errorf("set sync cursor %s: %w", entityType, err)
		}
		return nil
	})
}

// ClearSyncCursor removes the cursor so the next download scans everything.
func (db *DB) ClearSyncCursor(entityType string) error {
	return db.withWriteLock(func() error {
		_, err := db.conn.Exec(`DELETE FROM sync_cursors WHERE entity_type = ?`, entityType)
		return err
	})
}

// ClearAllSyncCursors removes every cursor.
func (db *DB) ClearAllSyncCursors() error {
	return db.withWriteLock(func() error {
		_, err := db.conn.Exec(`DELETE FROM sync_cursors`)
		return err
	})
}
