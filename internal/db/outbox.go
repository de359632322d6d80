package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/marcus/mx/internal/models"
)

// DefaultMaxRetries is the retry budget for outbox entries. Entries at or
// past the budget are excluded from upload passes until manually reset.
const DefaultMaxRetries = 5

// OutboxEntry represents one queued change waiting for upload.
type OutboxEntry struct {
	ID            int64
	EntityType    string
	EntityID      string
	Action        models.OutboxAction
	Payload       string
	RetryCount    int
	LastError     string
	LastAttemptAt *time.Time
	CreatedAt     time.Time
}

const outboxColumns = `id, entity_type, entity_id, action, payload, retry_count, last_error, last_attempt_at, created_at`

func scanOutboxEntry(row rowScanner) (*OutboxEntry, error) {
	var (
		e             OutboxEntry
		lastAttemptAt sql.NullString
		createdAt     string
	)
	if err := row.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.Payload,
		&e.RetryCount, &e.LastError, &lastAttemptAt, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if e.LastAttemptAt, err = parseNullableTimestamp(lastAttemptAt); err != nil {
		return nil, fmt.Errorf("outbox %d last_attempt_at: %w", e.ID, err)
	}
	if e.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("outbox %d created_at: %w", e.ID, err)
	}
	return &e, nil
}

// EnqueueOutbox records a change for upload. Re-enqueueing the same
// (entity_type, entity_id, action) replaces the payload and resets the retry
// state but keeps the original created_at, so queue order reflects the first
// time the change appeared.
func (db *DB) EnqueueOutbox(entityType, entityID string, action models.OutboxAction, payload []byte) error {
	return db.withWriteLock(func() error {
		if !models.IsValidOutboxAction(action) {
			return fmt.Errorf("invalid outbox action: %s", action)
		}
		body := string(payload)
		if body == "" {
			body = "{}"
		}
		_, err := db.conn.Exec(`
			INSERT INTO outbox (entity_type, entity_id, action, payload, retry_count, last_error, created_at)
			VALUES (?, ?, ?, ?, 0, '', ?)
			ON CONFLICT(entity_type, entity_id, action) DO UPDATE SET
				payload = excluded.payload,
				retry_count = 0,
				last_error = '',
				last_attempt_at = NULL
		`, entityType, entityID, action, body, timeToDB(time.Now().UTC()))
		if err != nil {
			return fmt.Errorf("enqueue outbox %s/%s %s: %w", entityType, entityID, action, err)
		}
		return nil
	})
}

func (db *DB) listOutbox(where string, args ...any) ([]OutboxEntry, error) {
	rows, err := db.conn.Query(`
		SELECT `+outboxColumns+` FROM outbox `+where+` ORDER BY created_at, id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list outbox: %w", err)
	}
	defer rows.Close()

	var entries []OutboxEntry
	for rows.Next() {
		e, err := scanOutboxEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// ListPendingOutbox returns entries still within the retry budget, FIFO.
func (db *DB) ListPendingOutbox(maxRetries int) ([]OutboxEntry, error) {
	return db.listOutbox(`WHERE retry_count < ?`, maxRetries)
}

// ListFailedOutbox returns entries that exhausted the retry budget.
func (db *DB) ListFailedOutbox(maxRetries int) ([]OutboxEntry, error) {
	return db.listOutbox(`WHERE retry_count >= ?`, maxRetries)
}

// GetOutboxEntry fetches one entry by ID.
func (db *DB) GetOutboxEntry(id int64) (*OutboxEntry, error) {
	row := db.conn.QueryRow(`SELECT `+outboxColumns+` FROM outbox WHERE id = ?`, id)
	e, err := scanOutboxEntry(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("outbox entry not found: %d", id)
	}
	return e, err
}

// HasOutboxEntry reports whether any action is queued for the entity.
func (db *DB) HasOutboxEntry(entityType, entityID string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`
		SELECT COUNT(*) FROM outbox WHERE entity_type = ? AND entity_id = ?
	`, entityType, entityID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RecordOutboxFailure bumps the retry counter after a failed upload attempt.
func (db *DB) RecordOutboxFailure(id int64, attemptErr string, at time.Time) error {
	return db.withWriteLock(func() error {
		_, err := db.conn.Exec(`
			UPDATE outbox SET retry_count = retry_count + 1, last_error = ?, last_attempt_at = ?
			WHERE id = ?
		`, attemptErr, timeToDB(at), id)
		return err
	})
}

// ResetOutboxEntry zeroes the retry state so a failed entry is retried.
func (db *DB) ResetOutboxEntry(id int64) error {
	return db.withWriteLock(func() error {
		res, err := db.conn.Exec(`
			UPDATE outbox SET retry_count = 0, last_error = '', last_attempt_at = NULL
			WHERE id = ?
		`, id)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return fmt.Errorf("outbox entry not found: %d", id)
		}
		return nil
	})
}

// RemoveOutboxEntry deletes an entry after successful upload.
func (db *DB) RemoveOutboxEntry(id int64) error {
	return db.withWriteLock(func() error {
		_, err := db.conn.Exec(`DELETE FROM outbox WHERE id = ?`, id)
		return err
	})
}

// CountPendingOutbox counts entries within the retry budget.
func (db *DB) CountPendingOutbox(maxRetries int) (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM outbox WHERE retry_count < ?`, maxRetries).Scan(&count)
	return count, err
}

// CountFailedOutbox counts entries past the retry budget.
func (db *DB) CountFailedOutbox(maxRetries int) (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM outbox WHERE retry_count >= ?`, maxRetries).Scan(&count)
	return count, err
}

// ClearOutbox drops every queued entry.
func (db *DB) ClearOutbox() error {
	return db.withWriteLock(func() error {
		_, err := db.conn.Exec(`DELETE FROM outbox`)
		return err
	})
}
