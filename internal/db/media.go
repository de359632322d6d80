package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/marcus/mx/internal/models"
)

const mediaColumns = `id, kind, title, author, description, duration_sec, mime_type, tags,
	sync_status, file_path, thumbnail, created_at, updated_at, server_updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMediaItem(row rowScanner) (*models.MediaItem, error) {
	var (
		item            models.MediaItem
		tags            string
		thumbnail       []byte
		createdAt       string
		updatedAt       string
		serverUpdatedAt sql.NullString
		deletedAt       sql.NullString
	)

	err := row.Scan(&item.ID, &item.Kind, &item.Title, &item.Author, &item.Description,
		&item.DurationSec, &item.MimeType, &tags, &item.SyncStatus, &item.FilePath,
		&thumbnail, &createdAt, &updatedAt, &serverUpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	if tags != "" {
		item.Tags = strings.Split(tags, ",")
	}
	item.Thumbnail = thumbnail

	if item.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("item %s created_at: %w", item.ID, err)
	}
	if item.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return nil, fmt.Errorf("item %s updated_at: %w", item.ID, err)
	}
	if item.ServerUpdatedAt, err = parseNullableTimestamp(serverUpdatedAt); err != nil {
		return nil, fmt.Errorf("item %s server_updated_at: %w", item.ID, err)
	}
	if item.DeletedAt, err = parseNullableTimestamp(deletedAt); err != nil {
		return nil, fmt.Errorf("item %s deleted_at: %w", item.ID, err)
	}

	return &item, nil
}

func nullableTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timeToDB(*t)
}

// CreateMediaItem inserts a new item. Generates an ID and fills timestamps
// when the caller left them zero.
func (db *DB) CreateMediaItem(item *models.MediaItem) error {
	return db.withWriteLock(func() error {
		if !models.IsValidKind(item.Kind) {
			return fmt.Errorf("invalid kind: %s", item.Kind)
		}
		if item.ID == "" {
			id, err := generateItemID(item.Kind)
			if err != nil {
				return fmt.Errorf("generate id: %w", err)
			}
			item.ID = id
		}

		now := time.Now().UTC()
		if item.CreatedAt.IsZero() {
			item.CreatedAt = now
		}
		if item.UpdatedAt.IsZero() {
			item.UpdatedAt = now
		}
		if item.SyncStatus == "" {
			item.SyncStatus = models.SyncLocal
		}

		_, err := db.conn.Exec(`
			INSERT INTO media_items (`+mediaColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, item.ID, item.Kind, item.Title, item.Author, item.Description,
			item.DurationSec, item.MimeType, strings.Join(item.Tags, ","),
			item.SyncStatus, item.FilePath, item.Thumbnail,
			timeToDB(item.CreatedAt), timeToDB(item.UpdatedAt),
			nullableTimeArg(item.ServerUpdatedAt), nullableTimeArg(item.DeletedAt))
		if err != nil {
			return fmt.Errorf("insert media item: %w", err)
		}
		return nil
	})
}

// GetMediaItem fetches a single item by ID. Returns an error for unknown IDs.
func (db *DB) GetMediaItem(id string) (*models.MediaItem, error) {
	row := db.conn.QueryRow(`SELECT `+mediaColumns+` FROM media_items WHERE id = ?`, id)
	item, err := scanMediaItem(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("media item not found: %s", id)
	}
	return item, err
}

// HasMediaItem reports whether an item exists without loading it.
func (db *DB) HasMediaItem(id string) (bool, error) {
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM media_items WHERE id = ?`, id).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateMediaItem writes caller-edited fields and bumps updated_at.
func (db *DB) UpdateMediaItem(item *models.MediaItem) error {
	item.UpdatedAt = time.Now().UTC()
	return db.PutMediaItem(item)
}

// PutMediaItem writes the item verbatim, inserting or replacing the stored row.
// The merge path uses this to persist resolved records with exact timestamps.
func (db *DB) PutMediaItem(item *models.MediaItem) error {
	return db.withWriteLock(func() error {
		_, err := db.conn.Exec(`
			INSERT INTO media_items (`+mediaColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				kind = excluded.kind,
				title = excluded.title,
				author = excluded.author,
				description = excluded.description,
				duration_sec = excluded.duration_sec,
				mime_type = excluded.mime_type,
				tags = excluded.tags,
				sync_status = excluded.sync_status,
				file_path = excluded.file_path,
				thumbnail = excluded.thumbnail,
				created_at = excluded.created_at,
				updated_at = excluded.updated_at,
				server_updated_at = excluded.server_updated_at,
				deleted_at = excluded.deleted_at
		`, item.ID, item.Kind, item.Title, item.Author, item.Description,
			item.DurationSec, item.MimeType, strings.Join(item.Tags, ","),
			item.SyncStatus, item.FilePath, item.Thumbnail,
			timeToDB(item.CreatedAt), timeToDB(item.UpdatedAt),
			nullableTimeArg(item.ServerUpdatedAt), nullableTimeArg(item.DeletedAt))
		if err != nil {
			return fmt.Errorf("put media item %s: %w", item.ID, err)
		}
		return nil
	})
}

// SoftDeleteMediaItem sets the tombstone and bumps updated_at so the
// deletion participates in conflict resolution like any other edit.
func (db *DB) SoftDeleteMediaItem(id string) error {
	return db.withWriteLock(func() error {
		now := timeToDB(time.Now().UTC())
		res, err := db.conn.Exec(`
			UPDATE media_items SET deleted_at = ?, updated_at = ?, sync_status = ?
			WHERE id = ? AND deleted_at IS NULL
		`, now, now, models.SyncPending, id)
		if err != nil {
			return fmt.Errorf("delete media item %s: %w", id, err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return fmt.Errorf("media item not found: %s", id)
		}
		return nil
	})
}

// MarkItemSynced records a successful upload or remote-win merge.
func (db *DB) MarkItemSynced(id string, serverUpdatedAt time.Time) error {
	return db.withWriteLock(func() error {
		_, err := db.conn.Exec(`
			UPDATE media_items SET sync_status = ?, server_updated_at = ? WHERE id = ?
		`, models.SyncSynced, timeToDB(serverUpdatedAt), id)
		return err
	})
}

// MarkItemPending flags an item as having unsynced local changes.
func (db *DB) MarkItemPending(id string) error {
	return db.withWriteLock(func() error {
		_, err := db.conn.Exec(`
			UPDATE media_items SET sync_status = ? WHERE id = ?
		`, models.SyncPending, id)
		return err
	})
}

// ListMediaItemsOptions filters ListMediaItems
type ListMediaItemsOptions struct {
	Kind           models.Kind
	Status         models.SyncStatus
	Tag            string
	IncludeDeleted bool
	UpdatedAfter   *time.Time
	Limit          int
}

// ListMediaItems returns items matching the options, newest update first.
func (db *DB) ListMediaItems(opts ListMediaItemsOptions) ([]models.MediaItem, error) {
	query := `SELECT ` + mediaColumns + ` FROM media_items WHERE 1=1`
	var args []any

	if !opts.IncludeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	if opts.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, opts.Kind)
	}
	if opts.Status != "" {
		query += ` AND sync_status = ?`
		args = append(args, opts.Status)
	}
	if opts.Tag != "" {
		query += ` AND (',' || tags || ',') LIKE ?`
		args = append(args, "%,"+opts.Tag+",%")
	}
	if opts.UpdatedAfter != nil {
		query += ` AND updated_at > ?`
		args = append(args, timeToDB(*opts.UpdatedAfter))
	}

	query += ` ORDER BY updated_at DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list media items: %w", err)
	}
	defer rows.Close()

	var items []models.MediaItem
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// GetLibraryStats returns aggregate counts for status displays.
func (db *DB) GetLibraryStats() (*models.LibraryStats, error) {
	stats := &models.LibraryStats{
		ByKind:   make(map[models.Kind]int),
		ByStatus: make(map[models.SyncStatus]int),
	}

	rows, err := db.conn.Query(`
		SELECT kind, sync_status, COUNT(*) FROM media_items
		WHERE deleted_at IS NULL
		GROUP BY kind, sync_status
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var kind models.Kind
		var status models.SyncStatus
		var count int
		if err := rows.Scan(&kind, &status, &count); err != nil {
			return nil, err
		}
		stats.Total += count
		stats.ByKind[kind] += count
		stats.ByStatus[status] += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.Pending, err = db.CountPendingOutbox(DefaultMaxRetries)
	if err != nil {
		return nil, err
	}
	stats.Failed, err = db.CountFailedOutbox(DefaultMaxRetries)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
