package db

import (
	"database/sql"
	"fmt"
)

// columnExists checks whether a column exists on a table
func (db *DB) columnExists(table, column string) (bool, error) {
	query := fmt.Sprintf("PRAGMA table_info(%s);", table)
	rows, err := db.conn.Query(query)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}

	return false, rows.Err()
}

// tableExists checks whether a table exists in the database
func (db *DB) tableExists(table string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetSchemaVersion returns the current schema version from the database
func (db *DB) GetSchemaVersion() (int, error) {
	var version string
	err := db.conn.QueryRow("SELECT value FROM schema_info WHERE key = 'version'").Scan(&version)
	if err == sql.ErrNoRows {
		// No version set, assume version 0 (pre-migration)
		return 0, nil
	}
	if err != nil {
		// Table might not exist yet
		return 0, nil
	}
	var v int
	if _, err := fmt.Sscanf(version, "%d", &v); err != nil {
		return 0, fmt.Errorf("parse schema version %q: %w", version, err)
	}
	return v, nil
}

// SetSchemaVersion records the schema version in the database
func (db *DB) SetSchemaVersion(version int) error {
	return db.withWriteLock(func() error {
		return db.setSchemaVersionInternal(version)
	})
}

func (db *DB) setSchemaVersionInternal(version int) error {
	_, err := db.conn.Exec(`
		INSERT INTO schema_info (key, value) VALUES ('version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, fmt.Sprintf("%d", version))
	return err
}

// RunMigrations applies any pending schema migrations.
// Returns the number of migrations run.
func (db *DB) RunMigrations() (int, error) {
	var migrationsRun int
	err := db.withWriteLock(func() error {
		var err error
		migrationsRun, err = db.runMigrationsInternal()
		return err
	})
	return migrationsRun, err
}

func (db *DB) runMigrationsInternal() (int, error) {
	// Ensure schema_info exists before reading the version
	if _, err := db.conn.Exec(`CREATE TABLE IF NOT EXISTS schema_info (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		return 0, fmt.Errorf("create schema_info: %w", err)
	}

	version, err := db.GetSchemaVersion()
	if err != nil {
		return 0, err
	}

	migrationsRun := 0

	// v2: per-entity-type download cursors
	if version < 2 {
		exists, err := db.tableExists("sync_cursors")
		if err != nil {
			return migrationsRun, err
		}
		if !exists {
			if _, err := db.conn.Exec(`
				CREATE TABLE sync_cursors (
					entity_type TEXT PRIMARY KEY,
					last_sync_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)
			`); err != nil {
				return migrationsRun, fmt.Errorf("migration 2 (sync_cursors): %w", err)
			}
		}
		migrationsRun++
	}

	// v3: outbox retry diagnostics and sync history
	if version < 3 {
		hasCol, err := db.columnExists("outbox", "last_error")
		if err != nil {
			return migrationsRun, err
		}
		if !hasCol {
			if _, err := db.conn.Exec(`ALTER TABLE outbox ADD COLUMN last_error TEXT DEFAULT ''`); err != nil {
				return migrationsRun, fmt.Errorf("migration 3 (outbox.last_error): %w", err)
			}
		}
		exists, err := db.tableExists("sync_history")
		if err != nil {
			return migrationsRun, err
		}
		if !exists {
			if _, err := db.conn.Exec(`
				CREATE TABLE sync_history (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					direction TEXT NOT NULL,
					action TEXT NOT NULL,
					entity_type TEXT NOT NULL,
					entity_id TEXT NOT NULL,
					detail TEXT DEFAULT '',
					timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
				)
			`); err != nil {
				return migrationsRun, fmt.Errorf("migration 3 (sync_history): %w", err)
			}
		}
		migrationsRun++
	}

	if version < SchemaVersion {
		if err := db.setSchemaVersionInternal(SchemaVersion); err != nil {
			return migrationsRun, err
		}
	}

	return migrationsRun, nil
}
