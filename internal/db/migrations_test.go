package db

import (
	"testing"
)

func TestSchemaVersionAfterInitialize(t *testing.T) {
	db := testDB(t)

	version, err := db.GetSchemaVersion()
	if err != nil {
		t.Fatalf("GetSchemaVersion failed: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("version mismatch: got %d, want %d", version, SchemaVersion)
	}
}

func TestRunMigrationsIdempotent(t *testing.T) {
	db := testDB(t)

	// A second run on a current database must change nothing.
	n, err := db.RunMigrations()
	if err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 migrations on a current schema, got %d", n)
	}
}

func TestMigrationsFromV1(t *testing.T) {
	db := testDB(t)

	// Roll the database back to the v1 shape and replay.
	if _, err := db.conn.Exec(`DROP TABLE sync_cursors`); err != nil {
		t.Fatalf("drop sync_cursors: %v", err)
	}
	if _, err := db.conn.Exec(`DROP TABLE sync_history`); err != nil {
		t.Fatalf("drop sync_history: %v", err)
	}
	if err := db.SetSchemaVersion(1); err != nil {
		t.Fatalf("SetSchemaVersion failed: %v", err)
	}

	n, err := db.RunMigrations()
	if err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 migrations from v1, got %d", n)
	}

	for _, table := range []string{"sync_cursors", "sync_history"} {
		exists, err := db.tableExists(table)
		if err != nil {
			t.Fatalf("tableExists(%s) failed: %v", table, err)
		}
		if !exists {
			t.Errorf("table %s missing after migration", table)
		}
	}
	hasCol, err := db.columnExists("outbox", "last_error")
	if err != nil {
		t.Fatalf("columnExists failed: %v", err)
	}
	if !hasCol {
		t.Error("outbox.last_error missing after migration")
	}

	version, _ := db.GetSchemaVersion()
	if version != SchemaVersion {
		t.Errorf("version not advanced: got %d, want %d", version, SchemaVersion)
	}
}
