package db

// SchemaVersion is the current database schema version
const SchemaVersion = 3

const schema = `
-- Media items table
CREATE TABLE IF NOT EXISTS media_items (
    id TEXT PRIMARY KEY,
    kind TEXT NOT NULL,
    title TEXT NOT NULL,
    author TEXT DEFAULT '',
    description TEXT DEFAULT '',
    duration_sec INTEGER DEFAULT 0,
    mime_type TEXT DEFAULT '',
    tags TEXT DEFAULT '',
    sync_status TEXT NOT NULL DEFAULT 'local',
    file_path TEXT DEFAULT '',
    thumbnail BLOB,
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL,
    server_updated_at DATETIME,
    deleted_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_media_kind ON media_items(kind);
CREATE INDEX IF NOT EXISTS idx_media_sync_status ON media_items(sync_status);
CREATE INDEX IF NOT EXISTS idx_media_updated_at ON media_items(updated_at);

-- Outbox queue: one row per pending (entity, action) change
CREATE TABLE IF NOT EXISTS outbox (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    entity_type TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    action TEXT NOT NULL,
    payload TEXT NOT NULL DEFAULT '{}',
    retry_count INTEGER NOT NULL DEFAULT 0,
    last_error TEXT DEFAULT '',
    last_attempt_at DATETIME,
    created_at DATETIME NOT NULL,
    UNIQUE(entity_type, entity_id, action)
);

CREATE INDEX IF NOT EXISTS idx_outbox_created_at ON outbox(created_at);

-- Download cursors, one per entity type
CREATE TABLE IF NOT EXISTS sync_cursors (
    entity_type TEXT PRIMARY KEY,
    last_sync_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Sync history for status display and debugging
CREATE TABLE IF NOT EXISTS sync_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    direction TEXT NOT NULL,
    action TEXT NOT NULL,
    entity_type TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    detail TEXT DEFAULT '',
    timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_info (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
