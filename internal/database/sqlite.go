package database

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// localSchema holds every record kind in its own table plus a shared
// attachment table keyed (record_id, idx).
const localSchema = `
CREATE TABLE IF NOT EXISTS incidents (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	type TEXT NOT NULL,
	severity TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	latitude REAL NOT NULL DEFAULT 0,
	longitude REAL NOT NULL DEFAULT 0,
	action_status TEXT NOT NULL DEFAULT 'reported',
	sync_status TEXT NOT NULL DEFAULT 'pending',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS aid_requests (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	category TEXT NOT NULL,
	quantity INTEGER NOT NULL DEFAULT 0,
	urgency TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	delivery_status TEXT NOT NULL DEFAULT 'requested',
	approved INTEGER NOT NULL DEFAULT 0,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS shelter_sites (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	latitude REAL NOT NULL DEFAULT 0,
	longitude REAL NOT NULL DEFAULT 0,
	capacity INTEGER NOT NULL DEFAULT 0,
	occupancy INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL DEFAULT 'open',
	sync_status TEXT NOT NULL DEFAULT 'pending',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS volunteers (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	skills TEXT NOT NULL DEFAULT '',
	assignment TEXT NOT NULL DEFAULT '',
	verified INTEGER NOT NULL DEFAULT 0,
	sync_status TEXT NOT NULL DEFAULT 'pending',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS attachments (
	record_id TEXT NOT NULL,
	idx INTEGER NOT NULL,
	local_path TEXT NOT NULL DEFAULT '',
	remote_locator TEXT NOT NULL DEFAULT '',
	upload_state TEXT NOT NULL DEFAULT 'local_only',
	quality TEXT NOT NULL DEFAULT 'none',
	PRIMARY KEY (record_id, idx)
);
CREATE INDEX IF NOT EXISTS idx_incidents_sync_status ON incidents(sync_status);
CREATE INDEX IF NOT EXISTS idx_aid_requests_sync_status ON aid_requests(sync_status);
CREATE INDEX IF NOT EXISTS idx_shelter_sites_sync_status ON shelter_sites(sync_status);
CREATE INDEX IF NOT EXISTS idx_volunteers_sync_status ON volunteers(sync_status);
CREATE INDEX IF NOT EXISTS idx_attachments_upload_state ON attachments(upload_state);
PRAGMA journal_mode=WAL;
PRAGMA synchronous=NORMAL;
PRAGMA foreign_keys=ON;
`

// NewSQLite opens (creating if necessary) the on-device record store.
func NewSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	if _, err := db.Exec(localSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize local schema: %w", err)
	}

	return db, nil
}
