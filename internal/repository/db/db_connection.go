package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates a SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite serializes writers anyway; one connection keeps pragmas consistent.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", p, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

var pragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA foreign_keys = ON;",
	"PRAGMA busy_timeout = 5000;",
}

const schemaRooms = `
CREATE TABLE IF NOT EXISTS rooms (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    address TEXT NOT NULL DEFAULT ''
);
`

const schemaDevices = `
CREATE TABLE IF NOT EXISTS devices (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    subtype TEXT NOT NULL DEFAULT '',
    room_id TEXT NOT NULL REFERENCES rooms(id),
    owner_id TEXT NOT NULL DEFAULT '',
    pin INTEGER NOT NULL DEFAULT 0,
    state_on BOOLEAN NOT NULL DEFAULT 0,
    state_value REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_devices_room ON devices(room_id);
`

const schemaAutomations = `
CREATE TABLE IF NOT EXISTS automations (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    active BOOLEAN NOT NULL,
    trigger_kind TEXT NOT NULL,
    trigger_device_id TEXT,
    trigger_operator TEXT,
    trigger_threshold REAL,
    schedule_start INTEGER,
    schedule_end INTEGER,
    schedule_days TEXT,
    updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_automations_trigger_device ON automations(trigger_device_id);
`

const schemaAutomationActions = `
CREATE TABLE IF NOT EXISTS automation_actions (
    automation_id TEXT NOT NULL REFERENCES automations(id) ON DELETE CASCADE,
    position INTEGER NOT NULL,
    device_id TEXT NOT NULL,
    command TEXT NOT NULL,
    duration_s INTEGER,
    shutoff_device_id TEXT,
    shutoff_threshold REAL,
    PRIMARY KEY (automation_id, position)
);
CREATE INDEX IF NOT EXISTS idx_automation_actions_device ON automation_actions(device_id);
`

const schemaDeviceData = `
CREATE TABLE IF NOT EXISTS device_data (
    id TEXT PRIMARY KEY,
    device_id TEXT NOT NULL,
    sensor_type TEXT NOT NULL,
    value TEXT NOT NULL,
    unit TEXT NOT NULL DEFAULT '',
    recorded_at TIMESTAMP NOT NULL,
    meta TEXT
);
CREATE INDEX IF NOT EXISTS idx_device_data_device_time ON device_data(device_id, recorded_at);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// no-op after a successful commit
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaRooms,
		schemaDevices,
		schemaAutomations,
		schemaAutomationActions,
		schemaDeviceData,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
