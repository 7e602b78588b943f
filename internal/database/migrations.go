package database

import "fmt"

type migration struct {
	version int
	name    string
	sql     string
}

// migrations run in order; each applied version is recorded in
// schema_version so restarts only apply what is new.
var migrations = []migration{
	{
		version: 1,
		name:    "create_reports",
		sql: `
			CREATE TABLE IF NOT EXISTS reports (
				id TEXT PRIMARY KEY,
				filename TEXT NOT NULL,
				analysis TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_reports_filename ON reports(filename);
		`,
	},
	{
		version: 2,
		name:    "create_report_langs",
		sql: `
			CREATE TABLE IF NOT EXISTS report_langs (
				report_id TEXT NOT NULL REFERENCES reports(id) ON DELETE CASCADE,
				lang TEXT NOT NULL,
				PRIMARY KEY (report_id, lang)
			);
			CREATE INDEX IF NOT EXISTS idx_report_langs_lang ON report_langs(lang);
		`,
	},
	{
		version: 3,
		name:    "create_operations",
		sql: `
			CREATE TABLE IF NOT EXISTS operations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				operation TEXT NOT NULL,
				filename TEXT NOT NULL,
				status TEXT NOT NULL,
				details TEXT,
				error TEXT,
				created_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_operations_created_at ON operations(created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_operations_operation ON operations(operation);
		`,
	},
}

func (db *DB) migrate() error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var current int
	if err := db.conn.QueryRow(
		"SELECT COALESCE(MAX(version), 0) FROM schema_version",
	).Scan(&current); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if _, err := db.conn.Exec(m.sql); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.name, err)
		}
		if _, err := db.conn.Exec(
			"INSERT INTO schema_version (version) VALUES (?)", m.version,
		); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.version, err)
		}
	}

	return nil
}
