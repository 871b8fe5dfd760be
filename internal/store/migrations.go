package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "Initial schema",
		SQL: `
CREATE TABLE IF NOT EXISTS hubs (
    id TEXT PRIMARY KEY,
    make TEXT NOT NULL,
    model TEXT NOT NULL,
    type TEXT,
    old REAL,
    left_flange_diameter REAL,
    right_flange_diameter REAL,
    left_flange_offset REAL,
    right_flange_offset REAL,
    spoke_hole_diameter REAL,
    spoke_holes INTEGER
);

CREATE TABLE IF NOT EXISTS rims (
    id TEXT PRIMARY KEY,
    make TEXT NOT NULL,
    model TEXT NOT NULL,
    type TEXT,
    erd REAL,
    osb REAL,
    inner_width REAL,
    outer_width REAL,
    holes INTEGER,
    material TEXT
);

CREATE TABLE IF NOT EXISTS spoke_types (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    material TEXT,
    shape TEXT,
    dimensions TEXT,
    min_reading REAL NOT NULL,
    max_reading REAL NOT NULL,
    min_tension REAL NOT NULL,
    max_tension REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS calibration_points (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    spoke_type_id TEXT NOT NULL REFERENCES spoke_types(id),
    reading REAL NOT NULL,
    tension REAL NOT NULL,
    UNIQUE(spoke_type_id, reading)
);

CREATE TABLE IF NOT EXISTS spokes (
    id TEXT PRIMARY KEY,
    spoke_type_id TEXT NOT NULL REFERENCES spoke_types(id),
    length REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS nipples (
    id TEXT PRIMARY KEY,
    material TEXT,
    diameter REAL,
    length REAL,
    color TEXT
);

CREATE TABLE IF NOT EXISTS wheel_builds (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft',
    hub_id TEXT,
    rim_id TEXT,
    spoke_left_id TEXT,
    spoke_right_id TEXT,
    nipple_id TEXT,
    lacing_pattern TEXT,
    spoke_count INTEGER,
    actual_spoke_length_left REAL,
    actual_spoke_length_right REAL,
    comments TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tension_sessions (
    id TEXT PRIMARY KEY,
    wheel_build_id TEXT NOT NULL,
    name TEXT NOT NULL,
    session_date DATETIME NOT NULL,
    notes TEXT,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tension_readings (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    spoke_number INTEGER NOT NULL,
    side TEXT NOT NULL,
    reading REAL NOT NULL,
    tension REAL,
    range_status TEXT NOT NULL,
    deviation_status TEXT NOT NULL,
    UNIQUE(session_id, spoke_number, side)
);

CREATE INDEX IF NOT EXISTS idx_calibration_spoke_type ON calibration_points(spoke_type_id, reading);
CREATE INDEX IF NOT EXISTS idx_sessions_build ON tension_sessions(wheel_build_id);
CREATE INDEX IF NOT EXISTS idx_readings_session ON tension_readings(session_id);
`,
	},
}

func (s *Store) Migrate() error {
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("ensure migrations table: %w", err)
	}

	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("get applied migrations: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}

		log.Printf("migrations: applying %d - %s", m.Version, m.Description)

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Description, time.Now().UTC(),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

func (s *Store) ensureMigrationsTable() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT,
			applied_at DATETIME
		)
	`)
	return err
}

func (s *Store) getAppliedMigrations() (map[int]bool, error) {
	rows, err := s.db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func (s *Store) MigrationVersion() (int, error) {
	var version sql.NullInt64
	err := s.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}
