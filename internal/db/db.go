package db

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps the harness event database connection.
type DB struct {
	conn *sql.DB
	dsn  string
}

// DefaultDSN returns the connection string, honoring the IVYHARNESS_DB
// environment variable.
func DefaultDSN() string {
	if dsn := os.Getenv("IVYHARNESS_DB"); dsn != "" {
		return dsn
	}
	return "postgres://localhost:5432/ivyharness?sslmode=disable"
}

// Open connects to the database at the given DSN.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	conn.SetMaxOpenConns(4)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{conn: conn, dsn: dsn}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.conn.Close()
}

// Conn returns the underlying *sql.DB for advanced queries.
func (d *DB) Conn() *sql.DB {
	return d.conn
}

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_events (
    id         BIGSERIAL PRIMARY KEY,
    run_id     TEXT NOT NULL,
    phase      TEXT,
    event      TEXT NOT NULL CHECK(event IN ('created','phase_started','phase_completed','phase_failed','command_rejected','analyzed')),
    detail     TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id, created_at DESC);

CREATE TABLE IF NOT EXISTS phase_commands (
    id          BIGSERIAL PRIMARY KEY,
    run_id      TEXT NOT NULL,
    phase       TEXT NOT NULL,
    position    INTEGER NOT NULL,
    command     TEXT NOT NULL,
    is_critical BOOLEAN NOT NULL,
    kind        TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_phase_commands_run ON phase_commands(run_id, phase, position);

CREATE TABLE IF NOT EXISTS verdicts (
    id         BIGSERIAL PRIMARY KEY,
    run_id     TEXT NOT NULL UNIQUE,
    passed     BOOLEAN NOT NULL,
    summary    TEXT NOT NULL,
    services   INTEGER NOT NULL,
    failures   TEXT,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Migrate applies the database schema.
func (d *DB) Migrate() error {
	var count int
	err := d.conn.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = 1").Scan(&count)
	if err == nil && count > 0 {
		return nil
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(schemaV1); err != nil {
		return fmt.Errorf("apply schema v1: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	return tx.Commit()
}

// Reset drops all tables and re-applies the schema.
func (d *DB) Reset() error {
	tables := []string{"verdicts", "phase_commands", "run_events", "schema_version"}
	for _, t := range tables {
		if _, err := d.conn.Exec("DROP TABLE IF EXISTS " + t); err != nil {
			return fmt.Errorf("drop table %s: %w", t, err)
		}
	}
	return d.Migrate()
}
