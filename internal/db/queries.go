package db

import (
	"database/sql"
	"fmt"
	"strings"

	"ivyharness/internal/command"
)

// RunEvent represents a row in the run_events table.
type RunEvent struct {
	ID        int64
	RunID     string
	Phase     string
	Event     string
	Detail    string
	CreatedAt string
}

// VerdictRow represents a row in the verdicts table.
type VerdictRow struct {
	ID        int64
	RunID     string
	Passed    bool
	Summary   string
	Services  int
	Failures  []string
	CreatedAt string
}

// LogRunEvent inserts a run lifecycle event. Phase may be empty for events
// not tied to a phase.
func (d *DB) LogRunEvent(runID, phase, event, detail string) error {
	_, err := d.conn.Exec(
		`INSERT INTO run_events (run_id, phase, event, detail) VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''))`,
		runID, phase, event, detail,
	)
	if err != nil {
		return fmt.Errorf("log run event: %w", err)
	}
	return nil
}

// GetRunHistory returns all events for a run, newest first.
func (d *DB) GetRunHistory(runID string) ([]RunEvent, error) {
	rows, err := d.conn.Query(
		`SELECT id, run_id, phase, event, detail, created_at::text
		 FROM run_events WHERE run_id = $1 ORDER BY created_at DESC, id DESC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("get run history: %w", err)
	}
	defer rows.Close()

	var events []RunEvent
	for rows.Next() {
		var e RunEvent
		var phase, detail sql.NullString
		if err := rows.Scan(&e.ID, &e.RunID, &phase, &e.Event, &detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run event: %w", err)
		}
		if phase.Valid {
			e.Phase = phase.String
		}
		if detail.Valid {
			e.Detail = detail.String
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// SaveCommands records a phase's generated command list, replacing any
// previous generation for the same run and phase.
func (d *DB) SaveCommands(runID string, phase command.Phase, records []command.Record) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM phase_commands WHERE run_id = $1 AND phase = $2`,
		runID, string(phase),
	); err != nil {
		return fmt.Errorf("clear phase commands: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO phase_commands (run_id, phase, position, command, is_critical, kind)
		 VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.Exec(runID, string(phase), i, rec.Text, rec.Critical, string(rec.Kind)); err != nil {
			return fmt.Errorf("insert command %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// GetCommands returns a phase's recorded commands in generation order.
func (d *DB) GetCommands(runID string, phase command.Phase) ([]command.Record, error) {
	rows, err := d.conn.Query(
		`SELECT command, is_critical, kind FROM phase_commands
		 WHERE run_id = $1 AND phase = $2 ORDER BY position`,
		runID, string(phase),
	)
	if err != nil {
		return nil, fmt.Errorf("get phase commands: %w", err)
	}
	defer rows.Close()

	var records []command.Record
	for rows.Next() {
		var rec command.Record
		var kind string
		if err := rows.Scan(&rec.Text, &rec.Critical, &kind); err != nil {
			return nil, fmt.Errorf("scan phase command: %w", err)
		}
		rec.Kind = command.Kind(kind)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// SaveVerdict upserts the verdict row for a run.
func (d *DB) SaveVerdict(runID string, passed bool, summary string, services int, failures []string) error {
	_, err := d.conn.Exec(
		`INSERT INTO verdicts (run_id, passed, summary, services, failures)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		 ON CONFLICT (run_id) DO UPDATE
		 SET passed = EXCLUDED.passed, summary = EXCLUDED.summary,
		     services = EXCLUDED.services, failures = EXCLUDED.failures`,
		runID, passed, summary, services, strings.Join(failures, "\n"),
	)
	if err != nil {
		return fmt.Errorf("save verdict: %w", err)
	}
	return nil
}

// GetVerdict returns the verdict for a run, or nil if none is recorded.
func (d *DB) GetVerdict(runID string) (*VerdictRow, error) {
	row := d.conn.QueryRow(
		`SELECT id, run_id, passed, summary, services, failures, created_at::text
		 FROM verdicts WHERE run_id = $1`,
		runID,
	)
	var v VerdictRow
	var failures sql.NullString
	err := row.Scan(&v.ID, &v.RunID, &v.Passed, &v.Summary, &v.Services, &failures, &v.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get verdict: %w", err)
	}
	if failures.Valid && failures.String != "" {
		v.Failures = strings.Split(failures.String, "\n")
	}
	return &v, nil
}

// ListRecentVerdicts returns the newest verdicts up to limit.
func (d *DB) ListRecentVerdicts(limit int) ([]VerdictRow, error) {
	rows, err := d.conn.Query(
		`SELECT id, run_id, passed, summary, services, failures, created_at::text
		 FROM verdicts ORDER BY created_at DESC, id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list verdicts: %w", err)
	}
	defer rows.Close()

	var verdicts []VerdictRow
	for rows.Next() {
		var v VerdictRow
		var failures sql.NullString
		if err := rows.Scan(&v.ID, &v.RunID, &v.Passed, &v.Summary, &v.Services, &failures, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan verdict: %w", err)
		}
		if failures.Valid && failures.String != "" {
			v.Failures = strings.Split(failures.String, "\n")
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, rows.Err()
}
