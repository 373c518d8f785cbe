// Package resultsdb persists validation runs to a local sqlite database so
// repeated runs over the same map can be compared over time. The archive is
// optional: the CLI only opens it when asked to, and archive failures never
// change the validation outcome.
package resultsdb

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/lanelint/internal/lanemap"
	"github.com/banshee-data/lanelint/internal/timeutil"
	"github.com/banshee-data/lanelint/internal/validation"
)

// Run is one archived validation pass.
type Run struct {
	RunID            string `json:"run_id"`
	MapPath          string `json:"map_path"`
	RequirementsPath string `json:"requirements_path,omitempty"`
	StartedAt        int64  `json:"started_at"` // unix nanoseconds
	WarningCount     int    `json:"warning_count"`
	ErrorCount       int    `json:"error_count"`
	TotalIssues      int    `json:"total_issues"`
	Passed           bool   `json:"passed"`
}

// Store provides persistence for validation runs and their issues.
type Store struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewStore opens (or creates) the archive database at path, ensures the base
// schema exists and applies any pending schema migrations.
func NewStore(path string) (*Store, error) {
	return NewStoreWithClock(path, timeutil.RealClock{})
}

// NewStoreWithClock is NewStore with an injected clock for tests.
func NewStoreWithClock(path string, clock timeutil.Clock) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS validation_runs (
			run_id            TEXT PRIMARY KEY,
			map_path          TEXT,
			requirements_path TEXT,
			started_at        BIGINT,
			warning_count     BIGINT,
			error_count       BIGINT,
			total_issues      BIGINT,
			passed            BOOLEAN
		);
		CREATE TABLE IF NOT EXISTS validation_issues (
			run_id            TEXT,
			severity          TEXT,
			primitive         TEXT,
			primitive_id      BIGINT,
			message           TEXT,
			FOREIGN KEY(run_id) REFERENCES validation_runs(run_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, clock: clock}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// RecordRun persists a run and its issues in one transaction. A missing
// RunID is filled with a fresh UUID and a zero StartedAt with the current
// time.
func (s *Store) RecordRun(run *Run, issues []validation.Issue) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.StartedAt == 0 {
		run.StartedAt = s.clock.Now().UnixNano()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO validation_runs (
			run_id, map_path, requirements_path, started_at,
			warning_count, error_count, total_issues, passed
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.MapPath, run.RequirementsPath, run.StartedAt,
		run.WarningCount, run.ErrorCount, run.TotalIssues, run.Passed,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	for _, issue := range issues {
		_, err = tx.Exec(`
			INSERT INTO validation_issues (run_id, severity, primitive, primitive_id, message)
			VALUES (?, ?, ?, ?, ?)`,
			run.RunID, string(issue.Severity), string(issue.Primitive), int64(issue.ID), issue.Message,
		)
		if err != nil {
			return fmt.Errorf("failed to record issue: %w", err)
		}
	}

	return tx.Commit()
}

// ListRuns returns all archived runs, newest first.
func (s *Store) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, map_path, requirements_path, started_at,
		       warning_count, error_count, total_issues, passed
		FROM validation_runs
		ORDER BY started_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(
			&r.RunID, &r.MapPath, &r.RequirementsPath, &r.StartedAt,
			&r.WarningCount, &r.ErrorCount, &r.TotalIssues, &r.Passed,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// IssuesForRun returns the issues recorded for one run, in insertion order.
func (s *Store) IssuesForRun(runID string) ([]validation.Issue, error) {
	rows, err := s.db.Query(`
		SELECT severity, primitive, primitive_id, message
		FROM validation_issues
		WHERE run_id = ?
		ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var issues []validation.Issue
	for rows.Next() {
		var severity, primitive, message string
		var id int64
		if err := rows.Scan(&severity, &primitive, &id, &message); err != nil {
			return nil, err
		}
		issues = append(issues, validation.Issue{
			Severity:  validation.Severity(severity),
			Primitive: validation.Primitive(primitive),
			ID:        lanemap.ID(id),
			Message:   message,
		})
	}
	return issues, rows.Err()
}
