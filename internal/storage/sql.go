package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ath/internal/domain"
)

// Recorder appends finished runs to a run-history store
type Recorder interface {
	Record(ctx context.Context, output *domain.TestResultsOutput) (int64, error)
}

// SQLRecorder writes run history to the ath_runs and ath_test_outcomes tables
type SQLRecorder struct {
	db *sql.DB
}

// NewSQLRecorder creates a SQLRecorder on an open database (see migration.Open)
func NewSQLRecorder(db *sql.DB) *SQLRecorder {
	return &SQLRecorder{db: db}
}

// Record stores the run and its per-case outcomes in one transaction and returns the run id
func (r *SQLRecorder) Record(ctx context.Context, output *domain.TestResultsOutput) (int64, error) {
	meta := output.Meta
	startedAt, err := time.Parse(time.RFC3339, meta.Timestamp)
	if err != nil {
		return 0, fmt.Errorf("parse run timestamp: %w", err)
	}

	messages := make(map[string]string, len(output.Details))
	for _, d := range output.Details {
		messages[d.TestName] = d.Message
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO ath_runs (started_at, duration_ms, workers, total_tests, passed_tests, failed_tests, not_run_tests, groups_selected, groups_excluded) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		startedAt.UTC(),
		int64(meta.DurationSeconds*1000),
		meta.Workers,
		meta.TotalTests,
		meta.PassedTests,
		meta.FailedTests,
		meta.NotRunTests,
		strings.Join(meta.Groups, ","),
		strings.Join(meta.ExcludedGroups, ","),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO ath_test_outcomes (run_id, test_name, suite, test_groups, status, duration_ms, message) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare outcome insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range output.Results {
		var message sql.NullString
		if m, ok := messages[o.Name]; ok {
			message = sql.NullString{String: m, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, runID, o.Name, o.Suite, strings.Join(o.Groups, ","), string(o.Status), o.DurationMs, message); err != nil {
			return 0, fmt.Errorf("insert outcome %s: %w", o.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}
