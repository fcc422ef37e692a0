package migration

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fatih/color"
)

// step is one forward-only schema change
type step struct {
	version int
	name    string
	sql     string
}

var steps = []step{
	{
		version: 1,
		name:    "create ath_runs",
		sql: "CREATE TABLE IF NOT EXISTS ath_runs (" +
			"id BIGINT AUTO_INCREMENT PRIMARY KEY, " +
			"started_at DATETIME NOT NULL, " +
			"duration_ms BIGINT NOT NULL, " +
			"workers INT NOT NULL, " +
			"total_tests INT NOT NULL, " +
			"passed_tests INT NOT NULL, " +
			"failed_tests INT NOT NULL, " +
			"not_run_tests INT NOT NULL, " +
			"groups_selected VARCHAR(512) NOT NULL DEFAULT '', " +
			"groups_excluded VARCHAR(512) NOT NULL DEFAULT '')",
	},
	{
		version: 2,
		name:    "create ath_test_outcomes",
		sql: "CREATE TABLE IF NOT EXISTS ath_test_outcomes (" +
			"id BIGINT AUTO_INCREMENT PRIMARY KEY, " +
			"run_id BIGINT NOT NULL, " +
			"test_name VARCHAR(255) NOT NULL, " +
			"suite VARCHAR(255) NOT NULL, " +
			"test_groups VARCHAR(512) NOT NULL DEFAULT '', " +
			"status VARCHAR(16) NOT NULL, " +
			"duration_ms BIGINT NOT NULL, " +
			"message TEXT, " +
			"INDEX idx_outcomes_run (run_id), " +
			"INDEX idx_outcomes_name (test_name))",
	},
}

// SchemaMigrator applies pending schema steps and records them in ath_schema_migrations
type SchemaMigrator struct {
	db *sql.DB
}

// NewSchemaMigrator creates a SchemaMigrator for db
func NewSchemaMigrator(db *sql.DB) *SchemaMigrator {
	return &SchemaMigrator{db: db}
}

// Run applies every step newer than the recorded schema version
func (m *SchemaMigrator) Run(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS ath_schema_migrations (version INT PRIMARY KEY, name VARCHAR(255) NOT NULL)"); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	var current int
	if err := m.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM ath_schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	applied := 0
	for _, s := range steps {
		if s.version <= current {
			continue
		}
		if _, err := m.db.ExecContext(ctx, s.sql); err != nil {
			return fmt.Errorf("migration %d (%s): %w", s.version, s.name, err)
		}
		if _, err := m.db.ExecContext(ctx, "INSERT INTO ath_schema_migrations (version, name) VALUES (?, ?)", s.version, s.name); err != nil {
			return fmt.Errorf("record migration %d: %w", s.version, err)
		}
		applied++
	}

	if applied == 0 {
		color.White("Schema is up to date (version %d)", current)
	} else {
		color.Green("✓ Applied %d migration(s)", applied)
	}
	return nil
}
