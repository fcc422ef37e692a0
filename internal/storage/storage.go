package storage

import (
	"time"

	"ath/internal/config"
	"ath/internal/domain"
)

// RunInfo describes how a run was invoked
type RunInfo struct {
	Workers        int
	Groups         []string
	ExcludedGroups []string
}

// Storage persists and loads test run results (e.g. for the faills viewer).
type Storage interface {
	Save(results []domain.TestResult, failures []domain.TestFailure, duration time.Duration, info RunInfo) (*domain.TestResultsOutput, error)
	Load() (*domain.TestResultsOutput, error)
	// SaveOutput writes the full output (e.g. after partial re-run updates).
	SaveOutput(output *domain.TestResultsOutput) error
}

// JSONStorage stores results in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
	now func() time.Time
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg, now: time.Now}
}

// BuildOutput summarises a run into its persisted form.
func BuildOutput(results []domain.TestResult, failures []domain.TestFailure, duration time.Duration, info RunInfo, now time.Time) *domain.TestResultsOutput {
	meta := domain.TestResultsMeta{
		TotalTests:      len(results),
		Duration:        duration.String(),
		DurationSeconds: duration.Seconds(),
		Workers:         info.Workers,
		Groups:          info.Groups,
		ExcludedGroups:  info.ExcludedGroups,
		Timestamp:       now.Format(time.RFC3339),
	}

	outcomes := make([]domain.CaseOutcome, 0, len(results))
	for _, r := range results {
		switch r.Status {
		case domain.StatusPassed:
			meta.PassedTests++
		case domain.StatusFailed:
			meta.FailedTests++
		default:
			meta.NotRunTests++
		}
		outcomes = append(outcomes, domain.CaseOutcome{
			Name:       r.Name,
			Suite:      r.Suite,
			Groups:     r.Groups,
			Status:     r.Status,
			DurationMs: r.Duration.Milliseconds(),
			Output:     r.Output,
		})
	}

	if failures == nil {
		failures = []domain.TestFailure{}
	}
	return &domain.TestResultsOutput{Meta: meta, Results: outcomes, Details: failures}
}
