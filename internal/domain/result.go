package domain

import "time"

// TestResult represents the result of executing a single test case
type TestResult struct {
	Name     string        // Qualified test name, e.g. TestJmap.testDummy
	Suite    string        // Suite the case was declared in
	Groups   []string      // Groups the case belongs to
	Status   Status        // Final status (passed or failed once run)
	Success  bool          // Whether the test passed
	Output   string        // Lines written through the fixture log
	Error    error         // Fault that failed the test, nil on success
	Duration time.Duration // Time taken to execute
	WorkerID int           // Worker that ran the case
}

// CaseOutcome is the persisted per-case record of a run
type CaseOutcome struct {
	Name       string   `json:"name"`
	Suite      string   `json:"suite"`
	Groups     []string `json:"groups"`
	Status     Status   `json:"status"`
	DurationMs int64    `json:"duration_ms"`
	Output     string   `json:"output,omitempty"`
}

// TestResultsMeta contains metadata about a test run
type TestResultsMeta struct {
	TotalTests      int      `json:"total_tests"`
	PassedTests     int      `json:"passed_tests"`
	FailedTests     int      `json:"failed_tests"`
	NotRunTests     int      `json:"not_run_tests"`
	Duration        string   `json:"duration"`
	DurationSeconds float64  `json:"duration_seconds"`
	Workers         int      `json:"workers"`
	Groups          []string `json:"groups,omitempty"`
	ExcludedGroups  []string `json:"excluded_groups,omitempty"`
	Timestamp       string   `json:"timestamp"`
}

// TestResultsOutput is the complete output structure for test results
type TestResultsOutput struct {
	Meta    TestResultsMeta `json:"meta"`
	Results []CaseOutcome   `json:"results"`
	Details []TestFailure   `json:"details"`
}

// FailedNames returns the names of all failed cases in the output.
func (o *TestResultsOutput) FailedNames() map[string]struct{} {
	names := make(map[string]struct{})
	for _, r := range o.Results {
		if r.Status == StatusFailed {
			names[r.Name] = struct{}{}
		}
	}
	for _, d := range o.Details {
		names[d.TestName] = struct{}{}
	}
	return names
}
