package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"ath/internal/domain"
	"ath/internal/fixture"
	"ath/internal/registry"
)

func noColor(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestFormatter_PrintTestList(t *testing.T) {
	noColor(t)
	body := func(ctx context.Context, f fixture.Fixture) error { return nil }
	reg := registry.New()
	reg.MustRegisterSuite(registry.Suite{
		Name:   "TestJmap",
		Groups: []string{"level.extended"},
		Cases:  []registry.Case{{Name: "testDummy", Body: body}, {Name: "testHisto", Body: body}},
	})
	reg.MustRegisterSuite(registry.Suite{Name: "TestAttach", Cases: []registry.Case{{Name: "testVersion", Body: body}}})

	var buf bytes.Buffer
	NewFormatterTo(&buf).PrintTestList(reg.All(), map[string]struct{}{"TestJmap.testHisto": {}})
	out := buf.String()

	assert.Contains(t, out, "Found 3 test(s) in 2 suite(s)")
	assert.Contains(t, out, "├── TestAttach")
	assert.Contains(t, out, "│   └── testVersion (no groups)")
	assert.Contains(t, out, "└── TestJmap")
	assert.Contains(t, out, "    ├── testDummy (level.extended)\n")
	assert.Contains(t, out, "    └── testHisto (level.extended) [F]")
}

func TestFormatter_PrintMetaStats(t *testing.T) {
	noColor(t)

	t.Run("all passed", func(t *testing.T) {
		var buf bytes.Buffer
		NewFormatterTo(&buf).PrintMetaStats(&domain.TestResultsOutput{
			Meta: domain.TestResultsMeta{TotalTests: 1, PassedTests: 1, DurationSeconds: 0.5, Workers: 4},
		})
		out := buf.String()
		assert.Contains(t, out, "Total Tests")
		assert.Contains(t, out, "0.50s")
		assert.Contains(t, out, "✓ All tests passed!")
	})

	t.Run("failures listed by suite", func(t *testing.T) {
		var buf bytes.Buffer
		NewFormatterTo(&buf).PrintMetaStats(&domain.TestResultsOutput{
			Meta: domain.TestResultsMeta{TotalTests: 2, PassedTests: 1, FailedTests: 1},
			Details: []domain.TestFailure{
				{TestName: "TestJmap.testDummy", Suite: "TestJmap", Message: "panic: log fault\nmore"},
			},
		})
		out := buf.String()
		assert.Contains(t, out, "✗ 1 test(s) failed")
		assert.Contains(t, out, "└── TestJmap")
		assert.Contains(t, out, "TestJmap.testDummy: panic: log fault")
		assert.False(t, strings.Contains(out, "more"))
	})
}

func TestFormatFailureDetails(t *testing.T) {
	text := formatFailureDetails(domain.TestFailure{
		TestName:   "TestJmap.testDummy",
		Groups:     []string{"level.extended"},
		File:       "jmap.go",
		Line:       19,
		Message:    "boom",
		Output:     "log line",
		StackTrace: []string{"frame"},
	})
	assert.Contains(t, text, "Location: jmap.go:19")
	assert.Contains(t, text, "Groups: level.extended")
	assert.Contains(t, text, "Log Output:")
	assert.Contains(t, text, "  frame")

	assert.Contains(t, formatFailureStats(domain.TestFailure{}, 2), "Unknown suite")
	assert.Contains(t, listItemText(domain.TestFailure{}, 0, true), "✓")
}
