package ui

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"ath/internal/domain"
	"ath/internal/registry"
)

// Formatter formats and displays output
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to stdout
func NewFormatter() *Formatter {
	return &Formatter{out: os.Stdout}
}

// NewFormatterTo creates a Formatter writing to w
func NewFormatterTo(w io.Writer) *Formatter {
	return &Formatter{out: w}
}

func (f *Formatter) line(c *color.Color, format string, args ...any) {
	c.Fprintf(f.out, format+"\n", args...)
}

// PrintRunHeader prints the banner shown before execution starts
func (f *Formatter) PrintRunHeader(total, workers int, groups, excluded []string) {
	cyan := color.New(color.FgCyan)
	f.line(cyan, "\n╔════════════════════════════════════════════════════════════╗")
	f.line(cyan, "║              Attach API Test Harness - Execution           ║")
	f.line(cyan, "╚════════════════════════════════════════════════════════════╝\n")

	f.line(color.New(color.FgWhite), "Total tests: %d | Workers: %d | Groups: %s | Excluded: %s\n",
		total, workers, listOrAll(groups, "all"), listOrAll(excluded, "none"))
}

func listOrAll(groups []string, empty string) string {
	if len(groups) == 0 {
		return empty
	}
	return strings.Join(groups, ",")
}

// PrintMetaStats displays the statistics of a stored run
func (f *Formatter) PrintMetaStats(output *domain.TestResultsOutput) {
	meta := output.Meta
	white := color.New(color.FgWhite)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	// Print header
	fmt.Fprint(f.out, "\n")
	f.line(cyan, "╔═══════════════════════════════════════════════════════════════╗")
	f.line(cyan, "║                    Test Execution Statistics                  ║")
	f.line(cyan, "╚═══════════════════════════════════════════════════════════════╝\n")

	rows := []struct {
		label string
		value string
		c     *color.Color
	}{
		{"Total Tests", fmt.Sprint(meta.TotalTests), white},
		{"Passed Tests", fmt.Sprint(meta.PassedTests), green},
		{"Failed Tests", fmt.Sprint(meta.FailedTests), red},
		{"Not Run", fmt.Sprint(meta.NotRunTests), yellow},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), white},
		{"Workers", fmt.Sprint(meta.Workers), white},
		{"Groups", listOrAll(meta.Groups, "all"), white},
		{"Timestamp", meta.Timestamp, white},
	}

	// Print table
	fmt.Fprintln(f.out, "┌─────────────────────────────────┬─────────────────────────────┐")
	for i, row := range rows {
		fmt.Fprintf(f.out, "│ %-31s │ ", row.label)
		row.c.Fprintf(f.out, "%-27s", row.value)
		fmt.Fprintln(f.out, " │")
		if i < len(rows)-1 {
			fmt.Fprintln(f.out, "├─────────────────────────────────┼─────────────────────────────┤")
		}
	}
	fmt.Fprintln(f.out, "└─────────────────────────────────┴─────────────────────────────┘")

	// Print summary line
	fmt.Fprintln(f.out)
	if meta.FailedTests == 0 {
		f.line(green, "✓ All tests passed!")
		return
	}
	f.line(red, "✗ %d test(s) failed", meta.FailedTests)
	fmt.Fprintln(f.out)
	f.printFailedTestsTree(output.Details)
}

// printFailedTestsTree prints failures grouped by suite
func (f *Formatter) printFailedTestsTree(failures []domain.TestFailure) {
	bySuite := make(map[string][]domain.TestFailure)
	for _, failure := range failures {
		bySuite[failure.Suite] = append(bySuite[failure.Suite], failure)
	}

	suites := make([]string, 0, len(bySuite))
	for s := range bySuite {
		suites = append(suites, s)
	}
	sort.Strings(suites)

	for i, suite := range suites {
		lastSuite := i == len(suites)-1
		name := suite
		if name == "" {
			name = "(no suite)"
		}
		f.line(color.New(color.FgYellow), "%s%s", branch(lastSuite), name)
		for j, failure := range bySuite[suite] {
			lastCase := j == len(bySuite[suite])-1
			msg := failure.Message
			if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
				msg = msg[:idx]
			}
			f.line(color.New(color.FgRed), "%s%s%s: %s", indent(lastSuite), branch(lastCase), failure.TestName, msg)
		}
	}
}

func branch(last bool) string {
	if last {
		return "└── "
	}
	return "├── "
}

func indent(lastParent bool) string {
	if lastParent {
		return "    "
	}
	return "│   "
}

// PrintTestList prints registered tests as a suite tree with their groups.
// failed is optional; cases in it are marked with [F] in red (from last run).
func (f *Formatter) PrintTestList(tests []registry.TestCase, failed map[string]struct{}) {
	var suites []string
	bySuite := make(map[string][]registry.TestCase)
	for _, tc := range tests {
		if _, ok := bySuite[tc.Suite]; !ok {
			suites = append(suites, tc.Suite)
		}
		bySuite[tc.Suite] = append(bySuite[tc.Suite], tc)
	}
	sort.Strings(suites)

	f.line(color.New(color.FgGreen), "Found %d test(s) in %d suite(s):\n", len(tests), len(suites))

	for i, suite := range suites {
		lastSuite := i == len(suites)-1
		f.line(color.New(color.FgCyan), "%s%s", branch(lastSuite), suite)

		for j, tc := range bySuite[suite] {
			lastCase := j == len(bySuite[suite])-1
			label := tc.Case
			if label == "" {
				label = tc.Name
			}
			failMarker := ""
			if _, ok := failed[tc.Name]; ok {
				failMarker = " " + color.RedString("[F]")
			}
			fmt.Fprintf(f.out, "%s%s%s %s%s\n",
				indent(lastSuite), branch(lastCase),
				color.YellowString(label),
				color.New(color.FgHiBlack).Sprintf("(%s)", listOrAll(tc.Groups, "no groups")),
				failMarker)
		}
	}
}
