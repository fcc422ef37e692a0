package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"ath/internal/config"
	"ath/internal/discovery"
	"ath/internal/domain"
	"ath/internal/execution"
	"ath/internal/fixture"
	"ath/internal/parser"
	"ath/internal/registry"
	"ath/internal/storage"
	"ath/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type recorderOpener func(ctx context.Context, dsn string) (storage.Recorder, func() error, error)

// RunCommand handles the run command
type RunCommand struct {
	config       *config.Config
	registry     *registry.Registry
	filter       *discovery.Filter
	runner       *execution.Runner
	executor     *execution.WorkerPool
	parser       parser.Parser
	storage      storage.Storage
	formatter    *ui.Formatter
	viewer       ui.Viewer
	openRecorder recorderOpener
	console      io.Writer
	showProgress bool
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	reg *registry.Registry,
	filter *discovery.Filter,
	runner *execution.Runner,
	executor *execution.WorkerPool,
	p parser.Parser,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer ui.Viewer,
) *RunCommand {
	return &RunCommand{
		config:       cfg,
		registry:     reg,
		filter:       filter,
		runner:       runner,
		executor:     executor,
		parser:       p,
		storage:      st,
		formatter:    formatter,
		viewer:       viewer,
		openRecorder: openRecorder,
		console:      os.Stdout,
		showProgress: true,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	flags := rc.config.Flags

	tests, err := rc.selectTests()
	if err != nil {
		return err
	}
	if len(tests) == 0 {
		color.Yellow("No tests to execute")
		return nil
	}

	groups, excluded := rc.config.SelectedGroups(), rc.config.ExcludedGroups()
	rc.formatter.PrintRunHeader(len(tests), rc.config.Processors, groups, excluded)

	if flags.Verbose {
		rc.runner.SetEcho(fixture.NewSyncWriter(rc.console))
		rc.executor.SetProgress(nil)
	} else {
		rc.runner.SetEcho(nil)
		if rc.showProgress {
			rc.executor.SetProgress(ui.NewProgressBar(len(tests)))
		}
	}

	results, duration, err := rc.executor.ExecuteWithOptions(ctx, tests, flags.FailFast)
	if err != nil {
		return fmt.Errorf("test run interrupted: %w", err)
	}

	if flags.RerunFailures {
		var extra time.Duration
		results, extra, err = rc.rerunFailures(ctx, tests, results)
		if err != nil {
			return err
		}
		duration += extra
	}

	var failures []domain.TestFailure
	for _, result := range results {
		if result.Status == domain.StatusFailed {
			failures = append(failures, rc.parser.ParseFailure(result)...)
		}
	}

	output, err := rc.storage.Save(results, failures, duration, storage.RunInfo{
		Workers:        rc.config.Processors,
		Groups:         groups,
		ExcludedGroups: excluded,
	})
	if err != nil {
		return fmt.Errorf("failed to save test results: %w", err)
	}

	rc.record(ctx, output)
	rc.formatter.PrintMetaStats(output)

	if output.Meta.FailedTests == 0 {
		return nil
	}
	if flags.OpenFaills && rc.viewer != nil {
		if err := rc.viewer.View(output); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %d of %d", ErrTestsFailed, output.Meta.FailedTests, output.Meta.TotalTests)
}

// selectTests applies group, name and last-failed selection to the registry
func (rc *RunCommand) selectTests() ([]registry.TestCase, error) {
	tests := rc.registry.All()
	tests = rc.filter.FilterByGroups(tests, rc.config.SelectedGroups(), rc.config.ExcludedGroups())
	tests = rc.filter.FilterByName(tests, rc.config.Flags.NameFilter)

	if rc.config.Flags.OnlyFailed {
		last, err := rc.storage.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load last results: %w", err)
		}
		tests = rc.filter.FilterByNames(tests, last.FailedNames())
	}
	return tests, nil
}

// rerunFailures runs the failed cases once more and replaces their results.
func (rc *RunCommand) rerunFailures(ctx context.Context, tests []registry.TestCase, results []domain.TestResult) ([]domain.TestResult, time.Duration, error) {
	failed := make(map[string]struct{})
	for _, r := range results {
		if r.Status == domain.StatusFailed {
			failed[r.Name] = struct{}{}
		}
	}
	if len(failed) == 0 {
		return results, 0, nil
	}

	retry := rc.filter.FilterByNames(tests, failed)
	color.Yellow("\nRe-running %d failed test(s)...", len(retry))
	rc.executor.SetProgress(nil)

	rerun, duration, err := rc.executor.Execute(ctx, retry)
	if err != nil {
		return nil, 0, fmt.Errorf("rerun interrupted: %w", err)
	}

	byName := make(map[string]domain.TestResult, len(rerun))
	for _, r := range rerun {
		byName[r.Name] = r
	}
	for i, r := range results {
		if replacement, ok := byName[r.Name]; ok {
			results[i] = replacement
		}
	}
	return results, duration, nil
}

// record appends the run to the history database when one is configured.
// History is best effort: failures are reported but do not fail the run.
func (rc *RunCommand) record(ctx context.Context, output *domain.TestResultsOutput) {
	if rc.config.DatabaseDSN == "" || rc.openRecorder == nil {
		return
	}
	recorder, closeFn, err := rc.openRecorder(ctx, rc.config.DatabaseDSN)
	if err != nil {
		color.Yellow("Run history disabled: %v", err)
		return
	}
	defer closeFn()

	runID, err := recorder.Record(ctx, output)
	if err != nil {
		color.Yellow("Failed to record run history: %v", err)
		return
	}
	color.White("Recorded run #%d", runID)
}
