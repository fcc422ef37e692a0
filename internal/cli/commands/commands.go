package commands

import (
	"context"
	"errors"

	"ath/internal/cli"
	"ath/internal/config"
	"ath/internal/discovery"
	"ath/internal/execution"
	"ath/internal/migration"
	"ath/internal/parser"
	"ath/internal/registry"
	"ath/internal/storage"
	"ath/internal/ui"

	"github.com/spf13/cobra"
)

// ErrTestsFailed is returned by run when at least one selected test failed
var ErrTestsFailed = errors.New("tests failed")

// Commands holds all CLI commands
type Commands struct {
	Run     *RunCommand
	List    *ListCommand
	Migrate *MigrateCommand
	Faills  *FaillsCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config, reg *registry.Registry) *Commands {
	// Initialize dependencies
	filter := discovery.NewFilter()
	runner := execution.NewRunner(cfg)
	scheduler := execution.NewRoundRobinScheduler()
	executor := execution.NewWorkerPool(cfg, runner, scheduler)
	failureParser := parser.NewFailureParser()
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter()
	errorViewer := ui.NewErrorViewer(jsonStorage)

	return &Commands{
		Run:     NewRunCommand(cfg, reg, filter, runner, executor, failureParser, jsonStorage, formatter, errorViewer),
		List:    NewListCommand(cfg, reg, filter, formatter, jsonStorage),
		Migrate: NewMigrateCommand(cfg, openMigrator),
		Faills:  NewFaillsCommand(jsonStorage, errorViewer),
	}
}

func openMigrator(ctx context.Context, dsn string) (migration.Migrator, func() error, error) {
	db, err := migration.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return migration.NewSchemaMigrator(db), db.Close, nil
}

func openRecorder(ctx context.Context, dsn string) (storage.Recorder, func() error, error) {
	db, err := migration.Open(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return storage.NewSQLRecorder(db), db.Close, nil
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	applyFlags := func(cmd *cobra.Command, args []string) error {
		cfg.ApplyFlags(flags.ToConfigFlags())
		return nil
	}

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run registered tests",
		Long:    "Select tests by group and name and execute them using parallel workers",
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	runCmd.Flags().IntVarP(&flags.Processors, "processors", "p", 0, "Number of workers to use (default from config)")
	runCmd.Flags().StringSliceVarP(&flags.Groups, "groups", "g", nil, "Only run tests in these groups (e.g. level.extended)")
	runCmd.Flags().StringSliceVarP(&flags.ExcludeGroups, "exclude-groups", "x", nil, "Skip tests in these groups")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards, e.g., 'TestJmap.*' or '*Dummy*')")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop on first test failure")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only tests that failed in the last run (from storage/test-results.json)")
	runCmd.Flags().BoolVar(&flags.RerunFailures, "rerun-failures", false, "After running all tests, rerun only failed ones once and save that result")
	runCmd.Flags().BoolVar(&flags.OpenFaills, "open-faills", false, "Open the faills viewer when the run finishes with failures")
	runCmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Print test log lines as they are written")
	runCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Per-test timeout (default from config)")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List registered tests",
		Long:    "List registered tests with their groups without executing them",
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	listCmd.Flags().StringSliceVarP(&flags.Groups, "groups", "g", nil, "Only list tests in these groups")
	listCmd.Flags().StringSliceVarP(&flags.ExcludeGroups, "exclude-groups", "x", nil, "Hide tests in these groups")
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter tests by name pattern (supports wildcards)")
	rootCmd.AddCommand(listCmd)

	// Migrate command
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the run history tables",
		Long:  "Apply pending schema migrations to the MySQL database named by ATH_DATABASE_DSN",
		RunE:  c.Migrate.Execute,
	}
	rootCmd.AddCommand(migrateCmd)

	// Faills command
	faillsCmd := &cobra.Command{
		Use:   "faills",
		Short: "View test failures interactively",
		Long:  "Display test failures from the last test run in an interactive viewer",
		RunE:  c.Faills.Execute,
	}
	rootCmd.AddCommand(faillsCmd)
}
