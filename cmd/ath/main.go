package main

import (
	"fmt"
	"os"

	"ath/internal/cli"
	"ath/internal/cli/commands"
	"ath/internal/config"
	"ath/internal/registry"
	"ath/internal/suites"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:           "ath",
		Short:         "Attach API test harness",
		Long:          `Runs the registered attach API test suites, selected by group, in parallel and records pass/fail outcomes.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Create initial config with defaults
	cfg := config.New()
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return cfg.LoadEnv()
	}

	// Register every built-in suite
	reg := registry.New()
	if err := suites.Register(reg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg, reg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
