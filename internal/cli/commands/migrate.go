package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"ath/internal/config"
	"ath/internal/migration"
)

type migratorOpener func(ctx context.Context, dsn string) (migration.Migrator, func() error, error)

// MigrateCommand handles the migrate command
type MigrateCommand struct {
	config *config.Config
	open   migratorOpener
}

// NewMigrateCommand creates a new MigrateCommand
func NewMigrateCommand(cfg *config.Config, open migratorOpener) *MigrateCommand {
	return &MigrateCommand{
		config: cfg,
		open:   open,
	}
}

// Execute runs the command
func (mc *MigrateCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	migrator, closeFn, err := mc.open(ctx, mc.config.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	defer closeFn()

	if err := migrator.Run(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
