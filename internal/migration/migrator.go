package migration

import "context"

// Migrator prepares the run-history database
type Migrator interface {
	Run(ctx context.Context) error
}
