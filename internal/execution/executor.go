package execution

import (
	"context"
	"time"

	"ath/internal/domain"
	"ath/internal/registry"
)

// Executor executes tests and returns results
type Executor interface {
	Execute(ctx context.Context, tests []registry.TestCase) ([]domain.TestResult, time.Duration, error)
}
