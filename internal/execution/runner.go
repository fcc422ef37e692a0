package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"sync"
	"time"

	"ath/internal/config"
	"ath/internal/domain"
	"ath/internal/fixture"
	"ath/internal/registry"
)

// ErrTimeout is reported when a test case exceeds the configured timeout
var ErrTimeout = errors.New("test timed out")

// Runner executes a single test case
type Runner struct {
	config *config.Config
	echo   io.Writer
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config) *Runner {
	return &Runner{config: cfg}
}

// SetEcho copies every fixture log line to w as well as the captured output.
// w must be safe for concurrent use when more than one worker runs.
func (r *Runner) SetEcho(w io.Writer) {
	r.echo = w
}

// Run executes setup, body and teardown for a single test case.
// It never panics: faults are recorded on the returned result.
func (r *Runner) Run(ctx context.Context, tc registry.TestCase, workerID int) domain.TestResult {
	result := domain.TestResult{
		Name:     tc.Name,
		Suite:    tc.Suite,
		Groups:   tc.Groups,
		Status:   domain.StatusNotRun,
		WorkerID: workerID,
	}

	status, err := result.Status.Transition(domain.StatusRunning)
	if err != nil {
		result.Status = domain.StatusFailed
		result.Error = err
		return result
	}
	result.Status = status

	output := &capture{echo: r.echo}

	newFixture := tc.NewFixture
	if newFixture == nil {
		newFixture = fixture.New
	}

	start := time.Now()
	runErr := r.invoke(ctx, tc, newFixture(tc.Name, output))
	result.Duration = time.Since(start)
	// A timed-out lifecycle may still be logging; later lines are dropped.
	result.Output = output.Close()

	final := domain.StatusPassed
	if runErr != nil {
		final = domain.StatusFailed
		result.Error = runErr
	}
	result.Status, _ = result.Status.Transition(final)
	result.Success = result.Status == domain.StatusPassed
	return result
}

// invoke runs the fixture lifecycle in its own goroutine so a hung body can be abandoned on timeout.
func (r *Runner) invoke(ctx context.Context, tc registry.TestCase, f fixture.Fixture) error {
	var timeout time.Duration
	if r.config != nil {
		timeout = r.config.TestTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- lifecycle(ctx, tc, f)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		return ctx.Err()
	}
}

// capture collects fixture log lines until Close. It is safe for concurrent use.
type capture struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	echo   io.Writer
	closed bool
}

func (c *capture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return len(p), nil
	}
	c.buf.Write(p)
	if c.echo != nil {
		if _, err := c.echo.Write(p); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Close stops collecting and returns everything written so far.
func (c *capture) Close() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.buf.String()
}

// lifecycle runs setup, body and teardown. Teardown runs whenever setup succeeded.
func lifecycle(ctx context.Context, tc registry.TestCase, f fixture.Fixture) error {
	if err := guard(func() error { return f.Setup(ctx) }); err != nil {
		return fmt.Errorf("setup: %w", err)
	}

	bodyErr := guard(func() error { return tc.Body(ctx, f) })
	teardownErr := guard(func() error { return f.Teardown(ctx) })

	if bodyErr != nil {
		return bodyErr
	}
	if teardownErr != nil {
		return fmt.Errorf("teardown: %w", teardownErr)
	}
	return nil
}

// guard converts a panic raised by fn into a *domain.PanicError
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &domain.PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
