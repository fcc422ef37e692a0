package execution

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ath/internal/config"
	"ath/internal/domain"
	"ath/internal/fixture"
	"ath/internal/registry"
)

type brokenSink struct{}

func (brokenSink) Write(p []byte) (int, error) { return 0, errors.New("sink closed") }

// hookFixture records lifecycle calls and can fail either hook
type hookFixture struct {
	*fixture.Base
	calls       *[]string
	setupErr    error
	teardownErr error
}

func (h *hookFixture) Setup(ctx context.Context) error {
	*h.calls = append(*h.calls, "setup")
	return h.setupErr
}

func (h *hookFixture) Teardown(ctx context.Context) error {
	*h.calls = append(*h.calls, "teardown")
	return h.teardownErr
}

func newTestCase(name string, body registry.Body) registry.TestCase {
	return registry.TestCase{Name: name, Suite: "S", Case: name, Groups: []string{"g"}, Body: body}
}

func testConfig() *config.Config {
	cfg := config.New()
	cfg.Processors = 2
	cfg.TestTimeout = time.Second
	return cfg
}

func TestRunner_Passes(t *testing.T) {
	runner := NewRunner(testConfig())
	tc := newTestCase("S.pass", func(ctx context.Context, f fixture.Fixture) error {
		f.Log("hello")
		return nil
	})

	result := runner.Run(context.Background(), tc, 3)

	assert.Equal(t, domain.StatusPassed, result.Status)
	assert.True(t, result.Success)
	assert.NoError(t, result.Error)
	assert.Equal(t, 3, result.WorkerID)
	assert.Equal(t, []string{"g"}, result.Groups)
	assert.Contains(t, result.Output, "[S.pass] hello")
}

func TestRunner_Failures(t *testing.T) {
	sentinel := errors.New("assertion failed")

	tests := []struct {
		name   string
		body   registry.Body
		expect func(t *testing.T, err error)
	}{
		{
			name: "returned error",
			body: func(ctx context.Context, f fixture.Fixture) error { return sentinel },
			expect: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, sentinel))
			},
		},
		{
			name: "panic",
			body: func(ctx context.Context, f fixture.Fixture) error { panic("boom") },
			expect: func(t *testing.T, err error) {
				var pe *domain.PanicError
				require.True(t, errors.As(err, &pe))
				assert.Equal(t, "boom", pe.Value)
				assert.NotEmpty(t, pe.Stack)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewRunner(testConfig()).Run(context.Background(), newTestCase("S.fail", tt.body), 1)
			assert.Equal(t, domain.StatusFailed, result.Status)
			assert.False(t, result.Success)
			require.Error(t, result.Error)
			tt.expect(t, result.Error)
		})
	}
}

func TestRunner_LogFaultFailsTest(t *testing.T) {
	tc := newTestCase("S.log", func(ctx context.Context, f fixture.Fixture) error {
		f.Log("cannot be written")
		return nil
	})
	tc.NewFixture = func(name string, sink io.Writer) fixture.Fixture {
		return fixture.NewBase(name, brokenSink{})
	}

	result := NewRunner(testConfig()).Run(context.Background(), tc, 1)

	assert.Equal(t, domain.StatusFailed, result.Status)
	var logErr *fixture.LogError
	assert.True(t, errors.As(result.Error, &logErr))
	assert.Contains(t, result.Error.Error(), "sink closed")
}

func TestRunner_Lifecycle(t *testing.T) {
	run := func(setupErr, teardownErr, bodyErr error) ([]string, domain.TestResult) {
		var calls []string
		tc := newTestCase("S.hooks", func(ctx context.Context, f fixture.Fixture) error {
			calls = append(calls, "body")
			return bodyErr
		})
		tc.NewFixture = func(name string, sink io.Writer) fixture.Fixture {
			return &hookFixture{Base: fixture.NewBase(name, sink), calls: &calls, setupErr: setupErr, teardownErr: teardownErr}
		}
		result := NewRunner(testConfig()).Run(context.Background(), tc, 1)
		return calls, result
	}

	t.Run("all hooks run in order", func(t *testing.T) {
		calls, result := run(nil, nil, nil)
		assert.Equal(t, []string{"setup", "body", "teardown"}, calls)
		assert.True(t, result.Success)
	})

	t.Run("setup failure skips body and teardown", func(t *testing.T) {
		calls, result := run(errors.New("no target"), nil, nil)
		assert.Equal(t, []string{"setup"}, calls)
		assert.Equal(t, domain.StatusFailed, result.Status)
		assert.True(t, strings.HasPrefix(result.Error.Error(), "setup:"))
	})

	t.Run("teardown runs after body failure", func(t *testing.T) {
		calls, result := run(nil, errors.New("cleanup"), errors.New("body"))
		assert.Equal(t, []string{"setup", "body", "teardown"}, calls)
		assert.Equal(t, "body", result.Error.Error())
	})

	t.Run("teardown failure fails test", func(t *testing.T) {
		_, result := run(nil, errors.New("cleanup"), nil)
		assert.Equal(t, domain.StatusFailed, result.Status)
		assert.Equal(t, "teardown: cleanup", result.Error.Error())
	})
}

func TestRunner_Timeout(t *testing.T) {
	cfg := testConfig()
	cfg.TestTimeout = 20 * time.Millisecond
	release := make(chan struct{})
	defer close(release)

	tc := newTestCase("S.hang", func(ctx context.Context, f fixture.Fixture) error {
		<-release
		return nil
	})

	result := NewRunner(cfg).Run(context.Background(), tc, 1)
	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.True(t, errors.Is(result.Error, ErrTimeout))
}

func TestRunner_TimeoutWhileLogging(t *testing.T) {
	cfg := testConfig()
	cfg.TestTimeout = 5 * time.Millisecond
	release := make(chan struct{})
	defer close(release)

	tc := newTestCase("S.chatty", func(ctx context.Context, f fixture.Fixture) error {
		for {
			select {
			case <-release:
				return nil
			default:
				f.Log("still running")
			}
		}
	})

	result := NewRunner(cfg).Run(context.Background(), tc, 1)
	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.True(t, errors.Is(result.Error, ErrTimeout))

	// Output is a snapshot: lines logged after the timeout never reach it.
	snapshot := result.Output
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, snapshot, result.Output)
	for _, line := range strings.Split(strings.TrimSuffix(snapshot, "\n"), "\n") {
		if line != "" {
			assert.True(t, strings.HasSuffix(line, "[S.chatty] still running"), line)
		}
	}
}

func TestCapture_DropsWritesAfterClose(t *testing.T) {
	var echo bytes.Buffer
	c := &capture{echo: &echo}

	n, err := c.Write([]byte("kept\n"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "kept\n", c.Close())

	n, err = c.Write([]byte("dropped\n"))
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, "kept\n", c.Close())
	assert.Equal(t, "kept\n", echo.String())
}

func TestRunner_Echo(t *testing.T) {
	var console bytes.Buffer
	runner := NewRunner(testConfig())
	runner.SetEcho(&console)

	result := runner.Run(context.Background(), newTestCase("S.echo", func(ctx context.Context, f fixture.Fixture) error {
		f.Log("visible")
		return nil
	}), 1)

	assert.Equal(t, result.Output, console.String())
	assert.Contains(t, console.String(), "visible")
}
