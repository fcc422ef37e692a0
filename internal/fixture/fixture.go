package fixture

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// Fixture is the shared setup/teardown and logging capability handed to a test case
type Fixture interface {
	Name() string
	Setup(ctx context.Context) error
	Teardown(ctx context.Context) error
	// Log writes one diagnostic line. A sink failure panics with *LogError.
	Log(message string)
	// Logf is Log with fmt.Sprintf formatting.
	Logf(format string, args ...any)
}

// Constructor builds a fresh fixture for one invocation of the named test.
type Constructor func(name string, sink io.Writer) Fixture

// LogError is raised when the log sink rejects a write
type LogError struct {
	Test string
	Err  error
}

func (e *LogError) Error() string {
	return fmt.Sprintf("log %s: %v", e.Test, e.Err)
}

func (e *LogError) Unwrap() error {
	return e.Err
}

// Base is the default fixture. Setup and Teardown do nothing.
type Base struct {
	name string
	sink io.Writer
	now  func() time.Time
}

// NewBase creates a Base fixture writing log lines for the named test to sink
func NewBase(name string, sink io.Writer) *Base {
	if sink == nil {
		sink = io.Discard
	}
	return &Base{name: name, sink: sink, now: time.Now}
}

// New is a Constructor returning a plain Base.
func New(name string, sink io.Writer) Fixture {
	return NewBase(name, sink)
}

func (b *Base) Name() string { return b.name }

func (b *Base) Setup(ctx context.Context) error { return nil }

func (b *Base) Teardown(ctx context.Context) error { return nil }

// Log writes the message as "<time> [<test>] <message>" on a single line.
func (b *Base) Log(message string) {
	line := fmt.Sprintf("%s [%s] %s\n", b.now().Format("15:04:05.000"), b.name, message)
	if _, err := io.WriteString(b.sink, line); err != nil {
		panic(&LogError{Test: b.name, Err: err})
	}
}

// Logf formats the message and logs it.
func (b *Base) Logf(format string, args ...any) {
	b.Log(fmt.Sprintf(format, args...))
}

// SyncWriter serializes writes to a shared sink such as the console
type SyncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSyncWriter wraps w so it can be shared between workers
func NewSyncWriter(w io.Writer) *SyncWriter {
	return &SyncWriter{w: w}
}

func (s *SyncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
