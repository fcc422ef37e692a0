// Package attachapi holds the attach API test suites.
package attachapi

import (
	"context"
	"io"
	"os"

	"ath/internal/fixture"
)

// GroupExtended marks long-running suites that only run in extended invocations
const GroupExtended = "level.extended"

// Fixture is the shared base for attach API tests
type Fixture struct {
	*fixture.Base
	targetPID int
}

// NewFixture is the fixture.Constructor used by attach API suites
func NewFixture(name string, sink io.Writer) fixture.Fixture {
	return &Fixture{Base: fixture.NewBase(name, sink)}
}

// Setup records the harness process as the attach target.
func (f *Fixture) Setup(ctx context.Context) error {
	f.targetPID = os.Getpid()
	return f.Base.Setup(ctx)
}

// TargetPID is the process id set during Setup, zero before it.
func (f *Fixture) TargetPID() int {
	return f.targetPID
}
