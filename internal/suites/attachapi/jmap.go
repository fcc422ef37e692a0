package attachapi

import (
	"context"

	"ath/internal/fixture"
	"ath/internal/registry"
)

// Jmap is the placeholder suite for jmap-style diagnostics.
var Jmap = registry.Suite{
	Name:       "TestJmap",
	Groups:     []string{GroupExtended},
	NewFixture: NewFixture,
	Cases: []registry.Case{
		{Name: "testDummy", Body: testDummy},
	},
}

func testDummy(ctx context.Context, f fixture.Fixture) error {
	f.Log("Dummy test for IBM")
	return nil
}

// Register installs the attach API suites
func Register(reg *registry.Registry) error {
	return reg.RegisterSuite(Jmap)
}
