// Package suites is the registration table for every suite built into the harness.
package suites

import (
	"ath/internal/registry"
	"ath/internal/suites/attachapi"
)

// Register installs all built-in suites into reg
func Register(reg *registry.Registry) error {
	return attachapi.Register(reg)
}
