package cli

import (
	"time"

	"ath/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	Processors    int
	Groups        []string
	ExcludeGroups []string
	NameFilter    string
	FailFast      bool
	OnlyFailed    bool
	RerunFailures bool
	OpenFaills    bool
	Verbose       bool
	Timeout       time.Duration
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Processors:    f.Processors,
		Groups:        splitAll(f.Groups),
		ExcludeGroups: splitAll(f.ExcludeGroups),
		NameFilter:    f.NameFilter,
		FailFast:      f.FailFast,
		OnlyFailed:    f.OnlyFailed,
		RerunFailures: f.RerunFailures,
		OpenFaills:    f.OpenFaills,
		Verbose:       f.Verbose,
		Timeout:       f.Timeout,
	}
}

// splitAll accepts both repeated flags and comma separated values
func splitAll(values []string) []string {
	var out []string
	for _, v := range values {
		out = append(out, config.SplitList(v)...)
	}
	return out
}
