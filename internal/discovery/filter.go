package discovery

import (
	"path/filepath"
	"strings"

	"ath/internal/registry"
)

// Filter selects registered test cases by group and name
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByGroups keeps cases that belong to at least one include group (all cases when
// include is empty) and to none of the exclude groups. Exclusion wins.
func (f *Filter) FilterByGroups(tests []registry.TestCase, include, exclude []string) []registry.TestCase {
	if len(include) == 0 && len(exclude) == 0 {
		return tests
	}

	var filtered []registry.TestCase
	for _, tc := range tests {
		if len(include) > 0 && !inAnyGroup(tc, include) {
			continue
		}
		if inAnyGroup(tc, exclude) {
			continue
		}
		filtered = append(filtered, tc)
	}
	return filtered
}

func inAnyGroup(tc registry.TestCase, groups []string) bool {
	for _, g := range groups {
		if tc.InGroup(g) {
			return true
		}
	}
	return false
}

// FilterByNames keeps only the cases whose qualified name is in names
func (f *Filter) FilterByNames(tests []registry.TestCase, names map[string]struct{}) []registry.TestCase {
	var filtered []registry.TestCase
	for _, tc := range tests {
		if _, ok := names[tc.Name]; ok {
			filtered = append(filtered, tc)
		}
	}
	return filtered
}

// FilterByName filters test cases by qualified name using wildcard matching
// Supports patterns like "TestJmap.*" or "*Dummy*"
func (f *Filter) FilterByName(tests []registry.TestCase, pattern string) []registry.TestCase {
	if pattern == "" {
		return tests
	}

	var filtered []registry.TestCase
	for _, tc := range tests {
		if MatchName(tc.Name, pattern) {
			filtered = append(filtered, tc)
		}
	}
	return filtered
}

// MatchName reports whether a qualified test name matches pattern
func MatchName(name, pattern string) bool {
	// Try to match using filepath.Match (supports * and ? wildcards)
	if matched, err := filepath.Match(pattern, name); err == nil && matched {
		return true
	}

	// If pattern contains wildcards but filepath.Match didn't match,
	// try a more flexible in-order substring match for patterns like "*Dummy*"
	if strings.Contains(pattern, "*") {
		rest := name
		hasNonEmptyPart := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			hasNonEmptyPart = true
			idx := strings.Index(rest, part)
			if idx < 0 {
				return false
			}
			rest = rest[idx+len(part):]
		}
		return hasNonEmptyPart
	}

	// If no wildcards, do a simple contains check
	if !strings.Contains(pattern, "?") {
		return strings.Contains(name, pattern)
	}
	return false
}
