package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"ath/internal/fixture"
)

var (
	// ErrDuplicateTest is returned when a qualified name is registered twice
	ErrDuplicateTest = errors.New("test already registered")
	// ErrInvalidTest is returned for a case without a name or body
	ErrInvalidTest = errors.New("invalid test case")
)

// Body is the executable part of a test case
type Body func(ctx context.Context, f fixture.Fixture) error

// TestCase maps a test identifier to its body, groups and fixture
type TestCase struct {
	Name       string // Qualified name: <Suite>.<Case>
	Suite      string
	Case       string
	Groups     []string
	Body       Body
	NewFixture fixture.Constructor
}

// InGroup reports whether the case belongs to group
func (tc TestCase) InGroup(group string) bool {
	for _, g := range tc.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Case is a single test declared inside a Suite
type Case struct {
	Name   string
	Groups []string
	Body   Body
}

// Suite declares a set of cases sharing a fixture and class-level groups
type Suite struct {
	Name       string
	Groups     []string
	NewFixture fixture.Constructor
	Cases      []Case
}

// Registry holds every test case known to the harness
type Registry struct {
	mu    sync.RWMutex
	tests map[string]TestCase
}

// New creates an empty Registry
func New() *Registry {
	return &Registry{tests: make(map[string]TestCase)}
}

// Register adds a single test case
func (r *Registry) Register(tc TestCase) error {
	tc, err := prepare(tc)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tests[tc.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTest, tc.Name)
	}
	r.tests[tc.Name] = tc
	return nil
}

// RegisterSuite registers every case of s. Cases inherit the suite's groups and fixture.
// Nothing is registered if any case is rejected.
func (r *Registry) RegisterSuite(s Suite) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: suite without name", ErrInvalidTest)
	}

	cases := make([]TestCase, 0, len(s.Cases))
	seen := make(map[string]bool)
	for _, c := range s.Cases {
		name := s.Name + "." + c.Name
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%w: %s", ErrInvalidTest, name)
		}
		if seen[name] {
			return fmt.Errorf("%w: %s", ErrDuplicateTest, name)
		}
		seen[name] = true
		tc, err := prepare(TestCase{
			Name:       name,
			Suite:      s.Name,
			Case:       c.Name,
			Groups:     append(append([]string{}, s.Groups...), c.Groups...),
			Body:       c.Body,
			NewFixture: s.NewFixture,
		})
		if err != nil {
			return err
		}
		cases = append(cases, tc)
	}

	// Check and insert under one lock so a concurrent registration
	// cannot slip in between and leave the suite half-registered.
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tc := range cases {
		if _, ok := r.tests[tc.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateTest, tc.Name)
		}
	}
	for _, tc := range cases {
		r.tests[tc.Name] = tc
	}
	return nil
}

// prepare validates tc and fills in its defaults.
func prepare(tc TestCase) (TestCase, error) {
	if strings.TrimSpace(tc.Name) == "" {
		return tc, fmt.Errorf("%w: empty name", ErrInvalidTest)
	}
	if tc.Body == nil {
		return tc, fmt.Errorf("%w: %s has no body", ErrInvalidTest, tc.Name)
	}
	if tc.NewFixture == nil {
		tc.NewFixture = fixture.New
	}
	tc.Groups = normalizeGroups(tc.Groups)
	return tc, nil
}

// MustRegisterSuite is RegisterSuite that panics on error
func (r *Registry) MustRegisterSuite(s Suite) {
	if err := r.RegisterSuite(s); err != nil {
		panic(err)
	}
}

// Lookup returns the test case with the given qualified name
func (r *Registry) Lookup(name string) (TestCase, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tc, ok := r.tests[name]
	return tc, ok
}

// All returns every registered case sorted by name
func (r *Registry) All() []TestCase {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]TestCase, 0, len(r.tests))
	for _, tc := range r.tests {
		all = append(all, tc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Groups returns all distinct groups in use, sorted
func (r *Registry) Groups() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var groups []string
	for _, tc := range r.tests {
		groups = append(groups, tc.Groups...)
	}
	return normalizeGroups(groups)
}

func normalizeGroups(groups []string) []string {
	set := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		g = strings.TrimSpace(g)
		if g != "" {
			set[g] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for g := range set {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
