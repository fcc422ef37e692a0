package parser

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"ath/internal/domain"
)

// frameLine matches the file:line row of a goroutine stack frame, e.g.
// "\t/src/ath/internal/suites/attachapi/jmap.go:23 +0x1d"
var frameLine = regexp.MustCompile(`^\s+(\S+\.go):(\d+)(?:\s+\+0x[0-9a-f]+)?$`)

// harnessFuncs are function prefixes of frames that never point at the faulting test code.
// Frames are matched by function, not file path, so test sources may live anywhere.
var harnessFuncs = []string{
	"runtime.",
	"runtime/debug.",
	"panic(",
	"ath/internal/execution.",
	"ath/internal/fixture.",
}

// FailureParser converts failed results into failure records
type FailureParser struct{}

// NewFailureParser creates a new FailureParser
func NewFailureParser() *FailureParser {
	return &FailureParser{}
}

// ParseFailure returns the failure record for a failed result, or nil when it passed or never ran.
func (p *FailureParser) ParseFailure(result domain.TestResult) []domain.TestFailure {
	if result.Status != domain.StatusFailed {
		return nil
	}

	failure := domain.TestFailure{
		TestName:   result.Name,
		Suite:      result.Suite,
		Groups:     result.Groups,
		StackTrace: []string{},
		Output:     result.Output,
	}
	if result.Error != nil {
		failure.Message = result.Error.Error()
	}

	var pe *domain.PanicError
	if errors.As(result.Error, &pe) {
		failure.StackTrace = p.parseStack(string(pe.Stack))
		failure.File, failure.Line = p.faultLocation(failure.StackTrace)
	}

	return []domain.TestFailure{failure}
}

// parseStack keeps the function/location pairs of a goroutine dump, dropping the header.
func (p *FailureParser) parseStack(stack string) []string {
	var lines []string
	for _, line := range strings.Split(stack, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "goroutine ") {
			continue
		}
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return lines
}

// faultLocation returns the first frame outside the Go runtime and the harness itself.
func (p *FailureParser) faultLocation(stack []string) (string, int) {
	fn := ""
	for _, line := range stack {
		m := frameLine.FindStringSubmatch(line)
		if m == nil {
			fn = strings.TrimPrefix(line, "created by ")
			continue
		}
		if isHarnessFrame(fn) {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		return m[1], n
	}
	return "", 0
}

func isHarnessFrame(fn string) bool {
	for _, prefix := range harnessFuncs {
		if strings.HasPrefix(fn, prefix) {
			return true
		}
	}
	return false
}
