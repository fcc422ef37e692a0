package domain

import "fmt"

// TestFailure represents a failed test case
type TestFailure struct {
	TestName   string   `json:"test_name"`
	Suite      string   `json:"suite"`
	Groups     []string `json:"groups"`
	Message    string   `json:"message"`
	StackTrace []string `json:"stack_trace"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Output     string   `json:"output"`
	Resolved   bool     `json:"resolved,omitempty"` // Track if test case is marked as resolved
}

// PanicError is an unchecked fault recovered while running a test case.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
