package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Transition(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		wantErr bool
	}{
		{name: "start", from: StatusNotRun, to: StatusRunning},
		{name: "pass", from: StatusRunning, to: StatusPassed},
		{name: "fail", from: StatusRunning, to: StatusFailed},
		{name: "skip running", from: StatusNotRun, to: StatusPassed, wantErr: true},
		{name: "restart passed", from: StatusPassed, to: StatusRunning, wantErr: true},
		{name: "flip failed", from: StatusFailed, to: StatusPassed, wantErr: true},
		{name: "running twice", from: StatusRunning, to: StatusRunning, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.from.Transition(tt.to)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidTransition))
				assert.Equal(t, tt.from, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got)
		})
	}
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusNotRun.IsTerminal())
	assert.False(t, StatusRunning.IsTerminal())
	assert.True(t, StatusPassed.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}

func TestPanicError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := &PanicError{Value: cause}
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "panic: disk full", err.Error())

	assert.Nil(t, (&PanicError{Value: "boom"}).Unwrap())
}

func TestTestResultsOutput_FailedNames(t *testing.T) {
	out := &TestResultsOutput{
		Results: []CaseOutcome{
			{Name: "A.one", Status: StatusPassed},
			{Name: "A.two", Status: StatusFailed},
		},
		Details: []TestFailure{{TestName: "B.three"}},
	}
	names := out.FailedNames()
	assert.Len(t, names, 2)
	assert.Contains(t, names, "A.two")
	assert.Contains(t, names, "B.three")
}
