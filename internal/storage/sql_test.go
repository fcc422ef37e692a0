package storage

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ath/internal/domain"
)

func sampleOutput() *domain.TestResultsOutput {
	return &domain.TestResultsOutput{
		Meta: domain.TestResultsMeta{
			TotalTests:      2,
			PassedTests:     1,
			FailedTests:     1,
			DurationSeconds: 1.25,
			Workers:         2,
			Groups:          []string{"level.extended"},
			Timestamp:       "2024-05-06T07:08:09Z",
		},
		Results: []domain.CaseOutcome{
			{Name: "TestJmap.testDummy", Suite: "TestJmap", Groups: []string{"level.extended"}, Status: domain.StatusPassed, DurationMs: 3},
			{Name: "TestJmap.testBroken", Suite: "TestJmap", Groups: []string{"level.extended"}, Status: domain.StatusFailed, DurationMs: 7},
		},
		Details: []domain.TestFailure{{TestName: "TestJmap.testBroken", Message: "boom"}},
	}
}

func TestSQLRecorder_Record(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ath_runs")).
		WithArgs(sqlmock.AnyArg(), int64(1250), 2, 2, 1, 1, 0, "level.extended", "").
		WillReturnResult(sqlmock.NewResult(42, 1))
	prep := mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO ath_test_outcomes"))
	prep.ExpectExec().
		WithArgs(int64(42), "TestJmap.testDummy", "TestJmap", "level.extended", "passed", int64(3), sql.NullString{}).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep.ExpectExec().
		WithArgs(int64(42), "TestJmap.testBroken", "TestJmap", "level.extended", "failed", int64(7), sql.NullString{String: "boom", Valid: true}).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	runID, err := NewSQLRecorder(db).Record(context.Background(), sampleOutput())
	require.NoError(t, err)
	assert.Equal(t, int64(42), runID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRecorder_RollbackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ath_runs")).WillReturnError(errors.New("table missing"))
	mock.ExpectRollback()

	_, err = NewSQLRecorder(db).Record(context.Background(), sampleOutput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRecorder_BadTimestamp(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	out := sampleOutput()
	out.Meta.Timestamp = "yesterday"
	_, err = NewSQLRecorder(db).Record(context.Background(), out)
	assert.Error(t, err)
}
