package migration

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaMigrator_Run(t *testing.T) {
	t.Run("fresh database applies all steps", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS ath_schema_migrations")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) FROM ath_schema_migrations")).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(0))
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS ath_runs")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ath_schema_migrations")).WithArgs(1, "create ath_runs").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS ath_test_outcomes")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO ath_schema_migrations")).WithArgs(2, "create ath_test_outcomes").WillReturnResult(sqlmock.NewResult(2, 1))

		require.NoError(t, NewSchemaMigrator(db).Run(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("up to date database applies nothing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS ath_schema_migrations")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0)")).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(len(steps)))

		require.NoError(t, NewSchemaMigrator(db).Run(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failing step stops migration", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS ath_schema_migrations")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0)")).
			WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(1))
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS ath_test_outcomes")).WillReturnError(errors.New("denied"))

		err = NewSchemaMigrator(db).Run(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "migration 2")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOpen_InvalidDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.True(t, errors.Is(err, ErrNoDatabase))

	_, err = Open(context.Background(), "root@tcp(127.0.0.1:3306)/")
	assert.Error(t, err, "missing database name")

	_, err = Open(context.Background(), "not a dsn")
	assert.Error(t, err)
}
