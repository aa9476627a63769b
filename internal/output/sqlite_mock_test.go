package output

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/annualtables/internal/report"
	"github.com/sanspareilsmyn/annualtables/internal/units"
)

func newMockStore(t *testing.T) (*SQLiteStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return &SQLiteStore{db: db, path: "mock", logger: zap.NewNop()}, mock
}

func TestSaveRunRollsBackOnCellFailure(t *testing.T) {
	store, mock := newMockStore(t)
	run := NewRun(units.StyleNone, 3)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO runs").
		WithArgs(run.ID, "None", int64(3), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	prep := mock.ExpectPrepare("INSERT INTO tabular_data")
	prep.ExpectExec().WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := store.SaveRun(context.Background(), run, []report.Grid{sampleGrid("Zone Report")})
	require.ErrorIs(t, err, ErrSaveRunFailed)
	assert.Contains(t, err.Error(), "disk I/O error")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRunBeginFailure(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

	err := store.SaveRun(context.Background(), NewRun(units.StyleNone, 1), nil)
	require.ErrorIs(t, err, ErrSaveRunFailed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunsQueryFailure(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT id, unit_style, timesteps, created_at FROM runs").
		WillReturnError(errors.New("no such table: runs"))

	_, err := store.Runs(context.Background())
	require.ErrorIs(t, err, ErrQueryFailed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunsParsesRows(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery("SELECT id, unit_style, timesteps, created_at FROM runs").
		WillReturnRows(sqlmock.NewRows([]string{"id", "unit_style", "timesteps", "created_at"}).
			AddRow("run-1", "JtoKWH", int64(8760), created.Format(time.RFC3339Nano)))

	runs, err := store.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, Run{ID: "run-1", UnitStyle: "JtoKWH", Timesteps: 8760, CreatedAt: created}, runs[0])
	require.NoError(t, mock.ExpectationsWereMet())
}
