package output

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/sanspareilsmyn/annualtables/internal/report"
	"github.com/sanspareilsmyn/annualtables/internal/units"
)

//go:embed schema.sql
var schemaSQL string

// Run identifies one engine run in the tabular store.
type Run struct {
	ID        string
	UnitStyle string
	Timesteps int64
	CreatedAt time.Time
}

// NewRun stamps a fresh run.
func NewRun(style units.Style, timesteps int64) Run {
	return Run{
		ID:        uuid.New().String(),
		UnitStyle: style.String(),
		Timesteps: timesteps,
		CreatedAt: time.Now().UTC(),
	}
}

// Record is one stored cell, column head and row head included.
type Record struct {
	ReportID   int
	ReportName string
	ReportFor  string
	TableName  string
	RowID      int
	RowName    string
	ColumnID   int
	ColumnName string
	Value      string
}

// SQLiteStore keeps rendered grids as tabular records, one row per body cell.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) the store at path and applies the schema.
// path may be any modernc DSN, e.g. "file:x?mode=memory&cache=shared".
func OpenSQLite(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpenStoreFailed, err)
	}
	// One connection keeps pragmas and in-memory databases consistent.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrOpenStoreFailed, err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrMigrateFailed, err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrMigrateFailed, err)
	}

	logger.Info("Tabular store opened", zap.String("path", path))
	return &SQLiteStore{db: db, path: path, logger: logger}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun stores run and every cell of grids in a single transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run, grids []report.Grid) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveRunFailed, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, unit_style, timesteps, created_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.UnitStyle, run.Timesteps, run.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveRunFailed, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tabular_data
		(run_id, report_id, report_name, report_for, table_name, row_id, row_name, column_id, column_name, value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSaveRunFailed, err)
	}
	defer func() { _ = stmt.Close() }()

	cells := 0
	for id, g := range grids {
		for r := 0; r < g.Rows(); r++ {
			for c := 0; c < g.Columns(); c++ {
				if _, err = stmt.ExecContext(ctx,
					run.ID, id, g.Name, g.For, g.Subtitle, r, g.RowHeads[r], c, g.ColumnHeads[c], g.Cell(r, c),
				); err != nil {
					return fmt.Errorf("%w: %w", ErrSaveRunFailed, err)
				}
				cells++
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveRunFailed, err)
	}
	s.logger.Info("Run saved",
		zap.String("run_id", run.ID),
		zap.Int("reports", len(grids)),
		zap.Int("cells", cells),
	)
	return nil
}

// Runs lists stored runs, newest first.
func (s *SQLiteStore) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, unit_style, timesteps, created_at FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			created string
		)
		if err := rows.Scan(&r.ID, &r.UnitStyle, &r.Timesteps, &created); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	return runs, nil
}

// Records returns the stored cells of one run in grid order. An empty reportName
// returns every report of the run.
func (s *SQLiteStore) Records(ctx context.Context, runID, reportName string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT report_id, report_name, report_for, table_name, row_id, row_name, column_id, column_name, value
		FROM tabular_data
		WHERE run_id = ? AND (? = '' OR report_name = ?)
		ORDER BY report_id, row_id, column_id`,
		runID, reportName, reportName,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ReportID, &r.ReportName, &r.ReportFor, &r.TableName,
			&r.RowID, &r.RowName, &r.ColumnID, &r.ColumnName, &r.Value); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	return out, nil
}
