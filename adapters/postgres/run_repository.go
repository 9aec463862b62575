// Package postgres persists analysis runs so dashboards can reload past
// results without re-uploading the data.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"datalens/domain/analysis"
	"datalens/domain/core"
	apperrors "datalens/internal/errors"
)

const runsSchema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	id TEXT PRIMARY KEY,
	dataset_name TEXT NOT NULL,
	row_count INTEGER NOT NULL,
	field_count INTEGER NOT NULL,
	result JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// RunRepository stores and retrieves analysis runs.
type RunRepository struct {
	db *sqlx.DB
}

// NewRunRepository creates a repository over an open connection.
func NewRunRepository(db *sqlx.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Connect opens a Postgres connection and verifies it.
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open database connection")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, "database ping failed")
	}
	return db, nil
}

// EnsureSchema creates the runs table if it does not exist.
func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, runsSchema); err != nil {
		return apperrors.Wrap(err, "failed to create analysis_runs table")
	}
	return nil
}

// Create inserts a new run.
func (r *RunRepository) Create(ctx context.Context, run *analysis.Run) error {
	resultJSON, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	query := `INSERT INTO analysis_runs (
		id, dataset_name, row_count, field_count, result, created_at
	) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = r.db.ExecContext(ctx, query,
		run.ID, run.DatasetName, run.RowCount, run.FieldCount, resultJSON, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis run: %w", err)
	}
	return nil
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(ctx context.Context, id core.RunID) (*analysis.Run, error) {
	query := `SELECT id, dataset_name, row_count, field_count, result, created_at
	FROM analysis_runs WHERE id = $1`

	row := r.db.QueryRowxContext(ctx, query, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound(fmt.Sprintf("analysis run %s not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis run: %w", err)
	}
	return run, nil
}

// ListRecent returns the newest runs, most recent first.
func (r *RunRepository) ListRecent(ctx context.Context, limit int) ([]*analysis.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, dataset_name, row_count, field_count, result, created_at
	FROM analysis_runs ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryxContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis runs: %w", err)
	}
	defer rows.Close()

	var runs []*analysis.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Delete removes a run.
func (r *RunRepository) Delete(ctx context.Context, id core.RunID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM analysis_runs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete analysis run: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*analysis.Run, error) {
	var (
		run        analysis.Run
		resultJSON []byte
	)
	if err := row.Scan(&run.ID, &run.DatasetName, &run.RowCount, &run.FieldCount, &resultJSON, &run.CreatedAt); err != nil {
		return nil, err
	}
	var result analysis.Result
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored result: %w", err)
	}
	run.Result = &result
	return &run, nil
}
