package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spam-detector/internal/apperr"
	"spam-detector/internal/models"

	"github.com/jmoiron/sqlx"
)

// IngestRunRepository stores preprocessing run history.
type IngestRunRepository interface {
	CreateRun(ctx context.Context, run *models.IngestRun) error
	UpdateRun(ctx context.Context, run *models.IngestRun) error
	GetRun(ctx context.Context, id string) (*models.IngestRun, error)
	ListRuns(ctx context.Context, limit int) ([]*models.IngestRun, error)
}

type ingestRunRepository struct {
	db *sqlx.DB
}

// NewIngestRunRepository creates a repository backed by db.
func NewIngestRunRepository(db *sqlx.DB) IngestRunRepository {
	return &ingestRunRepository{db: db}
}

const ingestRunColumns = `id, status, root_dir, output_path, total_records, spam_count, ham_count,
	skipped_files, skipped_rows, started_at, completed_at, error_message`

// CreateRun inserts a new run.
func (r *ingestRunRepository) CreateRun(ctx context.Context, run *models.IngestRun) error {
	query := `
		INSERT INTO ingest_runs (` + ingestRunColumns + `)
		VALUES (:id, :status, :root_dir, :output_path, :total_records, :spam_count, :ham_count,
		        :skipped_files, :skipped_rows, :started_at, :completed_at, :error_message)
	`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("failed to create ingest run: %w", err)
	}
	return nil
}

// UpdateRun stores the progress and outcome of a run.
func (r *ingestRunRepository) UpdateRun(ctx context.Context, run *models.IngestRun) error {
	query := `
		UPDATE ingest_runs
		SET status = :status, total_records = :total_records, spam_count = :spam_count,
		    ham_count = :ham_count, skipped_files = :skipped_files, skipped_rows = :skipped_rows,
		    completed_at = :completed_at, error_message = :error_message
		WHERE id = :id
	`
	res, err := r.db.NamedExecContext(ctx, query, run)
	if err != nil {
		return fmt.Errorf("failed to update ingest run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("ingest run %s: %w", run.ID, apperr.ErrNotFound)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (r *ingestRunRepository) GetRun(ctx context.Context, id string) (*models.IngestRun, error) {
	query := r.db.Rebind(`SELECT ` + ingestRunColumns + ` FROM ingest_runs WHERE id = ?`)

	run := &models.IngestRun{}
	err := r.db.GetContext(ctx, run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ingest run %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ingest run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first.
func (r *ingestRunRepository) ListRuns(ctx context.Context, limit int) ([]*models.IngestRun, error) {
	if limit <= 0 {
		limit = 50
	}
	query := r.db.Rebind(`SELECT ` + ingestRunColumns + ` FROM ingest_runs ORDER BY started_at DESC LIMIT ?`)

	runs := []*models.IngestRun{}
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list ingest runs: %w", err)
	}
	return runs, nil
}
