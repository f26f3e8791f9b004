package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

const schemaLockID int64 = 2026101701

type RunRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *RunRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS saga_runs (
	id TEXT PRIMARY KEY,
	submission_id BIGINT NOT NULL,
	classroom_id BIGINT NOT NULL,
	student_id BIGINT NOT NULL,
	last_step TEXT NOT NULL DEFAULT '',
	analysis_id BIGINT NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	failed_phase TEXT NOT NULL DEFAULT '',
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_saga_runs_submission_created ON saga_runs(submission_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_saga_runs_status ON saga_runs(status);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *RunRepository) CreateRun(ctx context.Context, run *domain.Run) error {
	now := r.now()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO saga_runs (id, submission_id, classroom_id, student_id, last_step, analysis_id, status, failed_phase, error_message, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
`, run.ID, run.SubmissionID, run.ClassroomID, run.StudentID, string(run.LastStep), run.AnalysisID,
		string(run.Status), string(run.FailedPhase), run.Error, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

func (r *RunRepository) UpdateRun(ctx context.Context, run *domain.Run) error {
	run.UpdatedAt = r.now()

	result, err := r.db.ExecContext(ctx, `
UPDATE saga_runs
SET last_step = $2, analysis_id = $3, status = $4, failed_phase = $5, error_message = $6, updated_at = $7
WHERE id = $1
`, run.ID, string(run.LastStep), run.AnalysisID, string(run.Status), string(run.FailedPhase), run.Error, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "update run", fmt.Errorf("run not found: id=%s", run.ID))
	}
	return nil
}

func (r *RunRepository) LatestRun(ctx context.Context, submissionID int64) (*domain.Run, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, submission_id, classroom_id, student_id, last_step, analysis_id, status, failed_phase, error_message, created_at, updated_at
FROM saga_runs
WHERE submission_id = $1
ORDER BY created_at DESC
LIMIT 1
`, submissionID)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "latest run", fmt.Errorf("no runs for submission %d", submissionID))
		}
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return &run, nil
}

type runScanner interface {
	Scan(dest ...any) error
}

func scanRun(row runScanner) (domain.Run, error) {
	var run domain.Run
	var lastStep, status, phase string
	err := row.Scan(
		&run.ID,
		&run.SubmissionID,
		&run.ClassroomID,
		&run.StudentID,
		&lastStep,
		&run.AnalysisID,
		&status,
		&phase,
		&run.Error,
		&run.CreatedAt,
		&run.UpdatedAt,
	)
	if err != nil {
		return domain.Run{}, err
	}
	run.LastStep = domain.SagaStep(lastStep)
	run.Status = domain.RunStatus(status)
	run.FailedPhase = domain.Phase(phase)
	return run, nil
}
