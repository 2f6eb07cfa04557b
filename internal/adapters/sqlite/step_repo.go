package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/cadastre/internal/core/errs"
	"github.com/example/cadastre/internal/ports/secondary"
)

// StepRepository implements secondary.StepRepository with SQLite.
type StepRepository struct {
	db *sql.DB
}

// NewStepRepository creates a new SQLite workflow step repository.
func NewStepRepository(db *sql.DB) *StepRepository {
	return &StepRepository{db: db}
}

// CreateAll persists the full step catalog of a job.
func (r *StepRepository) CreateAll(ctx context.Context, jobID string, steps []*secondary.StepRecord) error {
	q := conn(ctx, r.db)
	for _, step := range steps {
		_, err := q.ExecContext(ctx,
			"INSERT INTO workflow_steps (job_id, step_name, step_order, status, completed_at, note) VALUES (?, ?, ?, ?, ?, ?)",
			jobID, step.Name, step.Order, step.Status, nullTime(step.CompletedAt), nullString(step.Note),
		)
		if err != nil {
			return fmt.Errorf("failed to create step %q: %w", step.Name, err)
		}
		step.JobID = jobID
	}
	return nil
}

// ListByJob retrieves the steps of a job in catalog order.
func (r *StepRepository) ListByJob(ctx context.Context, jobID string) ([]*secondary.StepRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT job_id, step_name, step_order, status, completed_at, note FROM workflow_steps WHERE job_id = ? ORDER BY step_order ASC",
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps: %w", err)
	}
	defer rows.Close()

	var steps []*secondary.StepRecord
	for rows.Next() {
		var (
			completedAt sql.NullTime
			note        sql.NullString
		)
		step := &secondary.StepRecord{}
		if err := rows.Scan(&step.JobID, &step.Name, &step.Order, &step.Status, &completedAt, &note); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		step.CompletedAt = timePtr(completedAt)
		step.Note = note.String
		steps = append(steps, step)
	}
	return steps, rows.Err()
}

// Update writes one step's status, completion time and note.
func (r *StepRepository) Update(ctx context.Context, step *secondary.StepRecord) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE workflow_steps SET status = ?, completed_at = ?, note = ? WHERE job_id = ? AND step_name = ?",
		step.Status, nullTime(step.CompletedAt), nullString(step.Note), step.JobID, step.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to update step: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errs.NotFound("step %q of job %s not found", step.Name, step.JobID)
	}
	return nil
}

// Ensure StepRepository implements the interface
var _ secondary.StepRepository = (*StepRepository)(nil)
