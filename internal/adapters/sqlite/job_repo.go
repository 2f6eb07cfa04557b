package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/example/cadastre/internal/core/errs"
	"github.com/example/cadastre/internal/core/geo"
	corejob "github.com/example/cadastre/internal/core/job"
	"github.com/example/cadastre/internal/ports/secondary"
)

const jobColumns = "id, surveyor_id, submitted_by, client_name, client_phone, client_email, location_description, requested_coordinates, pillar_numbers_required, plan_number, blue_copy_uploaded, blue_copy_uploaded_at, ro_document_uploaded, ro_document_uploaded_at, status, rejection_reason, submitted_at, updated_at, date_approved"

// JobRepository implements secondary.JobRepository with SQLite.
type JobRepository struct {
	db *sql.DB
}

// NewJobRepository creates a new SQLite job repository.
func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create persists a new job.
func (r *JobRepository) Create(ctx context.Context, job *secondary.JobRecord) error {
	coords, err := encodeCoordinates(job.RequestedCoordinates)
	if err != nil {
		return err
	}

	_, err = conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO survey_jobs ("+jobColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		job.ID, job.SurveyorID, job.SubmittedBy, job.ClientName, nullString(job.ClientPhone), nullString(job.ClientEmail),
		job.LocationDescription, coords, job.PillarNumbersRequired, nullString(job.PlanNumber),
		job.BlueCopyUploaded, nullTime(job.BlueCopyUploadedAt), job.RODocumentUploaded, nullTime(job.RODocumentUploadedAt),
		job.Status, nullString(job.RejectionReason), job.SubmittedAt, job.UpdatedAt, nullTime(job.DateApproved),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.Conflict("job %s already exists", job.ID)
		}
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetByID retrieves a job by its job number.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*secondary.JobRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+jobColumns+" FROM survey_jobs WHERE id = ?", id)
	record, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("job %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return record, nil
}

// List retrieves jobs matching the given filters, newest first.
func (r *JobRepository) List(ctx context.Context, filters secondary.JobFilters) ([]*secondary.JobRecord, error) {
	query := "SELECT " + jobColumns + " FROM survey_jobs WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	if filters.SurveyorID != "" {
		query += " AND surveyor_id = ?"
		args = append(args, filters.SurveyorID)
	}

	query += " ORDER BY submitted_at DESC, id DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*secondary.JobRecord
	for rows.Next() {
		record, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, record)
	}
	return jobs, rows.Err()
}

// Update writes every mutable workflow field of the job.
func (r *JobRepository) Update(ctx context.Context, job *secondary.JobRecord) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE survey_jobs SET plan_number = ?, blue_copy_uploaded = ?, blue_copy_uploaded_at = ?,
			ro_document_uploaded = ?, ro_document_uploaded_at = ?, status = ?, rejection_reason = ?,
			updated_at = ?, date_approved = ? WHERE id = ?`,
		nullString(job.PlanNumber), job.BlueCopyUploaded, nullTime(job.BlueCopyUploadedAt),
		job.RODocumentUploaded, nullTime(job.RODocumentUploadedAt), job.Status, nullString(job.RejectionReason),
		job.UpdatedAt, nullTime(job.DateApproved), job.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errs.NotFound("job %s not found", job.ID)
	}
	return nil
}

// GetNextID returns the next available job number.
func (r *JobRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM survey_jobs",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next job ID: %w", err)
	}

	return corejob.FormatID(maxID + 1), nil
}

func scanJob(row rowScanner) (*secondary.JobRecord, error) {
	var (
		phone, email, coords sql.NullString
		planNumber, reason   sql.NullString
		blueCopyAt, roAt     sql.NullTime
		dateApproved         sql.NullTime
	)
	record := &secondary.JobRecord{}
	err := row.Scan(&record.ID, &record.SurveyorID, &record.SubmittedBy, &record.ClientName, &phone, &email,
		&record.LocationDescription, &coords, &record.PillarNumbersRequired, &planNumber,
		&record.BlueCopyUploaded, &blueCopyAt, &record.RODocumentUploaded, &roAt,
		&record.Status, &reason, &record.SubmittedAt, &record.UpdatedAt, &dateApproved)
	if err != nil {
		return nil, err
	}

	record.ClientPhone = phone.String
	record.ClientEmail = email.String
	record.PlanNumber = planNumber.String
	record.RejectionReason = reason.String
	record.BlueCopyUploadedAt = timePtr(blueCopyAt)
	record.RODocumentUploadedAt = timePtr(roAt)
	record.DateApproved = timePtr(dateApproved)
	if coords.Valid && coords.String != "" {
		if err := json.Unmarshal([]byte(coords.String), &record.RequestedCoordinates); err != nil {
			return nil, fmt.Errorf("failed to decode requested coordinates of job %s: %w", record.ID, err)
		}
	}
	return record, nil
}

func encodeCoordinates(coords []geo.Coordinate) (sql.NullString, error) {
	if len(coords) == 0 {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(coords)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode requested coordinates: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

// Ensure JobRepository implements the interface
var _ secondary.JobRepository = (*JobRepository)(nil)
