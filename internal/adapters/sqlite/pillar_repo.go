package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/cadastre/internal/core/errs"
	"github.com/example/cadastre/internal/ports/secondary"
)

const pillarColumns = "pillar_number, series_prefix, sequence, easting, northing, job_id, surveyor_id, issued_at"

// PillarRepository implements secondary.PillarRepository with SQLite.
type PillarRepository struct {
	db *sql.DB
}

// NewPillarRepository creates a new SQLite pillar repository.
func NewPillarRepository(db *sql.DB) *PillarRepository {
	return &PillarRepository{db: db}
}

// CreateBatch persists newly issued pillars. A duplicate number fails the
// whole batch with a conflict.
func (r *PillarRepository) CreateBatch(ctx context.Context, pillars []*secondary.PillarRecord) error {
	q := conn(ctx, r.db)
	for _, p := range pillars {
		_, err := q.ExecContext(ctx,
			"INSERT INTO pillar_numbers ("+pillarColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			p.PillarNumber, p.SeriesPrefix, p.Sequence, nullString(p.Coordinate.Easting), nullString(p.Coordinate.Northing),
			p.JobID, p.SurveyorID, p.IssuedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return errs.Conflict("pillar number %s is already issued", p.PillarNumber)
			}
			return fmt.Errorf("failed to create pillar %s: %w", p.PillarNumber, err)
		}
	}
	return nil
}

// GetByNumber retrieves a pillar by its formatted number.
func (r *PillarRepository) GetByNumber(ctx context.Context, number string) (*secondary.PillarRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx, "SELECT "+pillarColumns+" FROM pillar_numbers WHERE pillar_number = ?", number)
	record, err := scanPillar(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("pillar %s not found", number)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pillar: %w", err)
	}
	return record, nil
}

// ListByJob retrieves the pillars issued to a job in issuance order.
func (r *PillarRepository) ListByJob(ctx context.Context, jobID string) ([]*secondary.PillarRecord, error) {
	return r.list(ctx, "SELECT "+pillarColumns+" FROM pillar_numbers WHERE job_id = ? ORDER BY issued_at ASC, series_prefix ASC, sequence ASC", jobID)
}

// ListAll retrieves every pillar in issuance order.
func (r *PillarRepository) ListAll(ctx context.Context) ([]*secondary.PillarRecord, error) {
	return r.list(ctx, "SELECT "+pillarColumns+" FROM pillar_numbers ORDER BY issued_at ASC, series_prefix ASC, sequence ASC")
}

// CountByJob returns how many pillars a job holds.
func (r *PillarRepository) CountByJob(ctx context.Context, jobID string) (int, error) {
	var count int
	err := conn(ctx, r.db).QueryRowContext(ctx, "SELECT COUNT(*) FROM pillar_numbers WHERE job_id = ?", jobID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pillars: %w", err)
	}
	return count, nil
}

// Existing returns those of numbers that are already issued.
func (r *PillarRepository) Existing(ctx context.Context, numbers []string) ([]string, error) {
	if len(numbers) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(numbers)), ",")
	args := make([]any, len(numbers))
	for i, n := range numbers {
		args[i] = n
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT pillar_number FROM pillar_numbers WHERE pillar_number IN ("+placeholders+") ORDER BY sequence ASC",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to check pillar numbers: %w", err)
	}
	defer rows.Close()

	var existing []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan pillar number: %w", err)
		}
		existing = append(existing, n)
	}
	return existing, rows.Err()
}

func (r *PillarRepository) list(ctx context.Context, query string, args ...any) ([]*secondary.PillarRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pillars: %w", err)
	}
	defer rows.Close()

	var pillars []*secondary.PillarRecord
	for rows.Next() {
		record, err := scanPillar(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pillar: %w", err)
		}
		pillars = append(pillars, record)
	}
	return pillars, rows.Err()
}

func scanPillar(row rowScanner) (*secondary.PillarRecord, error) {
	var easting, northing sql.NullString
	record := &secondary.PillarRecord{}
	err := row.Scan(&record.PillarNumber, &record.SeriesPrefix, &record.Sequence, &easting, &northing,
		&record.JobID, &record.SurveyorID, &record.IssuedAt)
	if err != nil {
		return nil, err
	}
	record.Coordinate.Easting = easting.String
	record.Coordinate.Northing = northing.String
	return record, nil
}

// Ensure PillarRepository implements the interface
var _ secondary.PillarRepository = (*PillarRepository)(nil)
