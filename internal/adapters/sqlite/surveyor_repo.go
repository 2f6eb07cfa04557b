package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/cadastre/internal/core/errs"
	coresurveyor "github.com/example/cadastre/internal/core/surveyor"
	"github.com/example/cadastre/internal/ports/secondary"
)

const surveyorColumns = "id, user_id, full_name, email, phone, surcon_number, nis_number, status, verified_at, rejection_reason, created_at, updated_at"

// SurveyorRepository implements secondary.SurveyorRepository with SQLite.
type SurveyorRepository struct {
	db *sql.DB
}

// NewSurveyorRepository creates a new SQLite surveyor repository.
func NewSurveyorRepository(db *sql.DB) *SurveyorRepository {
	return &SurveyorRepository{db: db}
}

// Create persists a new surveyor.
func (r *SurveyorRepository) Create(ctx context.Context, s *secondary.SurveyorRecord) error {
	status := string(coresurveyor.InitialStatus())
	if s.Status != "" {
		status = s.Status
	}
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = s.CreatedAt

	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO surveyors (id, user_id, full_name, email, phone, surcon_number, nis_number, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.ID, s.UserID, s.FullName, nullString(s.Email), nullString(s.Phone), s.SurconNumber, s.NISNumber, status, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.Conflict("surveyor registration conflicts with an existing profile")
		}
		return fmt.Errorf("failed to create surveyor: %w", err)
	}
	s.Status = status
	return nil
}

// GetByID retrieves a surveyor by its ID.
func (r *SurveyorRepository) GetByID(ctx context.Context, id string) (*secondary.SurveyorRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+surveyorColumns+" FROM surveyors WHERE id = ?", id)
	record, err := scanSurveyor(row)
	if err == sql.ErrNoRows {
		return nil, errs.NotFound("surveyor %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get surveyor: %w", err)
	}
	return record, nil
}

// GetByUserID retrieves the surveyor profile of a user, nil if none.
func (r *SurveyorRepository) GetByUserID(ctx context.Context, userID string) (*secondary.SurveyorRecord, error) {
	row := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT "+surveyorColumns+" FROM surveyors WHERE user_id = ?", userID)
	record, err := scanSurveyor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get surveyor by user: %w", err)
	}
	return record, nil
}

// List retrieves surveyors matching the given filters.
func (r *SurveyorRepository) List(ctx context.Context, filters secondary.SurveyorFilters) ([]*secondary.SurveyorRecord, error) {
	query := "SELECT " + surveyorColumns + " FROM surveyors WHERE 1=1"
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY id ASC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list surveyors: %w", err)
	}
	defer rows.Close()

	var surveyors []*secondary.SurveyorRecord
	for rows.Next() {
		record, err := scanSurveyor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan surveyor: %w", err)
		}
		surveyors = append(surveyors, record)
	}
	return surveyors, rows.Err()
}

// UpdateVerification writes the result of a verification transition.
func (r *SurveyorRepository) UpdateVerification(ctx context.Context, id, status string, verifiedAt *time.Time, reason string) error {
	result, err := conn(ctx, r.db).ExecContext(ctx,
		"UPDATE surveyors SET status = ?, verified_at = COALESCE(?, verified_at), rejection_reason = ?, updated_at = ? WHERE id = ?",
		status, nullTime(verifiedAt), nullString(reason), time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update surveyor: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errs.NotFound("surveyor %s not found", id)
	}
	return nil
}

// FindByRegistration returns the IDs of surveyors already holding either number.
func (r *SurveyorRepository) FindByRegistration(ctx context.Context, surconNumber, nisNumber string) (string, string, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT id, surcon_number, nis_number FROM surveyors WHERE surcon_number = ? OR nis_number = ?",
		surconNumber, nisNumber,
	)
	if err != nil {
		return "", "", fmt.Errorf("failed to look up registration numbers: %w", err)
	}
	defer rows.Close()

	var surconOwner, nisOwner string
	for rows.Next() {
		var id, surcon, nis string
		if err := rows.Scan(&id, &surcon, &nis); err != nil {
			return "", "", fmt.Errorf("failed to scan registration: %w", err)
		}
		if surcon == surconNumber {
			surconOwner = id
		}
		if nis == nisNumber {
			nisOwner = id
		}
	}
	return surconOwner, nisOwner, rows.Err()
}

// GetNextID returns the next available surveyor ID.
func (r *SurveyorRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := conn(ctx, r.db).QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 5) AS INTEGER)), 0) FROM surveyors",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next surveyor ID: %w", err)
	}

	return coresurveyor.FormatID(maxID + 1), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSurveyor(row rowScanner) (*secondary.SurveyorRecord, error) {
	var (
		email, phone sql.NullString
		reason       sql.NullString
		verifiedAt   sql.NullTime
	)
	record := &secondary.SurveyorRecord{}
	err := row.Scan(&record.ID, &record.UserID, &record.FullName, &email, &phone,
		&record.SurconNumber, &record.NISNumber, &record.Status, &verifiedAt, &reason,
		&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}
	record.Email = email.String
	record.Phone = phone.String
	record.RejectionReason = reason.String
	record.VerifiedAt = timePtr(verifiedAt)
	return record, nil
}

// Ensure SurveyorRepository implements the interface
var _ secondary.SurveyorRepository = (*SurveyorRepository)(nil)
