package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/cadastre/internal/core/errs"
	"github.com/example/cadastre/internal/ports/secondary"
)

// DocumentRepository implements secondary.DocumentRepository with SQLite.
type DocumentRepository struct {
	db *sql.DB
}

// NewDocumentRepository creates a new SQLite document repository.
func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create persists a document reference.
func (r *DocumentRepository) Create(ctx context.Context, doc *secondary.DocumentRecord) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		"INSERT INTO documents (id, job_id, kind, url, file_name, size_bytes, mime_type, uploaded_by, uploaded_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		doc.ID, doc.JobID, doc.Kind, doc.URL, doc.FileName, doc.SizeBytes, nullString(doc.MimeType), doc.UploadedBy, doc.UploadedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.Conflict("job %s already has a %s document", doc.JobID, doc.Kind)
		}
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// ListByJob retrieves the documents of a job in upload order.
func (r *DocumentRepository) ListByJob(ctx context.Context, jobID string) ([]*secondary.DocumentRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		"SELECT id, job_id, kind, url, file_name, size_bytes, mime_type, uploaded_by, uploaded_at FROM documents WHERE job_id = ? ORDER BY uploaded_at ASC",
		jobID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*secondary.DocumentRecord
	for rows.Next() {
		var mimeType sql.NullString
		doc := &secondary.DocumentRecord{}
		if err := rows.Scan(&doc.ID, &doc.JobID, &doc.Kind, &doc.URL, &doc.FileName, &doc.SizeBytes, &mimeType, &doc.UploadedBy, &doc.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc.MimeType = mimeType.String
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Ensure DocumentRepository implements the interface
var _ secondary.DocumentRepository = (*DocumentRepository)(nil)
