package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/cadastre/internal/ports/secondary"
)

// AuditLogRepository implements secondary.AuditLogRepository with SQLite.
type AuditLogRepository struct {
	db *sql.DB
}

// NewAuditLogRepository creates a new SQLite audit log repository.
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create persists a new audit log entry.
func (r *AuditLogRepository) Create(ctx context.Context, entry *secondary.AuditLogRecord) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	result, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO audit_logs (actor_id, actor_role, entity_type, entity_id, action, old_value, new_value, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullString(entry.ActorID),
		nullString(entry.ActorRole),
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		nullString(entry.OldValue),
		nullString(entry.NewValue),
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get audit log ID: %w", err)
	}
	entry.ID = id
	return nil
}

// ListByEntity retrieves the entries for one entity, oldest first.
func (r *AuditLogRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]*secondary.AuditLogRecord, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx,
		`SELECT id, actor_id, actor_role, entity_type, entity_id, action, old_value, new_value, created_at FROM audit_logs WHERE entity_type = ? AND entity_id = ? ORDER BY id ASC`,
		entityType, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.AuditLogRecord
	for rows.Next() {
		var (
			actorID   sql.NullString
			actorRole sql.NullString
			oldValue  sql.NullString
			newValue  sql.NullString
		)
		record := &secondary.AuditLogRecord{}
		if err := rows.Scan(&record.ID, &actorID, &actorRole, &record.EntityType, &record.EntityID,
			&record.Action, &oldValue, &newValue, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		record.ActorID = actorID.String
		record.ActorRole = actorRole.String
		record.OldValue = oldValue.String
		record.NewValue = newValue.String
		entries = append(entries, record)
	}
	return entries, rows.Err()
}

// Ensure AuditLogRepository implements the interface
var _ secondary.AuditLogRepository = (*AuditLogRepository)(nil)
