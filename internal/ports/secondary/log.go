package secondary

import (
	"context"
	"time"
)

// LogWriter defines the interface for writing audit log entries.
// Implementations extract the actor from context and write through the
// caller's transaction, so an entry exists exactly when its change committed.
type LogWriter interface {
	// LogCreate logs a create operation for an entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogTransition logs a status change made by a workflow action.
	LogTransition(ctx context.Context, entityType, entityID, action, oldStatus, newStatus string) error
}

// AuditLogRepository defines the secondary port for audit log persistence.
type AuditLogRepository interface {
	// Create persists a new audit log entry.
	Create(ctx context.Context, entry *AuditLogRecord) error

	// ListByEntity retrieves the entries for one entity, oldest first.
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*AuditLogRecord, error)
}

// AuditLogRecord represents an audit log entry as stored in persistence.
type AuditLogRecord struct {
	ID         int64
	ActorID    string
	ActorRole  string
	EntityType string // "job" or "surveyor"
	EntityID   string
	Action     string
	OldValue   string // Empty string means null
	NewValue   string // Empty string means null
	CreatedAt  time.Time
}
