package sqlite

import (
	"context"

	"github.com/example/cadastre/internal/ctxutil"
	"github.com/example/cadastre/internal/ports/secondary"
)

// LogWriterAdapter implements secondary.LogWriter using AuditLogRepository.
type LogWriterAdapter struct {
	logRepo secondary.AuditLogRepository
}

// NewLogWriterAdapter creates a new LogWriterAdapter.
func NewLogWriterAdapter(logRepo secondary.AuditLogRepository) *LogWriterAdapter {
	return &LogWriterAdapter{logRepo: logRepo}
}

// LogCreate logs a create operation for an entity.
func (w *LogWriterAdapter) LogCreate(ctx context.Context, entityType, entityID string) error {
	return w.writeLog(ctx, entityType, entityID, "create", "", "")
}

// LogTransition logs a status change made by a workflow action.
func (w *LogWriterAdapter) LogTransition(ctx context.Context, entityType, entityID, action, oldStatus, newStatus string) error {
	return w.writeLog(ctx, entityType, entityID, action, oldStatus, newStatus)
}

// writeLog writes a log entry with common logic.
func (w *LogWriterAdapter) writeLog(ctx context.Context, entityType, entityID, action, oldValue, newValue string) error {
	record := &secondary.AuditLogRecord{
		ActorID:    ctxutil.ActorFromContext(ctx),
		ActorRole:  ctxutil.RoleFromContext(ctx),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		OldValue:   oldValue,
		NewValue:   newValue,
	}
	return w.logRepo.Create(ctx, record)
}

// Ensure LogWriterAdapter implements the interface
var _ secondary.LogWriter = (*LogWriterAdapter)(nil)
