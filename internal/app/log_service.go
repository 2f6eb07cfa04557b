package app

import (
	"context"
	"fmt"

	"github.com/example/cadastre/internal/core/actor"
	"github.com/example/cadastre/internal/core/errs"
	"github.com/example/cadastre/internal/ports/primary"
	"github.com/example/cadastre/internal/ports/secondary"
)

// LogServiceImpl implements the LogService interface.
type LogServiceImpl struct {
	logRepo secondary.AuditLogRepository
	actors  secondary.ActorProvider
}

// NewLogService creates a new LogService with injected dependencies.
func NewLogService(logRepo secondary.AuditLogRepository, actors secondary.ActorProvider) *LogServiceImpl {
	return &LogServiceImpl{
		logRepo: logRepo,
		actors:  actors,
	}
}

// ListLogs retrieves the audit history of one entity. Only reviewers read it.
func (s *LogServiceImpl) ListLogs(ctx context.Context, filters primary.LogFilters) ([]*primary.LogEntry, error) {
	a, err := s.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	if a.Role != actor.RoleNISOfficer && a.Role != actor.RoleAdmin {
		return nil, errs.Authorization("role %s may not read the audit log", a.Role)
	}
	if filters.EntityType != "job" && filters.EntityType != "surveyor" {
		return nil, errs.Validation("entity type must be job or surveyor, got %q", filters.EntityType)
	}
	if filters.EntityID == "" {
		return nil, errs.Validation("entity ID is required")
	}

	records, err := s.logRepo.ListByEntity(ctx, filters.EntityType, filters.EntityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}

	entries := make([]*primary.LogEntry, len(records))
	for i, r := range records {
		entries[i] = recordToLogEntry(r)
	}
	return entries, nil
}

func recordToLogEntry(r *secondary.AuditLogRecord) *primary.LogEntry {
	return &primary.LogEntry{
		ID:         r.ID,
		ActorID:    r.ActorID,
		ActorRole:  r.ActorRole,
		EntityType: r.EntityType,
		EntityID:   r.EntityID,
		Action:     r.Action,
		OldValue:   r.OldValue,
		NewValue:   r.NewValue,
		CreatedAt:  r.CreatedAt,
	}
}

// Ensure LogServiceImpl implements the interface
var _ primary.LogService = (*LogServiceImpl)(nil)
