package primary

import (
	"context"
	"time"
)

// LogService defines the primary port for reading the workflow audit log.
type LogService interface {
	// ListLogs retrieves the audit history of one job or surveyor, oldest first.
	ListLogs(ctx context.Context, filters LogFilters) ([]*LogEntry, error)
}

// LogEntry represents an audit log entry at the port boundary.
type LogEntry struct {
	ID         int64     `json:"id"`
	ActorID    string    `json:"actorId"`
	ActorRole  string    `json:"actorRole"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Action     string    `json:"action"`   // 'create' or a workflow action
	OldValue   string    `json:"oldValue"` // Status before the action
	NewValue   string    `json:"newValue"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LogFilters selects the entity whose history is read.
type LogFilters struct {
	EntityType string // "job" or "surveyor"
	EntityID   string
}
