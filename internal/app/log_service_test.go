package app

import (
	"context"
	"testing"

	"github.com/example/cadastre/internal/core/errs"
	"github.com/example/cadastre/internal/ports/primary"
	"github.com/example/cadastre/internal/ports/secondary"
)

type mockAuditLogRepository struct {
	entries []*secondary.AuditLogRecord
}

func (m *mockAuditLogRepository) Create(ctx context.Context, entry *secondary.AuditLogRecord) error {
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditLogRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]*secondary.AuditLogRecord, error) {
	var out []*secondary.AuditLogRecord
	for _, e := range m.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

var _ secondary.AuditLogRepository = (*mockAuditLogRepository)(nil)

func TestListLogs(t *testing.T) {
	repo := &mockAuditLogRepository{}
	for _, e := range []*secondary.AuditLogRecord{
		{ActorID: "user-1", ActorRole: "SURVEYOR", EntityType: "job", EntityID: "JOB-000001", Action: "create"},
		{ActorID: "nis-1", ActorRole: "NIS_OFFICER", EntityType: "job", EntityID: "JOB-000001", Action: "start-nis-review", OldValue: "SUBMITTED", NewValue: "NIS_REVIEW"},
		{ActorID: "user-2", ActorRole: "SURVEYOR", EntityType: "job", EntityID: "JOB-000002", Action: "create"},
	} {
		_ = repo.Create(context.Background(), e)
	}
	svc := NewLogService(repo, &mockActorProvider{})

	entries, err := svc.ListLogs(asActor("admin-1", "ADMIN"), primary.LogFilters{EntityType: "job", EntityID: "JOB-000001"})
	if err != nil {
		t.Fatalf("ListLogs failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].Action != "start-nis-review" || entries[1].NewValue != "NIS_REVIEW" || entries[1].ActorRole != "NIS_OFFICER" {
		t.Errorf("unexpected entry: %+v", entries[1])
	}

	tests := []struct {
		name    string
		ctx     context.Context
		filters primary.LogFilters
		kind    errs.Kind
	}{
		{"surveyor denied", asActor("user-1", "SURVEYOR"), primary.LogFilters{EntityType: "job", EntityID: "JOB-000001"}, errs.KindAuthorization},
		{"anonymous", context.Background(), primary.LogFilters{EntityType: "job", EntityID: "JOB-000001"}, errs.KindAuthorization},
		{"unknown entity", asActor("nis-1", "NIS_OFFICER"), primary.LogFilters{EntityType: "pillar", EntityID: "SC/CN 1"}, errs.KindValidation},
		{"missing id", asActor("nis-1", "NIS_OFFICER"), primary.LogFilters{EntityType: "surveyor"}, errs.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ListLogs(tt.ctx, tt.filters)
			if !errs.Is(err, tt.kind) {
				t.Errorf("expected %v, got %v", tt.kind, err)
			}
		})
	}
}
