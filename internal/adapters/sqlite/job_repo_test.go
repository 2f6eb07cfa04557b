package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/cadastre/internal/adapters/sqlite"
	"github.com/example/cadastre/internal/core/errs"
	"github.com/example/cadastre/internal/core/geo"
	"github.com/example/cadastre/internal/ports/secondary"
)

func TestJobRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewJobRepository(db)
	ctx := context.Background()
	seedSurveyor(t, db, "SRV-0001", "user-1")

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "JOB-000001" {
		t.Errorf("expected JOB-000001, got %s", id)
	}

	now := time.Now().UTC().Truncate(time.Second)
	record := &secondary.JobRecord{
		ID:                  id,
		SurveyorID:          "SRV-0001",
		SubmittedBy:         "user-1",
		ClientName:          "Mrs Bello",
		LocationDescription: "Plot 12, Lekki",
		RequestedCoordinates: []geo.Coordinate{
			{Easting: "543210.5", Northing: "712345.1"},
			{Easting: "543300", Northing: "712400"},
		},
		PillarNumbersRequired: 2,
		Status:                "SUBMITTED",
		SubmittedAt:           now,
		UpdatedAt:             now,
	}
	if err := repo.Create(ctx, record); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.RequestedCoordinates) != 2 || got.RequestedCoordinates[0].Easting != "543210.5" {
		t.Errorf("coordinates not preserved: %+v", got.RequestedCoordinates)
	}
	if got.PlanNumber != "" || got.DateApproved != nil {
		t.Errorf("expected unset plan number and approval date")
	}
	if !got.SubmittedAt.Equal(now) {
		t.Errorf("SubmittedAt = %v, want %v", got.SubmittedAt, now)
	}

	next, _ := repo.GetNextID(ctx)
	if next != "JOB-000002" {
		t.Errorf("expected JOB-000002, got %s", next)
	}
}

func TestJobRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewJobRepository(db)
	ctx := context.Background()
	seedSurveyor(t, db, "", "")
	seedJob(t, db, "JOB-000001", "SRV-0001", "ADMIN_REVIEW")

	job, err := repo.GetByID(ctx, "JOB-000001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	approved := time.Now().UTC().Truncate(time.Second)
	job.Status = "COMPLETED"
	job.PlanNumber = "PH/1"
	job.DateApproved = &approved
	job.UpdatedAt = approved
	if err := repo.Update(ctx, job); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := repo.GetByID(ctx, "JOB-000001")
	if got.Status != "COMPLETED" || got.PlanNumber != "PH/1" {
		t.Errorf("update not persisted: %s %s", got.Status, got.PlanNumber)
	}
	if got.DateApproved == nil || !got.DateApproved.Equal(approved) {
		t.Errorf("DateApproved = %v, want %v", got.DateApproved, approved)
	}

	missing := &secondary.JobRecord{ID: "JOB-999999", Status: "COMPLETED", UpdatedAt: approved}
	if err := repo.Update(ctx, missing); !errs.Is(err, errs.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestJobRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewJobRepository(db)
	ctx := context.Background()
	seedSurveyor(t, db, "SRV-0001", "user-1")
	seedSurveyor(t, db, "SRV-0002", "user-2")
	seedJob(t, db, "JOB-000001", "SRV-0001", "SUBMITTED")
	seedJob(t, db, "JOB-000002", "SRV-0001", "NIS_REVIEW")
	seedJob(t, db, "JOB-000003", "SRV-0002", "SUBMITTED")

	tests := []struct {
		name    string
		filters secondary.JobFilters
		want    int
	}{
		{"all", secondary.JobFilters{}, 3},
		{"by status", secondary.JobFilters{Status: "SUBMITTED"}, 2},
		{"by surveyor", secondary.JobFilters{SurveyorID: "SRV-0001"}, 2},
		{"both", secondary.JobFilters{Status: "SUBMITTED", SurveyorID: "SRV-0002"}, 1},
		{"limit", secondary.JobFilters{Limit: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs, err := repo.List(ctx, tt.filters)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(jobs) != tt.want {
				t.Errorf("expected %d jobs, got %d", tt.want, len(jobs))
			}
		})
	}
}

func TestStepRepository_CreateListUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewStepRepository(db)
	ctx := context.Background()
	seedSurveyor(t, db, "", "")
	seedJob(t, db, "JOB-000001", "", "")

	done := time.Now().UTC().Truncate(time.Second)
	steps := []*secondary.StepRecord{
		{Name: "NIS Review", Order: 2, Status: "Pending"},
		{Name: "Submitted", Order: 1, Status: "Completed", CompletedAt: &done},
	}
	if err := repo.CreateAll(ctx, "JOB-000001", steps); err != nil {
		t.Fatalf("CreateAll failed: %v", err)
	}

	got, err := repo.ListByJob(ctx, "JOB-000001")
	if err != nil {
		t.Fatalf("ListByJob failed: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Submitted" || got[1].Name != "NIS Review" {
		t.Fatalf("steps not in catalog order: %+v", got)
	}
	if got[0].CompletedAt == nil || got[1].CompletedAt != nil {
		t.Errorf("completion times not preserved")
	}

	got[1].Status = "Rejected"
	got[1].Note = "coordinates do not close"
	if err := repo.Update(ctx, got[1]); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	after, _ := repo.ListByJob(ctx, "JOB-000001")
	if after[1].Status != "Rejected" || after[1].Note != "coordinates do not close" {
		t.Errorf("step update not persisted: %+v", after[1])
	}

	if err := repo.Update(ctx, &secondary.StepRecord{JobID: "JOB-000001", Name: "Nope", Status: "Pending"}); !errs.Is(err, errs.KindNotFound) {
		t.Errorf("expected not found for unknown step, got %v", err)
	}
}

func TestDocumentRepository_CreateAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewDocumentRepository(db)
	ctx := context.Background()
	seedSurveyor(t, db, "", "")
	seedJob(t, db, "JOB-000001", "", "COMPLETED")

	doc := &secondary.DocumentRecord{
		ID: "doc-1", JobID: "JOB-000001", Kind: "BLUE_COPY",
		URL: "https://files.example/blue.pdf", FileName: "blue.pdf", SizeBytes: 2048,
		MimeType: "application/pdf", UploadedBy: "user-1", UploadedAt: time.Now(),
	}
	if err := repo.Create(ctx, doc); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	dup := *doc
	dup.ID = "doc-2"
	if err := repo.Create(ctx, &dup); !errs.Is(err, errs.KindConflict) {
		t.Errorf("expected conflict for second blue copy, got %v", err)
	}

	docs, err := repo.ListByJob(ctx, "JOB-000001")
	if err != nil {
		t.Fatalf("ListByJob failed: %v", err)
	}
	if len(docs) != 1 || docs[0].SizeBytes != 2048 || docs[0].MimeType != "application/pdf" {
		t.Errorf("unexpected documents: %+v", docs)
	}
}
