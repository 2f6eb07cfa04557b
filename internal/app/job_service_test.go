package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/cadastre/internal/core/actor"
	"github.com/example/cadastre/internal/core/errs"
	"github.com/example/cadastre/internal/core/geo"
	corejob "github.com/example/cadastre/internal/core/job"
	coresurveyor "github.com/example/cadastre/internal/core/surveyor"
	"github.com/example/cadastre/internal/ports/primary"
	"github.com/example/cadastre/internal/ports/secondary"
)

type jobFixture struct {
	svc       *JobServiceImpl
	jobs      *mockJobRepository
	steps     *mockStepRepository
	surveyors *mockSurveyorRepository
	pillars   *mockPillarRepository
	sequences *mockSequenceRepository
	docs      *mockDocumentRepository
	cache     *mockSearchCache
	logs      *mockLogWriter
}

func newJobFixture() *jobFixture {
	f := &jobFixture{
		jobs:      newMockJobRepository(),
		steps:     newMockStepRepository(),
		surveyors: newMockSurveyorRepository(),
		pillars:   &mockPillarRepository{},
		sequences: newMockSequenceRepository(),
		docs:      &mockDocumentRepository{},
		cache:     newMockSearchCache(),
		logs:      &mockLogWriter{},
	}
	f.surveyors.add("SRV-0001", "user-1", string(coresurveyor.StatusVerified))
	f.surveyors.add("SRV-0002", "user-2", string(coresurveyor.StatusVerified))

	f.svc = NewJobService(JobServiceDeps{
		Transactor:   &mockTransactor{},
		JobRepo:      f.jobs,
		StepRepo:     f.steps,
		SurveyorRepo: f.surveyors,
		PillarRepo:   f.pillars,
		DocumentRepo: f.docs,
		Allocator:    NewSequenceAllocator(f.sequences, f.pillars, 50),
		Actors:       mockActorProvider{},
		LogWriter:    f.logs,
		Cache:        f.cache,
		SeriesPrefix: "SC/CN",
		MaxBatch:     50,
	})
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

var (
	surveyorCtx = asActor("user-1", actor.RoleSurveyor)
	otherCtx    = asActor("user-2", actor.RoleSurveyor)
	nisCtx      = asActor("officer-1", actor.RoleNISOfficer)
	adminCtx    = asActor("admin-1", actor.RoleAdmin)
)

func twoPillarRequest() primary.SubmitJobRequest {
	return primary.SubmitJobRequest{
		ClientName:          "Chinedu Okafor",
		LocationDescription: "Plot 14, Independence Layout, Enugu",
		RequestedCoordinates: []geo.Coordinate{
			{Easting: "331245.12", Northing: "712004.88"},
			{Easting: "331290.40", Northing: "712051.03"},
		},
		PillarNumbersRequired: 2,
	}
}

// submitted creates a job and returns its ID.
func (f *jobFixture) submitted(t *testing.T) string {
	t.Helper()
	job, err := f.svc.SubmitJob(surveyorCtx, twoPillarRequest())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	return job.ID
}

// inAdminReview creates a job and passes the NIS gate.
func (f *jobFixture) inAdminReview(t *testing.T) string {
	t.Helper()
	id := f.submitted(t)
	if _, err := f.svc.NISApprove(nisCtx, id); err != nil {
		t.Fatalf("NIS approve failed: %v", err)
	}
	return id
}

// completed creates a job and issues its pillars.
func (f *jobFixture) completed(t *testing.T) string {
	t.Helper()
	id := f.inAdminReview(t)
	if _, err := f.svc.AdminApprove(adminCtx, primary.AdminApproveRequest{JobID: id, PlanNumber: "PH/1"}); err != nil {
		t.Fatalf("admin approve failed: %v", err)
	}
	return id
}

func stepStatus(job *primary.Job, name corejob.StepName) string {
	for _, s := range job.Steps {
		if s.Name == string(name) {
			return s.Status
		}
	}
	return ""
}

func TestSubmitJob(t *testing.T) {
	f := newJobFixture()

	job, err := f.svc.SubmitJob(surveyorCtx, twoPillarRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != string(corejob.StatusSubmitted) {
		t.Errorf("status = %q, want SUBMITTED", job.Status)
	}
	if job.SurveyorID != "SRV-0001" {
		t.Errorf("surveyor = %q, want SRV-0001", job.SurveyorID)
	}
	if len(job.Steps) != len(corejob.Catalog) {
		t.Fatalf("expected %d steps, got %d", len(corejob.Catalog), len(job.Steps))
	}
	if got := stepStatus(job, corejob.StepSubmitted); got != string(corejob.StepDone) {
		t.Errorf("Submitted step = %q, want Completed", got)
	}
	if got := stepStatus(job, corejob.StepNISReview); got != string(corejob.StepPending) {
		t.Errorf("NIS Review step = %q, want Pending", got)
	}
	if len(job.Pillars) != 0 {
		t.Errorf("expected no pillars on a new job, got %d", len(job.Pillars))
	}
}

func TestSubmitJob_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		setup    func(*jobFixture)
		mutate   func(*primary.SubmitJobRequest)
		wantKind errs.Kind
	}{
		{
			name:     "non-surveyor denied",
			ctx:      nisCtx,
			wantKind: errs.KindAuthorization,
		},
		{
			name: "unverified surveyor",
			ctx:  asActor("user-3", actor.RoleSurveyor),
			setup: func(f *jobFixture) {
				f.surveyors.add("SRV-0003", "user-3", string(coresurveyor.StatusNISApproved))
			},
			wantKind: errs.KindPreconditionNotMet,
		},
		{
			name:     "actor without profile",
			ctx:      asActor("user-9", actor.RoleSurveyor),
			wantKind: errs.KindPreconditionNotMet,
		},
		{
			name: "submitting under another surveyor",
			ctx:  surveyorCtx,
			mutate: func(r *primary.SubmitJobRequest) {
				r.SurveyorID = "SRV-0002"
			},
			wantKind: errs.KindAuthorization,
		},
		{
			name: "zero pillars",
			ctx:  surveyorCtx,
			mutate: func(r *primary.SubmitJobRequest) {
				r.PillarNumbersRequired = 0
				r.RequestedCoordinates = nil
			},
			wantKind: errs.KindValidation,
		},
		{
			name: "coordinate count mismatch",
			ctx:  surveyorCtx,
			mutate: func(r *primary.SubmitJobRequest) {
				r.PillarNumbersRequired = 3
			},
			wantKind: errs.KindValidation,
		},
		{
			name: "missing client name",
			ctx:  surveyorCtx,
			mutate: func(r *primary.SubmitJobRequest) {
				r.ClientName = " "
			},
			wantKind: errs.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newJobFixture()
			if tt.setup != nil {
				tt.setup(f)
			}
			req := twoPillarRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			_, err := f.svc.SubmitJob(tt.ctx, req)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if kind := errs.KindOf(err); kind != tt.wantKind {
				t.Errorf("error kind = %v, want %v (%v)", kind, tt.wantKind, err)
			}
			if len(f.jobs.jobs) != 0 {
				t.Errorf("expected no job to be created, got %d", len(f.jobs.jobs))
			}
		})
	}
}

func TestAdminApprove_IssuesOnePillarPerCoordinate(t *testing.T) {
	f := newJobFixture()
	id := f.inAdminReview(t)

	job, err := f.svc.AdminApprove(adminCtx, primary.AdminApproveRequest{JobID: id, PlanNumber: "PH/1", SeriesPrefix: "SC/CN"})
	if err != nil {
		t.Fatalf("admin approve failed: %v", err)
	}

	if job.Status != string(corejob.StatusCompleted) {
		t.Errorf("status = %q, want COMPLETED", job.Status)
	}
	if job.PlanNumber != "PH/1" {
		t.Errorf("plan number = %q, want PH/1", job.PlanNumber)
	}
	if job.DateApproved == nil || !job.DateApproved.Equal(fixedNow) {
		t.Errorf("date approved = %v, want %v", job.DateApproved, fixedNow)
	}
	if len(job.Pillars) != 2 {
		t.Fatalf("expected 2 pillars, got %d", len(job.Pillars))
	}
	for i, want := range []string{"SC/CN 1", "SC/CN 2"} {
		if job.Pillars[i].PillarNumber != want {
			t.Errorf("pillar %d = %q, want %q", i, job.Pillars[i].PillarNumber, want)
		}
		if job.Pillars[i].Coordinate != job.RequestedCoordinates[i] {
			t.Errorf("pillar %d coordinate = %v, want %v", i, job.Pillars[i].Coordinate, job.RequestedCoordinates[i])
		}
	}
	if got := f.sequences.counters["SC/CN"]; got != 2 {
		t.Errorf("series counter = %d, want 2", got)
	}
	if got := stepStatus(job, corejob.StepAdminReview); got != string(corejob.StepDone) {
		t.Errorf("Admin Review step = %q, want Completed", got)
	}
	if got := stepStatus(job, corejob.StepPillarAssignment); got != string(corejob.StepDone) {
		t.Errorf("Pillar Number Assignment step = %q, want Completed", got)
	}
	if f.cache.invalidated != 1 {
		t.Errorf("expected search cache to be invalidated once, got %d", f.cache.invalidated)
	}
}

func TestAdminApprove_UsesDefaultSeries(t *testing.T) {
	f := newJobFixture()
	f.sequences.counters["SC/CN"] = 40
	id := f.inAdminReview(t)

	job, err := f.svc.AdminApprove(adminCtx, primary.AdminApproveRequest{JobID: id, PlanNumber: "PH/2"})
	if err != nil {
		t.Fatalf("admin approve failed: %v", err)
	}
	if job.Pillars[0].PillarNumber != "SC/CN 41" || job.Pillars[1].PillarNumber != "SC/CN 42" {
		t.Errorf("pillars = %q, %q; want SC/CN 41, SC/CN 42", job.Pillars[0].PillarNumber, job.Pillars[1].PillarNumber)
	}
}

func TestAdminApprove_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		prepare  func(*jobFixture, *testing.T) string
		req      func(id string) primary.AdminApproveRequest
		wantKind errs.Kind
	}{
		{
			name:    "authorization checked before the job is loaded",
			ctx:     nisCtx,
			prepare: func(*jobFixture, *testing.T) string { return "JOB-999999" },
			req: func(id string) primary.AdminApproveRequest {
				return primary.AdminApproveRequest{JobID: id, PlanNumber: "PH/1"}
			},
			wantKind: errs.KindAuthorization,
		},
		{
			name:    "job still awaiting NIS",
			ctx:     adminCtx,
			prepare: (*jobFixture).submitted,
			req: func(id string) primary.AdminApproveRequest {
				return primary.AdminApproveRequest{JobID: id, PlanNumber: "PH/1"}
			},
			wantKind: errs.KindInvalidStateTransition,
		},
		{
			name:    "second approval",
			ctx:     adminCtx,
			prepare: (*jobFixture).completed,
			req: func(id string) primary.AdminApproveRequest {
				return primary.AdminApproveRequest{JobID: id, PlanNumber: "PH/1"}
			},
			wantKind: errs.KindInvalidStateTransition,
		},
		{
			name:    "missing plan number",
			ctx:     adminCtx,
			prepare: (*jobFixture).inAdminReview,
			req: func(id string) primary.AdminApproveRequest {
				return primary.AdminApproveRequest{JobID: id}
			},
			wantKind: errs.KindValidation,
		},
		{
			name:    "count disagrees with coordinates",
			ctx:     adminCtx,
			prepare: (*jobFixture).inAdminReview,
			req: func(id string) primary.AdminApproveRequest {
				return primary.AdminApproveRequest{JobID: id, PlanNumber: "PH/1", CoordinateCount: 5}
			},
			wantKind: errs.KindValidation,
		},
		{
			name:    "malformed series prefix",
			ctx:     adminCtx,
			prepare: (*jobFixture).inAdminReview,
			req: func(id string) primary.AdminApproveRequest {
				return primary.AdminApproveRequest{JobID: id, PlanNumber: "PH/1", SeriesPrefix: "bad prefix!"}
			},
			wantKind: errs.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newJobFixture()
			id := tt.prepare(f, t)
			issuedBefore := len(f.pillars.pillars)
			counterBefore := f.sequences.counters["SC/CN"]

			_, err := f.svc.AdminApprove(tt.ctx, tt.req(id))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if kind := errs.KindOf(err); kind != tt.wantKind {
				t.Errorf("error kind = %v, want %v (%v)", kind, tt.wantKind, err)
			}
			if len(f.pillars.pillars) != issuedBefore {
				t.Errorf("pillars issued on a failed approval: %d -> %d", issuedBefore, len(f.pillars.pillars))
			}
			if f.sequences.counters["SC/CN"] != counterBefore {
				t.Errorf("series counter moved on a failed approval: %d -> %d", counterBefore, f.sequences.counters["SC/CN"])
			}
		})
	}
}

func TestAdminApprove_CollisionAdvancesSeries(t *testing.T) {
	f := newJobFixture()
	// A pillar recorded without going through the counter.
	f.pillars.pillars = append(f.pillars.pillars, &secondary.PillarRecord{
		PillarNumber: "SC/CN 1", SeriesPrefix: "SC/CN", Sequence: 1, JobID: "JOB-000000", SurveyorID: "SRV-0002",
	})
	id := f.inAdminReview(t)

	_, err := f.svc.AdminApprove(adminCtx, primary.AdminApproveRequest{JobID: id, PlanNumber: "PH/1"})
	if !errs.Is(err, errs.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if f.jobs.jobs[id].Status != string(corejob.StatusAdminReview) {
		t.Errorf("status = %q, want ADMIN_REVIEW after conflict", f.jobs.jobs[id].Status)
	}
	if f.sequences.counters["SC/CN"] < 1 {
		t.Errorf("series counter = %d, want at least 1", f.sequences.counters["SC/CN"])
	}

	job, err := f.svc.AdminApprove(adminCtx, primary.AdminApproveRequest{JobID: id, PlanNumber: "PH/1"})
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	for _, p := range job.Pillars {
		if p.PillarNumber == "SC/CN 1" {
			t.Errorf("retry reissued colliding number %s", p.PillarNumber)
		}
	}
}

func TestJobRejections(t *testing.T) {
	f := newJobFixture()

	id := f.submitted(t)
	if _, err := f.svc.StartNISReview(nisCtx, id); err != nil {
		t.Fatalf("start NIS review failed: %v", err)
	}
	job, err := f.svc.NISReject(nisCtx, id, "coordinates outside the stated layout")
	if err != nil {
		t.Fatalf("NIS reject failed: %v", err)
	}
	if job.Status != string(corejob.StatusNISRejected) {
		t.Errorf("status = %q, want NIS_REJECTED", job.Status)
	}
	if job.RejectionReason != "coordinates outside the stated layout" {
		t.Errorf("reason = %q", job.RejectionReason)
	}
	if got := stepStatus(job, corejob.StepNISReview); got != string(corejob.StepRejected) {
		t.Errorf("NIS Review step = %q, want Rejected", got)
	}

	// Terminal: no further transitions.
	if _, err := f.svc.NISApprove(nisCtx, id); !errs.Is(err, errs.KindInvalidStateTransition) {
		t.Errorf("expected invalid transition after rejection, got %v", err)
	}

	id2 := f.inAdminReview(t)
	job, err = f.svc.AdminReject(adminCtx, id2, "plan does not match beacon schedule")
	if err != nil {
		t.Fatalf("admin reject failed: %v", err)
	}
	if job.Status != string(corejob.StatusAdminRejected) {
		t.Errorf("status = %q, want ADMIN_REJECTED", job.Status)
	}
	if len(job.Pillars) != 0 {
		t.Errorf("rejected job holds %d pillars", len(job.Pillars))
	}
}

func TestInvalidTransitionCarriesCurrentStatus(t *testing.T) {
	f := newJobFixture()
	id := f.inAdminReview(t)

	_, err := f.svc.StartNISReview(nisCtx, id)
	var e *errs.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *errs.Error, got %v", err)
	}
	if e.Kind != errs.KindInvalidStateTransition {
		t.Errorf("kind = %v, want invalid transition", e.Kind)
	}
	if e.CurrentState != string(corejob.StatusAdminReview) {
		t.Errorf("current state = %q, want ADMIN_REVIEW", e.CurrentState)
	}
}

func TestDocumentUploads(t *testing.T) {
	blueCopy := primary.DocumentRef{URL: "https://files.example/blue.pdf", FileName: "blue.pdf", SizeBytes: 1024, MimeType: "application/pdf"}
	roDoc := primary.DocumentRef{URL: "https://files.example/ro.pdf", FileName: "ro.pdf", SizeBytes: 2048, MimeType: "application/pdf"}

	t.Run("blue copy before pillars", func(t *testing.T) {
		f := newJobFixture()
		id := f.inAdminReview(t)
		if _, err := f.svc.UploadBlueCopy(surveyorCtx, id, blueCopy); !errs.Is(err, errs.KindPreconditionNotMet) {
			t.Errorf("expected precondition error, got %v", err)
		}
	})

	t.Run("R of O before blue copy", func(t *testing.T) {
		f := newJobFixture()
		id := f.completed(t)
		if _, err := f.svc.UploadRODocument(adminCtx, id, roDoc); !errs.Is(err, errs.KindPreconditionNotMet) {
			t.Errorf("expected precondition error, got %v", err)
		}
		if f.jobs.jobs[id].RODocumentUploaded {
			t.Error("R of O flag set despite failed upload")
		}
	})

	t.Run("blue copy by another surveyor", func(t *testing.T) {
		f := newJobFixture()
		id := f.completed(t)
		if _, err := f.svc.UploadBlueCopy(otherCtx, id, blueCopy); !errs.Is(err, errs.KindAuthorization) {
			t.Errorf("expected authorization error, got %v", err)
		}
	})

	t.Run("missing URL", func(t *testing.T) {
		f := newJobFixture()
		id := f.completed(t)
		if _, err := f.svc.UploadBlueCopy(surveyorCtx, id, primary.DocumentRef{FileName: "blue.pdf"}); !errs.Is(err, errs.KindValidation) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("blue copy then R of O", func(t *testing.T) {
		f := newJobFixture()
		id := f.completed(t)

		job, err := f.svc.UploadBlueCopy(surveyorCtx, id, blueCopy)
		if err != nil {
			t.Fatalf("blue copy upload failed: %v", err)
		}
		if !job.BlueCopyUploaded || job.BlueCopyUploadedAt == nil {
			t.Error("blue copy flag and timestamp not set")
		}
		if got := stepStatus(job, corejob.StepBlueCopyUpload); got != string(corejob.StepDone) {
			t.Errorf("Blue Copy Upload step = %q, want Completed", got)
		}
		if _, err := f.svc.UploadBlueCopy(surveyorCtx, id, blueCopy); !errs.Is(err, errs.KindPreconditionNotMet) {
			t.Errorf("expected precondition error on second blue copy, got %v", err)
		}

		job, err = f.svc.UploadRODocument(adminCtx, id, roDoc)
		if err != nil {
			t.Fatalf("R of O upload failed: %v", err)
		}
		if !job.RODocumentUploaded {
			t.Error("R of O flag not set")
		}
		if got := stepStatus(job, corejob.StepCompleted); got != string(corejob.StepDone) {
			t.Errorf("Completed step = %q, want Completed", got)
		}
		if len(job.Documents) != 2 {
			t.Errorf("expected 2 documents, got %d", len(job.Documents))
		}
		if job.Status != string(corejob.StatusCompleted) {
			t.Errorf("uploads changed status to %q", job.Status)
		}
	})
}

func TestJobVisibility(t *testing.T) {
	f := newJobFixture()
	id := f.submitted(t)
	if _, err := f.svc.SubmitJob(otherCtx, twoPillarRequest()); err != nil {
		t.Fatalf("second submit failed: %v", err)
	}

	if _, err := f.svc.GetJob(otherCtx, id); !errs.Is(err, errs.KindAuthorization) {
		t.Errorf("expected authorization error reading another surveyor's job, got %v", err)
	}
	if _, err := f.svc.GetJob(nisCtx, id); err != nil {
		t.Errorf("NIS officer read failed: %v", err)
	}

	own, err := f.svc.ListJobs(surveyorCtx, primary.JobFilters{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(own) != 1 || own[0].ID != id {
		t.Errorf("surveyor list = %v, want only %s", own, id)
	}

	none, err := f.svc.ListJobs(surveyorCtx, primary.JobFilters{SurveyorID: "SRV-0002"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("surveyor listed %d jobs of another surveyor", len(none))
	}

	all, err := f.svc.ListJobs(adminCtx, primary.JobFilters{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin list = %d jobs, want 2", len(all))
	}
}
