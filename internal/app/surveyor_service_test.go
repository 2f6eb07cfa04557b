package app

import (
	"context"
	"testing"
	"time"

	"github.com/example/cadastre/internal/core/actor"
	"github.com/example/cadastre/internal/core/errs"
	coresurveyor "github.com/example/cadastre/internal/core/surveyor"
	"github.com/example/cadastre/internal/ports/primary"
)

func newTestSurveyorService() (*SurveyorServiceImpl, *mockSurveyorRepository, *mockLogWriter) {
	repo := newMockSurveyorRepository()
	logs := &mockLogWriter{}
	svc := NewSurveyorService(&mockTransactor{}, repo, mockActorProvider{}, logs)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, logs
}

func TestRegisterSurveyor(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		setup    func(*mockSurveyorRepository)
		req      primary.RegisterSurveyorRequest
		wantKind errs.Kind
		wantErr  bool
	}{
		{
			name: "registers pending profile",
			ctx:  asActor("user-1", actor.RoleSurveyor),
			req:  primary.RegisterSurveyorRequest{FullName: "Ada Obi", SurconNumber: "SC-100", NISNumber: "NIS-100"},
		},
		{
			name:     "wrong role denied",
			ctx:      asActor("officer-1", actor.RoleNISOfficer),
			req:      primary.RegisterSurveyorRequest{FullName: "Ada Obi", SurconNumber: "SC-100", NISNumber: "NIS-100"},
			wantErr:  true,
			wantKind: errs.KindAuthorization,
		},
		{
			name:     "anonymous denied",
			ctx:      context.Background(),
			req:      primary.RegisterSurveyorRequest{FullName: "Ada Obi", SurconNumber: "SC-100", NISNumber: "NIS-100"},
			wantErr:  true,
			wantKind: errs.KindAuthorization,
		},
		{
			name:     "missing fields",
			ctx:      asActor("user-1", actor.RoleSurveyor),
			req:      primary.RegisterSurveyorRequest{FullName: "Ada Obi"},
			wantErr:  true,
			wantKind: errs.KindValidation,
		},
		{
			name: "duplicate SURCON number",
			ctx:  asActor("user-2", actor.RoleSurveyor),
			setup: func(r *mockSurveyorRepository) {
				r.add("SRV-0001", "user-1", string(coresurveyor.StatusVerified))
			},
			req:      primary.RegisterSurveyorRequest{FullName: "Ben Eze", SurconNumber: "SC-SRV-0001", NISNumber: "NIS-200"},
			wantErr:  true,
			wantKind: errs.KindConflict,
		},
		{
			name: "second profile for same user",
			ctx:  asActor("user-1", actor.RoleSurveyor),
			setup: func(r *mockSurveyorRepository) {
				r.add("SRV-0001", "user-1", string(coresurveyor.StatusPendingNISReview))
			},
			req:      primary.RegisterSurveyorRequest{FullName: "Ada Obi", SurconNumber: "SC-300", NISNumber: "NIS-300"},
			wantErr:  true,
			wantKind: errs.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, logs := newTestSurveyorService()
			if tt.setup != nil {
				tt.setup(repo)
			}

			got, err := svc.RegisterSurveyor(tt.ctx, tt.req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if kind := errs.KindOf(err); kind != tt.wantKind {
					t.Errorf("error kind = %v, want %v (%v)", kind, tt.wantKind, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Status != string(coresurveyor.StatusPendingNISReview) {
				t.Errorf("status = %q, want PENDING_NIS_REVIEW", got.Status)
			}
			if got.UserID != "user-1" {
				t.Errorf("user ID = %q, want user-1", got.UserID)
			}
			if len(logs.creates) != 1 {
				t.Errorf("expected 1 audit entry, got %d", len(logs.creates))
			}
		})
	}
}

func TestSurveyorVerification_FullApproval(t *testing.T) {
	svc, repo, logs := newTestSurveyorService()
	repo.add("SRV-0001", "user-1", string(coresurveyor.StatusPendingNISReview))

	nis := asActor("officer-1", actor.RoleNISOfficer)
	admin := asActor("admin-1", actor.RoleAdmin)

	got, err := svc.NISApproveSurveyor(nis, "SRV-0001")
	if err != nil {
		t.Fatalf("NIS approve failed: %v", err)
	}
	if got.Status != string(coresurveyor.StatusNISApproved) {
		t.Errorf("status = %q, want NIS_APPROVED", got.Status)
	}
	if got.VerifiedAt == nil {
		t.Error("expected verification timestamp after NIS approval")
	}

	got, err = svc.AdminApproveSurveyor(admin, "SRV-0001")
	if err != nil {
		t.Fatalf("admin approve failed: %v", err)
	}
	if got.Status != string(coresurveyor.StatusVerified) {
		t.Errorf("status = %q, want VERIFIED", got.Status)
	}
	if len(logs.transitions) != 2 {
		t.Errorf("expected 2 audit transitions, got %d", len(logs.transitions))
	}
}

func TestSurveyorVerification_Guards(t *testing.T) {
	tests := []struct {
		name     string
		status   coresurveyor.Status
		run      func(*SurveyorServiceImpl) error
		wantKind errs.Kind
	}{
		{
			name:   "admin cannot skip the NIS stage",
			status: coresurveyor.StatusPendingNISReview,
			run: func(s *SurveyorServiceImpl) error {
				_, err := s.AdminApproveSurveyor(asActor("admin-1", actor.RoleAdmin), "SRV-0001")
				return err
			},
			wantKind: errs.KindInvalidStateTransition,
		},
		{
			name:   "NIS officer cannot verify",
			status: coresurveyor.StatusNISApproved,
			run: func(s *SurveyorServiceImpl) error {
				_, err := s.AdminApproveSurveyor(asActor("officer-1", actor.RoleNISOfficer), "SRV-0001")
				return err
			},
			wantKind: errs.KindAuthorization,
		},
		{
			name:   "reject requires reason",
			status: coresurveyor.StatusPendingNISReview,
			run: func(s *SurveyorServiceImpl) error {
				_, err := s.NISRejectSurveyor(asActor("officer-1", actor.RoleNISOfficer), "SRV-0001", "  ")
				return err
			},
			wantKind: errs.KindValidation,
		},
		{
			name:   "rejected surveyor is terminal",
			status: coresurveyor.StatusNISRejected,
			run: func(s *SurveyorServiceImpl) error {
				_, err := s.NISApproveSurveyor(asActor("officer-1", actor.RoleNISOfficer), "SRV-0001")
				return err
			},
			wantKind: errs.KindInvalidStateTransition,
		},
		{
			name:   "unknown surveyor",
			status: coresurveyor.StatusPendingNISReview,
			run: func(s *SurveyorServiceImpl) error {
				_, err := s.NISApproveSurveyor(asActor("officer-1", actor.RoleNISOfficer), "SRV-9999")
				return err
			},
			wantKind: errs.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, logs := newTestSurveyorService()
			repo.add("SRV-0001", "user-1", string(tt.status))

			err := tt.run(svc)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if kind := errs.KindOf(err); kind != tt.wantKind {
				t.Errorf("error kind = %v, want %v (%v)", kind, tt.wantKind, err)
			}
			if repo.surveyors["SRV-0001"].Status != string(tt.status) {
				t.Errorf("status changed to %q on a failed action", repo.surveyors["SRV-0001"].Status)
			}
			if len(logs.transitions) != 0 {
				t.Errorf("expected no audit entries, got %v", logs.transitions)
			}
		})
	}
}

func TestSurveyorReject_RecordsReason(t *testing.T) {
	svc, repo, _ := newTestSurveyorService()
	repo.add("SRV-0001", "user-1", string(coresurveyor.StatusNISApproved))

	got, err := svc.AdminRejectSurveyor(asActor("admin-1", actor.RoleAdmin), "SRV-0001", "licence expired")
	if err != nil {
		t.Fatalf("admin reject failed: %v", err)
	}
	if got.Status != string(coresurveyor.StatusAdminRejected) {
		t.Errorf("status = %q, want ADMIN_REJECTED", got.Status)
	}
	if got.RejectionReason != "licence expired" {
		t.Errorf("reason = %q, want %q", got.RejectionReason, "licence expired")
	}
}

func TestListSurveyors_RequiresActor(t *testing.T) {
	svc, repo, _ := newTestSurveyorService()
	repo.add("SRV-0001", "user-1", string(coresurveyor.StatusVerified))
	repo.add("SRV-0002", "user-2", string(coresurveyor.StatusPendingNISReview))

	if _, err := svc.ListSurveyors(context.Background(), primary.SurveyorFilters{}); !errs.Is(err, errs.KindAuthorization) {
		t.Errorf("expected authorization error, got %v", err)
	}

	got, err := svc.ListSurveyors(asActor("admin-1", actor.RoleAdmin), primary.SurveyorFilters{Status: "VERIFIED"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "SRV-0001" {
		t.Errorf("expected only SRV-0001, got %v", got)
	}
}
