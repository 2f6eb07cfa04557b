package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/example/cadastre/internal/core/actor"
	coresurveyor "github.com/example/cadastre/internal/core/surveyor"
	"github.com/example/cadastre/internal/logger"
	"github.com/example/cadastre/internal/metrics"
	"github.com/example/cadastre/internal/ports/primary"
	"github.com/example/cadastre/internal/ports/secondary"
)

const actionRegister = "register"

// SurveyorServiceImpl implements the SurveyorService interface.
type SurveyorServiceImpl struct {
	transactor   secondary.Transactor
	surveyorRepo secondary.SurveyorRepository
	actors       secondary.ActorProvider
	logWriter    secondary.LogWriter
	now          func() time.Time
}

// NewSurveyorService creates a new SurveyorService with injected dependencies.
func NewSurveyorService(
	transactor secondary.Transactor,
	surveyorRepo secondary.SurveyorRepository,
	actors secondary.ActorProvider,
	logWriter secondary.LogWriter,
) *SurveyorServiceImpl {
	return &SurveyorServiceImpl{
		transactor:   transactor,
		surveyorRepo: surveyorRepo,
		actors:       actors,
		logWriter:    logWriter,
		now:          time.Now,
	}
}

// RegisterSurveyor creates a surveyor profile for the acting user.
func (s *SurveyorServiceImpl) RegisterSurveyor(ctx context.Context, req primary.RegisterSurveyorRequest) (*primary.Surveyor, error) {
	a, err := authorize(ctx, s.actors, actor.RoleSurveyor, actionRegister)
	if err != nil {
		return nil, err
	}

	record := &secondary.SurveyorRecord{
		UserID:       a.ID,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.TrimSpace(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		SurconNumber: strings.TrimSpace(req.SurconNumber),
		NISNumber:    strings.TrimSpace(req.NISNumber),
		Status:       string(coresurveyor.InitialStatus()),
		CreatedAt:    s.now(),
	}

	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.surveyorRepo.GetByUserID(ctx, a.ID)
		if err != nil {
			return err
		}
		surconOwner, nisOwner, err := s.surveyorRepo.FindByRegistration(ctx, record.SurconNumber, record.NISNumber)
		if err != nil {
			return err
		}

		guard := coresurveyor.CanRegister(coresurveyor.RegistrationContext{
			UserID:           a.ID,
			FullName:         record.FullName,
			SurconNumber:     record.SurconNumber,
			NISNumber:        record.NISNumber,
			UserHasProfile:   existing != nil,
			SurconTakenBy:    surconOwner,
			NISNumberTakenBy: nisOwner,
		})
		if err := guard.Error(); err != nil {
			return err
		}

		record.ID, err = s.surveyorRepo.GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate surveyor ID: %w", err)
		}
		if err := s.surveyorRepo.Create(ctx, record); err != nil {
			return err
		}
		return s.logWriter.LogCreate(ctx, "surveyor", record.ID)
	})
	metrics.TransitionsTotal.WithLabelValues("surveyor", actionRegister, metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	logger.L().Info("surveyor_registered", "surveyor_id", record.ID, "actor", a.ID)
	return recordToSurveyor(record), nil
}

// GetSurveyor retrieves a surveyor by ID.
func (s *SurveyorServiceImpl) GetSurveyor(ctx context.Context, surveyorID string) (*primary.Surveyor, error) {
	if _, err := s.actors.CurrentActor(ctx); err != nil {
		return nil, err
	}
	record, err := s.surveyorRepo.GetByID(ctx, surveyorID)
	if err != nil {
		return nil, err
	}
	return recordToSurveyor(record), nil
}

// ListSurveyors lists surveyors with optional filters.
func (s *SurveyorServiceImpl) ListSurveyors(ctx context.Context, filters primary.SurveyorFilters) ([]*primary.Surveyor, error) {
	if _, err := s.actors.CurrentActor(ctx); err != nil {
		return nil, err
	}
	records, err := s.surveyorRepo.List(ctx, secondary.SurveyorFilters{
		Status: filters.Status,
		Limit:  filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list surveyors: %w", err)
	}

	surveyors := make([]*primary.Surveyor, len(records))
	for i, r := range records {
		surveyors[i] = recordToSurveyor(r)
	}
	return surveyors, nil
}

// NISApproveSurveyor passes the NIS verification stage.
func (s *SurveyorServiceImpl) NISApproveSurveyor(ctx context.Context, surveyorID string) (*primary.Surveyor, error) {
	return s.verify(ctx, surveyorID, coresurveyor.ActionNISApprove, "")
}

// NISRejectSurveyor rejects a surveyor at the NIS stage.
func (s *SurveyorServiceImpl) NISRejectSurveyor(ctx context.Context, surveyorID, reason string) (*primary.Surveyor, error) {
	return s.verify(ctx, surveyorID, coresurveyor.ActionNISReject, reason)
}

// AdminApproveSurveyor verifies a surveyor.
func (s *SurveyorServiceImpl) AdminApproveSurveyor(ctx context.Context, surveyorID string) (*primary.Surveyor, error) {
	return s.verify(ctx, surveyorID, coresurveyor.ActionAdminApprove, "")
}

// AdminRejectSurveyor rejects a surveyor at the admin stage.
func (s *SurveyorServiceImpl) AdminRejectSurveyor(ctx context.Context, surveyorID, reason string) (*primary.Surveyor, error) {
	return s.verify(ctx, surveyorID, coresurveyor.ActionAdminReject, reason)
}

// verify applies one verification action atomically.
func (s *SurveyorServiceImpl) verify(ctx context.Context, surveyorID string, action coresurveyor.Action, reason string) (*primary.Surveyor, error) {
	a, err := authorize(ctx, s.actors, coresurveyor.Rules[action].Role, string(action))
	if err != nil {
		return nil, err
	}

	now := s.now()
	var oldStatus string
	var updated *secondary.SurveyorRecord
	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		record, err := s.surveyorRepo.GetByID(ctx, surveyorID)
		if err != nil {
			return err
		}
		oldStatus = record.Status

		t, err := coresurveyor.Apply(coresurveyor.Status(record.Status), action, reason, now)
		if err != nil {
			return err
		}
		if err := s.surveyorRepo.UpdateVerification(ctx, surveyorID, string(t.NewStatus), t.VerifiedAt, t.RejectionReason); err != nil {
			return err
		}
		if err := s.logWriter.LogTransition(ctx, "surveyor", surveyorID, string(action), oldStatus, string(t.NewStatus)); err != nil {
			return err
		}
		updated, err = s.surveyorRepo.GetByID(ctx, surveyorID)
		return err
	})
	metrics.TransitionsTotal.WithLabelValues("surveyor", string(action), metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	logger.L().Info("surveyor_transition",
		"surveyor_id", surveyorID,
		"action", action,
		"actor", a.ID,
		"from", oldStatus,
		"to", updated.Status,
	)
	return recordToSurveyor(updated), nil
}

// Ensure SurveyorServiceImpl implements the interface
var _ primary.SurveyorService = (*SurveyorServiceImpl)(nil)
