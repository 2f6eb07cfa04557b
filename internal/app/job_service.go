package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/cadastre/internal/core/actor"
	"github.com/example/cadastre/internal/core/errs"
	corejob "github.com/example/cadastre/internal/core/job"
	corepillar "github.com/example/cadastre/internal/core/pillar"
	coresurveyor "github.com/example/cadastre/internal/core/surveyor"
	"github.com/example/cadastre/internal/logger"
	"github.com/example/cadastre/internal/metrics"
	"github.com/example/cadastre/internal/ports/primary"
	"github.com/example/cadastre/internal/ports/secondary"
)

// Document kinds
const (
	DocumentBlueCopy   = "BLUE_COPY"
	DocumentRODocument = "RO_DOCUMENT"
)

// JobServiceImpl implements the JobService interface.
type JobServiceImpl struct {
	transactor   secondary.Transactor
	jobRepo      secondary.JobRepository
	stepRepo     secondary.StepRepository
	surveyorRepo secondary.SurveyorRepository
	pillarRepo   secondary.PillarRepository
	documentRepo secondary.DocumentRepository
	allocator    *SequenceAllocator
	actors       secondary.ActorProvider
	logWriter    secondary.LogWriter
	cache        secondary.SearchCache
	seriesPrefix string
	maxBatch     int
	now          func() time.Time
}

// JobServiceDeps groups the JobService collaborators.
type JobServiceDeps struct {
	Transactor   secondary.Transactor
	JobRepo      secondary.JobRepository
	StepRepo     secondary.StepRepository
	SurveyorRepo secondary.SurveyorRepository
	PillarRepo   secondary.PillarRepository
	DocumentRepo secondary.DocumentRepository
	Allocator    *SequenceAllocator
	Actors       secondary.ActorProvider
	LogWriter    secondary.LogWriter
	Cache        secondary.SearchCache
	SeriesPrefix string // Default series for admin approval
	MaxBatch     int
}

// NewJobService creates a new JobService with injected dependencies.
func NewJobService(deps JobServiceDeps) *JobServiceImpl {
	maxBatch := deps.MaxBatch
	if maxBatch <= 0 {
		maxBatch = corepillar.DefaultMaxBatch
	}
	return &JobServiceImpl{
		transactor:   deps.Transactor,
		jobRepo:      deps.JobRepo,
		stepRepo:     deps.StepRepo,
		surveyorRepo: deps.SurveyorRepo,
		pillarRepo:   deps.PillarRepo,
		documentRepo: deps.DocumentRepo,
		allocator:    deps.Allocator,
		actors:       deps.Actors,
		logWriter:    deps.LogWriter,
		cache:        deps.Cache,
		seriesPrefix: deps.SeriesPrefix,
		maxBatch:     maxBatch,
		now:          time.Now,
	}
}

// SubmitJob creates a job for the acting surveyor.
func (s *JobServiceImpl) SubmitJob(ctx context.Context, req primary.SubmitJobRequest) (*primary.Job, error) {
	a, err := authorize(ctx, s.actors, corejob.RequiredRole(corejob.ActionSubmit), string(corejob.ActionSubmit))
	if err != nil {
		return nil, err
	}

	guard := corejob.CanSubmit(corejob.SubmissionContext{
		ClientName:            req.ClientName,
		LocationDescription:   req.LocationDescription,
		PillarNumbersRequired: req.PillarNumbersRequired,
		RequestedCoordinates:  req.RequestedCoordinates,
		MaxBatch:              s.maxBatch,
	})
	if err := guard.Error(); err != nil {
		return nil, err
	}

	now := s.now()
	sub := corejob.Submission(now)
	var jobID string
	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		surveyor, err := s.actingSurveyor(ctx, a, req.SurveyorID)
		if err != nil {
			return err
		}
		if err := coresurveyor.CanSubmitJobs(surveyor.ID, coresurveyor.Status(surveyor.Status)).Error(); err != nil {
			return err
		}

		jobID, err = s.jobRepo.GetNextID(ctx)
		if err != nil {
			return fmt.Errorf("failed to generate job ID: %w", err)
		}

		record := &secondary.JobRecord{
			ID:                    jobID,
			SurveyorID:            surveyor.ID,
			SubmittedBy:           a.ID,
			ClientName:            strings.TrimSpace(req.ClientName),
			ClientPhone:           strings.TrimSpace(req.ClientPhone),
			ClientEmail:           strings.TrimSpace(req.ClientEmail),
			LocationDescription:   strings.TrimSpace(req.LocationDescription),
			RequestedCoordinates:  req.RequestedCoordinates,
			PillarNumbersRequired: req.PillarNumbersRequired,
			Status:                string(sub.NewStatus),
			SubmittedAt:           now,
			UpdatedAt:             now,
		}
		if err := s.jobRepo.Create(ctx, record); err != nil {
			return err
		}

		steps := corejob.ApplyChanges(corejob.InitialSteps(), sub.Steps)
		if err := s.stepRepo.CreateAll(ctx, jobID, stepRecords(jobID, steps)); err != nil {
			return err
		}
		return s.logWriter.LogCreate(ctx, "job", jobID)
	})
	metrics.TransitionsTotal.WithLabelValues("job", string(corejob.ActionSubmit), metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	metrics.JobsSubmittedTotal.Inc()
	logger.L().Info("job_submitted", "job_id", jobID, "actor", a.ID, "pillars_required", req.PillarNumbersRequired)
	return s.loadJob(ctx, jobID)
}

// actingSurveyor resolves the surveyor profile a submission is made under
// and checks that it belongs to the actor.
func (s *JobServiceImpl) actingSurveyor(ctx context.Context, a actor.Actor, surveyorID string) (*secondary.SurveyorRecord, error) {
	if surveyorID == "" {
		record, err := s.surveyorRepo.GetByUserID(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, errs.Precondition("actor %s has no surveyor profile", a.ID)
		}
		return record, nil
	}

	record, err := s.surveyorRepo.GetByID(ctx, surveyorID)
	if err != nil {
		return nil, err
	}
	if record.UserID != a.ID {
		return nil, errs.Authorization("surveyor %s does not belong to actor %s", surveyorID, a.ID)
	}
	return record, nil
}

// GetJob retrieves a job with its steps, pillars and documents. Surveyors
// may only read their own jobs.
func (s *JobServiceImpl) GetJob(ctx context.Context, jobID string) (*primary.Job, error) {
	a, err := s.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if a.Role == actor.RoleSurveyor {
		owner, err := s.surveyorRepo.GetByID(ctx, job.SurveyorID)
		if err != nil {
			return nil, err
		}
		if err := corejob.OwnsJob(a, jobID, owner.UserID).Error(); err != nil {
			return nil, err
		}
	}
	return job, nil
}

// ListJobs lists jobs with optional filters. Surveyors only see their own jobs.
func (s *JobServiceImpl) ListJobs(ctx context.Context, filters primary.JobFilters) ([]*primary.Job, error) {
	a, err := s.actors.CurrentActor(ctx)
	if err != nil {
		return nil, err
	}

	query := secondary.JobFilters{
		Status:     filters.Status,
		SurveyorID: filters.SurveyorID,
		Limit:      filters.Limit,
	}
	if a.Role == actor.RoleSurveyor {
		own, err := s.surveyorRepo.GetByUserID(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		if own == nil || (filters.SurveyorID != "" && filters.SurveyorID != own.ID) {
			return []*primary.Job{}, nil
		}
		query.SurveyorID = own.ID
	}

	records, err := s.jobRepo.List(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	jobs := make([]*primary.Job, len(records))
	for i, r := range records {
		jobs[i] = recordToJob(r)
	}
	return jobs, nil
}

// StartNISReview moves a submitted job into NIS review.
func (s *JobServiceImpl) StartNISReview(ctx context.Context, jobID string) (*primary.Job, error) {
	return s.transition(ctx, jobID, corejob.ActionStartNISReview, corejob.Input{}, nil)
}

// NISApprove passes the NIS gate and hands the job to admin review.
func (s *JobServiceImpl) NISApprove(ctx context.Context, jobID string) (*primary.Job, error) {
	return s.transition(ctx, jobID, corejob.ActionNISApprove, corejob.Input{}, nil)
}

// NISReject rejects a job at the NIS gate.
func (s *JobServiceImpl) NISReject(ctx context.Context, jobID, reason string) (*primary.Job, error) {
	return s.transition(ctx, jobID, corejob.ActionNISReject, corejob.Input{Reason: reason}, nil)
}

// AdminReject rejects a job at the admin gate.
func (s *JobServiceImpl) AdminReject(ctx context.Context, jobID, reason string) (*primary.Job, error) {
	return s.transition(ctx, jobID, corejob.ActionAdminReject, corejob.Input{Reason: reason}, nil)
}

// AdminApprove completes a job and issues one pillar number per requested
// coordinate. Status, steps, pillars and the series counter commit together.
func (s *JobServiceImpl) AdminApprove(ctx context.Context, req primary.AdminApproveRequest) (*primary.Job, error) {
	prefix := strings.TrimSpace(req.SeriesPrefix)
	if prefix == "" {
		prefix = s.seriesPrefix
	}

	// Authorize before taking the series lock.
	if _, err := authorize(ctx, s.actors, corejob.RequiredRole(corejob.ActionAdminApprove), string(corejob.ActionAdminApprove)); err != nil {
		return nil, err
	}
	if err := corepillar.ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	unlock := s.allocator.Lock(prefix)
	defer unlock()

	var issued corepillar.Range
	job, err := s.transition(ctx, req.JobID, corejob.ActionAdminApprove, corejob.Input{PlanNumber: req.PlanNumber},
		func(ctx context.Context, record *secondary.JobRecord, _ corejob.Transition) error {
			existing, err := s.pillarRepo.CountByJob(ctx, record.ID)
			if err != nil {
				return err
			}
			count, guard := corejob.PillarCount(corejob.IssueContext{
				JobID:                 record.ID,
				PillarNumbersRequired: record.PillarNumbersRequired,
				RequestedCoordinates:  len(record.RequestedCoordinates),
				RequestedCount:        req.CoordinateCount,
				ExistingPillars:       existing,
			})
			if err := guard.Error(); err != nil {
				return err
			}

			issued, err = s.allocator.Allocate(ctx, prefix, count)
			if err != nil {
				return err
			}

			issuedAt := s.now()
			numbers := issued.Numbers()
			pillars := make([]*secondary.PillarRecord, len(numbers))
			for i, number := range numbers {
				p := &secondary.PillarRecord{
					PillarNumber: number,
					SeriesPrefix: prefix,
					Sequence:     issued.First + int64(i),
					JobID:        record.ID,
					SurveyorID:   record.SurveyorID,
					IssuedAt:     issuedAt,
				}
				if i < len(record.RequestedCoordinates) {
					p.Coordinate = record.RequestedCoordinates[i]
				}
				pillars[i] = p
			}
			return s.pillarRepo.CreateBatch(ctx, pillars)
		})
	if err != nil {
		return nil, s.allocator.Recover(ctx, err)
	}

	metrics.PillarsIssuedTotal.WithLabelValues(prefix).Add(float64(issued.Len()))
	s.cache.Invalidate(ctx)
	logger.L().Info("pillars_issued", "job_id", req.JobID, "range", issued.String())
	return job, nil
}

// transitionHook runs inside the transition's unit of work after the state
// machine accepted the action and before the job row is written.
type transitionHook func(ctx context.Context, record *secondary.JobRecord, t corejob.Transition) error

// transition authorizes, validates and applies one status action atomically.
func (s *JobServiceImpl) transition(ctx context.Context, jobID string, action corejob.Action, in corejob.Input, hook transitionHook) (*primary.Job, error) {
	a, err := authorize(ctx, s.actors, corejob.RequiredRole(action), string(action))
	if err != nil {
		return nil, err
	}

	now := s.now()
	var oldStatus, newStatus string
	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		record, err := s.jobRepo.GetByID(ctx, jobID)
		if err != nil {
			return err
		}
		oldStatus = record.Status

		t, err := corejob.Apply(corejob.Status(record.Status), action, in, now)
		if err != nil {
			return err
		}
		if hook != nil {
			if err := hook(ctx, record, t); err != nil {
				return err
			}
		}

		record.Status = string(t.NewStatus)
		record.UpdatedAt = now
		if t.RejectionReason != "" {
			record.RejectionReason = t.RejectionReason
		}
		if t.PlanNumber != "" {
			record.PlanNumber = t.PlanNumber
		}
		if t.DateApproved != nil {
			record.DateApproved = t.DateApproved
		}
		if err := s.jobRepo.Update(ctx, record); err != nil {
			return err
		}
		if err := s.applySteps(ctx, jobID, t.Steps); err != nil {
			return err
		}
		newStatus = record.Status
		return s.logWriter.LogTransition(ctx, "job", jobID, string(action), oldStatus, newStatus)
	})
	metrics.TransitionsTotal.WithLabelValues("job", string(action), metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	logger.L().Info("job_transition",
		"job_id", jobID,
		"action", action,
		"actor", a.ID,
		"from", oldStatus,
		"to", newStatus,
	)
	return s.loadJob(ctx, jobID)
}

// UploadBlueCopy records the surveyor's blue copy.
func (s *JobServiceImpl) UploadBlueCopy(ctx context.Context, jobID string, doc primary.DocumentRef) (*primary.Job, error) {
	return s.upload(ctx, jobID, corejob.ActionUploadBlueCopy, doc)
}

// UploadRODocument records the admin's R of O document.
func (s *JobServiceImpl) UploadRODocument(ctx context.Context, jobID string, doc primary.DocumentRef) (*primary.Job, error) {
	return s.upload(ctx, jobID, corejob.ActionUploadRODocument, doc)
}

// upload applies a document upload. Uploads are gated on job fields, not status.
func (s *JobServiceImpl) upload(ctx context.Context, jobID string, action corejob.Action, doc primary.DocumentRef) (*primary.Job, error) {
	a, err := authorize(ctx, s.actors, corejob.RequiredRole(action), string(action))
	if err != nil {
		return nil, err
	}
	if err := validateDocumentRef(doc); err != nil {
		return nil, err
	}

	now := s.now()
	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		record, err := s.jobRepo.GetByID(ctx, jobID)
		if err != nil {
			return err
		}
		issued, err := s.pillarRepo.CountByJob(ctx, jobID)
		if err != nil {
			return err
		}
		uc := corejob.UploadContext{
			JobID:              jobID,
			IssuedPillars:      issued,
			BlueCopyUploaded:   record.BlueCopyUploaded,
			RODocumentUploaded: record.RODocumentUploaded,
		}

		var (
			kind  string
			steps []corejob.StepChange
		)
		switch action {
		case corejob.ActionUploadBlueCopy:
			owner, err := s.surveyorRepo.GetByID(ctx, record.SurveyorID)
			if err != nil {
				return err
			}
			if err := corejob.OwnsJob(a, jobID, owner.UserID).Error(); err != nil {
				return err
			}
			if err := corejob.CanUploadBlueCopy(uc).Error(); err != nil {
				return err
			}
			kind = DocumentBlueCopy
			steps = corejob.BlueCopyUploadedSteps(now)
			record.BlueCopyUploaded = true
			record.BlueCopyUploadedAt = &now
		case corejob.ActionUploadRODocument:
			if err := corejob.CanUploadRODocument(uc).Error(); err != nil {
				return err
			}
			kind = DocumentRODocument
			steps = corejob.RODocumentUploadedSteps(now)
			record.RODocumentUploaded = true
			record.RODocumentUploadedAt = &now
		default:
			return errs.Validation("%q is not a document upload", action)
		}

		record.UpdatedAt = now
		if err := s.jobRepo.Update(ctx, record); err != nil {
			return err
		}
		if err := s.documentRepo.Create(ctx, &secondary.DocumentRecord{
			ID:         uuid.NewString(),
			JobID:      jobID,
			Kind:       kind,
			URL:        strings.TrimSpace(doc.URL),
			FileName:   strings.TrimSpace(doc.FileName),
			SizeBytes:  doc.SizeBytes,
			MimeType:   strings.TrimSpace(doc.MimeType),
			UploadedBy: a.ID,
			UploadedAt: now,
		}); err != nil {
			return err
		}
		if err := s.applySteps(ctx, jobID, steps); err != nil {
			return err
		}
		return s.logWriter.LogTransition(ctx, "job", jobID, string(action), record.Status, record.Status)
	})
	metrics.TransitionsTotal.WithLabelValues("job", string(action), metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	logger.L().Info("document_uploaded", "job_id", jobID, "action", action, "actor", a.ID, "file", doc.FileName)
	return s.loadJob(ctx, jobID)
}

func validateDocumentRef(doc primary.DocumentRef) error {
	if strings.TrimSpace(doc.URL) == "" {
		return errs.Validation("document URL is required")
	}
	if strings.TrimSpace(doc.FileName) == "" {
		return errs.Validation("document file name is required")
	}
	if doc.SizeBytes < 0 {
		return errs.Validation("document size cannot be negative (got %d)", doc.SizeBytes)
	}
	return nil
}

// applySteps writes the step changes of a transition.
func (s *JobServiceImpl) applySteps(ctx context.Context, jobID string, changes []corejob.StepChange) error {
	for _, c := range changes {
		if err := s.stepRepo.Update(ctx, changeRecord(jobID, c)); err != nil {
			return err
		}
	}
	return nil
}

// loadJob assembles a job with its steps, pillars and documents.
func (s *JobServiceImpl) loadJob(ctx context.Context, jobID string) (*primary.Job, error) {
	record, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	job := recordToJob(record)

	steps, err := s.stepRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	for _, st := range steps {
		job.Steps = append(job.Steps, recordToStep(st))
	}

	pillars, err := s.pillarRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	for _, p := range pillars {
		job.Pillars = append(job.Pillars, recordToPillar(p))
	}

	docs, err := s.documentRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		job.Documents = append(job.Documents, recordToDocument(d))
	}
	return job, nil
}

// Ensure JobServiceImpl implements the interface
var _ primary.JobService = (*JobServiceImpl)(nil)
