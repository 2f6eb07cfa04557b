package app

import (
	corejob "github.com/example/cadastre/internal/core/job"
	"github.com/example/cadastre/internal/ports/primary"
	"github.com/example/cadastre/internal/ports/secondary"
)

func recordToSurveyor(r *secondary.SurveyorRecord) *primary.Surveyor {
	return &primary.Surveyor{
		ID:              r.ID,
		UserID:          r.UserID,
		FullName:        r.FullName,
		Email:           r.Email,
		Phone:           r.Phone,
		SurconNumber:    r.SurconNumber,
		NISNumber:       r.NISNumber,
		Status:          r.Status,
		VerifiedAt:      r.VerifiedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func recordToJob(r *secondary.JobRecord) *primary.Job {
	return &primary.Job{
		ID:                    r.ID,
		SurveyorID:            r.SurveyorID,
		SubmittedBy:           r.SubmittedBy,
		ClientName:            r.ClientName,
		ClientPhone:           r.ClientPhone,
		ClientEmail:           r.ClientEmail,
		LocationDescription:   r.LocationDescription,
		RequestedCoordinates:  r.RequestedCoordinates,
		PillarNumbersRequired: r.PillarNumbersRequired,
		PlanNumber:            r.PlanNumber,
		BlueCopyUploaded:      r.BlueCopyUploaded,
		BlueCopyUploadedAt:    r.BlueCopyUploadedAt,
		RODocumentUploaded:    r.RODocumentUploaded,
		RODocumentUploadedAt:  r.RODocumentUploadedAt,
		Status:                r.Status,
		RejectionReason:       r.RejectionReason,
		SubmittedAt:           r.SubmittedAt,
		UpdatedAt:             r.UpdatedAt,
		DateApproved:          r.DateApproved,
	}
}

func recordToStep(r *secondary.StepRecord) *primary.WorkflowStep {
	return &primary.WorkflowStep{
		Name:        r.Name,
		Order:       r.Order,
		Status:      r.Status,
		CompletedAt: r.CompletedAt,
		Note:        r.Note,
	}
}

func recordToPillar(r *secondary.PillarRecord) *primary.Pillar {
	return &primary.Pillar{
		PillarNumber: r.PillarNumber,
		SeriesPrefix: r.SeriesPrefix,
		Sequence:     r.Sequence,
		Coordinate:   r.Coordinate,
		JobID:        r.JobID,
		SurveyorID:   r.SurveyorID,
		IssuedAt:     r.IssuedAt,
	}
}

func recordToDocument(r *secondary.DocumentRecord) *primary.Document {
	return &primary.Document{
		ID:         r.ID,
		Kind:       r.Kind,
		URL:        r.URL,
		FileName:   r.FileName,
		SizeBytes:  r.SizeBytes,
		MimeType:   r.MimeType,
		UploadedBy: r.UploadedBy,
		UploadedAt: r.UploadedAt,
	}
}

// stepRecords converts core steps into records for a job.
func stepRecords(jobID string, steps []corejob.Step) []*secondary.StepRecord {
	out := make([]*secondary.StepRecord, len(steps))
	for i, s := range steps {
		out[i] = &secondary.StepRecord{
			JobID:       jobID,
			Name:        string(s.Name),
			Order:       s.Order,
			Status:      string(s.Status),
			CompletedAt: s.CompletedAt,
			Note:        s.Note,
		}
	}
	return out
}

// changeRecord converts a step change into the record that overwrites it.
func changeRecord(jobID string, c corejob.StepChange) *secondary.StepRecord {
	return &secondary.StepRecord{
		JobID:       jobID,
		Name:        string(c.Name),
		Order:       corejob.StepOrder(c.Name),
		Status:      string(c.Status),
		CompletedAt: c.CompletedAt,
		Note:        c.Note,
	}
}
