package primary

import (
	"context"
	"time"

	"github.com/example/cadastre/internal/core/geo"
)

// JobService defines the primary port for survey job operations.
// The acting user is taken from ctx; every transition is atomic.
type JobService interface {
	// SubmitJob creates a job for the acting surveyor.
	SubmitJob(ctx context.Context, req SubmitJobRequest) (*Job, error)

	// GetJob retrieves a job with its steps, pillars and documents.
	GetJob(ctx context.Context, jobID string) (*Job, error)

	// ListJobs lists jobs with optional filters.
	ListJobs(ctx context.Context, filters JobFilters) ([]*Job, error)

	// StartNISReview moves a submitted job into NIS review.
	StartNISReview(ctx context.Context, jobID string) (*Job, error)

	// NISApprove passes the NIS gate and hands the job to admin review.
	NISApprove(ctx context.Context, jobID string) (*Job, error)

	// NISReject rejects a job at the NIS gate.
	NISReject(ctx context.Context, jobID, reason string) (*Job, error)

	// AdminApprove completes a job and issues one pillar number per requested coordinate.
	AdminApprove(ctx context.Context, req AdminApproveRequest) (*Job, error)

	// AdminReject rejects a job at the admin gate.
	AdminReject(ctx context.Context, jobID, reason string) (*Job, error)

	// UploadBlueCopy records the surveyor's blue copy.
	UploadBlueCopy(ctx context.Context, jobID string, doc DocumentRef) (*Job, error)

	// UploadRODocument records the admin's R of O document.
	UploadRODocument(ctx context.Context, jobID string, doc DocumentRef) (*Job, error)
}

// SubmitJobRequest contains parameters for submitting a job.
type SubmitJobRequest struct {
	SurveyorID            string           `json:"surveyorId"`
	ClientName            string           `json:"clientName"`
	ClientPhone           string           `json:"clientPhone,omitempty"`
	ClientEmail           string           `json:"clientEmail,omitempty"`
	LocationDescription   string           `json:"locationDescription"`
	RequestedCoordinates  []geo.Coordinate `json:"requestedCoordinates,omitempty"`
	PillarNumbersRequired int              `json:"pillarNumbersRequired"`
}

// AdminApproveRequest contains parameters for the terminal admin approval.
type AdminApproveRequest struct {
	JobID           string `json:"jobId"`
	PlanNumber      string `json:"planNumber"`
	SeriesPrefix    string `json:"seriesPrefix"`    // Optional: configured default when empty
	CoordinateCount int    `json:"coordinateCount"` // Optional: 0 uses the job's requested count
}

// DocumentRef is an opaque reference to an uploaded file. The core never sees bytes.
type DocumentRef struct {
	URL       string `json:"url"`
	FileName  string `json:"fileName"`
	SizeBytes int64  `json:"sizeBytes"`
	MimeType  string `json:"mimeType"`
}

// JobFilters contains filter options for listing jobs.
type JobFilters struct {
	Status     string
	SurveyorID string
	Limit      int
}

// Job represents a survey job at the port boundary.
// Status lifecycle: SUBMITTED → NIS_REVIEW → ADMIN_REVIEW → COMPLETED
type Job struct {
	ID                    string           `json:"id"`
	SurveyorID            string           `json:"surveyorId"`
	SubmittedBy           string           `json:"submittedBy"`
	ClientName            string           `json:"clientName"`
	ClientPhone           string           `json:"clientPhone,omitempty"`
	ClientEmail           string           `json:"clientEmail,omitempty"`
	LocationDescription   string           `json:"locationDescription"`
	RequestedCoordinates  []geo.Coordinate `json:"requestedCoordinates"`
	PillarNumbersRequired int              `json:"pillarNumbersRequired"`
	PlanNumber            string           `json:"planNumber,omitempty"`
	BlueCopyUploaded      bool             `json:"blueCopyUploaded"`
	BlueCopyUploadedAt    *time.Time       `json:"blueCopyUploadedAt,omitempty"`
	RODocumentUploaded    bool             `json:"roDocumentUploaded"`
	RODocumentUploadedAt  *time.Time       `json:"roDocumentUploadedAt,omitempty"`
	Status                string           `json:"status"`
	RejectionReason       string           `json:"rejectionReason,omitempty"`
	SubmittedAt           time.Time        `json:"submittedAt"`
	UpdatedAt             time.Time        `json:"updatedAt"`
	DateApproved          *time.Time       `json:"dateApproved,omitempty"`
	Steps                 []*WorkflowStep  `json:"steps,omitempty"`
	Pillars               []*Pillar        `json:"pillars,omitempty"`
	Documents             []*Document      `json:"documents,omitempty"`
}

// WorkflowStep represents one catalog step of a job.
type WorkflowStep struct {
	Name        string     `json:"name"`
	Order       int        `json:"order"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	Note        string     `json:"note,omitempty"`
}

// Document represents an uploaded document reference.
type Document struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	URL        string    `json:"url"`
	FileName   string    `json:"fileName"`
	SizeBytes  int64     `json:"sizeBytes"`
	MimeType   string    `json:"mimeType"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}
