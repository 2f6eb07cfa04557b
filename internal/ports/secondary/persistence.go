// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"time"

	"github.com/example/cadastre/internal/core/geo"
)

// Transactor runs a unit of work atomically. Repositories called with the
// context handed to fn take part in the same transaction; if fn returns an
// error every write made through that context is rolled back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SurveyorRepository defines the secondary port for surveyor persistence.
type SurveyorRepository interface {
	// Create persists a new surveyor.
	Create(ctx context.Context, s *SurveyorRecord) error

	// GetByID retrieves a surveyor by its ID.
	GetByID(ctx context.Context, id string) (*SurveyorRecord, error)

	// GetByUserID retrieves the surveyor profile of a user, nil if none.
	GetByUserID(ctx context.Context, userID string) (*SurveyorRecord, error)

	// List retrieves surveyors matching the given filters.
	List(ctx context.Context, filters SurveyorFilters) ([]*SurveyorRecord, error)

	// UpdateVerification writes the result of a verification transition.
	UpdateVerification(ctx context.Context, id, status string, verifiedAt *time.Time, reason string) error

	// FindByRegistration returns the IDs of surveyors already holding either
	// registration number (empty strings when free).
	FindByRegistration(ctx context.Context, surconNumber, nisNumber string) (surconOwner, nisOwner string, err error)

	// GetNextID returns the next available surveyor ID.
	GetNextID(ctx context.Context) (string, error)
}

// SurveyorRecord represents a surveyor as stored in persistence.
type SurveyorRecord struct {
	ID              string
	UserID          string
	FullName        string
	Email           string
	Phone           string
	SurconNumber    string
	NISNumber       string
	Status          string
	VerifiedAt      *time.Time
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SurveyorFilters contains filter options for querying surveyors.
type SurveyorFilters struct {
	Status string
	Limit  int
}

// JobRepository defines the secondary port for survey job persistence.
type JobRepository interface {
	// Create persists a new job.
	Create(ctx context.Context, job *JobRecord) error

	// GetByID retrieves a job by its job number.
	GetByID(ctx context.Context, id string) (*JobRecord, error)

	// List retrieves jobs matching the given filters, newest first.
	List(ctx context.Context, filters JobFilters) ([]*JobRecord, error)

	// Update writes every mutable workflow field of the job.
	Update(ctx context.Context, job *JobRecord) error

	// GetNextID returns the next available job number.
	GetNextID(ctx context.Context) (string, error)
}

// JobRecord represents a survey job as stored in persistence.
type JobRecord struct {
	ID                    string
	SurveyorID            string
	SubmittedBy           string
	ClientName            string
	ClientPhone           string
	ClientEmail           string
	LocationDescription   string
	RequestedCoordinates  []geo.Coordinate
	PillarNumbersRequired int
	PlanNumber            string // Empty until admin approval
	BlueCopyUploaded      bool
	BlueCopyUploadedAt    *time.Time
	RODocumentUploaded    bool
	RODocumentUploadedAt  *time.Time
	Status                string
	RejectionReason       string
	SubmittedAt           time.Time
	UpdatedAt             time.Time
	DateApproved          *time.Time
}

// JobFilters contains filter options for querying jobs.
type JobFilters struct {
	Status     string
	SurveyorID string
	Limit      int
}

// StepRepository defines the secondary port for workflow step persistence.
type StepRepository interface {
	// CreateAll persists the full step catalog of a job.
	CreateAll(ctx context.Context, jobID string, steps []*StepRecord) error

	// ListByJob retrieves the steps of a job in catalog order.
	ListByJob(ctx context.Context, jobID string) ([]*StepRecord, error)

	// Update writes one step's status, completion time and note.
	Update(ctx context.Context, step *StepRecord) error
}

// StepRecord represents a workflow step as stored in persistence.
type StepRecord struct {
	JobID       string
	Name        string
	Order       int
	Status      string
	CompletedAt *time.Time
	Note        string
}

// PillarRepository defines the secondary port for issued pillar numbers.
type PillarRepository interface {
	// CreateBatch persists newly issued pillars.
	CreateBatch(ctx context.Context, pillars []*PillarRecord) error

	// GetByNumber retrieves a pillar by its formatted number.
	GetByNumber(ctx context.Context, number string) (*PillarRecord, error)

	// ListByJob retrieves the pillars issued to a job in issuance order.
	ListByJob(ctx context.Context, jobID string) ([]*PillarRecord, error)

	// ListAll retrieves every pillar in issuance order.
	ListAll(ctx context.Context) ([]*PillarRecord, error)

	// CountByJob returns how many pillars a job holds.
	CountByJob(ctx context.Context, jobID string) (int, error)

	// Existing returns those of numbers that are already issued.
	Existing(ctx context.Context, numbers []string) ([]string, error)
}

// PillarRecord represents an issued pillar number as stored in persistence.
type PillarRecord struct {
	PillarNumber string
	SeriesPrefix string
	Sequence     int64
	Coordinate   geo.Coordinate
	JobID        string
	SurveyorID   string
	IssuedAt     time.Time
}

// SequenceRepository owns the per-series counters. It is the only writer of
// PillarSystem rows and never decreases a counter.
type SequenceRepository interface {
	// Allocate advances the series by count in one atomic statement and returns
	// the new last issued number. The series is created at zero when absent.
	Allocate(ctx context.Context, prefix string, count int) (last int64, err error)

	// AdvanceTo raises the counter to at least n.
	AdvanceTo(ctx context.Context, prefix string, n int64) error

	// Get retrieves a series counter, nil if the series has never been used.
	Get(ctx context.Context, prefix string) (*SeriesRecord, error)
}

// SeriesRecord represents a PillarSystem counter row.
type SeriesRecord struct {
	SeriesPrefix     string
	LastIssuedNumber int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// DocumentRepository defines the secondary port for uploaded document references.
type DocumentRepository interface {
	// Create persists a document reference.
	Create(ctx context.Context, doc *DocumentRecord) error

	// ListByJob retrieves the documents of a job in upload order.
	ListByJob(ctx context.Context, jobID string) ([]*DocumentRecord, error)
}

// DocumentRecord represents an uploaded document reference.
type DocumentRecord struct {
	ID         string
	JobID      string
	Kind       string // BLUE_COPY or RO_DOCUMENT
	URL        string
	FileName   string
	SizeBytes  int64
	MimeType   string
	UploadedBy string
	UploadedAt time.Time
}
