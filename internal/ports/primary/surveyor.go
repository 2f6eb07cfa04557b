package primary

import (
	"context"
	"time"
)

// SurveyorService defines the primary port for surveyor registration and verification.
type SurveyorService interface {
	// RegisterSurveyor creates a surveyor profile for the acting user.
	RegisterSurveyor(ctx context.Context, req RegisterSurveyorRequest) (*Surveyor, error)

	// GetSurveyor retrieves a surveyor by ID.
	GetSurveyor(ctx context.Context, surveyorID string) (*Surveyor, error)

	// ListSurveyors lists surveyors with optional filters.
	ListSurveyors(ctx context.Context, filters SurveyorFilters) ([]*Surveyor, error)

	// NISApproveSurveyor passes the NIS verification stage.
	NISApproveSurveyor(ctx context.Context, surveyorID string) (*Surveyor, error)

	// NISRejectSurveyor rejects a surveyor at the NIS stage.
	NISRejectSurveyor(ctx context.Context, surveyorID, reason string) (*Surveyor, error)

	// AdminApproveSurveyor verifies a surveyor.
	AdminApproveSurveyor(ctx context.Context, surveyorID string) (*Surveyor, error)

	// AdminRejectSurveyor rejects a surveyor at the admin stage.
	AdminRejectSurveyor(ctx context.Context, surveyorID, reason string) (*Surveyor, error)
}

// RegisterSurveyorRequest contains parameters for registering a surveyor.
type RegisterSurveyorRequest struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	SurconNumber string `json:"surconNumber"`
	NISNumber    string `json:"nisNumber"`
}

// SurveyorFilters contains filter options for listing surveyors.
type SurveyorFilters struct {
	Status string
	Limit  int
}

// Surveyor represents a surveyor at the port boundary.
// Status lifecycle: PENDING_NIS_REVIEW → NIS_APPROVED → VERIFIED
type Surveyor struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	FullName        string     `json:"fullName"`
	Email           string     `json:"email,omitempty"`
	Phone           string     `json:"phone,omitempty"`
	SurconNumber    string     `json:"surconNumber"`
	NISNumber       string     `json:"nisNumber"`
	Status          string     `json:"status"`
	VerifiedAt      *time.Time `json:"verifiedAt,omitempty"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
