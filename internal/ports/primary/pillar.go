package primary

import (
	"context"
	"time"

	"github.com/example/cadastre/internal/core/geo"
)

// PillarService defines the primary port for pillar numbering and lookup.
type PillarService interface {
	// AllocatePillarNumbers reserves count consecutive numbers in a series.
	AllocatePillarNumbers(ctx context.Context, seriesPrefix string, count int) (*Allocation, error)

	// SearchPillar looks a pillar up and optionally ranks the pillars around it.
	SearchPillar(ctx context.Context, req SearchPillarRequest) (*SearchPillarResponse, error)

	// GetSeries returns the counter of a numbering series.
	GetSeries(ctx context.Context, seriesPrefix string) (*Series, error)
}

// Allocation is a reserved block of pillar numbers.
type Allocation struct {
	SeriesPrefix string   `json:"seriesPrefix"`
	First        int64    `json:"first"`
	Last         int64    `json:"last"`
	Numbers      []string `json:"numbers"`
}

// SearchPillarRequest contains parameters for a pillar search.
type SearchPillarRequest struct {
	PillarNumber  string  `json:"pillarNumber"`
	IncludeNearby bool    `json:"includeNearby"`
	RadiusKm      float64 `json:"radiusKm"` // Optional: configured default when <= 0
}

// SearchPillarResponse is the result of a pillar search.
type SearchPillarResponse struct {
	Pillar        *Pillar         `json:"pillar"`
	Location      *geo.LatLng     `json:"location,omitempty"` // Absent when the stored coordinate is not numeric
	RadiusKm      float64         `json:"radiusKm,omitempty"`
	NearbyPillars []*NearbyPillar `json:"nearbyPillars,omitempty"`
}

// Pillar represents an issued pillar number at the port boundary.
type Pillar struct {
	PillarNumber string         `json:"pillarNumber"`
	SeriesPrefix string         `json:"seriesPrefix"`
	Sequence     int64          `json:"sequence"`
	Coordinate   geo.Coordinate `json:"coordinate"`
	JobID        string         `json:"jobId"`
	SurveyorID   string         `json:"surveyorId"`
	IssuedAt     time.Time      `json:"issuedAt"`
}

// NearbyPillar is a pillar found within the search radius.
type NearbyPillar struct {
	Pillar     *Pillar    `json:"pillar"`
	Location   geo.LatLng `json:"location"`
	DistanceKm float64    `json:"distanceKm"`
}

// Series represents a pillar numbering series counter.
type Series struct {
	SeriesPrefix     string    `json:"seriesPrefix"`
	LastIssuedNumber int64     `json:"lastIssuedNumber"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
