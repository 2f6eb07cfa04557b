package app

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/example/cadastre/internal/core/actor"
	"github.com/example/cadastre/internal/core/errs"
	"github.com/example/cadastre/internal/core/geo"
	corepillar "github.com/example/cadastre/internal/core/pillar"
	"github.com/example/cadastre/internal/logger"
	"github.com/example/cadastre/internal/metrics"
	"github.com/example/cadastre/internal/ports/primary"
	"github.com/example/cadastre/internal/ports/secondary"
)

const actionAllocate = "allocate-pillar-numbers"

// SearchSettings bounds pillar searches.
type SearchSettings struct {
	DefaultRadiusKm float64
	MaxRadiusKm     float64
	Limit           int
}

// PillarServiceImpl implements the PillarService interface.
type PillarServiceImpl struct {
	transactor   secondary.Transactor
	pillarRepo   secondary.PillarRepository
	sequenceRepo secondary.SequenceRepository
	allocator    *SequenceAllocator
	actors       secondary.ActorProvider
	cache        secondary.SearchCache
	projection   geo.Projection
	search       SearchSettings
}

// NewPillarService creates a new PillarService with injected dependencies.
func NewPillarService(
	transactor secondary.Transactor,
	pillarRepo secondary.PillarRepository,
	sequenceRepo secondary.SequenceRepository,
	allocator *SequenceAllocator,
	actors secondary.ActorProvider,
	cache secondary.SearchCache,
	projection geo.Projection,
	search SearchSettings,
) *PillarServiceImpl {
	if search.DefaultRadiusKm <= 0 {
		search.DefaultRadiusKm = 5
	}
	if search.MaxRadiusKm <= 0 {
		search.MaxRadiusKm = 100
	}
	if search.Limit <= 0 {
		search.Limit = geo.DefaultNearbyLimit
	}
	return &PillarServiceImpl{
		transactor:   transactor,
		pillarRepo:   pillarRepo,
		sequenceRepo: sequenceRepo,
		allocator:    allocator,
		actors:       actors,
		cache:        cache,
		projection:   projection,
		search:       search,
	}
}

// AllocatePillarNumbers reserves count consecutive numbers in a series
// without attaching them to a job.
func (s *PillarServiceImpl) AllocatePillarNumbers(ctx context.Context, seriesPrefix string, count int) (*primary.Allocation, error) {
	a, err := authorize(ctx, s.actors, actor.RoleAdmin, actionAllocate)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimSpace(seriesPrefix)
	if err := corepillar.ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	unlock := s.allocator.Lock(prefix)
	defer unlock()

	var rng corepillar.Range
	err = s.transactor.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		rng, err = s.allocator.Allocate(ctx, prefix, count)
		return err
	})
	if err != nil {
		return nil, s.allocator.Recover(ctx, err)
	}

	logger.L().Info("pillar_numbers_allocated", "series", prefix, "range", rng.String(), "actor", a.ID)
	return &primary.Allocation{
		SeriesPrefix: prefix,
		First:        rng.First,
		Last:         rng.Last,
		Numbers:      rng.Numbers(),
	}, nil
}

// GetSeries returns the counter of a numbering series.
func (s *PillarServiceImpl) GetSeries(ctx context.Context, seriesPrefix string) (*primary.Series, error) {
	if _, err := s.actors.CurrentActor(ctx); err != nil {
		return nil, err
	}
	prefix := strings.TrimSpace(seriesPrefix)
	if err := corepillar.ValidatePrefix(prefix); err != nil {
		return nil, err
	}

	record, err := s.sequenceRepo.Get(ctx, prefix)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errs.NotFound("series %s has never been used", prefix)
	}
	return &primary.Series{
		SeriesPrefix:     record.SeriesPrefix,
		LastIssuedNumber: record.LastIssuedNumber,
		UpdatedAt:        record.UpdatedAt,
	}, nil
}

// SearchPillar looks a pillar up and, when asked, ranks the other pillars
// within the radius by great-circle distance.
func (s *PillarServiceImpl) SearchPillar(ctx context.Context, req primary.SearchPillarRequest) (*primary.SearchPillarResponse, error) {
	if _, err := s.actors.CurrentActor(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	metrics.SearchRequestsTotal.Inc()
	defer func() {
		metrics.SearchDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	}()

	number := strings.TrimSpace(req.PillarNumber)
	if number == "" {
		return nil, errs.Validation("pillar number is required")
	}
	radius, err := s.radius(req.RadiusKm)
	if err != nil {
		return nil, err
	}

	key := searchKey(number, req.IncludeNearby, radius)
	gen, cacheable := s.cache.Generation(ctx)
	if cacheable {
		if payload, ok := s.cache.Get(ctx, gen, key); ok {
			var cached primary.SearchPillarResponse
			if err := json.Unmarshal(payload, &cached); err == nil {
				return &cached, nil
			}
			logger.L().Debug("search_cache_decode_failed", "key", key)
		}
	}

	record, err := s.pillarRepo.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}

	resp := &primary.SearchPillarResponse{Pillar: recordToPillar(record)}
	center, ok := s.projection.Project(record.Coordinate)
	if ok {
		resp.Location = &center
	}

	if req.IncludeNearby {
		resp.RadiusKm = radius
		if ok {
			nearby, err := s.nearby(ctx, record.PillarNumber, center, radius)
			if err != nil {
				return nil, err
			}
			resp.NearbyPillars = nearby
		}
	}

	if !cacheable {
		return resp, nil
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		logger.L().Warn("search_encode_failed", "pillar", number, "error", err)
		return resp, nil
	}
	s.cache.Put(ctx, gen, key, payload)
	return resp, nil
}

func (s *PillarServiceImpl) nearby(ctx context.Context, self string, center geo.LatLng, radius float64) ([]*primary.NearbyPillar, error) {
	all, err := s.pillarRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byNumber := make(map[string]*secondary.PillarRecord, len(all))
	candidates := make([]geo.Candidate, 0, len(all))
	for _, p := range all {
		if p.PillarNumber == self {
			continue
		}
		byNumber[p.PillarNumber] = p
		candidates = append(candidates, geo.Candidate{ID: p.PillarNumber, Coordinate: p.Coordinate})
	}

	neighbors := s.projection.Nearby(center, candidates, radius, s.search.Limit)
	out := make([]*primary.NearbyPillar, len(neighbors))
	for i, n := range neighbors {
		out[i] = &primary.NearbyPillar{
			Pillar:     recordToPillar(byNumber[n.ID]),
			Location:   n.Location,
			DistanceKm: n.DistanceKm,
		}
	}
	return out, nil
}

// radius applies the default and the ceiling to a requested search radius.
func (s *PillarServiceImpl) radius(requested float64) (float64, error) {
	if math.IsNaN(requested) || math.IsInf(requested, 0) {
		return 0, errs.Validation("search radius must be a finite number of kilometres")
	}
	if requested <= 0 {
		return s.search.DefaultRadiusKm, nil
	}
	if requested > s.search.MaxRadiusKm {
		return 0, errs.Validation("search radius %.1f km exceeds the maximum of %.1f km", requested, s.search.MaxRadiusKm)
	}
	return requested, nil
}

func searchKey(number string, nearby bool, radius float64) string {
	return fmt.Sprintf("%s|%t|%g", number, nearby, radius)
}

// Ensure PillarServiceImpl implements the interface
var _ primary.PillarService = (*PillarServiceImpl)(nil)
