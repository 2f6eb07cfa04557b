package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/example/cadastre/internal/core/errs"
	corepillar "github.com/example/cadastre/internal/core/pillar"
	"github.com/example/cadastre/internal/logger"
	"github.com/example/cadastre/internal/metrics"
	"github.com/example/cadastre/internal/ports/secondary"
)

// SequenceAllocator hands out consecutive pillar numbers per series. Callers
// hold Lock(prefix) for the whole transaction that allocates, so allocations
// in one process queue per series; the repository's single-statement
// increment keeps separate processes disjoint.
type SequenceAllocator struct {
	sequences secondary.SequenceRepository
	pillars   secondary.PillarRepository
	maxBatch  int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSequenceAllocator creates a new SequenceAllocator.
func NewSequenceAllocator(sequences secondary.SequenceRepository, pillars secondary.PillarRepository, maxBatch int) *SequenceAllocator {
	if maxBatch <= 0 {
		maxBatch = corepillar.DefaultMaxBatch
	}
	return &SequenceAllocator{
		sequences: sequences,
		pillars:   pillars,
		maxBatch:  maxBatch,
		locks:     make(map[string]*sync.Mutex),
	}
}

// Lock serializes allocations for one series and returns the unlock func.
func (a *SequenceAllocator) Lock(prefix string) func() {
	a.mu.Lock()
	l, ok := a.locks[prefix]
	if !ok {
		l = &sync.Mutex{}
		a.locks[prefix] = l
	}
	a.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// collisionError reports that a freshly allocated range overlaps numbers
// already recorded as pillars.
type collisionError struct {
	prefix  string
	highest int64
	numbers []string
}

func (e *collisionError) Error() string {
	return fmt.Sprintf("pillar numbers %v in series %s are already issued", e.numbers, e.prefix)
}

// Allocate reserves count numbers in the series within the caller's
// transaction. A range touching an existing pillar returns a *collisionError;
// the caller must roll back and then call Recover.
func (a *SequenceAllocator) Allocate(ctx context.Context, prefix string, count int) (corepillar.Range, error) {
	if err := corepillar.ValidatePrefix(prefix); err != nil {
		return corepillar.Range{}, err
	}
	if err := corepillar.ValidateCount(count, a.maxBatch); err != nil {
		return corepillar.Range{}, err
	}

	last, err := a.sequences.Allocate(ctx, prefix, count)
	if err != nil {
		return corepillar.Range{}, err
	}
	rng := corepillar.RangeEndingAt(prefix, last, count)

	existing, err := a.pillars.Existing(ctx, rng.Numbers())
	if err != nil {
		return corepillar.Range{}, err
	}
	if len(existing) > 0 {
		coll := &collisionError{prefix: prefix, numbers: existing}
		for _, number := range existing {
			if _, n, err := corepillar.Parse(number); err == nil && n > coll.highest {
				coll.highest = n
			}
		}
		return corepillar.Range{}, coll
	}
	return rng, nil
}

// Recover handles an error returned from a transaction that called Allocate.
// For a collision it advances the series past the highest colliding number,
// outside the rolled-back transaction, and converts the error to a conflict.
// Other errors pass through unchanged.
func (a *SequenceAllocator) Recover(ctx context.Context, err error) error {
	var coll *collisionError
	if !errors.As(err, &coll) {
		return err
	}

	metrics.SequenceConflictsTotal.WithLabelValues(coll.prefix).Inc()
	logger.L().Warn("pillar_sequence_conflict",
		"series", coll.prefix,
		"colliding", coll.numbers,
		"advance_to", coll.highest,
	)

	if advErr := a.sequences.AdvanceTo(ctx, coll.prefix, coll.highest); advErr != nil {
		return fmt.Errorf("failed to advance series %s after conflict: %w", coll.prefix, advErr)
	}
	return errs.Conflict("%s; series %s advanced past %d, retry the request", coll.Error(), coll.prefix, coll.highest)
}
