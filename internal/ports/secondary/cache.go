package secondary

import "context"

// SearchCache stores encoded pillar search results. Entries are keyed by a
// generation that Invalidate advances, so every entry written before an
// invalidation becomes unreachable at once. A search reads the generation
// once and uses it for both Get and Put; a result computed while pillars were
// being issued is then stored under the old generation where no later search
// looks.
type SearchCache interface {
	// Generation returns the current generation; ok is false when the cache
	// cannot be read, in which case the search bypasses it.
	Generation(ctx context.Context) (gen int64, ok bool)

	// Get returns the payload cached for key at gen; ok is false on a miss.
	Get(ctx context.Context, gen int64, key string) (payload []byte, ok bool)

	// Put stores a payload for key at gen.
	Put(ctx context.Context, gen int64, key string, payload []byte)

	// Invalidate drops every cached search result.
	Invalidate(ctx context.Context)
}
