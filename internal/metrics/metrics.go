// Package metrics registers the Prometheus collectors of the cadastre service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000}

var (
	TransitionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cadastre_transitions_total",
		Help: "Workflow actions by entity, action and outcome",
	}, []string{"entity", "action", "outcome"})
	JobsSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cadastre_jobs_submitted_total",
		Help: "Total survey jobs submitted",
	})
	PillarsIssuedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cadastre_pillars_issued_total",
		Help: "Pillar numbers issued by series",
	}, []string{"series"})
	SequenceConflictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cadastre_sequence_conflicts_total",
		Help: "Allocations that collided with an already issued number",
	}, []string{"series"})
	SearchRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cadastre_search_requests_total",
		Help: "Total pillar searches",
	})
	SearchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cadastre_search_duration_ms",
		Help:    "Pillar search duration in milliseconds",
		Buckets: durationBuckets,
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cadastre_search_cache_hits_total",
		Help: "Total search cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cadastre_search_cache_misses_total",
		Help: "Total search cache misses",
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cadastre_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"route", "code"})
	HTTPDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cadastre_http_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(TransitionsTotal)
	prometheus.MustRegister(JobsSubmittedTotal)
	prometheus.MustRegister(PillarsIssuedTotal)
	prometheus.MustRegister(SequenceConflictsTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPDurationMs)
}

// Outcome labels a transition result for TransitionsTotal.
func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
