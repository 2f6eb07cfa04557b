// Package httpapi exposes the primary ports as JSON over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/example/cadastre/internal/ctxutil"
	"github.com/example/cadastre/internal/logger"
	"github.com/example/cadastre/internal/metrics"
	"github.com/example/cadastre/internal/ports/primary"
)

// Identity headers set by the trusted identity provider in front of the service.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

const maxBodyBytes = 1 << 20

// Server routes HTTP requests to the primary ports.
type Server struct {
	surveyors primary.SurveyorService
	jobs      primary.JobService
	pillars   primary.PillarService
	log       *slog.Logger
}

// NewServer creates a new Server.
func NewServer(surveyors primary.SurveyorService, jobs primary.JobService, pillars primary.PillarService, l *slog.Logger) *Server {
	if l == nil {
		l = logger.L()
	}
	return &Server{surveyors: surveyors, jobs: jobs, pillars: pillars, log: l}
}

// Handler builds the routed handler with access logging, identity and metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /surveyors", s.registerSurveyor)
	mux.HandleFunc("GET /surveyors", s.listSurveyors)
	mux.HandleFunc("GET /surveyors/{id}", s.getSurveyor)
	mux.HandleFunc("POST /surveyors/{id}/nis-approve", s.nisApproveSurveyor)
	mux.HandleFunc("POST /surveyors/{id}/nis-reject", s.nisRejectSurveyor)
	mux.HandleFunc("POST /surveyors/{id}/admin-approve", s.adminApproveSurveyor)
	mux.HandleFunc("POST /surveyors/{id}/admin-reject", s.adminRejectSurveyor)

	mux.HandleFunc("POST /jobs", s.submitJob)
	mux.HandleFunc("GET /jobs", s.listJobs)
	mux.HandleFunc("GET /jobs/{id}", s.getJob)
	mux.HandleFunc("POST /jobs/{id}/start-review", s.startNISReview)
	mux.HandleFunc("POST /jobs/{id}/nis-approve", s.nisApproveJob)
	mux.HandleFunc("POST /jobs/{id}/nis-reject", s.nisRejectJob)
	mux.HandleFunc("POST /jobs/{id}/admin-approve", s.adminApproveJob)
	mux.HandleFunc("POST /jobs/{id}/admin-reject", s.adminRejectJob)
	mux.HandleFunc("POST /jobs/{id}/blue-copy", s.uploadBlueCopy)
	mux.HandleFunc("POST /jobs/{id}/ro-document", s.uploadRODocument)

	mux.HandleFunc("POST /pillars/allocate", s.allocatePillarNumbers)
	mux.HandleFunc("GET /pillars/search", s.searchPillar)
	mux.HandleFunc("GET /series/{prefix...}", s.getSeries)

	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var h http.Handler = instrument(mux)
	h = withActor(h)
	return logger.AccessMiddleware(s.log)(h)
}

// withActor copies the identity headers into the request context.
func withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxutil.WithActor(r.Context(), r.Header.Get(HeaderActorID), r.Header.Get(HeaderActorRole))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// instrument records request counts and latency per route pattern. It must
// wrap the mux directly: the mux sets r.Pattern on the request it receives.
func instrument(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &codeRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		mux.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		metrics.HTTPDurationMs.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}

type codeRecorder struct {
	http.ResponseWriter
	code int
}

func (c *codeRecorder) WriteHeader(code int) {
	c.code = code
	c.ResponseWriter.WriteHeader(code)
}
