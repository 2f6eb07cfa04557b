package httpapi

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/cadastre/internal/core/errs"
	"github.com/example/cadastre/internal/ports/primary"
)

type reasonRequest struct {
	Reason string `json:"reason"`
}

type allocateRequest struct {
	SeriesPrefix string `json:"seriesPrefix"`
	Count        int    `json:"count"`
}

// ============================================================================
// Surveyors
// ============================================================================

func (s *Server) registerSurveyor(w http.ResponseWriter, r *http.Request) {
	var req primary.RegisterSurveyorRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	sv, err := s.surveyors.RegisterSurveyor(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sv)
}

func (s *Server) listSurveyors(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.surveyors.ListSurveyors(r.Context(), primary.SurveyorFilters{
		Status: r.URL.Query().Get("status"),
		Limit:  limit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) getSurveyor(w http.ResponseWriter, r *http.Request) {
	sv, err := s.surveyors.GetSurveyor(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sv)
}

func (s *Server) nisApproveSurveyor(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.surveyors.NISApproveSurveyor(r.Context(), r.PathValue("id")))
}

func (s *Server) adminApproveSurveyor(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.surveyors.AdminApproveSurveyor(r.Context(), r.PathValue("id")))
}

func (s *Server) nisRejectSurveyor(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r)(s.surveyors.NISRejectSurveyor(r.Context(), r.PathValue("id"), req.Reason))
}

func (s *Server) adminRejectSurveyor(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r)(s.surveyors.AdminRejectSurveyor(r.Context(), r.PathValue("id"), req.Reason))
}

// ============================================================================
// Jobs
// ============================================================================

func (s *Server) submitJob(w http.ResponseWriter, r *http.Request) {
	var req primary.SubmitJobRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	job, err := s.jobs.SubmitJob(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, job)
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	jobs, err := s.jobs.ListJobs(r.Context(), primary.JobFilters{
		Status:     q.Get("status"),
		SurveyorID: q.Get("surveyorId"),
		Limit:      limit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.jobs.GetJob(r.Context(), r.PathValue("id")))
}

func (s *Server) startNISReview(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.jobs.StartNISReview(r.Context(), r.PathValue("id")))
}

func (s *Server) nisApproveJob(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r)(s.jobs.NISApprove(r.Context(), r.PathValue("id")))
}

func (s *Server) nisRejectJob(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r)(s.jobs.NISReject(r.Context(), r.PathValue("id"), req.Reason))
}

func (s *Server) adminApproveJob(w http.ResponseWriter, r *http.Request) {
	var req primary.AdminApproveRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.JobID = r.PathValue("id")
	s.respond(w, r)(s.jobs.AdminApprove(r.Context(), req))
}

func (s *Server) adminRejectJob(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r)(s.jobs.AdminReject(r.Context(), r.PathValue("id"), req.Reason))
}

func (s *Server) uploadBlueCopy(w http.ResponseWriter, r *http.Request) {
	var doc primary.DocumentRef
	if err := decode(w, r, &doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r)(s.jobs.UploadBlueCopy(r.Context(), r.PathValue("id"), doc))
}

func (s *Server) uploadRODocument(w http.ResponseWriter, r *http.Request) {
	var doc primary.DocumentRef
	if err := decode(w, r, &doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r)(s.jobs.UploadRODocument(r.Context(), r.PathValue("id"), doc))
}

// ============================================================================
// Pillars
// ============================================================================

func (s *Server) allocatePillarNumbers(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	alloc, err := s.pillars.AllocatePillarNumbers(r.Context(), req.SeriesPrefix, req.Count)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, alloc)
}

func (s *Server) searchPillar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := primary.SearchPillarRequest{PillarNumber: q.Get("number")}

	if v := q.Get("nearby"); v != "" {
		nearby, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, errs.Validation("nearby must be true or false (got %q)", v))
			return
		}
		req.IncludeNearby = nearby
	}
	if v := q.Get("radius"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(radius) || math.IsInf(radius, 0) {
			s.writeError(w, r, errs.Validation("radius must be a number of kilometres (got %q)", v))
			return
		}
		req.RadiusKm = radius
	}

	resp, err := s.pillars.SearchPillar(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getSeries(w http.ResponseWriter, r *http.Request) {
	series, err := s.pillars.GetSeries(r.Context(), r.PathValue("prefix"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, series)
}

// respond returns a writer for the (value, error) result of a port call.
func (s *Server) respond(w http.ResponseWriter, r *http.Request) func(any, error) {
	return func(v any, err error) {
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

func queryInt(r *http.Request, name string) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errs.Validation("%s must be a non-negative integer (got %q)", name, v)
	}
	return n, nil
}
