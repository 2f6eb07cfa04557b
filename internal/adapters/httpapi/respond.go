package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/example/cadastre/internal/core/errs"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code         string `json:"code"`
	Reason       string `json:"reason"`
	CurrentState string `json:"currentState,omitempty"`
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindAuthorization:
		return http.StatusForbidden
	case errs.KindInvalidStateTransition, errs.KindConflict:
		return http.StatusConflict
	case errs.KindPreconditionNotMet:
		return http.StatusPreconditionFailed
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errs.KindOf(err)
	if kind == errs.KindInternal {
		s.log.Error("request_failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}

	code, reason := errs.Public(err)
	body := errorBody{Code: code, Reason: reason}
	var e *errs.Error
	if errors.As(err, &e) {
		body.CurrentState = e.CurrentState
	}
	writeJSON(w, statusFor(kind), body)
}

// decode reads a JSON request body into v. An empty body leaves v unchanged.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errs.Validation("invalid request body: %v", err)
	}
	return nil
}
