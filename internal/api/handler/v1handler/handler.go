// Package v1handler implements the version 1 JSON API on top of the project
// service and the storage layer.
package v1handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"domaincheck/internal/measurer"
	"domaincheck/internal/project"
	"domaincheck/pkg/logger"
	"domaincheck/pkg/serrors"
	"domaincheck/pkg/storage"
)

// Deps carries the services the handlers delegate to.
type Deps struct {
	Projects *project.Service
	Measurer *measurer.Measurer
	Storage  storage.Storage
}

// Options configure request handling limits.
type Options struct {
	// MaxUploadBytes caps the size of an uploaded URL list file.
	MaxUploadBytes int64
}

// Handler serves the v1 endpoints.
type Handler struct {
	deps    Deps
	options Options
}

// New creates a Handler.
func New(deps Deps, options Options) *Handler {
	return &Handler{deps: deps, options: options}
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps semantic error kinds onto HTTP statuses. Unclassified
// errors are logged and hidden behind a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch {
	case errors.Is(err, serrors.ErrBadRequest):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, serrors.ErrUnauthorized):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, serrors.ErrForbidden):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, serrors.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, serrors.ErrConflict):
		status, msg = http.StatusConflict, err.Error()
	case errors.Is(err, serrors.ErrUnavailable):
		status, msg = http.StatusServiceUnavailable, err.Error()
	default:
		logger.Error(r.Context(), "request failed", zap.Error(err))
	}

	writeJSON(w, status, errorResponse{Error: msg})
}
