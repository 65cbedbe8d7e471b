package handler

import (
	"errors"
	"net/http"

	"mentorportal/internal/domain"
	"mentorportal/internal/httputil"
)

// handleError converts domain errors to HTTP responses. Every response
// carries a notice for the UI's transient notification.
func handleError(w http.ResponseWriter, err error) {
	var conflictErr *domain.ConflictError
	var upstreamErr *domain.UpstreamError

	switch {
	case errors.Is(err, httputil.ErrBodyTooLarge):
		respondProblem(w, http.StatusRequestEntityTooLarge, err.Error(), nil)
	case errors.Is(err, domain.ErrValidation):
		respondProblem(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, domain.ErrNotFound):
		respondProblem(w, http.StatusNotFound, err.Error(), nil)
	case errors.Is(err, domain.ErrUnauthorized):
		respondProblem(w, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, domain.ErrForbidden):
		respondProblem(w, http.StatusForbidden, err.Error(), nil)
	case errors.As(err, &conflictErr):
		respondProblem(w, http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
		})
	case errors.As(err, &upstreamErr):
		respondProblem(w, http.StatusBadGateway, err.Error(), map[string]interface{}{
			"backend":         upstreamErr.Backend,
			"upstream_status": upstreamErr.Status,
		})
	case errors.Is(err, domain.ErrUpstream):
		respondProblem(w, http.StatusBadGateway, err.Error(), nil)
	default:
		respondProblem(w, http.StatusInternalServerError, "internal server error", nil)
	}
}

// badRequest answers malformed input that never reached a service.
func badRequest(w http.ResponseWriter, err error) {
	if errors.Is(err, httputil.ErrBodyTooLarge) {
		respondProblem(w, http.StatusRequestEntityTooLarge, err.Error(), nil)
		return
	}
	respondProblem(w, http.StatusBadRequest, err.Error(), nil)
}

func respondProblem(w http.ResponseWriter, status int, detail string, extras map[string]interface{}) {
	if extras == nil {
		extras = map[string]interface{}{}
	}
	extras["notice"] = httputil.ErrorNotice(detail)
	httputil.RespondErrorWithExtras(w, status, detail, extras)
}
