package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/edumate/edumate-orchestrator/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrValidation):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrConflict):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrTransport), domain.IsKind(err, domain.ErrServer):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Phase string `json:"phase,omitempty"`
	RunID string `json:"run_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	resp := errorResponse{Error: err.Error()}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		resp.Field = validationErr.Field
	}
	var phaseErr *domain.PhaseError
	if errors.As(err, &phaseErr) {
		resp.Phase = string(phaseErr.Phase)
		resp.RunID = phaseErr.RunID
	}

	if status >= http.StatusInternalServerError {
		slog.Error("http_request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"path", r.URL.Path,
			"status", status,
			"error", err,
		)
	}
	writeJSON(w, status, resp)
}
