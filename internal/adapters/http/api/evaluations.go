// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/arguswatch/argus/internal/domain/types"
)

// EvaluationDependencies defines the interface for evaluation operations.
type EvaluationDependencies interface {
	Evaluate(ctx context.Context, address string) (types.Evaluation, error)
	Evaluation(ctx context.Context, address string) (types.Evaluation, error)
}

// EvaluationsHandler handles synchronous evaluation requests and lookups.
type EvaluationsHandler struct {
	deps EvaluationDependencies
}

// NewEvaluationsHandler creates a new evaluations handler.
func NewEvaluationsHandler(deps EvaluationDependencies) *EvaluationsHandler {
	return &EvaluationsHandler{deps: deps}
}

// HandlePostEvaluation handles POST /api/v1/evaluations requests.
// The evaluation is computed synchronously and the full record,
// provenance token included, is returned.
func (h *EvaluationsHandler) HandlePostEvaluation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req evaluationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	evaluation, err := h.deps.Evaluate(r.Context(), req.Address)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, evaluation)
}

// HandleGetEvaluation handles GET /api/v1/evaluations/{address} requests.
// The address is normalized before lookup, so case and surrounding
// whitespace in the path segment do not matter.
func (h *EvaluationsHandler) HandleGetEvaluation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	address := strings.TrimPrefix(r.URL.Path, "/api/v1/evaluations/")
	if address == "" || strings.Contains(address, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	evaluation, err := h.deps.Evaluation(r.Context(), address)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, evaluation)
}
