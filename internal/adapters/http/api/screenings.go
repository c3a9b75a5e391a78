// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/arguswatch/argus/internal/domain/dedupe"
	"github.com/arguswatch/argus/internal/domain/model"
)

// ScreeningDependencies defines the interface for async screening intake.
type ScreeningDependencies interface {
	dedupe.Deduper
	Screen(ctx context.Context, s model.Screening) bool
}

// ScreeningsHandler handles asynchronous screening submissions.
type ScreeningsHandler struct {
	deps ScreeningDependencies
}

// NewScreeningsHandler creates a new screenings handler.
func NewScreeningsHandler(deps ScreeningDependencies) *ScreeningsHandler {
	return &ScreeningsHandler{deps: deps}
}

// HandlePostScreening handles POST /api/v1/screenings requests.
func (h *ScreeningsHandler) HandlePostScreening(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var req screeningRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.RequestID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", RequestID: req.RequestID, Duplicate: true})
		return
	}

	screening := model.Screening{
		RequestID:  req.RequestID,
		Address:    req.Address,
		EnqueuedAt: time.Now(),
	}

	if ok := h.deps.Screen(r.Context(), screening); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.RequestID)
		writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", RequestID: req.RequestID, Duplicate: false})
}
