// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/arguswatch/argus/internal/domain/types"
)

// WatchlistDependencies defines the interface for watchlist reads.
type WatchlistDependencies interface {
	Watchlist(ctx context.Context, n int) ([]types.WatchlistEntry, error)
}

// WatchlistHandler handles riskiest-first watchlist requests.
type WatchlistHandler struct {
	deps         WatchlistDependencies
	defaultLimit int
	maxLimit     int
}

// NewWatchlistHandler creates a new watchlist handler.
func NewWatchlistHandler(deps WatchlistDependencies, defaultLimit, maxLimit int) *WatchlistHandler {
	return &WatchlistHandler{
		deps:         deps,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// HandleGetWatchlist handles GET /api/v1/watchlist?limit=N requests.
// Omitting limit applies the configured default.
func (h *WatchlistHandler) HandleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	n := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if parsed > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrBadRequest)
			return
		}
		n = parsed
	}

	entries, err := h.deps.Watchlist(r.Context(), n)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
