// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/arguswatch/argus/internal/adapters/repository"
	"github.com/arguswatch/argus/internal/domain/dedupe"
	"github.com/arguswatch/argus/internal/domain/model"
	"github.com/arguswatch/argus/internal/domain/types"
)

// maxBodyBytes caps mutating request bodies.
const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Evaluate runs the synchronous scoring path and stores the outcome.
	Evaluate(ctx context.Context, address string) (types.Evaluation, error)

	// Screen pushes a screening for async processing. Returns false on
	// backpressure.
	Screen(ctx context.Context, s model.Screening) bool

	// Read operations expose stored screening outcomes.
	Evaluation(ctx context.Context, address string) (types.Evaluation, error)
	Watchlist(ctx context.Context, n int) ([]types.WatchlistEntry, error)

	// Healthy reports whether the service can accept work.
	Healthy() bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	evaluationsHandler *EvaluationsHandler
	screeningsHandler  *ScreeningsHandler
	watchlistHandler   *WatchlistHandler
}

// NewServer creates a new API server with all handlers. defaultLimit and
// maxLimit shape GET /api/v1/watchlist.
func NewServer(deps Dependencies, statsProvider StatsProvider, defaultLimit, maxLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(deps),
		statsHandler:       NewStatsHandler(statsProvider),
		evaluationsHandler: NewEvaluationsHandler(deps),
		screeningsHandler:  NewScreeningsHandler(deps),
		watchlistHandler:   NewWatchlistHandler(deps, defaultLimit, maxLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", Instrument(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", Instrument(HandleMetrics, "metrics"))
	mux.HandleFunc("/api/v1/stats", Instrument(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/v1/evaluations", Instrument(s.evaluationsHandler.HandlePostEvaluation, "evaluations"))
	mux.HandleFunc("/api/v1/evaluations/", Instrument(s.evaluationsHandler.HandleGetEvaluation, "evaluation"))
	mux.HandleFunc("/api/v1/screenings", Instrument(s.screeningsHandler.HandlePostScreening, "screenings"))
	mux.HandleFunc("/api/v1/watchlist", Instrument(s.watchlistHandler.HandleGetWatchlist, "watchlist"))
}

// Instrument composes the standard middleware stack for one route.
func Instrument(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(MetricsMiddleware(next, endpoint))
}

// evaluationRequest mirrors the OpenAPI schema for POST /api/v1/evaluations.
type evaluationRequest struct {
	Address string `json:"address"`
}

func (e evaluationRequest) validate() error {
	if strings.TrimSpace(e.Address) == "" {
		return errors.New("missing address")
	}
	return nil
}

// screeningRequest mirrors the OpenAPI schema for POST /api/v1/screenings.
type screeningRequest struct {
	RequestID string `json:"request_id"`
	Address   string `json:"address"`
}

func (s screeningRequest) validate() error {
	switch {
	case strings.TrimSpace(s.RequestID) == "":
		return errors.New("missing request_id")
	case strings.TrimSpace(s.Address) == "":
		return errors.New("missing address")
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodeJSON decodes one JSON object from a capped body, rejecting
// unknown fields so a mistyped payload fails loudly instead of scoring
// a blank address.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// methodNotAllowed answers requests whose method does not match the route.
func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
}

// isNotFound translates the repository's not-found sentinel to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
