// Package site serves the JSON service index at the root path.
package site

import (
	"context"
	"encoding/json"
	"net/http"
)

// Service identity served at /.
const (
	serviceName    = "argus"
	serviceTagline = "deterministic wallet compliance screening"
)

// index is the machine-readable service directory.
type index struct {
	Name      string            `json:"name"`
	Service   string            `json:"service"`
	Endpoints map[string]string `json:"endpoints"`
}

// Register attaches the service index route to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/", handleIndex)
}

// handleIndex handles GET / requests. The "/" pattern also catches every
// unregistered path, so anything but the exact root is a 404.
func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(index{
		Name:    serviceName,
		Service: serviceTagline,
		Endpoints: map[string]string{
			"evaluate":   "POST /api/v1/evaluations",
			"evaluation": "GET /api/v1/evaluations/{address}",
			"screen":     "POST /api/v1/screenings",
			"watchlist":  "GET /api/v1/watchlist?limit=N",
			"stats":      "GET /api/v1/stats",
			"health":     "GET /healthz",
			"metrics":    "GET /metrics",
			"docs":       "GET /docs",
			"openapi":    "GET /openapi.yaml",
		},
	})
}
