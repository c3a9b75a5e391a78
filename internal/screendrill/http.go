package screendrill

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/arguswatch/argus/internal/domain/types"
	"github.com/arguswatch/argus/pkg/logger"
)

// client wraps http.Client with the drill's timeout.
type client struct {
	http *http.Client
}

func newClient(timeout time.Duration) *client {
	return &client{
		http: &http.Client{Timeout: timeout},
	}
}

// getJSON fetches url and decodes the 200 response into v.
func (c *client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: HTTP %d: %s", url, resp.StatusCode, string(body))
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing %s: %w", url, err)
	}
	return nil
}

// postJSON posts body to url and decodes the response into v when the
// status matches one of wantStatus. The response status is returned so
// callers can branch on accepted-vs-duplicate.
func (c *client) postJSON(ctx context.Context, url string, body, v any) (int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("POST %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("reading %s: %w", url, err)
	}
	if v != nil && resp.StatusCode < http.StatusBadRequest {
		if err := json.Unmarshal(raw, v); err != nil {
			return resp.StatusCode, fmt.Errorf("parsing %s: %w", url, err)
		}
	}
	return resp.StatusCode, nil
}

// screeningRequest mirrors the POST /api/v1/screenings wire shape.
type screeningRequest struct {
	RequestID string `json:"request_id"`
	Address   string `json:"address"`
}

// evaluationRequest mirrors the POST /api/v1/evaluations wire shape.
type evaluationRequest struct {
	Address string `json:"address"`
}

// submitScreenings fans the generated addresses out over the async
// intake, bounded by the configured worker count.
func submitScreenings(ctx context.Context, cfg *Config, c *client, addresses []string, stats *Stats) error {
	log := logger.Get().Named("drill")
	log.Info(ctx, "submitting screenings",
		logger.Int("count", len(addresses)),
		logger.Int("workers", cfg.Workers),
	)

	url := cfg.BaseURL + "/api/v1/screenings"

	var accepted, duplicate, rejected, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for _, address := range addresses {
		address := address
		g.Go(func() error {
			status, err := c.postJSON(gctx, url, screeningRequest{
				RequestID: uuid.NewString(),
				Address:   address,
			}, nil)
			switch {
			case err != nil:
				failed.Add(1)
				if cfg.Verbose {
					log.Warn(gctx, "screening submission failed",
						logger.String("address", address),
						logger.Error(err),
					)
				}
			case status == http.StatusAccepted:
				accepted.Add(1)
			case status == http.StatusOK:
				duplicate.Add(1)
			case status == http.StatusTooManyRequests:
				rejected.Add(1)
			default:
				failed.Add(1)
			}
			// Submission errors are counted, not fatal.
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("submission group: %w", err)
	}

	stats.Submitted = len(addresses)
	stats.Accepted = int(accepted.Load())
	stats.Duplicate = int(duplicate.Load())
	stats.Rejected = int(rejected.Load())
	stats.Failed = int(failed.Load())

	log.Info(ctx, "screening submission completed",
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
	)
	return nil
}

// waitForDrain polls the stats endpoint until the queue empties or ctx
// expires.
func waitForDrain(ctx context.Context, cfg *Config, c *client) error {
	log := logger.Get().Named("drill")
	url := cfg.BaseURL + "/api/v1/stats"

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for queue drain: %w", ctx.Err())
		case <-ticker.C:
			var stats types.ServiceStats
			if err := c.getJSON(ctx, url, &stats); err != nil {
				return err
			}
			if stats.QueueDepth == 0 {
				log.Info(ctx, "queue drained",
					logger.Int("addresses", stats.Addresses),
				)
				return nil
			}
			if cfg.Verbose {
				log.Info(ctx, "queue draining", logger.Int("depth", stats.QueueDepth))
			}
		}
	}
}
