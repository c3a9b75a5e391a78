package screendrill

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/arguswatch/argus/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	reportPermission    = 0600
)

// Run executes one complete drill: flood the service with screenings,
// wait for the queue to drain, then verify determinism, token format
// and watchlist ordering over the wire.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}
	log := logger.Get().Named("drill")

	log.Info(ctx, "starting screening drill",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("count", cfg.Count),
		logger.Int("workers", cfg.Workers),
		logger.String("timeout", cfg.Timeout.String()),
		logger.Int("sample", cfg.Sample),
		logger.Bool("verbose", cfg.Verbose))

	c := newClient(cfg.Timeout)

	// Step 1: confirm the service is up.
	if err := checkServiceHealth(ctx, cfg, c); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: generate the batch.
	addresses := generateAddresses(cfg.Count)
	stats.Generated = len(addresses)

	// Step 3: flood the async intake.
	if err := submitScreenings(ctx, cfg, c, addresses, stats); err != nil {
		return fmt.Errorf("screening submission failed: %w", err)
	}

	// Step 4: wait for the queue to drain.
	if err := waitForDrain(ctx, cfg, c); err != nil {
		return fmt.Errorf("queue drain failed: %w", err)
	}

	// Step 5: determinism and token format over the sync endpoint.
	if err := verifyDeterminism(ctx, cfg, c, addresses, stats); err != nil {
		return fmt.Errorf("determinism verification failed: %w", err)
	}

	// Step 6: riskiest-first ordering of the watchlist.
	if err := verifyWatchlist(ctx, cfg, c, stats); err != nil {
		return fmt.Errorf("watchlist verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	passed := stats.TokenMismatches == 0 &&
		stats.FormatViolations == 0 &&
		stats.OrderViolations == 0 &&
		stats.Failed == 0

	displayFinalStats(ctx, stats, passed)

	if cfg.ReportFile != "" {
		report := Report{BaseURL: cfg.BaseURL, Passed: passed, Stats: *stats}
		if err := writeReport(cfg.ReportFile, report); err != nil {
			log.Warn(ctx, "failed to write report", logger.Error(err))
		} else {
			log.Info(ctx, "report written", logger.String("file", cfg.ReportFile))
		}
	}

	if !passed {
		return fmt.Errorf("drill failed: %d token mismatches, %d format violations, %d order violations, %d failed submissions",
			stats.TokenMismatches, stats.FormatViolations, stats.OrderViolations, stats.Failed)
	}

	log.Info(ctx, "drill completed successfully")
	return nil
}

// checkServiceHealth verifies the service answers on /healthz.
func checkServiceHealth(ctx context.Context, cfg *Config, c *client) error {
	log := logger.Get().Named("drill")
	log.Info(ctx, "checking service health")

	var health struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, cfg.BaseURL+"/healthz", &health); err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if health.Status != "ok" {
		return fmt.Errorf("service reported status %q", health.Status)
	}

	log.Info(ctx, "service is healthy")
	return nil
}

// writeReport marshals the report to a JSON file.
func writeReport(filename string, report Report) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(filename, data, reportPermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// displayFinalStats logs the run summary.
func displayFinalStats(ctx context.Context, stats *Stats, passed bool) {
	log := logger.Get().Named("drill")
	log.Info(ctx, "drill summary",
		logger.Int("generated", stats.Generated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("resubmitted", stats.Resubmitted),
		logger.Int("tokenMismatches", stats.TokenMismatches),
		logger.Int("formatViolations", stats.FormatViolations),
		logger.Int("orderViolations", stats.OrderViolations),
		logger.Int("watchlistEntries", stats.WatchlistEntries),
		logger.Duration("duration", stats.Duration),
		logger.Bool("passed", passed))
}
