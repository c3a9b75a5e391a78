package screendrill

import (
	"context"
	"fmt"
	"regexp"

	"github.com/arguswatch/argus/internal/domain/types"
	"github.com/arguswatch/argus/pkg/logger"
)

// tokenPattern matches a well-formed provenance token.
var tokenPattern = regexp.MustCompile(`^AR_[0-9a-f]{43}$`)

// watchlistProbeLimit caps the watchlist fetch at the service's
// default maximum page size.
const watchlistProbeLimit = 1000

// verifyDeterminism re-submits a sample of addresses through the
// synchronous endpoint, twice each, and checks that both passes agree
// and that every token is well-formed.
func verifyDeterminism(ctx context.Context, cfg *Config, c *client, addresses []string, stats *Stats) error {
	log := logger.Get().Named("drill")

	sample := cfg.Sample
	if sample > len(addresses) {
		sample = len(addresses)
	}
	endpoint := cfg.BaseURL + "/api/v1/evaluations"

	for _, address := range addresses[:sample] {
		var first, second types.Evaluation

		status, err := c.postJSON(ctx, endpoint, evaluationRequest{Address: address}, &first)
		if err != nil {
			return fmt.Errorf("evaluating %q: %w", address, err)
		}
		if status != 200 {
			return fmt.Errorf("evaluating %q: HTTP %d", address, status)
		}
		stats.Resubmitted++

		if status, err = c.postJSON(ctx, endpoint, evaluationRequest{Address: address}, &second); err != nil {
			return fmt.Errorf("re-evaluating %q: %w", address, err)
		}
		if status != 200 {
			return fmt.Errorf("re-evaluating %q: HTTP %d", address, status)
		}
		stats.Resubmitted++

		if !tokenPattern.MatchString(first.Token) {
			stats.FormatViolations++
			log.Warn(ctx, "malformed token",
				logger.String("address", address),
				logger.String("token", first.Token),
			)
		}
		if first.Token != second.Token || first.ContentHash != second.ContentHash || first.FinalScore != second.FinalScore {
			stats.TokenMismatches++
			log.Warn(ctx, "non-deterministic evaluation",
				logger.String("address", address),
				logger.String("first_token", first.Token),
				logger.String("second_token", second.Token),
			)
		}
	}
	return nil
}

// verifyWatchlist fetches the full watchlist and checks riskiest-first
// ordering plus token format on every entry.
func verifyWatchlist(ctx context.Context, cfg *Config, c *client, stats *Stats) error {
	log := logger.Get().Named("drill")

	var snapshot types.ServiceStats
	if err := c.getJSON(ctx, cfg.BaseURL+"/api/v1/stats", &snapshot); err != nil {
		return err
	}
	limit := snapshot.Addresses
	if limit < 1 {
		limit = 1
	}
	if limit > watchlistProbeLimit {
		limit = watchlistProbeLimit
	}

	var entries []types.WatchlistEntry
	endpoint := fmt.Sprintf("%s/api/v1/watchlist?limit=%d", cfg.BaseURL, limit)
	if err := c.getJSON(ctx, endpoint, &entries); err != nil {
		return err
	}
	stats.WatchlistEntries = len(entries)

	for i, entry := range entries {
		// Tied scores share a rank; distinct scores resume at the
		// positional index.
		wantRank := i + 1
		if i > 0 && entry.FinalScore == entries[i-1].FinalScore {
			wantRank = entries[i-1].Rank
		}
		if entry.Rank != wantRank {
			stats.OrderViolations++
		}
		if i > 0 {
			prev := entries[i-1]
			if entry.FinalScore < prev.FinalScore ||
				(entry.FinalScore == prev.FinalScore && entry.Address < prev.Address) {
				stats.OrderViolations++
				log.Warn(ctx, "watchlist ordering violation",
					logger.Int("rank", entry.Rank),
					logger.String("address", entry.Address),
				)
			}
		}
		if !tokenPattern.MatchString(entry.Token) {
			stats.FormatViolations++
		}
	}
	return nil
}
