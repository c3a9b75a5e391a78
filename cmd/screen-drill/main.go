package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/arguswatch/argus/internal/screendrill"
	"github.com/arguswatch/argus/pkg/logger"
)

// Default configuration constants.
const (
	defaultCount        = 10000
	defaultSample       = 200
	defaultWorkers      = 2 // multiplier for runtime.NumCPU()
	defaultTimeout      = 30 * time.Second
	defaultDrillTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8080", "Base URL of the service")
		count      = flag.Int("count", defaultCount, "Number of screenings to generate and submit")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		sample     = flag.Int("sample", defaultSample, "Addresses re-evaluated for the determinism check")
		reportFile = flag.String("report", "", "Output file for the JSON report")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		screendrill.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultDrillTimeout)
	defer cancel()

	cfg := &screendrill.Config{
		BaseURL:    *baseURL,
		Count:      *count,
		Workers:    *workers,
		Timeout:    *timeout,
		Sample:     *sample,
		ReportFile: *reportFile,
		Verbose:    *verbose,
	}

	if err := screendrill.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Drill failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
