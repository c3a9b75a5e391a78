package screendrill

import "os"

// ShowHelp prints usage information for the screening drill tool.
func ShowHelp() {
	os.Stdout.WriteString(`Argus Screening Drill
=====================

A concurrent tool for flooding a running argus instance with wallet
screenings and verifying its determinism guarantees over the wire.

Usage:
  go run cmd/screen-drill/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -count int
        Number of screenings to generate and submit (default 10000)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -sample int
        Addresses re-evaluated for the determinism check (default 200)
  -report string
        Output file for the JSON report (default: none)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Drill with default settings
  go run cmd/screen-drill/main.go

  # Heavy drill against a remote instance
  go run cmd/screen-drill/main.go -count 100000 -workers 32 -url http://argus.internal:8080

  # Keep a report
  go run cmd/screen-drill/main.go -count 50000 -report drill_report.json
`)
}
