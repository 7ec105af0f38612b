// Command compact rewrites the CSV ledger with exact-duplicate rows removed.
// It is an occasional maintenance pass, safe to re-run: a clean file is left
// untouched.
//
// Usage:
//
//	go run ./cmd/compact              # compacts the configured ledger
//	go run ./cmd/compact -file x.csv  # compacts a specific file
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/couchcryptid/lindas-hydro-scraper/internal/adapter/csvfile"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/config"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/observability"
)

func main() {
	file := flag.String("file", "", "CSV ledger to compact (default: the configured output file)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg)

	path := cfg.OutputFile
	if *file != "" {
		path = *file
	}

	store := csvfile.New(path, cfg.LegacyHeader, logger)
	dropped, err := store.Compact()
	if err != nil {
		logger.Error("compact failed", "file", path, "error", err)
		os.Exit(1)
	}

	logger.Info("compact complete", "file", path, "rows_dropped", dropped)
}
