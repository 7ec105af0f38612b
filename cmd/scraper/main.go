// Command scraper runs one collection cycle against the LINDAS SPARQL
// endpoint and appends new station readings to the CSV ledger. Periodicity
// comes from an external scheduler (cron, Kubernetes CronJob); the process
// exits when the cycle is done.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/lindas-hydro-scraper/internal/adapter/csvfile"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/adapter/httpapi"
	kafkaadapter "github.com/couchcryptid/lindas-hydro-scraper/internal/adapter/kafka"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/adapter/sparql"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/config"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/observability"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		logger.Error("cannot create data directory", "dir", cfg.DataDir, "error", err)
		os.Exit(1)
	}

	store := csvfile.New(cfg.OutputFile, cfg.LegacyHeader, logger)
	seen, err := store.SeedKeys()
	if err != nil {
		logger.Error("cannot seed dedup store from ledger", "file", cfg.OutputFile, "error", err)
		os.Exit(1)
	}
	logger.Info("dedup store seeded", "file", cfg.OutputFile, "keys", seen.Len())

	client := sparql.NewClient(cfg, metrics, logger)

	// Kafka publishing is feature-flagged via KAFKA_ENABLED / KAFKA_BROKERS.
	var publisher pipeline.Publisher
	if cfg.KafkaEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("kafka publishing disabled")
	}

	p := pipeline.New(cfg, client, store, publisher, seen, logger, metrics)

	srv := httpapi.NewServer(cfg.HTTPAddr, p, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := p.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	if runErr != nil {
		logger.Error("collection cycle failed", "error", runErr)
		os.Exit(1)
	}
	logger.Info("collection cycle complete")
}
