// Package pipeline orchestrates one collection cycle: per-site fetch, map,
// dedupe, and a single append.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/couchcryptid/lindas-hydro-scraper/internal/config"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/dedup"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/domain"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/observability"
)

// Fetcher queries the endpoint for one station's bindings, retrying
// internally before giving up.
type Fetcher interface {
	FetchSite(ctx context.Context, siteCode string) ([]domain.Binding, error)
}

// Appender persists a batch of deduplicated readings.
type Appender interface {
	Append(readings []domain.Reading) error
}

// Publisher forwards appended readings to an optional downstream sink.
type Publisher interface {
	PublishBatch(ctx context.Context, readings []domain.Reading) error
}

// Pipeline runs the sequential scrape cycle. Per-site failures are logged
// and skipped; only control-path failures propagate.
type Pipeline struct {
	fetcher   Fetcher
	store     Appender
	publisher Publisher // nil disables publishing
	seen      *dedup.Set
	sites     []string
	baseURL   string
	logger    *slog.Logger
	metrics   *observability.Metrics
	ready     atomic.Bool
}

// New creates a Pipeline. publisher may be nil.
func New(cfg *config.Config, fetcher Fetcher, store Appender, publisher Publisher,
	seen *dedup.Set, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:   fetcher,
		store:     store,
		publisher: publisher,
		seen:      seen,
		sites:     cfg.SiteCodes,
		baseURL:   cfg.BaseURL,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a collection cycle has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no collection cycle completed yet")
	}
	return nil
}

// Run executes one collection cycle: every configured site is fetched in
// order, new readings are collected, and the batch is appended in one write.
// A cancelled context stops the site loop; nothing is appended in that case.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("collection cycle started",
		"sites", len(p.sites), "seen_keys", p.seen.Len())
	p.metrics.ScrapeRunning.Set(1)
	defer p.metrics.ScrapeRunning.Set(0)

	fresh := make([]domain.Reading, 0, len(p.sites))
	for _, site := range p.sites {
		if err := ctx.Err(); err != nil {
			p.logger.Info("collection cycle interrupted", "reason", err)
			return nil
		}
		reading, ok := p.collectSite(ctx, site)
		if ok {
			fresh = append(fresh, reading)
		}
	}

	p.persist(ctx, fresh)
	p.ready.Store(true)
	return nil
}

// collectSite fetches, maps, and dedup-checks one station. Returns ok=false
// when the site yields nothing to persist; the dedup set only advances for
// valid, unseen readings.
func (p *Pipeline) collectSite(ctx context.Context, site string) (domain.Reading, bool) {
	bindings, err := p.fetcher.FetchSite(ctx, site)
	if err != nil {
		p.logger.Error("site skipped", "site", site, "error", err)
		p.metrics.SiteErrors.Inc()
		return domain.Reading{}, false
	}
	p.metrics.SitesProcessed.Inc()

	if len(bindings) == 0 {
		p.logger.Info("no data for site", "site", site)
		return domain.Reading{}, false
	}

	reading, ok := domain.MapBindings(p.baseURL, site, bindings, p.logger)
	if !ok {
		p.logger.Warn("bindings did not yield a valid reading", "site", site)
		p.metrics.InvalidReadings.Inc()
		return domain.Reading{}, false
	}

	key := reading.DedupKey()
	if p.seen.Seen(key) {
		p.logger.Debug("duplicate reading skipped", "site", site, "key", key)
		p.metrics.DuplicatesSkipped.Inc()
		return domain.Reading{}, false
	}
	p.seen.Add(key)

	return reading, true
}

// persist appends the batch and optionally publishes it. Persistence
// failures are logged, never fatal: the next invocation re-fetches and the
// dedup set is rebuilt from whatever actually reached disk.
func (p *Pipeline) persist(ctx context.Context, fresh []domain.Reading) {
	if len(fresh) == 0 {
		p.logger.Info("no new readings")
		return
	}

	if err := p.store.Append(fresh); err != nil {
		p.logger.Error("append failed, batch lost", "error", err, "readings", len(fresh))
		p.metrics.AppendErrors.Inc()
		return
	}
	p.metrics.ReadingsAppended.Add(float64(len(fresh)))
	p.logger.Info("appended new readings", "count", len(fresh))

	if p.publisher == nil {
		return
	}
	if err := p.publisher.PublishBatch(ctx, fresh); err != nil {
		p.logger.Error("publish failed", "error", err, "readings", len(fresh))
		p.metrics.PublishErrors.Inc()
	}
}
