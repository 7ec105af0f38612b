package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// scrape cycle.
type Metrics struct {
	SitesProcessed    prometheus.Counter
	SiteErrors        prometheus.Counter
	FetchRetries      prometheus.Counter
	ReadingsAppended  prometheus.Counter
	DuplicatesSkipped prometheus.Counter
	InvalidReadings   prometheus.Counter
	AppendErrors      prometheus.Counter
	PublishErrors     prometheus.Counter
	ScrapeRunning     prometheus.Gauge

	FetchDuration prometheus.Histogram
}

// NewMetrics creates and registers all scraper metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SitesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydro_scraper",
			Name:      "sites_processed_total",
			Help:      "Total station sites for which a fetch cycle completed.",
		}),
		SiteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydro_scraper",
			Name:      "site_errors_total",
			Help:      "Total sites skipped because fetching or mapping failed.",
		}),
		FetchRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydro_scraper",
			Name:      "fetch_retries_total",
			Help:      "Total retried SPARQL fetch attempts.",
		}),
		ReadingsAppended: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydro_scraper",
			Name:      "readings_appended_total",
			Help:      "Total new readings appended to the CSV ledger.",
		}),
		DuplicatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydro_scraper",
			Name:      "duplicates_skipped_total",
			Help:      "Total readings dropped because their dedup key was already seen.",
		}),
		InvalidReadings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydro_scraper",
			Name:      "invalid_readings_total",
			Help:      "Total sites whose bindings did not yield a valid reading.",
		}),
		AppendErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydro_scraper",
			Name:      "append_errors_total",
			Help:      "Total failed CSV append operations.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "hydro_scraper",
			Name:      "publish_errors_total",
			Help:      "Total failed Kafka publish operations.",
		}),
		ScrapeRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hydro_scraper",
			Name:      "scrape_running",
			Help:      "1 while a collection cycle is in progress, 0 otherwise.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hydro_scraper",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of individual SPARQL endpoint requests.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}

	prometheus.MustRegister(
		m.SitesProcessed,
		m.SiteErrors,
		m.FetchRetries,
		m.ReadingsAppended,
		m.DuplicatesSkipped,
		m.InvalidReadings,
		m.AppendErrors,
		m.PublishErrors,
		m.ScrapeRunning,
		m.FetchDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SitesProcessed:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hydro_scraper", Name: "sites_processed_total"}),
		SiteErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hydro_scraper", Name: "site_errors_total"}),
		FetchRetries:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hydro_scraper", Name: "fetch_retries_total"}),
		ReadingsAppended:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hydro_scraper", Name: "readings_appended_total"}),
		DuplicatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hydro_scraper", Name: "duplicates_skipped_total"}),
		InvalidReadings:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hydro_scraper", Name: "invalid_readings_total"}),
		AppendErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hydro_scraper", Name: "append_errors_total"}),
		PublishErrors:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "hydro_scraper", Name: "publish_errors_total"}),
		ScrapeRunning:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "hydro_scraper", Name: "scrape_running"}),
		FetchDuration:     prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "hydro_scraper", Name: "fetch_duration_seconds"}),
	}
}
