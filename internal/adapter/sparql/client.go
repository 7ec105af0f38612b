package sparql

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/lindas-hydro-scraper/internal/config"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/domain"
	"github.com/couchcryptid/lindas-hydro-scraper/internal/observability"
)

const resultsContentType = "application/sparql-results+json"

// Client executes per-station queries against a SPARQL endpoint. Transport
// and decode failures are retried with doubling delay; a response without
// result bindings is "no data", not an error.
type Client struct {
	endpoint       string
	baseURL        string
	parameters     []string
	httpClient     *http.Client
	clock          clockwork.Clock
	maxAttempts    int
	initialBackoff time.Duration
	metrics        *observability.Metrics
	logger         *slog.Logger
}

// NewClient creates a SPARQL client for the configured endpoint.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		endpoint:       cfg.Endpoint,
		baseURL:        cfg.BaseURL,
		parameters:     cfg.Parameters,
		httpClient:     &http.Client{Timeout: cfg.FetchTimeout},
		clock:          clockwork.NewRealClock(),
		maxAttempts:    cfg.FetchMaxAttempts,
		initialBackoff: cfg.FetchInitialBackoff,
		metrics:        metrics,
		logger:         logger,
	}
}

// SetClock swaps the time source used for backoff sleeps. Pass nil to reset
// to real time.
func (c *Client) SetClock(clk clockwork.Clock) {
	if clk == nil {
		c.clock = clockwork.NewRealClock()
		return
	}
	c.clock = clk
}

// FetchSite queries the endpoint for one station and returns its bindings.
// Query construction errors are returned immediately; transport errors are
// retried up to the attempt limit before propagating. An empty result set
// returns an empty slice and no error.
func (c *Client) FetchSite(ctx context.Context, siteCode string) ([]domain.Binding, error) {
	query, err := BuildQuery(c.baseURL, siteCode, c.parameters)
	if err != nil {
		return nil, err
	}

	backoff := c.initialBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		bindings, err := c.doQuery(ctx, query)
		if err == nil {
			return bindings, nil
		}
		lastErr = err

		if attempt == c.maxAttempts {
			break
		}
		c.logger.Warn("fetch attempt failed, retrying",
			"site", siteCode, "attempt", attempt, "backoff", backoff, "error", err)
		c.metrics.FetchRetries.Inc()
		if !c.sleep(ctx, backoff) {
			return nil, ctx.Err()
		}
		backoff = nextBackoff(backoff)
	}

	return nil, fmt.Errorf("fetch site %s: %d attempts failed: %w", siteCode, c.maxAttempts, lastErr)
}

func (c *Client) doQuery(ctx context.Context, query string) ([]domain.Binding, error) {
	form := url.Values{"query": {query}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", resultsContentType)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("query endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("endpoint error: status %d: %s", resp.StatusCode, body)
	}

	var decoded resultsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}

	bindings := make([]domain.Binding, 0, len(decoded.Results.Bindings))
	for _, row := range decoded.Results.Bindings {
		bindings = append(bindings, domain.Binding{
			Predicate: row.Predicate.Value,
			Object:    row.Object.Value,
		})
	}
	return bindings, nil
}

// sleep waits for d on the injected clock, abortable by ctx. Returns false
// when the context was cancelled.
func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-c.clock.After(d):
		return true
	}
}

// nextBackoff doubles the delay between attempts: 2s, 4s, 8s, ...
func nextBackoff(current time.Duration) time.Duration {
	return current * 2
}

// SPARQL 1.1 JSON results format. A structurally absent results.bindings
// member decodes to a nil slice, which callers treat as "no data".

type resultsResponse struct {
	Results struct {
		Bindings []resultRow `json:"bindings"`
	} `json:"results"`
}

type resultRow struct {
	Predicate boundValue `json:"predicate"`
	Object    boundValue `json:"object"`
}

type boundValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}
