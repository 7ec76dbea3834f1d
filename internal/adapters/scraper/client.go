// Package scraper talks to the place-facts sidecar, a separate headless
// crawler exposing one HTTP endpoint. Everything here is best-effort: a
// missing or broken sidecar degrades enrichment, never a request.
package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/minseokang/matjip/internal/core/domain"
	"github.com/minseokang/matjip/internal/pkg/metrics"
)

// HTTPClient is implemented by http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the sidecar's /place endpoint.
type Client struct {
	httpClient  HTTPClient
	baseURL     string
	concurrency int
	itemTimeout time.Duration
}

// Option applies Client options.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c HTTPClient) Option {
	return func(s *Client) { s.httpClient = c }
}

// New creates a sidecar client. concurrency bounds the batch worker pool;
// itemTimeout bounds each single crawl, which involves a headless browser
// on the other side and is slow.
func New(baseURL string, concurrency int, itemTimeout time.Duration, opts ...Option) *Client {
	if concurrency <= 0 {
		concurrency = 2
	}
	if itemTimeout <= 0 {
		itemTimeout = 20 * time.Second
	}
	c := &Client{
		httpClient:  &http.Client{Timeout: itemTimeout + time.Second},
		baseURL:     baseURL,
		concurrency: concurrency,
		itemTimeout: itemTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type placeResponse struct {
	Found           bool    `json:"found"`
	Rating          float64 `json:"rating"`
	ReviewCount     int     `json:"review_count"`
	BlogReviewCount int     `json:"blog_review_count"`
	OperatingHours  string  `json:"operating_hours"`
	Description     string  `json:"description"`
}

// Crawl fetches facts for one place. A sidecar miss ("found": false)
// returns nil facts and nil error.
func (c *Client) Crawl(ctx context.Context, query domain.PlaceQuery) (*domain.PlaceFacts, error) {
	ctx, cancel := context.WithTimeout(ctx, c.itemTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("name", query.Name)
	if query.Address != "" {
		params.Set("address", query.Address)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/place?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("scraper: build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveProvider(metrics.ProviderScraper, start, err)
		return nil, fmt.Errorf("scraper: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("scraper: status %d", resp.StatusCode)
		metrics.ObserveProvider(metrics.ProviderScraper, start, err)
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, err
	}

	var parsed placeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.ObserveProvider(metrics.ProviderScraper, start, err)
		return nil, fmt.Errorf("scraper: decode response: %w", err)
	}
	metrics.ObserveProvider(metrics.ProviderScraper, start, nil)

	if !parsed.Found {
		return nil, nil
	}
	return &domain.PlaceFacts{
		Rating:          parsed.Rating,
		ReviewCount:     parsed.ReviewCount,
		BlogReviewCount: parsed.BlogReviewCount,
		OperatingHours:  parsed.OperatingHours,
		Description:     parsed.Description,
	}, nil
}

// CrawlBatch fetches facts for all queries with a bounded worker pool.
// The result slice is index-aligned with queries; a failed item is nil.
func (c *Client) CrawlBatch(ctx context.Context, queries []domain.PlaceQuery) []*domain.PlaceFacts {
	out := make([]*domain.PlaceFacts, len(queries))
	if len(queries) == 0 {
		return out
	}

	type job struct {
		idx   int
		query domain.PlaceQuery
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	workers := c.concurrency
	if workers > len(queries) {
		workers = len(queries)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				facts, err := c.Crawl(ctx, j.query)
				if err != nil {
					slog.Debug("place crawl failed", "place", j.query.Name, "error", err)
					continue
				}
				out[j.idx] = facts
			}
		}()
	}

	for i, q := range queries {
		select {
		case jobs <- job{idx: i, query: q}:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return out
		}
	}
	close(jobs)
	wg.Wait()
	return out
}
