package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/minseokang/matjip/internal/core/domain"
	"github.com/minseokang/matjip/internal/pkg/metrics"
	"github.com/minseokang/matjip/internal/pkg/pacing"
)

// DirectionClient queries the NCP driving-directions API.
type DirectionClient struct {
	httpClient HTTPClient
	baseURL    string
	keyID      string
	key        string
	timeout    time.Duration
	pacer      *pacing.Pacer
}

// DirectionOption applies DirectionClient options.
type DirectionOption func(*DirectionClient)

// WithDirectionHTTPClient replaces the default HTTP client.
func WithDirectionHTTPClient(c HTTPClient) DirectionOption {
	return func(d *DirectionClient) { d.httpClient = c }
}

// WithDirectionPacer replaces the request pacer, for tests.
func WithDirectionPacer(p *pacing.Pacer) DirectionOption {
	return func(d *DirectionClient) { d.pacer = p }
}

// NewDirectionClient creates a directions client. gap spaces the calls
// inside a Batch; timeout bounds each single route lookup.
func NewDirectionClient(baseURL, keyID, key string, gap, timeout time.Duration, opts ...DirectionOption) *DirectionClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	d := &DirectionClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		keyID:      keyID,
		key:        key,
		timeout:    timeout,
		pacer:      pacing.New(gap),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type directionResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Route   struct {
		Traoptimal []struct {
			Summary struct {
				Distance int `json:"distance"` // meters
				Duration int `json:"duration"` // milliseconds
			} `json:"summary"`
		} `json:"traoptimal"`
	} `json:"route"`
}

// Route looks up one driving route. Any failure returns the zero
// RouteSummary sentinel with the error.
func (d *DirectionClient) Route(ctx context.Context, startLat, startLng, endLat, endLng float64) (domain.RouteSummary, error) {
	if err := d.pacer.Wait(ctx); err != nil {
		return domain.RouteSummary{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	summary, err := d.route(ctx, startLat, startLng, endLat, endLng)
	metrics.ObserveProvider(metrics.ProviderNaverDirections, start, err)
	return summary, err
}

// Batch resolves routes for every point sequentially, preserving input
// order. A failed lookup leaves the sentinel in its slot; the batch itself
// never fails unless the context dies.
func (d *DirectionClient) Batch(ctx context.Context, originLat, originLng float64, points []domain.Place) ([]domain.RouteSummary, error) {
	summaries := make([]domain.RouteSummary, len(points))
	for i, p := range points {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}
		if p.Lat == 0 || p.Lng == 0 {
			continue
		}
		summary, err := d.Route(ctx, originLat, originLng, p.Lat, p.Lng)
		if err != nil {
			slog.Debug("direction lookup failed", "place", p.Name, "error", err)
			continue
		}
		summaries[i] = summary
	}
	return summaries, nil
}

func (d *DirectionClient) route(ctx context.Context, startLat, startLng, endLat, endLng float64) (domain.RouteSummary, error) {
	params := url.Values{}
	params.Set("start", fmt.Sprintf("%f,%f", startLng, startLat))
	params.Set("goal", fmt.Sprintf("%f,%f", endLng, endLat))
	params.Set("option", "traoptimal")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.RouteSummary{}, fmt.Errorf("naver directions: build request: %w", err)
	}
	req.Header.Set("X-NCP-APIGW-API-KEY-ID", d.keyID)
	req.Header.Set("X-NCP-APIGW-API-KEY", d.key)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return domain.RouteSummary{}, fmt.Errorf("naver directions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.RouteSummary{}, fmt.Errorf("naver directions: status %d: %s", resp.StatusCode, string(body))
	}

	var parsed directionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.RouteSummary{}, fmt.Errorf("naver directions: decode response: %w", err)
	}
	if parsed.Code != 0 {
		return domain.RouteSummary{}, fmt.Errorf("naver directions: code %d: %s", parsed.Code, parsed.Message)
	}
	if len(parsed.Route.Traoptimal) == 0 {
		return domain.RouteSummary{}, fmt.Errorf("naver directions: no route found")
	}

	s := parsed.Route.Traoptimal[0].Summary
	return domain.RouteSummary{
		DistanceMeters:  s.Distance,
		DurationMinutes: minutesFromMillis(s.Duration),
	}, nil
}

// minutesFromMillis rounds the millisecond trip duration to whole minutes,
// never below 1 for a real route.
func minutesFromMillis(ms int) int {
	if ms <= 0 {
		return 0
	}
	minutes := (ms + 30000) / 60000
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
