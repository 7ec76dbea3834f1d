// Package naver contains clients for the Naver local-search API and the
// NCP driving-directions API. Both upstreams rate-limit aggressively, so
// each client paces its own requests.
package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/minseokang/matjip/internal/core/domain"
	"github.com/minseokang/matjip/internal/pkg/metrics"
	"github.com/minseokang/matjip/internal/pkg/pacing"
)

// HTTPClient is implemented by http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// coordinateScale converts the KATECH-style integer coordinates the search
// API returns into WGS 84 degrees.
const coordinateScale = 1e7

// restaurantCategory filters search hits down to food businesses; the
// local-search API returns everything matching the keyword.
const restaurantCategory = "음식점"

var tagRe = regexp.MustCompile(`<[^>]*>`)

// SearchClient queries the Naver local-search API.
type SearchClient struct {
	httpClient HTTPClient
	baseURL    string
	clientID   string
	secret     string
	display    int
	backoff    time.Duration
	pacer      *pacing.Pacer
}

// SearchOption applies SearchClient options.
type SearchOption func(*SearchClient)

// WithSearchHTTPClient replaces the default HTTP client.
func WithSearchHTTPClient(c HTTPClient) SearchOption {
	return func(s *SearchClient) { s.httpClient = c }
}

// WithSearchPacer replaces the request pacer, for tests.
func WithSearchPacer(p *pacing.Pacer) SearchOption {
	return func(s *SearchClient) { s.pacer = p }
}

// NewSearchClient creates a search client. gap is the minimum spacing
// between requests; backoff is the single fixed pause after a 429.
func NewSearchClient(baseURL, clientID, secret string, display int, gap, backoff time.Duration, opts ...SearchOption) *SearchClient {
	if display <= 0 {
		display = 10
	}
	s := &SearchClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		clientID:   clientID,
		secret:     secret,
		display:    display,
		backoff:    backoff,
		pacer:      pacing.New(gap),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type searchResponse struct {
	Total int          `json:"total"`
	Items []searchItem `json:"items"`
}

type searchItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Telephone   string `json:"telephone"`
	Address     string `json:"address"`
	RoadAddress string `json:"roadAddress"`
	MapX        string `json:"mapx"`
	MapY        string `json:"mapy"`
}

// SearchByAddressAndKeyword searches for "<address> <keyword>" and keeps
// only restaurant-category hits.
func (s *SearchClient) SearchByAddressAndKeyword(ctx context.Context, address, keyword string) ([]domain.Place, error) {
	places, err := s.query(ctx, address+" "+keyword)
	if err != nil {
		return nil, err
	}
	for i := range places {
		places[i].Keyword = keyword
	}
	return places, nil
}

// SearchPlaces runs a raw query without the restaurant keyword pairing.
func (s *SearchClient) SearchPlaces(ctx context.Context, query string) ([]domain.Place, error) {
	return s.query(ctx, query)
}

func (s *SearchClient) query(ctx context.Context, query string) ([]domain.Place, error) {
	if err := s.pacer.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.doSearch(ctx, query)
	if err != nil {
		metrics.ObserveProvider(metrics.ProviderNaverSearch, start, err)
		return nil, err
	}
	metrics.ObserveProvider(metrics.ProviderNaverSearch, start, nil)

	places := make([]domain.Place, 0, len(resp.Items))
	for _, item := range resp.Items {
		if !strings.Contains(item.Category, restaurantCategory) {
			continue
		}
		lng := parseCoordinate(item.MapX)
		lat := parseCoordinate(item.MapY)
		places = append(places, domain.Place{
			Name:        cleanText(item.Title),
			Address:     cleanText(item.Address),
			RoadAddress: cleanText(item.RoadAddress),
			Category:    cleanText(item.Category),
			Telephone:   item.Telephone,
			Link:        item.Link,
			Description: cleanText(item.Description),
			Lat:         lat,
			Lng:         lng,
		})
	}
	return places, nil
}

func (s *SearchClient) doSearch(ctx context.Context, query string) (*searchResponse, error) {
	resp, err := s.request(ctx, query)
	if err != nil {
		return nil, err
	}

	// A rate-limit response triggers one fixed pause and no retry: the
	// pause protects the remaining keywords in the fan-out, and this
	// keyword's results are simply lost.
	if resp.StatusCode == http.StatusTooManyRequests {
		drain(resp)
		if err := s.pacer.Backoff(ctx, s.backoff); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("naver search: rate limited")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("naver search: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("naver search: decode response: %w", err)
	}
	return &parsed, nil
}

func (s *SearchClient) request(ctx context.Context, query string) (*http.Response, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("display", strconv.Itoa(s.display))
	params.Set("start", "1")
	params.Set("sort", "random")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("naver search: build request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", s.clientID)
	req.Header.Set("X-Naver-Client-Secret", s.secret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("naver search: %w", err)
	}
	return resp, nil
}

// cleanText strips the <b> highlight markup and HTML entities the search
// API embeds in titles and addresses.
func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(s, "")))
}

// parseCoordinate converts the scaled integer coordinate string; malformed
// input yields 0, the "no coordinates" value.
func parseCoordinate(s string) float64 {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n / coordinateScale
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
