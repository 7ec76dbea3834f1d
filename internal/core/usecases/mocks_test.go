package usecases_test

import (
	"context"
	"errors"

	"github.com/minseokang/matjip/internal/core/domain"
)

var errCacheMiss = errors.New("cache miss")

// --- Mock SearchProvider ---

type mockSearch struct {
	byKeywordFn func(ctx context.Context, address, keyword string) ([]domain.Place, error)
	searchFn    func(ctx context.Context, query string) ([]domain.Place, error)
	calls       int
}

func (m *mockSearch) SearchByAddressAndKeyword(ctx context.Context, address, keyword string) ([]domain.Place, error) {
	m.calls++
	if m.byKeywordFn != nil {
		return m.byKeywordFn(ctx, address, keyword)
	}
	return nil, nil
}

func (m *mockSearch) SearchPlaces(ctx context.Context, query string) ([]domain.Place, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return nil, nil
}

// --- Mock DirectionProvider ---

type mockRoutes struct {
	routeFn func(ctx context.Context, startLat, startLng, endLat, endLng float64) (domain.RouteSummary, error)
	batchFn func(ctx context.Context, originLat, originLng float64, points []domain.Place) ([]domain.RouteSummary, error)
}

func (m *mockRoutes) Route(ctx context.Context, startLat, startLng, endLat, endLng float64) (domain.RouteSummary, error) {
	if m.routeFn != nil {
		return m.routeFn(ctx, startLat, startLng, endLat, endLng)
	}
	return domain.RouteSummary{}, nil
}

func (m *mockRoutes) Batch(ctx context.Context, originLat, originLng float64, points []domain.Place) ([]domain.RouteSummary, error) {
	if m.batchFn != nil {
		return m.batchFn(ctx, originLat, originLng, points)
	}
	return make([]domain.RouteSummary, len(points)), nil
}

// --- Mock TextGenerator ---

type mockGen struct {
	generateFn func(ctx context.Context, prompt string) (string, error)
	calls      int
	lastPrompt string
}

func (m *mockGen) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}
	return "", nil
}

// --- Mock PlaceFactScraper ---

type mockScraper struct {
	crawlFn func(ctx context.Context, q domain.PlaceQuery) (*domain.PlaceFacts, error)
	calls   int
}

func (m *mockScraper) Crawl(ctx context.Context, q domain.PlaceQuery) (*domain.PlaceFacts, error) {
	m.calls++
	if m.crawlFn != nil {
		return m.crawlFn(ctx, q)
	}
	return nil, nil
}

func (m *mockScraper) CrawlBatch(ctx context.Context, queries []domain.PlaceQuery) []*domain.PlaceFacts {
	out := make([]*domain.PlaceFacts, len(queries))
	for i, q := range queries {
		f, err := m.Crawl(ctx, q)
		if err != nil {
			continue
		}
		out[i] = f
	}
	return out
}

// --- Mock CacheService ---

type mockCache struct {
	store map[string][]byte
	sets  int
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, ok := m.store[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.sets++
	m.store[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.store, key)
	return nil
}

// --- Mock EventPublisher ---

type mockEvents struct {
	published []*domain.RecommendationEvent
}

func (m *mockEvents) PublishRecommendation(ctx context.Context, ev *domain.RecommendationEvent) error {
	m.published = append(m.published, ev)
	return nil
}

func (m *mockEvents) PublishBroadcast(ctx context.Context, data []byte) error { return nil }
