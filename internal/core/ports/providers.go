package ports

import (
	"context"

	"github.com/minseokang/matjip/internal/core/domain"
)

// SearchProvider queries the local-search API.
type SearchProvider interface {
	// SearchByAddressAndKeyword issues one search for "<address> <keyword>"
	// and returns cleaned place records. The provider paces its own calls.
	SearchByAddressAndKeyword(ctx context.Context, address, keyword string) ([]domain.Place, error)

	// SearchPlaces is a raw single-query lookup without the food-category
	// filter applied.
	SearchPlaces(ctx context.Context, query string) ([]domain.Place, error)
}

// DirectionProvider queries the driving-directions API.
//
// Route returns the zero-value RouteSummary on any upstream failure rather
// than an error; an error is only returned for context cancellation.
type DirectionProvider interface {
	Route(ctx context.Context, startLat, startLng, endLat, endLng float64) (domain.RouteSummary, error)

	// Batch performs sequential paced lookups from one origin to each point,
	// preserving input order. Failed items carry the zero sentinel.
	Batch(ctx context.Context, originLat, originLng float64, points []domain.Place) ([]domain.RouteSummary, error)
}

// TextGenerator produces free text from a prompt. All structure in the
// response (bullet lists, JSON blobs) is a convention the model may break;
// consumers parse defensively with a fallback path.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// PlaceFactScraper is the best-effort place-facts crawler. Crawl returns
// (nil, nil) when no facts could be extracted; callers treat that as "no
// enrichment available", never as a hard error.
type PlaceFactScraper interface {
	Crawl(ctx context.Context, query domain.PlaceQuery) (*domain.PlaceFacts, error)

	// CrawlBatch fetches facts for several places with a small concurrency
	// bound. The result slice matches the input order; failed items are nil.
	CrawlBatch(ctx context.Context, queries []domain.PlaceQuery) []*domain.PlaceFacts
}

// CacheService provides read-through caching of pipeline output.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventPublisher publishes pipeline events to a message broker.
type EventPublisher interface {
	PublishRecommendation(ctx context.Context, ev *domain.RecommendationEvent) error
	PublishBroadcast(ctx context.Context, data []byte) error
}
