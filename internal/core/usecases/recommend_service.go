package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/minseokang/matjip/internal/core/domain"
	"github.com/minseokang/matjip/internal/core/ports"
	"github.com/minseokang/matjip/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/minseokang/matjip/internal/core/usecases")

// RecommendOptions bounds the pipeline fan-outs.
type RecommendOptions struct {
	MaxResults   int // final list cap
	InsightLimit int // AI menu/blurb calls per run
	CacheTTL     int // seconds; 0 disables caching
}

// RecommendService is the enrichment pipeline: keyword expansion, search
// fan-out, dedup, distance annotation, fact scraping, insight backfill and
// final formatting.
//
// Partial failures inside any fan-out degrade that single keyword or row,
// never the whole request.
type RecommendService struct {
	search   ports.SearchProvider
	routes   ports.DirectionProvider
	keywords *KeywordService
	insights *InsightService
	scraper  ports.PlaceFactScraper // optional
	cache    ports.CacheService     // optional
	events   ports.EventPublisher   // optional
	opts     RecommendOptions
}

// NewRecommendService creates the pipeline. scraper, cache and events may
// be nil; those stages are skipped.
func NewRecommendService(
	search ports.SearchProvider,
	routes ports.DirectionProvider,
	keywords *KeywordService,
	insights *InsightService,
	scraper ports.PlaceFactScraper,
	cache ports.CacheService,
	events ports.EventPublisher,
	opts RecommendOptions,
) *RecommendService {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 10
	}
	return &RecommendService{
		search:   search,
		routes:   routes,
		keywords: keywords,
		insights: insights,
		scraper:  scraper,
		cache:    cache,
		events:   events,
		opts:     opts,
	}
}

// RecommendNear runs the full pipeline for a location. An empty address
// short-circuits to an empty list without touching any provider.
func (s *RecommendService) RecommendNear(ctx context.Context, loc domain.Location) ([]domain.Restaurant, error) {
	address := strings.TrimSpace(loc.Address)
	if address == "" {
		return []domain.Restaurant{}, nil
	}

	ctx, span := tracer.Start(ctx, "pipeline.RecommendNear")
	span.SetAttributes(
		attribute.String("address", address),
		attribute.Bool("with_coordinates", loc.HasCoordinates()),
	)
	defer span.End()

	start := time.Now()

	cacheKey := s.cacheKey(loc)
	if cached := s.cachedResult(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	parts := domain.SplitArea(address)
	keywords := s.keywords.ForAddress(ctx, address, parts)

	places := s.fanOutSearch(ctx, address, keywords)
	places = dedupPlaces(places)
	if len(places) == 0 {
		return []domain.Restaurant{}, nil
	}
	// Cap before distance annotation: every extra row costs a paced
	// directions call.
	if len(places) > s.opts.MaxResults {
		places = places[:s.opts.MaxResults]
	}

	restaurants := s.annotateDistances(ctx, loc, places)
	if len(restaurants) == 0 {
		return []domain.Restaurant{}, nil
	}

	s.enrichFacts(ctx, restaurants)
	s.backfillInsights(ctx, address, restaurants)
	s.format(loc, restaurants)

	elapsed := time.Since(start)
	metrics.PipelineDuration.Observe(elapsed.Seconds())
	mode := "address"
	if loc.HasCoordinates() {
		mode = "routed"
	}
	metrics.RecommendationsTotal.WithLabelValues(mode).Inc()

	s.storeResult(ctx, cacheKey, restaurants)
	s.publish(ctx, &domain.RecommendationEvent{
		Address:     address,
		Area:        domain.Area(address),
		ResultCount: len(restaurants),
		Keywords:    len(keywords),
		WithRouting: loc.HasCoordinates(),
		ElapsedMS:   elapsed.Milliseconds(),
	})

	slog.Info("recommendation completed",
		"address", address,
		"results", len(restaurants),
		"keywords", len(keywords),
		"elapsed", elapsed.String(),
	)
	return restaurants, nil
}

// SearchPlaces is the raw passthrough lookup without enrichment.
func (s *RecommendService) SearchPlaces(ctx context.Context, query string) ([]domain.Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.Place{}, nil
	}
	places, err := s.search.SearchPlaces(ctx, query)
	if err != nil {
		slog.Warn("place search failed", "query", query, "error", err)
		return []domain.Place{}, nil
	}
	return places, nil
}

// fanOutSearch issues one search per keyword. A failed keyword contributes
// zero results and the loop continues; pacing lives in the provider.
func (s *RecommendService) fanOutSearch(ctx context.Context, address string, keywords []string) []domain.Place {
	var all []domain.Place
	for _, kw := range keywords {
		if ctx.Err() != nil {
			break
		}
		found, err := s.search.SearchByAddressAndKeyword(ctx, address, kw)
		if err != nil {
			slog.Debug("keyword search failed", "keyword", kw, "error", err)
			continue
		}
		all = append(all, found...)
	}
	return all
}

// dedupPlaces keeps the first occurrence per (name, address), preserving
// discovery order.
func dedupPlaces(places []domain.Place) []domain.Place {
	seen := make(map[string]struct{}, len(places))
	out := places[:0:0]
	for _, p := range places {
		key := p.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// annotateDistances maps places into restaurants and, when the caller
// supplied coordinates, attaches direction data, drops sentinel rows, sorts
// by distance and truncates. Without coordinates the discovery order is
// kept and distances stay at the sentinel.
func (s *RecommendService) annotateDistances(ctx context.Context, loc domain.Location, places []domain.Place) []domain.Restaurant {
	restaurants := make([]domain.Restaurant, 0, len(places))
	for _, p := range places {
		restaurants = append(restaurants, domain.Restaurant{
			Name:        p.Name,
			Address:     p.Address,
			Category:    p.Category,
			Telephone:   p.Telephone,
			Link:        p.Link,
			Description: p.Description,
			Lat:         p.Lat,
			Lng:         p.Lng,
		})
	}

	if !loc.HasCoordinates() {
		return restaurants
	}

	summaries, err := s.routes.Batch(ctx, loc.Lat, loc.Lng, places)
	if err != nil {
		slog.Warn("direction batch failed", "error", err)
		return restaurants
	}

	for i := range restaurants {
		if i < len(summaries) {
			restaurants[i].Distance = summaries[i].DistanceMeters
			restaurants[i].Duration = summaries[i].DurationMinutes
		}
	}

	// distance == 0 marks a failed lookup, not a zero-length route; those
	// rows cannot be ranked and are dropped.
	ranked := restaurants[:0]
	for _, r := range restaurants {
		if r.HasDistance() {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Distance < ranked[j].Distance })
	if len(ranked) > s.opts.MaxResults {
		ranked = ranked[:s.opts.MaxResults]
	}
	return ranked
}

// enrichFacts attaches scraped place facts where available. A nil result
// for an item means "no enrichment", never an error.
func (s *RecommendService) enrichFacts(ctx context.Context, restaurants []domain.Restaurant) {
	if s.scraper == nil {
		return
	}
	queries := make([]domain.PlaceQuery, len(restaurants))
	for i, r := range restaurants {
		queries[i] = domain.PlaceQuery{Name: r.Name, Address: r.Address}
	}
	facts := s.scraper.CrawlBatch(ctx, queries)
	for i := range restaurants {
		if i >= len(facts) || facts[i] == nil {
			continue
		}
		f := facts[i]
		restaurants[i].Rating = f.Rating
		restaurants[i].ReviewCount = f.ReviewCount
		restaurants[i].BlogReviewCount = f.BlogReviewCount
		restaurants[i].OperatingHours = f.OperatingHours
		restaurants[i].PlaceDescription = f.Description
	}
}

// backfillInsights fills menus and descriptions. Only the first
// InsightLimit rows get model calls; the rest get the templated
// description. This bound caps the cost of an otherwise O(results) AI
// fan-out.
func (s *RecommendService) backfillInsights(ctx context.Context, address string, restaurants []domain.Restaurant) {
	for i := range restaurants {
		restaurants[i].Cuisine = domain.Cuisine(restaurants[i].Category)

		if i < s.opts.InsightLimit && s.insights != nil {
			restaurants[i].RepresentativeMenus = s.insights.Menus(ctx, restaurants[i])
			if restaurants[i].Description == "" {
				restaurants[i].Description = s.insights.Blurb(ctx, restaurants[i], address)
			}
		} else if restaurants[i].Description == "" {
			restaurants[i].Description = TemplateDescription(restaurants[i].Cuisine)
		}

		if restaurants[i].RepresentativeMenus == nil {
			restaurants[i].RepresentativeMenus = []string{}
		}
	}
}

// format computes display fields and assigns 1-based ids in final order.
func (s *RecommendService) format(loc domain.Location, restaurants []domain.Restaurant) {
	for i := range restaurants {
		r := &restaurants[i]
		r.ID = i + 1
		r.Area = domain.Area(r.Address)
		if loc.HasCoordinates() {
			r.DisplayDistance = domain.DisplayDistance(r.Distance, r.Duration)
		} else {
			r.DisplayDistance = domain.AddressOnlyDisplay
		}
	}
}

func (s *RecommendService) cacheKey(loc domain.Location) string {
	return fmt.Sprintf("reco:%s:%.4f:%.4f", strings.TrimSpace(loc.Address), loc.Lat, loc.Lng)
}

func (s *RecommendService) cachedResult(ctx context.Context, key string) []domain.Restaurant {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return nil
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues("recommend").Inc()
		return nil
	}
	var restaurants []domain.Restaurant
	if err := json.Unmarshal(data, &restaurants); err != nil {
		metrics.CacheMisses.WithLabelValues("recommend").Inc()
		return nil
	}
	metrics.CacheHits.WithLabelValues("recommend").Inc()
	return restaurants
}

func (s *RecommendService) storeResult(ctx context.Context, key string, restaurants []domain.Restaurant) {
	if s.cache == nil || s.opts.CacheTTL <= 0 {
		return
	}
	if data, err := json.Marshal(restaurants); err == nil {
		_ = s.cache.Set(ctx, key, data, s.opts.CacheTTL)
	}
}

func (s *RecommendService) publish(ctx context.Context, ev *domain.RecommendationEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishRecommendation(ctx, ev); err != nil {
		slog.Debug("recommendation event publish failed", "error", err)
	}
}
