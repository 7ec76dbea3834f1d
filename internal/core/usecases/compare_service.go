package usecases

import (
	"context"
	"strings"

	"github.com/minseokang/matjip/internal/core/domain"
	"github.com/minseokang/matjip/internal/core/ports"
)

// CompareService fronts the multi-restaurant comparison and single-place
// review flows. It optionally enriches the candidates with scraped facts
// before handing them to the model.
type CompareService struct {
	insights *InsightService
	scraper  ports.PlaceFactScraper // optional
}

func NewCompareService(insights *InsightService, scraper ports.PlaceFactScraper) *CompareService {
	return &CompareService{insights: insights, scraper: scraper}
}

// Compare produces a Markdown comparison of the given restaurants. Fewer
// than two candidates is answered with a canned message before any
// scraping or model work happens.
func (s *CompareService) Compare(ctx context.Context, restaurants []domain.Restaurant, preference string) string {
	if len(restaurants) < 2 {
		return CompareMinMessage
	}
	s.mergeFacts(ctx, restaurants)
	return s.insights.Compare(ctx, restaurants, preference)
}

// Review generates a short review paragraph for a named place.
func (s *CompareService) Review(ctx context.Context, name, location string) string {
	if strings.TrimSpace(name) == "" {
		return ReviewFailMessage
	}
	return s.insights.Review(ctx, name, location)
}

// mergeFacts overlays fresh scraped data onto every candidate. A missing
// result for an item leaves whatever the caller already supplied.
func (s *CompareService) mergeFacts(ctx context.Context, restaurants []domain.Restaurant) {
	if s.scraper == nil {
		return
	}
	queries := make([]domain.PlaceQuery, len(restaurants))
	for i, r := range restaurants {
		queries[i] = domain.PlaceQuery{Name: r.Name, Address: r.Address}
	}
	facts := s.scraper.CrawlBatch(ctx, queries)
	for i, f := range facts {
		if f == nil || i >= len(restaurants) {
			continue
		}
		r := &restaurants[i]
		r.Rating = f.Rating
		r.ReviewCount = f.ReviewCount
		r.BlogReviewCount = f.BlogReviewCount
		r.OperatingHours = f.OperatingHours
		r.PlaceDescription = f.Description
	}
}
