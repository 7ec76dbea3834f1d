package domain

// Location is the user-selected point a recommendation is computed around.
// Coordinates are WGS 84 degrees and optional; the address alone is enough
// to drive a search.
type Location struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

// HasCoordinates reports whether the caller supplied a usable position.
func (l Location) HasCoordinates() bool {
	return l.Lat != 0 && l.Lng != 0
}

// Place is one raw record from the local-search provider, cleaned of markup
// and HTML entities. It is transient: created per search call and discarded
// after mapping into a Restaurant.
type Place struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	RoadAddress string  `json:"road_address,omitempty"`
	Category    string  `json:"category"`
	Telephone   string  `json:"telephone,omitempty"`
	Link        string  `json:"link,omitempty"`
	Description string  `json:"description,omitempty"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	// Keyword is the search keyword that surfaced this place.
	Keyword string `json:"keyword,omitempty"`
}

// Key identifies a place for deduplication. First occurrence wins across
// repeated keyword searches.
func (p Place) Key() string {
	return p.Name + "|" + p.Address
}

// Restaurant is the pipeline's output unit, built incrementally across
// stages and immutable once returned.
//
// Distance and Duration use 0 as the "unknown" sentinel, never as a real
// zero-valued result; callers must branch on it.
type Restaurant struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	Category    string `json:"category"`
	Telephone   string `json:"telephone"`
	Link        string `json:"link,omitempty"`
	Description string `json:"description"`

	Cuisine string  `json:"cuisine"`
	Area    string  `json:"area"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`

	Distance        int    `json:"distance"` // meters, 0 = unknown
	Duration        int    `json:"duration"` // minutes, 0 = unknown
	DisplayDistance string `json:"displayDistance"`

	RepresentativeMenus []string `json:"representativeMenus"`

	// Scraper-sourced enrichment, absent unless the place-facts crawler
	// returned data for this restaurant.
	Rating           float64 `json:"rating,omitempty"`
	ReviewCount      int     `json:"reviewCount,omitempty"`
	BlogReviewCount  int     `json:"blogReviewCount,omitempty"`
	OperatingHours   string  `json:"operatingHours,omitempty"`
	PlaceDescription string  `json:"placeDescription,omitempty"`

	// PositionEstimated marks coordinates synthesized from an estimated
	// distance rather than geocoded by a provider. Map rendering and
	// directions must not treat such positions as fact.
	PositionEstimated bool `json:"position_estimated,omitempty"`
}

// HasDistance reports whether direction data was obtained for this row.
func (r Restaurant) HasDistance() bool {
	return r.Distance > 0
}

// PlaceFacts is the best-effort output of the place-facts crawler.
type PlaceFacts struct {
	Rating          float64 `json:"rating"`
	ReviewCount     int     `json:"review_count"`
	BlogReviewCount int     `json:"blog_review_count"`
	OperatingHours  string  `json:"operating_hours,omitempty"`
	Description     string  `json:"description,omitempty"`
}

// PlaceQuery names a place for the crawler.
type PlaceQuery struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// RouteSummary is the result of one driving-directions lookup.
// The zero value is the "no route data" sentinel.
type RouteSummary struct {
	DistanceMeters  int `json:"distance_meters"`
	DurationMinutes int `json:"duration_minutes"`
}

// RecommendationEvent is published after a completed pipeline run.
type RecommendationEvent struct {
	Address     string `json:"address"`
	Area        string `json:"area,omitempty"`
	ResultCount int    `json:"result_count"`
	Keywords    int    `json:"keywords"`
	WithRouting bool   `json:"with_routing"`
	ElapsedMS   int64  `json:"elapsed_ms"`
}
