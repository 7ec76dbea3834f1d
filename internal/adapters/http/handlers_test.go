package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/minseokang/matjip/internal/adapters/http"
	"github.com/minseokang/matjip/internal/core/domain"
	"github.com/minseokang/matjip/internal/core/usecases"
)

// ---- Mock providers ----

type mockSearch struct {
	byKeywordFn func(ctx context.Context, address, keyword string) ([]domain.Place, error)
	searchFn    func(ctx context.Context, query string) ([]domain.Place, error)
}

func (m *mockSearch) SearchByAddressAndKeyword(ctx context.Context, address, keyword string) ([]domain.Place, error) {
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

type mockRoutes struct{}

func (m *mockRoutes) Route(ctx context.Context, startLat, startLng, endLat, endLng float64) (domain.RouteSummary, error) {
	return domain.RouteSummary{}, nil
}

func (m *mockRoutes) Batch(ctx context.Context, originLat, originLng float64, points []domain.Place) ([]domain.RouteSummary, error) {
	return make([]domain.RouteSummary, len(points)), nil
}

type mockGen struct {
	generateFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockGen) Generate(ctx context.Context, prompt string) (string, error) {
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}
	return "", errors.New("not configured")
}

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(opts ...func(*handler.Dependencies)) *handler.Dependencies {
	gen := &mockGen{}
	insights := usecases.NewInsightService(gen)
	d := &handler.Dependencies{
		Recommendations: usecases.NewRecommendService(
			&mockSearch{}, &mockRoutes{},
			usecases.NewKeywordService(gen, 50),
			insights,
			nil, nil, nil,
			usecases.RecommendOptions{MaxResults: 10, InsightLimit: 0},
		),
		Comparisons: usecases.NewCompareService(insights, nil),
		Insights:    insights,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// ---- Handler tests ----

func TestSearchNearby_Success(t *testing.T) {
	gen := &mockGen{generateFn: func(ctx context.Context, prompt string) (string, error) {
		return "- 한식", nil
	}}
	search := &mockSearch{byKeywordFn: func(ctx context.Context, address, keyword string) ([]domain.Place, error) {
		return []domain.Place{
			{Name: "국밥집", Address: "서울 종로구 관철동 1", Category: "음식점>한식"},
		}, nil
	}}
	deps := makeDeps(func(d *handler.Dependencies) {
		insights := usecases.NewInsightService(gen)
		d.Recommendations = usecases.NewRecommendService(
			search, &mockRoutes{},
			usecases.NewKeywordService(gen, 50),
			insights,
			nil, nil, nil,
			usecases.RecommendOptions{MaxResults: 10, InsightLimit: 0},
		)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/restaurants/search-nearby",
		strings.NewReader(`{"address":"서울 종로구"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result []domain.Restaurant
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result) != 1 || result[0].Name != "국밥집" {
		t.Errorf("unexpected result %+v", result)
	}
	if result[0].DisplayDistance != domain.AddressOnlyDisplay {
		t.Errorf("expected address-only marker, got %q", result[0].DisplayDistance)
	}
}

func TestSearchNearby_MissingAddress(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/v1/restaurants/search-nearby",
		strings.NewReader(`{"lat":37.5,"lng":127.0}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCompare_TooFewCandidates(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/v1/restaurants/compare",
		strings.NewReader(`{"restaurants":[{"name":"혼자"}]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Result != usecases.CompareMinMessage {
		t.Errorf("expected min-count message, got %q", result.Result)
	}
}

func TestCompare_Success(t *testing.T) {
	gen := &mockGen{generateFn: func(ctx context.Context, prompt string) (string, error) {
		return "| 음식점 | 비교 |", nil
	}}
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Comparisons = usecases.NewCompareService(usecases.NewInsightService(gen), nil)
	})
	app := setupApp(deps)

	body, _ := json.Marshal(map[string]interface{}{
		"restaurants":    []domain.Restaurant{{Name: "가"}, {Name: "나"}},
		"userPreference": "조용한 곳",
	})
	req := httptest.NewRequest("POST", "/v1/restaurants/compare", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result.Result != "| 음식점 | 비교 |" {
		t.Errorf("unexpected comparison %q", result.Result)
	}
}

func TestReview_MissingName(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/v1/restaurants/get-review",
		strings.NewReader(`{"location":"서울"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSuggest_InvalidCoordinates(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/v1/restaurants/suggest",
		strings.NewReader(`{"lat":95,"lng":0}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestSuggest_Success(t *testing.T) {
	gen := &mockGen{generateFn: func(ctx context.Context, prompt string) (string, error) {
		return `{"restaurants":[{"name":"해변식당","cuisine":"한식","estimatedDistance":500,"distanceUnit":"m","rating":4.0,"area":"해운대구"}]}`, nil
	}}
	deps := makeDeps(func(d *handler.Dependencies) {
		d.Insights = usecases.NewInsightService(gen)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/v1/restaurants/suggest",
		strings.NewReader(`{"lat":35.16,"lng":129.16}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result []domain.Restaurant
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result) != 1 || !result[0].PositionEstimated {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestSearchPlaces_Success(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		gen := &mockGen{}
		d.Recommendations = usecases.NewRecommendService(
			&mockSearch{searchFn: func(ctx context.Context, query string) ([]domain.Place, error) {
				return []domain.Place{{Name: "분식집", Address: "서울 중구 1"}}, nil
			}},
			&mockRoutes{},
			usecases.NewKeywordService(gen, 50),
			usecases.NewInsightService(gen),
			nil, nil, nil,
			usecases.RecommendOptions{},
		)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("GET", "/v1/places/search?q=분식", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result []domain.Place
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result) != 1 || result[0].Name != "분식집" {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestSearchPlaces_MissingQuery(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/places/search", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("GET", "/v1/health", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if result["status"] != "healthy" {
		t.Errorf("unexpected health payload %v", result)
	}
}

func TestReady_NothingConfigured(t *testing.T) {
	app := setupApp(makeDeps())

	// No NATS, no cache: nothing configured means nothing broken.
	req := httptest.NewRequest("GET", "/v1/ready", nil)
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestGraphQL_Places(t *testing.T) {
	deps := makeDeps(func(d *handler.Dependencies) {
		gen := &mockGen{}
		d.Recommendations = usecases.NewRecommendService(
			&mockSearch{searchFn: func(ctx context.Context, query string) ([]domain.Place, error) {
				return []domain.Place{{Name: "초밥집", Address: "서울 서초구 1"}}, nil
			}},
			&mockRoutes{},
			usecases.NewKeywordService(gen, 50),
			usecases.NewInsightService(gen),
			nil, nil, nil,
			usecases.RecommendOptions{},
		)
	})
	app := setupApp(deps)

	req := httptest.NewRequest("POST", "/graphql",
		strings.NewReader(`{"query":"{ places(query: \"초밥\") { name address } }"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req, -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Data struct {
			Places []struct {
				Name string `json:"name"`
			} `json:"places"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatal(err)
	}
	if len(result.Data.Places) != 1 || result.Data.Places[0].Name != "초밥집" {
		t.Errorf("unexpected graphql result %+v", result)
	}
}
