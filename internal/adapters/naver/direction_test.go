package naver_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/minseokang/matjip/internal/adapters/naver"
	"github.com/minseokang/matjip/internal/core/domain"
	"github.com/minseokang/matjip/internal/pkg/pacing"
)

const routeBody = `{
  "code": 0,
  "route": {
    "traoptimal": [
      {"summary": {"distance": 1850, "duration": 372000}}
    ]
  }
}`

func newDirectionClient(f *fakeHTTP) *naver.DirectionClient {
	return naver.NewDirectionClient(
		"https://maps.example/map-direction/v1/driving",
		"ncp-key-id", "ncp-key", 0, 0,
		naver.WithDirectionHTTPClient(f),
		naver.WithDirectionPacer(pacing.New(0)),
	)
}

func TestRoute(t *testing.T) {
	f := &fakeHTTP{responses: []*http.Response{jsonResponse(200, routeBody)}}
	c := newDirectionClient(f)

	got, err := c.Route(context.Background(), 37.56, 126.97, 37.58, 127.00)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.DistanceMeters != 1850 {
		t.Errorf("expected 1850m, got %d", got.DistanceMeters)
	}
	// 372000ms = 6.2min rounds to 6.
	if got.DurationMinutes != 6 {
		t.Errorf("expected 6 minutes, got %d", got.DurationMinutes)
	}

	req := f.requests[0]
	if got := req.URL.Query().Get("start"); got != "126.970000,37.560000" {
		t.Errorf("start must be lng,lat: %q", got)
	}
	if got := req.URL.Query().Get("goal"); got != "127.000000,37.580000" {
		t.Errorf("goal must be lng,lat: %q", got)
	}
	if got := req.URL.Query().Get("option"); got != "traoptimal" {
		t.Errorf("unexpected option %q", got)
	}
	if req.Header.Get("X-NCP-APIGW-API-KEY-ID") != "ncp-key-id" {
		t.Error("missing key id header")
	}
	if req.Header.Get("X-NCP-APIGW-API-KEY") != "ncp-key" {
		t.Error("missing key header")
	}
}

func TestRouteUpstreamCodeError(t *testing.T) {
	f := &fakeHTTP{responses: []*http.Response{
		jsonResponse(200, `{"code": 2, "message": "no route", "route": {"traoptimal": []}}`),
	}}
	c := newDirectionClient(f)

	got, err := c.Route(context.Background(), 37.56, 126.97, 37.58, 127.00)
	if err == nil {
		t.Fatal("expected error on non-zero code")
	}
	if got != (domain.RouteSummary{}) {
		t.Errorf("expected sentinel summary, got %+v", got)
	}
}

func TestBatchPreservesOrderAndDegradesPerPoint(t *testing.T) {
	f := &fakeHTTP{responses: []*http.Response{
		jsonResponse(200, routeBody),
		jsonResponse(500, `oops`),
		jsonResponse(200, `{"code":0,"route":{"traoptimal":[{"summary":{"distance":400,"duration":120000}}]}}`),
	}}
	c := newDirectionClient(f)

	points := []domain.Place{
		{Name: "가", Lat: 37.58, Lng: 127.00},
		{Name: "나", Lat: 37.59, Lng: 127.01},
		{Name: "다", Lat: 0, Lng: 0}, // no coordinates: skipped, keeps sentinel
		{Name: "라", Lat: 37.60, Lng: 127.02},
	}
	got, err := c.Batch(context.Background(), 37.56, 126.97, points)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 summaries, got %d", len(got))
	}
	if got[0].DistanceMeters != 1850 {
		t.Errorf("slot 0: expected 1850, got %d", got[0].DistanceMeters)
	}
	if got[1] != (domain.RouteSummary{}) {
		t.Errorf("slot 1: expected sentinel after upstream failure, got %+v", got[1])
	}
	if got[2] != (domain.RouteSummary{}) {
		t.Errorf("slot 2: expected sentinel for missing coordinates, got %+v", got[2])
	}
	if got[3].DistanceMeters != 400 || got[3].DurationMinutes != 2 {
		t.Errorf("slot 3: got %+v", got[3])
	}
	// The coordinate-less point must not consume an HTTP request.
	if len(f.requests) != 3 {
		t.Errorf("expected 3 requests, got %d", len(f.requests))
	}
}
