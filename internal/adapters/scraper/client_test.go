package scraper_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/minseokang/matjip/internal/adapters/scraper"
	"github.com/minseokang/matjip/internal/core/domain"
)

type fakeHTTP struct {
	mu      sync.Mutex
	handler func(req *http.Request) (*http.Response, error)
	calls   int
}

func (f *fakeHTTP) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.handler(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestCrawlFound(t *testing.T) {
	f := &fakeHTTP{handler: func(req *http.Request) (*http.Response, error) {
		if got := req.URL.Query().Get("name"); got != "국밥집" {
			t.Errorf("unexpected name param %q", got)
		}
		return jsonResponse(200, `{"found":true,"rating":4.4,"review_count":210,"blog_review_count":35,"operating_hours":"10:00-21:00"}`), nil
	}}
	c := scraper.New("http://sidecar", 2, 0, scraper.WithHTTPClient(f))

	facts, err := c.Crawl(context.Background(), domain.PlaceQuery{Name: "국밥집"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if facts == nil || facts.Rating != 4.4 || facts.ReviewCount != 210 {
		t.Errorf("unexpected facts %+v", facts)
	}
}

func TestCrawlNotFoundIsNilNil(t *testing.T) {
	f := &fakeHTTP{handler: func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"found":false}`), nil
	}}
	c := scraper.New("http://sidecar", 2, 0, scraper.WithHTTPClient(f))

	facts, err := c.Crawl(context.Background(), domain.PlaceQuery{Name: "없는집"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if facts != nil {
		t.Errorf("expected nil facts for a miss, got %+v", facts)
	}
}

func TestCrawlBatchAlignsResults(t *testing.T) {
	f := &fakeHTTP{handler: func(req *http.Request) (*http.Response, error) {
		switch req.URL.Query().Get("name") {
		case "가":
			return jsonResponse(200, `{"found":true,"rating":4.1}`), nil
		case "나":
			return nil, errors.New("sidecar crashed")
		default:
			return jsonResponse(200, `{"found":true,"rating":4.9}`), nil
		}
	}}
	c := scraper.New("http://sidecar", 2, 0, scraper.WithHTTPClient(f))

	got := c.CrawlBatch(context.Background(), []domain.PlaceQuery{
		{Name: "가"}, {Name: "나"}, {Name: "다"},
	})
	if len(got) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(got))
	}
	if got[0] == nil || got[0].Rating != 4.1 {
		t.Errorf("slot 0: %+v", got[0])
	}
	if got[1] != nil {
		t.Errorf("slot 1: expected nil after failure, got %+v", got[1])
	}
	if got[2] == nil || got[2].Rating != 4.9 {
		t.Errorf("slot 2: %+v", got[2])
	}
}

func TestCrawlBatchEmpty(t *testing.T) {
	f := &fakeHTTP{handler: func(req *http.Request) (*http.Response, error) {
		t.Error("no requests expected for an empty batch")
		return jsonResponse(200, `{}`), nil
	}}
	c := scraper.New("http://sidecar", 2, 0, scraper.WithHTTPClient(f))

	if got := c.CrawlBatch(context.Background(), nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}
