package usecases_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/minseokang/matjip/internal/core/domain"
	"github.com/minseokang/matjip/internal/core/usecases"
)

func TestKeywordService_ParsesBullets(t *testing.T) {
	gen := &mockGen{generateFn: func(ctx context.Context, prompt string) (string, error) {
		return "추천 키워드입니다:\n- 한식\n- 파스타\n• 돈까스\n* 국밥", nil
	}}
	svc := usecases.NewKeywordService(gen, 50)

	got := svc.ForAddress(context.Background(), "서울 강남구 역삼동", domain.SplitArea("서울 강남구 역삼동"))
	want := []string{"한식", "파스타", "돈까스", "국밥"}
	if len(got) != len(want) {
		t.Fatalf("expected %d keywords, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("keyword %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestKeywordService_FallsBackOnError(t *testing.T) {
	gen := &mockGen{generateFn: func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("model unavailable")
	}}
	svc := usecases.NewKeywordService(gen, 50)

	got := svc.ForAddress(context.Background(), "서울 강남구 역삼동", domain.SplitArea("서울 강남구 역삼동"))
	if len(got) == 0 {
		t.Fatal("fallback must never be empty")
	}
	if got[0] != "한식" || got[len(got)-1] != "와인바" {
		t.Errorf("expected static default list, got %v", got)
	}
}

func TestKeywordService_FallsBackOnUnparsableOutput(t *testing.T) {
	gen := &mockGen{generateFn: func(ctx context.Context, prompt string) (string, error) {
		return "키워드를 생성할 수 없습니다.", nil // no bullet lines
	}}
	svc := usecases.NewKeywordService(gen, 50)

	got := svc.ForAddress(context.Background(), "제주시 연동", domain.SplitArea("제주시 연동"))
	if len(got) == 0 {
		t.Fatal("fallback must never be empty")
	}
}

func TestKeywordService_MemoizesPerArea(t *testing.T) {
	gen := &mockGen{generateFn: func(ctx context.Context, prompt string) (string, error) {
		return "- 한식", nil
	}}
	svc := usecases.NewKeywordService(gen, 50)

	parts := domain.SplitArea("서울 강남구 역삼동 123-4")
	svc.ForAddress(context.Background(), "서울 강남구 역삼동 123-4", parts)
	svc.ForAddress(context.Background(), "서울 강남구 역삼동 678-9", domain.SplitArea("서울 강남구 역삼동 678-9"))
	if gen.calls != 1 {
		t.Errorf("expected 1 model call for the same area, got %d", gen.calls)
	}
}

func TestKeywordService_LimitCapsOutput(t *testing.T) {
	gen := &mockGen{generateFn: func(ctx context.Context, prompt string) (string, error) {
		var b strings.Builder
		for i := 0; i < 80; i++ {
			b.WriteString("- 키워드\n")
		}
		return b.String(), nil
	}}
	svc := usecases.NewKeywordService(gen, 5)

	got := svc.ForAddress(context.Background(), "서울 송파구 잠실동", domain.SplitArea("서울 송파구 잠실동"))
	if len(got) != 5 {
		t.Errorf("expected limit of 5, got %d", len(got))
	}
}
