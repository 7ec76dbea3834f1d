package usecases

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/minseokang/matjip/internal/core/domain"
	"github.com/minseokang/matjip/internal/core/ports"
	"github.com/minseokang/matjip/internal/pkg/aitext"
	"github.com/minseokang/matjip/internal/pkg/metrics"
)

// defaultKeywords is the static search-keyword list used whenever the model
// call fails or its output parses to nothing. Returning an empty keyword
// list would silently degrade the whole search to zero results, so the
// fallback is unconditional.
var defaultKeywords = []string{
	"한식", "중식", "일식", "양식", "분식",
	"치킨", "피자", "햄버거", "족발", "보쌈",
	"삼겹살", "갈비", "냉면", "국밥", "찌개",
	"회", "초밥", "라멘", "우동", "파스타",
	"스테이크", "돈까스", "덮밥", "샐러드", "쌀국수",
	"타코", "케밥", "뷔페", "수제버거", "쭈꾸미",
	"닭갈비", "맛집", "식당", "음식점", "카페",
	"브런치", "디저트", "포차", "술집", "와인바",
}

// maxKeywordLen drops "keywords" that are really explanation sentences.
const maxKeywordLen = 20

// KeywordService expands an address into search keywords via the text
// model, memoizing per administrative area.
type KeywordService struct {
	gen   ports.TextGenerator
	limit int
	memo  *lru.Cache[string, []string]
}

// NewKeywordService creates a KeywordService. limit caps the parsed keyword
// count per address.
func NewKeywordService(gen ports.TextGenerator, limit int) *KeywordService {
	if limit <= 0 {
		limit = 50
	}
	// Errors only on non-positive size.
	memo, _ := lru.New[string, []string](256)
	return &KeywordService{gen: gen, limit: limit, memo: memo}
}

// ForAddress returns search keywords for the address. Never empty: any model
// failure or unparsable output yields the static default list.
func (s *KeywordService) ForAddress(ctx context.Context, address string, parts domain.AreaParts) []string {
	key := parts.City + "|" + parts.District + "|" + parts.Dong
	if key == "||" {
		key = address
	}
	if cached, ok := s.memo.Get(key); ok {
		return cached
	}

	keywords := s.generate(ctx, address, parts)
	if len(keywords) == 0 {
		metrics.KeywordFallbacks.Inc()
		slog.Info("keyword generation fell back to static list", "address", address)
		keywords = defaultKeywords
	}

	s.memo.Add(key, keywords)
	return keywords
}

func (s *KeywordService) generate(ctx context.Context, address string, parts domain.AreaParts) []string {
	if s.gen == nil {
		return nil
	}

	prompt := fmt.Sprintf(`주소: %s
지역: %s %s %s

이 지역에서 검색할 음식점 키워드를 다음 카테고리별로 최대한 다양하게 생성해주세요:

1. 음식 종류
- 한식, 중식, 일식, 양식, 분식, 치킨, 피자, 햄버거, 족발, 보쌈, 삼겹살, 갈비, 냉면, 국밥, 찌개, 회, 초밥, 라멘, 우동, 파스타, 스테이크, 돈까스, 덮밥, 샐러드, 쌀국수, 타코, 케밥, 뷔페, 수제버거, 쭈꾸미, 닭갈비

2. 업체 유형
- 맛집, 식당, 음식점, 카페, 디저트, 베이커리, 술집, 포차, 바, 횟집, 고깃집, 분식집, 푸드코트, 브런치카페, 와인바

위 예시를 참고하여 약 30개의 다양한 키워드를 생성해주세요.
형식: - 키워드 (한 줄에 하나씩)`,
		address, parts.City, parts.District, parts.Dong)

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("keyword generation failed", "address", address, "error", err)
		return nil
	}

	return aitext.Cap(aitext.Bullets(text, maxKeywordLen), s.limit)
}
