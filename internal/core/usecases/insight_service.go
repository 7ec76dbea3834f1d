package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/minseokang/matjip/internal/core/domain"
	"github.com/minseokang/matjip/internal/core/ports"
	"github.com/minseokang/matjip/internal/pkg/aitext"
	"github.com/minseokang/matjip/internal/pkg/geospatial"
)

// Canned degraded responses. AI outages never surface as errors to the
// caller; the worst case is one of these strings.
const (
	CompareMinMessage  = "비교하려면 최소 2개 이상의 음식점이 필요합니다."
	CompareFailMessage = "AI 비교 결과를 생성하지 못했습니다."
	ReviewFailMessage  = "리뷰 생성에 실패했습니다."
)

const (
	maxMenuLen   = 20
	maxMenus     = 3
	maxBlurbLen  = 50
	infoMissing  = "정보 없음"
	menusPending = "메뉴 정보 수집 중"
)

// InsightService asks the text model for per-restaurant content: blurbs,
// representative menus, comparison narratives, reviews, and (legacy flow)
// whole suggested restaurants from bare coordinates.
type InsightService struct {
	gen ports.TextGenerator
}

// NewInsightService creates an InsightService.
func NewInsightService(gen ports.TextGenerator) *InsightService {
	return &InsightService{gen: gen}
}

// TemplateDescription is the non-AI description fallback.
func TemplateDescription(cuisine string) string {
	return fmt.Sprintf("%s 카테고리의 추천 맛집", cuisine)
}

// Menus asks for 2-3 concrete menu item names. Only bullet lines survive
// parsing, so a model that explains it doesn't know the place yields an
// empty list rather than invented menus.
func (s *InsightService) Menus(ctx context.Context, r domain.Restaurant) []string {
	if s.gen == nil {
		return nil
	}

	prompt := fmt.Sprintf(`음식점 정보:
- 상호명: %s
- 카테고리: %s
- 주소: %s

"%s"라는 음식점의 실제 대표메뉴 2-3개를 정확히 알려주세요.

다음 형식으로만 답변해주세요:
- 구체적인메뉴명1
- 구체적인메뉴명2
- 구체적인메뉴명3

일반적인 카테고리명(한식, 양식 등)이 아닌 구체적인 메뉴명으로만 답변해주세요.
모르는 음식점이면 메뉴를 지어내지 말고 "모름"이라고만 답변해주세요.`,
		r.Name, r.Category, r.Address, r.Name)

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("menu generation failed", "restaurant", r.Name, "error", err)
		return nil
	}

	return aitext.Cap(aitext.Bullets(text, maxMenuLen), maxMenus)
}

// Blurb asks for a short promotional sentence. Falls back to the templated
// description on any failure.
func (s *InsightService) Blurb(ctx context.Context, r domain.Restaurant, locationContext string) string {
	fallback := TemplateDescription(r.Cuisine)
	if s.gen == nil {
		return fallback
	}

	prompt := fmt.Sprintf(`%s 근처의 음식점 "%s"(카테고리: %s)을 소개하는 홍보 문구를 50자 이내로 한 문장만 작성해주세요. 따옴표나 부가 설명 없이 문장만 답변해주세요.`,
		locationContext, r.Name, r.Category)

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("blurb generation failed", "restaurant", r.Name, "error", err)
		return fallback
	}

	blurb := aitext.Sentence(text, maxBlurbLen)
	if blurb == "" {
		return fallback
	}
	return blurb
}

// Compare builds one prompt over all restaurants and asks for a Markdown
// comparison. Requires at least 2 restaurants; degrades to a canned string
// on model failure. The tier instructions are a policy decision: the model
// must populate every tier even on imperfect matches, so the output
// structure is guaranteed even though its facts are not.
func (s *InsightService) Compare(ctx context.Context, restaurants []domain.Restaurant, preference string) string {
	if len(restaurants) < 2 {
		return CompareMinMessage
	}
	if s.gen == nil {
		return CompareFailMessage
	}

	sorted := make([]domain.Restaurant, len(restaurants))
	copy(sorted, restaurants)
	// Unknown distances (sentinel) sort last.
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].HasDistance() {
			return false
		}
		if !sorted[j].HasDistance() {
			return true
		}
		return sorted[i].Distance < sorted[j].Distance
	})

	var b strings.Builder
	fmt.Fprintf(&b, "다음 %d개의 음식점을 거리순(가까운 곳부터)으로 비교 분석해주세요.\n\n음식점 정보:\n", len(sorted))
	for i, r := range sorted {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, r.Name)
		fmt.Fprintf(&b, "   - 카테고리: %s\n", orMissing(r.Category))
		fmt.Fprintf(&b, "   - 음식종류: %s\n", domain.Cuisine(r.Category))
		fmt.Fprintf(&b, "   - 주소: %s\n", r.Address)
		fmt.Fprintf(&b, "   - 대표메뉴: %s\n", menusOrPending(r.RepresentativeMenus))
		fmt.Fprintf(&b, "   - 특징: %s\n", orDefault(r.Description, "일반적인 맛집"))
		if r.Rating > 0 {
			fmt.Fprintf(&b, "   - 평점: %.1f (방문자 리뷰 %d, 블로그 리뷰 %d)\n",
				r.Rating, r.ReviewCount, r.BlogReviewCount)
		}
		if r.OperatingHours != "" {
			fmt.Fprintf(&b, "   - 영업시간: %s\n", r.OperatingHours)
		}
		if r.HasDistance() {
			fmt.Fprintf(&b, "   - 거리: %s\n", domain.FormatDistance(r.Distance))
		} else {
			fmt.Fprintf(&b, "   - 거리: %s\n", infoMissing)
		}
		if r.Duration > 0 {
			fmt.Fprintf(&b, "   - 소요시간: %d분\n", r.Duration)
		} else {
			fmt.Fprintf(&b, "   - 소요시간: %s\n", infoMissing)
		}
		b.WriteString("\n")
	}

	b.WriteString(`위 음식점들을 다음 기준으로 **실용적이고 도움이 되는** 비교표를 만들어주세요:

| 음식점 | 음식종류 | 접근성 | 예상가격대 | 추천상황 | 특징 |
|--------|----------|--------|------------|----------|------|

각 항목 설명:
- **접근성**: 거리와 소요시간 기준 (가까움/보통/멀음)
- **예상가격대**: 음식 카테고리 기준 일반적 가격대 (저렴/보통/비쌈)
- **추천상황**: 언제 방문하면 좋을지 (혼밥/데이트/회식/가족식사 등)
- **특징**: 각 음식점의 독특한 점이나 장점

**중요**: 제공된 정보가 부족하더라도 카테고리와 위치를 바탕으로 합리적인 추정을 해주세요. "정보 없음"보다는 일반적인 추정값을 제공해주세요.`)

	if preference != "" {
		fmt.Fprintf(&b, `

사용자 선호사항: %q

비교표 아래에 선호사항 기준으로 음식점들을 세 단계로 분류해주세요:
1. **최고 추천**: 선호사항에 가장 잘 맞는 곳
2. **좋은 대안**: 조건이 어느 정도 맞는 곳
3. **차선책**: 조건과는 거리가 있지만 고려할 만한 곳

각 단계에는 반드시 최소 1개 이상의 음식점을 배치해주세요. 완벽히 맞는 곳이 없어도 상대적으로 가장 가까운 곳을 배치하고, 빈 단계를 남기지 마세요.`, preference)
	}

	text, err := s.gen.Generate(ctx, b.String())
	if err != nil {
		slog.Warn("comparison generation failed", "count", len(sorted), "error", err)
		return CompareFailMessage
	}
	result := strings.TrimSpace(text)
	if result == "" {
		return CompareFailMessage
	}
	return result
}

// Review writes a short review for a named place.
func (s *InsightService) Review(ctx context.Context, name, location string) string {
	if s.gen == nil {
		return ReviewFailMessage
	}

	prompt := fmt.Sprintf(`음식점: %s
위치: %s

이 음식점에 대한 상세한 리뷰를 작성해주세요. 다음 내용을 포함해주세요:
1. 음식의 맛과 품질
2. 서비스와 직원 친절도
3. 매장 분위기와 인테리어
4. 가격 대비 만족도
5. 추천하는 이유

150자 이내로 자연스럽고 현실적인 리뷰를 작성해주세요.`, name, location)

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("review generation failed", "restaurant", name, "error", err)
		return ReviewFailMessage
	}
	review := strings.TrimSpace(text)
	if review == "" {
		return ReviewFailMessage
	}
	return review
}

// suggestedPlace is the JSON row shape requested from the model in the
// coordinate-only flow.
type suggestedPlace struct {
	Name              string   `json:"name"`
	Cuisine           string   `json:"cuisine"`
	Description       string   `json:"description"`
	EstimatedDistance float64  `json:"estimatedDistance"`
	DistanceUnit      string   `json:"distanceUnit"`
	Rating            float64  `json:"rating"`
	Specialties       []string `json:"specialties"`
	Area              string   `json:"area"`
}

type suggestedResponse struct {
	Restaurants []suggestedPlace `json:"restaurants"`
}

// Suggest is the legacy coordinate-only flow: the model proposes plausible
// nearby places with estimated distances. Positions are synthesized by
// projecting the estimated distance along a deterministic bearing and are
// flagged PositionEstimated so no consumer mistakes them for geocoded fact.
func (s *InsightService) Suggest(ctx context.Context, lat, lng float64) []domain.Restaurant {
	if s.gen == nil {
		return nil
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil
	}

	prompt := fmt.Sprintf(`정확한 위치 좌표: 위도 %f, 경도 %f

이 좌표 주변에 실제로 있을 법한 음식점을 추천해주세요. JSON 형태로만 응답:
{
  "restaurants": [
    {
      "name": "음식점 이름 (해당 지역 특성 반영)",
      "cuisine": "음식 종류",
      "description": "특징 설명 (30자 이내)",
      "estimatedDistance": 거리_숫자,
      "distanceUnit": "m|km",
      "rating": 평점_숫자 (3.0~4.8 범위),
      "specialties": ["대표메뉴1", "대표메뉴2"],
      "area": "해당 지역명"
    }
  ]
}

- 다양한 음식 종류로 구성 (한식, 중식, 일식, 양식, 치킨, 분식, 카페 등)
- 거리가 1km 이상이면 distanceUnit을 "km"로, 1km 미만이면 "m"으로 설정
- 거리순으로 정렬해서 응답
- 지역명을 area 필드에 포함 (예: "강남구", "부산 해운대구", "제주시")`, lat, lng)

	text, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("suggestion generation failed", "error", err)
		return nil
	}

	blob := aitext.FirstJSONObject(text)
	if blob == "" {
		slog.Warn("suggestion response contained no JSON object")
		return nil
	}
	var parsed suggestedResponse
	if err := json.Unmarshal([]byte(blob), &parsed); err != nil {
		slog.Warn("suggestion JSON unparsable", "error", err)
		return nil
	}

	out := make([]domain.Restaurant, 0, len(parsed.Restaurants))
	for _, p := range parsed.Restaurants {
		if p.Name == "" {
			continue
		}
		meters := int(p.EstimatedDistance)
		if strings.EqualFold(p.DistanceUnit, "km") {
			meters = int(p.EstimatedDistance * 1000)
		}
		out = append(out, domain.Restaurant{
			Name:                p.Name,
			Cuisine:             p.Cuisine,
			Category:            p.Cuisine,
			Description:         p.Description,
			Area:                p.Area,
			Distance:            meters,
			Rating:              p.Rating,
			RepresentativeMenus: aitext.Cap(p.Specialties, maxMenus),
			PositionEstimated:   true,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })

	for i := range out {
		// Spread bearings deterministically so synthesized points don't
		// stack on one ray.
		bearing := float64(i) * 137.5
		out[i].Lat, out[i].Lng = geospatial.Project(lat, lng, float64(out[i].Distance), bearing)
		out[i].ID = i + 1
		out[i].DisplayDistance = domain.FormatDistance(out[i].Distance)
		if out[i].RepresentativeMenus == nil {
			out[i].RepresentativeMenus = []string{}
		}
	}
	return out
}

func orMissing(s string) string {
	return orDefault(s, infoMissing)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func menusOrPending(menus []string) string {
	if len(menus) == 0 {
		return menusPending
	}
	return strings.Join(menus, ", ")
}
