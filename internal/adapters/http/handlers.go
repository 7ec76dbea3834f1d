package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/minseokang/matjip/internal/core/domain"
)

const maxQueryLen = 200

// searchNearbyRequest is the map-click payload. Coordinates are optional;
// the address alone drives an order-preserving search without distances.
type searchNearbyRequest struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// SearchNearbyHandler runs the full recommendation pipeline.
// A pipeline failure returns an empty list, not an error: the map client
// renders whatever it gets and an empty list is a valid render.
func SearchNearbyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req searchNearbyRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if strings.TrimSpace(req.Address) == "" {
			return errBadRequest(c, "address is required")
		}

		restaurants, err := deps.Recommendations.RecommendNear(c.UserContext(), domain.Location{
			Address: req.Address,
			Lat:     req.Lat,
			Lng:     req.Lng,
		})
		if err != nil {
			LoggerFromCtx(c.UserContext()).Error("recommendation pipeline failed",
				"address", req.Address, "error", err)
			return c.JSON([]domain.Restaurant{})
		}
		return c.JSON(restaurants)
	}
}

type compareRequest struct {
	Restaurants []domain.Restaurant `json:"restaurants"`
	Preference  string              `json:"userPreference"`
}

type compareResponse struct {
	Result string `json:"result"`
}

// CompareHandler produces an AI comparison of a candidate list.
func CompareHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req compareRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}

		result := deps.Comparisons.Compare(c.UserContext(), req.Restaurants, req.Preference)
		return c.JSON(compareResponse{Result: result})
	}
}

type reviewRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

type reviewResponse struct {
	Review string `json:"review"`
}

// ReviewHandler generates a short review for a named place.
func ReviewHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req reviewRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if strings.TrimSpace(req.Name) == "" {
			return errBadRequest(c, "name is required")
		}

		review := deps.Comparisons.Review(c.UserContext(), req.Name, req.Location)
		return c.JSON(reviewResponse{Review: review})
	}
}

type suggestRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SuggestHandler is the coordinate-only flow: the model proposes nearby
// places without any provider search. Positions in the response are
// estimates and flagged as such.
func SuggestHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req suggestRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid JSON body")
		}
		if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
			return errBadRequest(c, "lat must be -90..90 and lng -180..180")
		}
		if req.Lat == 0 && req.Lng == 0 {
			return errBadRequest(c, "lat and lng are required")
		}

		restaurants := deps.Insights.Suggest(c.UserContext(), req.Lat, req.Lng)
		if restaurants == nil {
			restaurants = []domain.Restaurant{}
		}
		return c.JSON(restaurants)
	}
}

// SearchPlacesHandler is the raw place lookup without enrichment.
func SearchPlacesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return errBadRequest(c, "q query parameter is required")
		}
		if len(query) > maxQueryLen {
			return errBadRequest(c, "query too long (max 200 characters)")
		}

		places, err := deps.Recommendations.SearchPlaces(c.UserContext(), query)
		if err != nil {
			return errInternal(c, err.Error())
		}
		return c.JSON(places)
	}
}
