package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/minseokang/matjip/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	placeType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Place",
		Fields: graphql.Fields{
			"name":         &graphql.Field{Type: graphql.String},
			"address":      &graphql.Field{Type: graphql.String},
			"road_address": &graphql.Field{Type: graphql.String},
			"category":     &graphql.Field{Type: graphql.String},
			"telephone":    &graphql.Field{Type: graphql.String},
			"link":         &graphql.Field{Type: graphql.String},
			"lat":          &graphql.Field{Type: graphql.Float},
			"lng":          &graphql.Field{Type: graphql.Float},
		},
	})

	restaurantType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Restaurant",
		Fields: graphql.Fields{
			"id":                  &graphql.Field{Type: graphql.Int},
			"name":                &graphql.Field{Type: graphql.String},
			"address":             &graphql.Field{Type: graphql.String},
			"category":            &graphql.Field{Type: graphql.String},
			"cuisine":             &graphql.Field{Type: graphql.String},
			"area":                &graphql.Field{Type: graphql.String},
			"description":         &graphql.Field{Type: graphql.String},
			"lat":                 &graphql.Field{Type: graphql.Float},
			"lng":                 &graphql.Field{Type: graphql.Float},
			"distance":            &graphql.Field{Type: graphql.Int},
			"duration":            &graphql.Field{Type: graphql.Int},
			"displayDistance":     &graphql.Field{Type: graphql.String},
			"representativeMenus": &graphql.Field{Type: graphql.NewList(graphql.String)},
			"rating":              &graphql.Field{Type: graphql.Float},
			"position_estimated":  &graphql.Field{Type: graphql.Boolean},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"places": &graphql.Field{
				Type:        graphql.NewList(placeType),
				Description: "Raw place search without enrichment",
				Args: graphql.FieldConfigArgument{
					"query": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					q := p.Args["query"].(string)
					return deps.Recommendations.SearchPlaces(p.Context, q)
				},
			},
			"recommendations": &graphql.Field{
				Type:        graphql.NewList(restaurantType),
				Description: "Full recommendation pipeline for a location",
				Args: graphql.FieldConfigArgument{
					"address": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lat":     &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
					"lng":     &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 0.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					loc := domain.Location{
						Address: p.Args["address"].(string),
						Lat:     p.Args["lat"].(float64),
						Lng:     p.Args["lng"].(float64),
					}
					return deps.Recommendations.RecommendNear(p.Context, loc)
				},
			},
			"suggestions": &graphql.Field{
				Type:        graphql.NewList(restaurantType),
				Description: "Model-suggested places for bare coordinates (estimated positions)",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lng": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lng := p.Args["lng"].(float64)
					return deps.Insights.Suggest(p.Context, lat, lng), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request body"})
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.Context(),
		})

		return c.JSON(result)
	}
}
