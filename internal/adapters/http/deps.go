package http

import (
	"github.com/nats-io/nats.go"

	"github.com/minseokang/matjip/internal/adapters/valkey"
	"github.com/minseokang/matjip/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Recommendations *usecases.RecommendService
	Comparisons     *usecases.CompareService
	Insights        *usecases.InsightService
	NATS            *nats.Conn
	Cache           *valkey.Cache
}
