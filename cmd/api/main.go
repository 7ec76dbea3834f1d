package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/minseokang/matjip/internal/adapters/gemini"
	"github.com/minseokang/matjip/internal/adapters/http"
	natsadapter "github.com/minseokang/matjip/internal/adapters/nats"
	"github.com/minseokang/matjip/internal/adapters/naver"
	"github.com/minseokang/matjip/internal/adapters/scraper"
	"github.com/minseokang/matjip/internal/adapters/valkey"
	"github.com/minseokang/matjip/internal/core/ports"
	"github.com/minseokang/matjip/internal/core/usecases"
	"github.com/minseokang/matjip/internal/pkg/config"
	"github.com/minseokang/matjip/internal/pkg/logging"
	"github.com/minseokang/matjip/internal/pkg/telemetry"
)

func main() {
	// Local development keys live in .env; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.Load("matjip-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("matjip-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, recommendation caching disabled", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// NATS
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, events disabled", "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Providers
	searchClient := naver.NewSearchClient(
		cfg.Naver.SearchURL,
		cfg.Naver.ClientID,
		cfg.Naver.ClientSecret,
		cfg.Naver.SearchDisplay,
		time.Duration(cfg.Naver.SearchGapMS)*time.Millisecond,
		time.Duration(cfg.Naver.SearchBackoffMS)*time.Millisecond,
	)
	directionClient := naver.NewDirectionClient(
		cfg.Naver.DirectionsURL,
		cfg.Naver.NCPKeyID,
		cfg.Naver.NCPKey,
		time.Duration(cfg.Naver.DirectionGapMS)*time.Millisecond,
		time.Duration(cfg.Naver.DirectionTimeout)*time.Second,
	)

	var gen ports.TextGenerator
	geminiClient, err := gemini.New(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model,
		time.Duration(cfg.Gemini.CallGapMS)*time.Millisecond)
	if err != nil {
		slog.Warn("gemini unavailable, AI features run on fallbacks", "error", err)
	} else {
		gen = geminiClient
	}

	var factScraper ports.PlaceFactScraper
	if cfg.Scraper.Enabled {
		factScraper = scraper.New(cfg.Scraper.BaseURL, cfg.Scraper.Concurrency,
			time.Duration(cfg.Scraper.ItemTimeout)*time.Second)
	}

	// Use cases
	keywordSvc := usecases.NewKeywordService(gen, cfg.Pipeline.KeywordLimit)
	insightSvc := usecases.NewInsightService(gen)
	recommendSvc := usecases.NewRecommendService(
		searchClient, directionClient, keywordSvc, insightSvc,
		factScraper, cacheOrNil(cache), publisherOrNil(publisher),
		usecases.RecommendOptions{
			MaxResults:   cfg.Pipeline.MaxResults,
			InsightLimit: cfg.Pipeline.InsightLimit,
			CacheTTL:     cfg.Pipeline.CacheTTL,
		},
	)
	compareSvc := usecases.NewCompareService(insightSvc, factScraper)

	deps := &http.Dependencies{
		Recommendations: recommendSvc,
		Comparisons:     compareSvc,
		Insights:        insightSvc,
		NATS:            natsConn,
		Cache:           cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Matjip API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// cacheOrNil avoids handing a typed-nil *valkey.Cache to the pipeline's
// interface field.
func cacheOrNil(c *valkey.Cache) ports.CacheService {
	if c == nil {
		return nil
	}
	return c
}

func publisherOrNil(p *natsadapter.Publisher) ports.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
