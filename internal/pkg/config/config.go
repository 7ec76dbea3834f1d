package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Naver     NaverConfig     `mapstructure:"naver"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// NaverConfig covers both the open local-search API and the cloud-platform
// directions API, which authenticate with different header pairs.
type NaverConfig struct {
	SearchURL        string `mapstructure:"search_url"`
	DirectionsURL    string `mapstructure:"directions_url"`
	ClientID         string `mapstructure:"client_id"`
	ClientSecret     string `mapstructure:"client_secret"`
	NCPKeyID         string `mapstructure:"ncp_key_id"`
	NCPKey           string `mapstructure:"ncp_key"`
	SearchDisplay    int    `mapstructure:"search_display"`
	SearchGapMS      int    `mapstructure:"search_gap_ms"`
	SearchBackoffMS  int    `mapstructure:"search_backoff_ms"`
	DirectionGapMS   int    `mapstructure:"direction_gap_ms"`
	DirectionTimeout int    `mapstructure:"direction_timeout"` // seconds
}

type GeminiConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	CallGapMS int    `mapstructure:"call_gap_ms"`
}

type ScraperConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	BaseURL     string `mapstructure:"base_url"`
	Concurrency int    `mapstructure:"concurrency"`
	ItemTimeout int    `mapstructure:"item_timeout"` // seconds
}

// PipelineConfig bounds the latency/cost of the enrichment fan-outs.
type PipelineConfig struct {
	MaxResults   int `mapstructure:"max_results"`
	InsightLimit int `mapstructure:"insight_limit"`
	KeywordLimit int `mapstructure:"keyword_limit"`
	CacheTTL     int `mapstructure:"cache_ttl"` // seconds
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 120)
	v.SetDefault("naver.search_url", "https://openapi.naver.com/v1/search/local.json")
	v.SetDefault("naver.directions_url", "https://maps.apigw.ntruss.com/map-direction/v1/driving")
	v.SetDefault("naver.search_display", 10)
	v.SetDefault("naver.search_gap_ms", 800)
	v.SetDefault("naver.search_backoff_ms", 2000)
	v.SetDefault("naver.direction_gap_ms", 100)
	v.SetDefault("naver.direction_timeout", 5)
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.call_gap_ms", 300)
	v.SetDefault("scraper.enabled", false)
	v.SetDefault("scraper.base_url", "http://localhost:8090")
	v.SetDefault("scraper.concurrency", 2)
	v.SetDefault("scraper.item_timeout", 20)
	v.SetDefault("pipeline.max_results", 10)
	v.SetDefault("pipeline.insight_limit", 3)
	v.SetDefault("pipeline.keyword_limit", 50)
	v.SetDefault("pipeline.cache_ttl", 600)
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: MATJIP_NAVER_CLIENT_ID → naver.client_id
	v.SetEnvPrefix("MATJIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.Naver.SearchURL == "" {
		errs = append(errs, "naver.search_url is required")
	}
	if c.Naver.DirectionsURL == "" {
		errs = append(errs, "naver.directions_url is required")
	}
	if c.Naver.SearchDisplay <= 0 || c.Naver.SearchDisplay > 100 {
		errs = append(errs, fmt.Sprintf("naver.search_display must be 1-100, got %d", c.Naver.SearchDisplay))
	}
	if c.Gemini.Model == "" {
		errs = append(errs, "gemini.model is required")
	}
	if c.Scraper.Enabled && c.Scraper.BaseURL == "" {
		errs = append(errs, "scraper.base_url is required when scraper is enabled")
	}
	if c.Scraper.Concurrency <= 0 {
		errs = append(errs, "scraper.concurrency must be positive")
	}
	if c.Pipeline.MaxResults <= 0 {
		errs = append(errs, "pipeline.max_results must be positive")
	}
	if c.Pipeline.InsightLimit < 0 {
		errs = append(errs, "pipeline.insight_limit must not be negative")
	}
	if c.Pipeline.KeywordLimit <= 0 {
		errs = append(errs, "pipeline.keyword_limit must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
