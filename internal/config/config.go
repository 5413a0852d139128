package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/Quotes/internal/scoring"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Database  DatabaseConfig  `yaml:"database"`
	Hermes    HermesConfig    `yaml:"hermes"`
	LLM       LLMConfig       `yaml:"llm"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	Port        int `yaml:"port"`
	MetricsPort int `yaml:"metrics_port"`
	// AccessToken gates the API when set. Empty leaves it open.
	AccessToken string `yaml:"access_token"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

// DatabaseConfig selects Postgres persistence. An empty URL keeps sessions
// in memory.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// HermesConfig points at NATS. An empty URL disables events.
type HermesConfig struct {
	URL string `yaml:"url"`
}

type LLMConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	TimeoutMs int    `yaml:"timeout_ms"`

	MaxAttempts   int `yaml:"max_attempts"`
	BackoffBaseMs int `yaml:"backoff_base_ms"`

	// APIKey is only read from ANTHROPIC_API_KEY.
	APIKey string `yaml:"-"`
}

type ScoringConfig struct {
	// Weights overrides the default weight vector, keyed by criterion code.
	Weights map[string]int `yaml:"weights"`
	// Facility is woven into recommendation prompts.
	Facility string `yaml:"facility"`
}

type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutMs) * time.Millisecond
}

func (c *Config) BackoffBase() time.Duration {
	return time.Duration(c.LLM.BackoffBaseMs) * time.Millisecond
}

// DefaultWeights returns the configured weight vector when it validates and
// the built-in defaults otherwise. The error reports why an override was
// rejected.
func (c *Config) DefaultWeights() (scoring.WeightVector, error) {
	if len(c.Scoring.Weights) == 0 {
		return scoring.DefaultWeights(), nil
	}
	v, err := scoring.WeightsFromMap(c.Scoring.Weights)
	if err != nil {
		return scoring.DefaultWeights(), err
	}
	if _, err := v.Validate(); err != nil {
		return scoring.DefaultWeights(), err
	}
	return v, nil
}

func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        8700,
			MetricsPort: 8701,
		},
		Catalog: CatalogConfig{
			Path: "data/catalog.json",
		},
		LLM: LLMConfig{
			MaxTokens:     1024,
			TimeoutMs:     60000,
			MaxAttempts:   3,
			BackoffBaseMs: 2000,
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: 120,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("QUOTES_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("QUOTES_METRICS_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = n
		}
	}
	if v := os.Getenv("QUOTES_ACCESS_TOKEN"); v != "" {
		cfg.Server.AccessToken = v
	}
	if v := os.Getenv("QUOTES_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("QUOTES_DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("QUOTES_HERMES_URL"); v != "" {
		cfg.Hermes.URL = v
	}
	if v := os.Getenv("QUOTES_LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("QUOTES_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("QUOTES_RATE_LIMIT_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimit.RequestsPerMinute = n
		}
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("QUOTES_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
