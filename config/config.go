package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Assistant AssistantConfig `mapstructure:"assistant"`
	Search    SearchConfig    `mapstructure:"search"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

// CatalogConfig selects and configures the product source
type CatalogConfig struct {
	Source         string `mapstructure:"source"` // "seed", "file", "api" or "postgres"
	Path           string `mapstructure:"path"`
	APIBaseURL     string `mapstructure:"api_base_url"`
	APIPageSize    int    `mapstructure:"api_page_size"`
	DatabaseURL    string `mapstructure:"database_url"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type        string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL    string        `mapstructure:"redis_url"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
	TTL         time.Duration `mapstructure:"ttl"`
}

// AssistantConfig holds remote assistant configuration
type AssistantConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RequestsPerHour int           `mapstructure:"requests_per_hour"`
	MockLatency     time.Duration `mapstructure:"mock_latency"`
}

// SearchConfig holds pagination limits for product listings
type SearchConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP     int `mapstructure:"per_ip"`    // requests per minute per client IP
	Assistant int `mapstructure:"assistant"` // chat requests per hour per client IP
}

// Load loads configuration from defaults, an optional config file, an
// optional .env file and SHOPASSIST_* environment variables. An empty path
// searches the default locations for config.yaml.
func Load(path string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env: %w", err)
	}

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/shopassist/")
	}

	// Environment variable settings
	v.SetEnvPrefix("SHOPASSIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	normalize(&config)

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads .env from the working directory when present. Variables
// already set in the environment win.
func loadEnvFile() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.shutdown_timeout", "10s")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Catalog defaults
	v.SetDefault("catalog.source", "seed")
	v.SetDefault("catalog.path", "")
	v.SetDefault("catalog.api_base_url", "")
	v.SetDefault("catalog.api_page_size", 100)
	v.SetDefault("catalog.database_url", "")
	v.SetDefault("catalog.max_connections", 10)

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.redis_prefix", "shopassist:")
	v.SetDefault("cache.ttl", "10m")

	// Assistant defaults
	v.SetDefault("assistant.enabled", false)
	v.SetDefault("assistant.base_url", "")
	v.SetDefault("assistant.timeout", "10s")
	v.SetDefault("assistant.requests_per_hour", 0)
	v.SetDefault("assistant.mock_latency", "500ms")

	// Search defaults
	v.SetDefault("search.default_page_size", 20)
	v.SetDefault("search.max_page_size", 100)

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.assistant", 60)
}

func normalize(config *Config) {
	config.Catalog.Source = strings.ToLower(strings.TrimSpace(config.Catalog.Source))
	config.Cache.Type = strings.ToLower(strings.TrimSpace(config.Cache.Type))
	config.Log.Format = strings.ToLower(strings.TrimSpace(config.Log.Format))
}

// validate validates the configuration
func validate(config *Config) error {
	switch config.Catalog.Source {
	case "seed":
	case "file":
		if config.Catalog.Path == "" {
			return fmt.Errorf("catalog path is required when catalog source is 'file' (set SHOPASSIST_CATALOG_PATH)")
		}
	case "api":
		if config.Catalog.APIBaseURL == "" {
			return fmt.Errorf("catalog API base URL is required when catalog source is 'api' (set SHOPASSIST_CATALOG_API_BASE_URL)")
		}
	case "postgres":
		if config.Catalog.DatabaseURL == "" {
			return fmt.Errorf("database URL is required when catalog source is 'postgres' (set SHOPASSIST_CATALOG_DATABASE_URL)")
		}
	default:
		return fmt.Errorf("catalog source must be 'seed', 'file', 'api' or 'postgres', got: %s", config.Catalog.Source)
	}

	if config.Cache.Type != "memory" && config.Cache.Type != "redis" {
		return fmt.Errorf("cache type must be 'memory' or 'redis', got: %s", config.Cache.Type)
	}

	if config.Cache.Type == "redis" && config.Cache.RedisURL == "" {
		return fmt.Errorf("Redis URL is required when cache type is 'redis'")
	}

	if config.Assistant.Enabled && config.Assistant.BaseURL == "" {
		return fmt.Errorf("assistant base URL is required when the assistant is enabled (set SHOPASSIST_ASSISTANT_BASE_URL)")
	}

	if config.Search.DefaultPageSize <= 0 || config.Search.MaxPageSize <= 0 {
		return fmt.Errorf("search page sizes must be positive")
	}
	if config.Search.DefaultPageSize > config.Search.MaxPageSize {
		return fmt.Errorf("default page size %d exceeds max page size %d", config.Search.DefaultPageSize, config.Search.MaxPageSize)
	}

	if config.Log.Format != "json" && config.Log.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Log.Format)
	}

	if config.RateLimit.PerIP < 0 || config.RateLimit.Assistant < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	return nil
}
