package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Pricing   PricingConfig
	AI        AIConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	Host              string
	Port              string
	Name              string
	User              string
	Password          string
	PoolMin           int
	PoolMax           int
	MigrationsEnabled bool
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// PricingConfig holds the tunable constants of the quote pricing engine.
// The defaults reproduce the historical behaviour of the quoting tool.
type PricingConfig struct {
	BlendMinOccurrences int
	CatalogWeight       float64
	DefaultLaborRate    float64
	DefaultWastePercent float64
	RecentQuoteSample   int
}

// AIConfig holds settings for the line-item extraction model.
type AIConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// RateLimitConfig holds the import endpoint rate limit settings.
type RateLimitConfig struct {
	Requests      int
	Window        time.Duration
	SweepSchedule string
}

// Load reads configuration from environment variables.
// A local .env file is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	// Missing .env is fine, production injects the environment directly.
	_ = godotenv.Load()

	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_HOST", "host.docker.internal")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "roofquote")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_POOL_MIN", 2)
	v.SetDefault("DB_POOL_MAX", 10)
	v.SetDefault("DB_MIGRATIONS_ENABLED", true)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")
	v.SetDefault("PRICING_BLEND_MIN_OCCURRENCES", 5)
	v.SetDefault("PRICING_CATALOG_WEIGHT", 0.85)
	v.SetDefault("PRICING_DEFAULT_LABOR_RATE", 75.0)
	v.SetDefault("PRICING_DEFAULT_WASTE_PERCENT", 10.0)
	v.SetDefault("PRICING_RECENT_QUOTE_SAMPLE", 20)
	v.SetDefault("AI_MODEL", "gemini-2.5-flash")
	v.SetDefault("AI_TIMEOUT", "60s")
	v.SetDefault("RATE_LIMIT_REQUESTS", 30)
	v.SetDefault("RATE_LIMIT_WINDOW", "1m")
	v.SetDefault("RATE_LIMIT_SWEEP_SCHEDULE", "@every 1m")

	// Bind environment variables
	v.AutomaticEnv()

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:              v.GetString("DB_HOST"),
			Port:              v.GetString("DB_PORT"),
			Name:              v.GetString("DB_NAME"),
			User:              v.GetString("DB_USER"),
			Password:          v.GetString("DB_PASSWORD"),
			PoolMin:           v.GetInt("DB_POOL_MIN"),
			PoolMax:           v.GetInt("DB_POOL_MAX"),
			MigrationsEnabled: v.GetBool("DB_MIGRATIONS_ENABLED"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
		Pricing: PricingConfig{
			BlendMinOccurrences: v.GetInt("PRICING_BLEND_MIN_OCCURRENCES"),
			CatalogWeight:       v.GetFloat64("PRICING_CATALOG_WEIGHT"),
			DefaultLaborRate:    v.GetFloat64("PRICING_DEFAULT_LABOR_RATE"),
			DefaultWastePercent: v.GetFloat64("PRICING_DEFAULT_WASTE_PERCENT"),
			RecentQuoteSample:   v.GetInt("PRICING_RECENT_QUOTE_SAMPLE"),
		},
		AI: AIConfig{
			APIKey:  v.GetString("AI_API_KEY"),
			Model:   v.GetString("AI_MODEL"),
			Timeout: v.GetDuration("AI_TIMEOUT"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			Window:        v.GetDuration("RATE_LIMIT_WINDOW"),
			SweepSchedule: v.GetString("RATE_LIMIT_SWEEP_SCHEDULE"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate database config
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Port == "" {
		return fmt.Errorf("DB_PORT is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("DB_USER is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Database.PoolMin < 0 {
		return fmt.Errorf("DB_POOL_MIN must be non-negative")
	}
	if c.Database.PoolMax < 1 {
		return fmt.Errorf("DB_POOL_MAX must be at least 1")
	}
	if c.Database.PoolMin > c.Database.PoolMax {
		return fmt.Errorf("DB_POOL_MIN must be less than or equal to DB_POOL_MAX")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	// Validate pricing config
	if c.Pricing.BlendMinOccurrences < 1 {
		return fmt.Errorf("PRICING_BLEND_MIN_OCCURRENCES must be at least 1")
	}
	if c.Pricing.CatalogWeight < 0 || c.Pricing.CatalogWeight > 1 {
		return fmt.Errorf("PRICING_CATALOG_WEIGHT must be between 0 and 1")
	}
	if c.Pricing.DefaultLaborRate < 0 {
		return fmt.Errorf("PRICING_DEFAULT_LABOR_RATE must be non-negative")
	}
	if c.Pricing.DefaultWastePercent < 0 || c.Pricing.DefaultWastePercent > 100 {
		return fmt.Errorf("PRICING_DEFAULT_WASTE_PERCENT must be between 0 and 100")
	}
	if c.Pricing.RecentQuoteSample < 0 {
		return fmt.Errorf("PRICING_RECENT_QUOTE_SAMPLE must be non-negative")
	}

	// Validate AI config
	if c.AI.Model == "" {
		return fmt.Errorf("AI_MODEL is required")
	}
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI_TIMEOUT must be positive")
	}

	// Validate rate limit config
	if c.RateLimit.Requests < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if c.RateLimit.SweepSchedule == "" {
		return fmt.Errorf("RATE_LIMIT_SWEEP_SCHEDULE is required")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
