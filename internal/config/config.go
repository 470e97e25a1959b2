package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	NATSSubject      string
	JWTSecret        string
	JWTRefreshSecret string

	SessionCacheTTL      time.Duration
	GenerationTimeout    time.Duration
	ReviewThreshold      float64
	MaxFallacyDifficulty int
	StatementRateLimit   int

	AIProvider   string
	OpenAIAPIKey string
	OpenAIModel  string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("UMADEX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "UmaDex Debate API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("nats.subject", "umadex.debate.events")
	v.SetDefault("session.cache_ttl", "30s")
	v.SetDefault("generation_timeout_ms", 30000)
	v.SetDefault("moderation.review_threshold", 0.7)
	v.SetDefault("fallacy.max_difficulty", 3)
	v.SetDefault("statement.rate_limit", 10)
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("openai_model", "gpt-4o-mini")

	ttlString := v.GetString("session.cache_ttl")
	if ttlString == "" {
		ttlString = "30s"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid session cache ttl: %w", err)
	}

	timeoutMs := v.GetInt("generation_timeout_ms")
	if timeoutMs <= 0 {
		timeoutMs = 30000
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		NATSSubject:          v.GetString("nats.subject"),
		JWTSecret:            v.GetString("jwt.secret"),
		JWTRefreshSecret:     v.GetString("jwt.refresh_secret"),
		SessionCacheTTL:      ttl,
		GenerationTimeout:    time.Duration(timeoutMs) * time.Millisecond,
		ReviewThreshold:      v.GetFloat64("moderation.review_threshold"),
		MaxFallacyDifficulty: v.GetInt("fallacy.max_difficulty"),
		StatementRateLimit:   v.GetInt("statement.rate_limit"),
		AIProvider:           strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:         v.GetString("openai_api_key"),
		OpenAIModel:          v.GetString("openai_model"),
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	if cfg.ReviewThreshold <= 0 || cfg.ReviewThreshold > 1 {
		cfg.ReviewThreshold = 0.7
	}

	if cfg.MaxFallacyDifficulty <= 0 {
		cfg.MaxFallacyDifficulty = 3
	}

	if cfg.StatementRateLimit <= 0 {
		cfg.StatementRateLimit = 10
	}

	return cfg, nil
}
