package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// PublicBaseURL is where Shopify reaches the app server; webhooks are
	// registered on install only when it is set.
	PublicBaseURL string

	// Supabase/hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often PgBouncer/pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	DB DBConfig

	Shopify ShopifyConfig

	Log LogConfig
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

type ShopifyConfig struct {
	// Domain and AccessToken select the shop for single-shop use; either may
	// be empty when tokens come from the shops table.
	Domain      string
	AccessToken string

	APIKey        string
	APISecret     string
	Scopes        string
	RedirectURL   string
	WebhookSecret string

	APIVersion string
	Strict     bool
	Timeout    time.Duration
	UserAgent  string
}

type LogConfig struct {
	Level  slog.Level
	Format string // text or json
}

// Load reads the environment, after loading .env when present. Malformed
// values are an error; absent ones take defaults.
func Load() (Config, error) {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	strict, err := envBool("SHOPIFY_STRICT", false)
	if err != nil {
		return Config{}, err
	}
	timeout, err := envDuration("SHOPIFY_TIMEOUT", 10*time.Second)
	if err != nil {
		return Config{}, err
	}
	level, err := envLevel("LOG_LEVEL", slog.LevelInfo)
	if err != nil {
		return Config{}, err
	}

	httpAddr := env("HTTP_ADDR", "")
	if httpAddr == "" {
		httpAddr = ":8080"
		// Cloud Run sets PORT.
		if port := env("PORT", ""); port != "" {
			httpAddr = ":" + port
		}
	}

	appEnv := env("APP_ENV", "dev")
	format := "text"
	if appEnv == "prod" {
		format = "json"
	}

	return Config{
		AppEnv:         appEnv,
		HTTPAddr:       httpAddr,
		MigrationsPath: env("MIGRATIONS_PATH", "migrations"),
		PublicBaseURL:  os.Getenv("PUBLIC_BASE_URL"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DirectURL:      os.Getenv("DIRECT_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "shopifyapi"),
			User:     env("DB_USER", "shopifyapi"),
			Password: env("DB_PASSWORD", "shopifyapi"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Shopify: ShopifyConfig{
			Domain:        os.Getenv("SHOPIFY_DOMAIN"),
			AccessToken:   os.Getenv("SHOPIFY_ACCESS_TOKEN"),
			APIKey:        os.Getenv("SHOPIFY_API_KEY"),
			APISecret:     os.Getenv("SHOPIFY_API_SECRET"),
			Scopes:        os.Getenv("SHOPIFY_SCOPES"),
			RedirectURL:   os.Getenv("SHOPIFY_REDIRECT_URL"),
			WebhookSecret: os.Getenv("SHOPIFY_WEBHOOK_SECRET"),
			APIVersion:    env("SHOPIFY_API_VERSION", "2025-10"),
			Strict:        strict,
			Timeout:       timeout,
			UserAgent:     os.Getenv("SHOPIFY_USER_AGENT"),
		},
		Log: LogConfig{
			Level:  level,
			Format: strings.ToLower(env("LOG_FORMAT", format)),
		},
	}, nil
}

func env(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) (bool, error) {
	v := env(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := env(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envLevel(key string, fallback slog.Level) (slog.Level, error) {
	v := env(key, "")
	if v == "" {
		return fallback, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return l, nil
}
