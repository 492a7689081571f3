package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	SiteBaseURL string

	EnableSearch    bool
	EnableFilters   bool
	EnablePaginator bool
	ItemsPerPage    int

	QueryCacheTTL time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: os.Getenv("MEILISEARCH_HOST"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		SiteBaseURL: os.Getenv("SITE_BASE_URL"),

		EnableSearch:    getBool("ENABLE_SEARCH", true),
		EnableFilters:   getBool("ENABLE_FILTERS", true),
		EnablePaginator: getBool("ENABLE_PAGINATOR", true),
	}

	cfg.ItemsPerPage = getInt("ITEMS_PER_PAGE", 8)
	if cfg.ItemsPerPage < 1 {
		cfg.ItemsPerPage = 1
	}
	if cfg.ItemsPerPage > 50 {
		cfg.ItemsPerPage = 50
	}

	var err error
	cfg.QueryCacheTTL, err = time.ParseDuration(getEnv("QUERY_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUERY_CACHE_TTL: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
