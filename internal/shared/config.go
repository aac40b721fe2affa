package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string

	RedisAddr string
	RedisDB   int
	RedisPass string

	InsightBase string
	InsightKey  string
	InsightRPS  int

	Workers       int
	PageSize      int
	CacheTTL      time.Duration
	DashboardCron string
}

func Load() Config {
	// best-effort .env for local development
	_ = godotenv.Load()

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ":9100"),
		RedisAddr:     env("REDIS_ADDR", "localhost:6379"),
		RedisDB:       atoi("REDIS_DB", 0),
		RedisPass:     env("REDIS_PASSWORD", ""),
		InsightBase:   env("INSIGHT_BASE_URL", "http://localhost:8000/api"),
		InsightKey:    env("INSIGHT_API_KEY", ""),
		InsightRPS:    atoi("INSIGHT_RPS", 10),
		Workers:       atoi("ENRICH_WORKERS", 8),
		PageSize:      atoi("PAGE_SIZE", 10),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		DashboardCron: env("DASHBOARD_REFRESH", "@every 5m"),
	}
	if c.InsightKey == "" {
		log.Warn().Msg("INSIGHT_API_KEY is empty")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
