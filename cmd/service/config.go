package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/CleytonSeles/play-fullstack/internal/auth"
	"github.com/CleytonSeles/play-fullstack/internal/events"
)

type Config struct {
	Port string

	// DatabaseURL selects Postgres. Empty means in-memory stores.
	DatabaseURL string
	// RedisURL enables cross-process event fan-out. Empty means the
	// websocket hub receives events directly.
	RedisURL      string
	EventsChannel string

	Token      auth.TokenConfig
	BcryptCost int

	CORSAllowedOrigins []string
	AuthRateLimitRPS   int
	MaxBodyBytes       int64

	LogLevel string
}

// loadEnvFile loads KEY=VALUE pairs from path without overriding variables
// already set. A missing default .env is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func loadConfigFromEnv() (Config, error) {
	ttl, err := parseTTL(getenv("JWT_EXPIRES_IN", "1d"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:          getenv("PORT", "3000"),
		DatabaseURL:   databaseURL(),
		RedisURL:      getenv("REDIS_URL", ""),
		EventsChannel: getenv("EVENTS_CHANNEL", events.DefaultChannel),
		Token: auth.TokenConfig{
			Secret: getenv("JWT_SECRET", ""),
			TTL:    ttl,
		},
		BcryptCost:         getenvInt("BCRYPT_COST", 0),
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS", "http://localhost:3001")),
		AuthRateLimitRPS:   getenvInt("AUTH_RATE_LIMIT_RPS", 5),
		MaxBodyBytes:       int64(getenvInt("MAX_BODY_BYTES", 1<<20)),
		LogLevel:           getenv("LOG_LEVEL", "info"),
	}

	if cfg.BcryptCost != 0 && (cfg.BcryptCost < 4 || cfg.BcryptCost > 31) {
		return Config{}, errors.New("watchplay: BCRYPT_COST must be between 4 and 31")
	}
	return cfg, nil
}

// databaseURL prefers DATABASE_URL and otherwise assembles one from the
// DB_HOST family of variables. Neither set means no database.
func databaseURL() string {
	if v := getenv("DATABASE_URL", ""); v != "" {
		return v
	}
	host := getenv("DB_HOST", "")
	if host == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(getenv("DB_USERNAME", "postgres"), getenv("DB_PASSWORD", "")),
		Host:   host + ":" + getenv("DB_PORT", "5432"),
		Path:   "/" + getenv("DB_DATABASE", "watchplay"),
	}
	return u.String()
}

// parseTTL accepts Go durations ("90m", "24h") and whole days ("1d", "7d").
func parseTTL(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("watchplay: invalid JWT_EXPIRES_IN %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("watchplay: invalid JWT_EXPIRES_IN %q", raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	raw := getenv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}
