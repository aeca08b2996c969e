package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Бэкенды хранения токена сессии.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

type Config struct {
	BotToken         string
	APIBaseURL       string
	APITimeout       time.Duration
	DatabaseURL      string
	SessionBackend   string
	RedisAddr        string
	RedisPassword    string
	SessionTTL       time.Duration // redis; 0 — без срока
	Location         *time.Location
	HTTPAddr         string
	LogLevel         string
	Env              string // dev|prod
	SentryDSN        string
	ReminderInterval time.Duration
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Moscow")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	backend := strings.ToLower(getenv("SESSION_BACKEND", BackendPostgres))
	cfg := &Config{
		BotToken:         mustEnv("BOT_TOKEN"),
		APIBaseURL:       strings.TrimRight(getenv("LMS_API_URL", "http://localhost:8000"), "/"),
		APITimeout:       getenvDuration("LMS_API_TIMEOUT", 10*time.Second),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SessionBackend:   backend,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		SessionTTL:       getenvDuration("SESSION_TTL", 0),
		Location:         loc,
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		Env:              getenv("ENV", "dev"),
		SentryDSN:        os.Getenv("SENTRY_DSN"),
		ReminderInterval: getenvDuration("REMINDER_INTERVAL", 15*time.Minute),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.SessionBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL: required for SESSION_BACKEND=%s", c.SessionBackend)
		}
	case BackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR: required for SESSION_BACKEND=%s", c.SessionBackend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("SESSION_BACKEND: unknown backend %q", c.SessionBackend)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("LMS_API_TIMEOUT: must be positive")
	}
	return nil
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("required env " + k + " is empty")
	}
	return v
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getenvDuration понимает и "15s", и голое число секунд.
func getenvDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}
