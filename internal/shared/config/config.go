package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	HTTPAddr       string
	StoreDriver    string
	DatabaseURL    string
	MigrationsPath string
	DBMaxConns     int
	DBMinConns     int
	CronSecret     string
	// DemoUsers seeds the in-memory user directory, as
	// "id:email:name" entries separated by commas.
	DemoUsers string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ReminderHorizons []time.Duration
	ReminderWindow   time.Duration
	NotifyTimeout    time.Duration
	SweepInterval    time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPAddr:       GetEnv("HTTP_ADDR", ":9000"),
		StoreDriver:    GetEnv("STORE_DRIVER", StoreDriverPostgres),
		DatabaseURL:    GetEnv("DATABASE_URL", ""),
		MigrationsPath: GetEnv("MIGRATIONS_PATH", "file://internal/shared/db/migrations/sql"),
		DBMaxConns:     GetIntEnv("DB_MAX_CONNS", 0),
		DBMinConns:     GetIntEnv("DB_MIN_CONNS", 0),
		CronSecret:     GetEnv("CRON_SECRET", ""),
		DemoUsers:      GetEnv("DEMO_USERS", ""),
		RedisAddr:      GetEnv("REDIS_ADDR", ""),
		RedisPassword:  GetEnv("REDIS_PASSWORD", ""),
		RedisDB:        GetIntEnv("REDIS_DB", 0),
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = BuildPostgresDSN()
	}

	var err error
	if cfg.ReminderHorizons, err = parseDurations(GetEnv("REMINDER_HORIZONS", "1h,24h")); err != nil {
		return nil, fmt.Errorf("config: REMINDER_HORIZONS: %w", err)
	}
	if cfg.ReminderWindow, err = time.ParseDuration(GetEnv("REMINDER_WINDOW", "5m")); err != nil {
		return nil, fmt.Errorf("config: REMINDER_WINDOW: %w", err)
	}
	if cfg.NotifyTimeout, err = time.ParseDuration(GetEnv("NOTIFY_TIMEOUT", "10s")); err != nil {
		return nil, fmt.Errorf("config: NOTIFY_TIMEOUT: %w", err)
	}
	if cfg.SweepInterval, err = time.ParseDuration(GetEnv("SWEEP_INTERVAL", "0s")); err != nil {
		return nil, fmt.Errorf("config: SWEEP_INTERVAL: %w", err)
	}

	if cfg.DBMaxConns < 0 || cfg.DBMinConns < 0 || (cfg.DBMaxConns > 0 && cfg.DBMinConns > cfg.DBMaxConns) {
		return nil, fmt.Errorf("config: DB_MIN_CONNS %d / DB_MAX_CONNS %d", cfg.DBMinConns, cfg.DBMaxConns)
	}

	switch cfg.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return nil, fmt.Errorf("config: unknown STORE_DRIVER %q", cfg.StoreDriver)
	}
	return cfg, nil
}

// BuildPostgresDSN assembles a postgres URL from the DB_* variables.
func BuildPostgresDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		GetEnv("DB_HOST", "localhost"),
		GetEnv("DB_PORT", "5432"),
		os.Getenv("DB_NAME"),
		GetEnv("DB_SSLMODE", "disable"),
	)
}

func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func GetIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseDurations(raw string) ([]time.Duration, error) {
	var out []time.Duration
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		d, err := time.ParseDuration(part)
		if err != nil {
			return nil, err
		}
		if d <= 0 {
			return nil, fmt.Errorf("horizon %s must be positive", part)
		}
		out = append(out, d)
	}
	return out, nil
}
