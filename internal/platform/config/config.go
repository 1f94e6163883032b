package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string `koanf:"service_name"`
	HTTPPort    string `koanf:"http_port"`

	// DBDriver selects the ledger store: postgres, sqlite, or memory for a
	// dependency-free local run.
	DBDriver    string `koanf:"db_driver"`
	PostgresDSN string `koanf:"postgres_dsn"`
	SQLitePath  string `koanf:"sqlite_path"`

	// RedisAddr enables the Redis leaderboard index when non-empty;
	// otherwise the in-memory index serves leaderboard reads.
	RedisAddr string `koanf:"redis_addr"`

	WorkerPollSeconds   int `koanf:"worker_poll_seconds"`
	OutboxBatchSize     int `koanf:"outbox_batch_size"`
	CASRetryLimit       int `koanf:"cas_retry_limit"`
	IdempotencyTTLHours int `koanf:"idempotency_ttl_hours"`
}

func defaults() Config {
	return Config{
		ServiceName:         "paperportal",
		HTTPPort:            "8080",
		DBDriver:            "memory",
		SQLitePath:          "paperportal.db",
		WorkerPollSeconds:   2,
		OutboxBatchSize:     100,
		CASRetryLimit:       5,
		IdempotencyTTLHours: 24,
	}
}

// Load layers defaults, an optional YAML file named by PORTAL_CONFIG, and
// PORTAL_-prefixed environment variables (low to high precedence).
func Load() (Config, error) {
	cfg := defaults()

	k := koanf.New(".")
	if path := strings.TrimSpace(os.Getenv("PORTAL_CONFIG")); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, err
		}
	}

	envProvider := env.Provider("PORTAL_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "PORTAL_"))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, err
	}

	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.DBDriver {
	case "postgres":
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return errors.New("postgres_dsn is required when db_driver is postgres")
		}
	case "sqlite":
		if strings.TrimSpace(cfg.SQLitePath) == "" {
			return errors.New("sqlite_path is required when db_driver is sqlite")
		}
	case "memory":
	default:
		return errors.New("db_driver must be postgres, sqlite, or memory")
	}
	if strings.TrimSpace(cfg.HTTPPort) == "" {
		return errors.New("http_port must not be empty")
	}
	if cfg.WorkerPollSeconds <= 0 || cfg.OutboxBatchSize <= 0 {
		return errors.New("worker_poll_seconds and outbox_batch_size must be positive")
	}
	return nil
}
