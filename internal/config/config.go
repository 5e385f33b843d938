package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Port         string
	SQLiteDBPath string

	// AMQP is optional: an empty URL disables event publishing and the
	// backup worker cannot run.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	ExportDir        string
	SnapshotInterval time.Duration
	TrendMonths      int
}

func Load() *Config {
	return &Config{
		Port:             getEnv("PORT", "8080"),
		SQLiteDBPath:     getEnv("SQLITE_DB_PATH", "./data/talos.db"),
		AMQPURL:          getEnv("AMQP_URL", ""),
		AMQPExchange:     getEnv("AMQP_EXCHANGE", "talos.movements"),
		AMQPQueue:        getEnv("AMQP_QUEUE", "movement-events"),
		ExportDir:        getEnv("EXPORT_DIR", "./data/exports"),
		SnapshotInterval: getEnvDuration("SNAPSHOT_INTERVAL", 6*time.Hour),
		TrendMonths:      getEnvInt("TREND_MONTHS", 6),
	}
}

func (c *Config) Validate() error {
	var errs []string

	if c.Port == "" {
		errs = append(errs, "PORT must not be empty")
	} else if p, err := strconv.Atoi(c.Port); err != nil || p < 1 || p > 65535 {
		errs = append(errs, fmt.Sprintf("PORT must be a valid port number, got %q", c.Port))
	}

	if c.SQLiteDBPath == "" {
		errs = append(errs, "SQLITE_DB_PATH must not be empty")
	}

	if c.AMQPURL != "" {
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP_EXCHANGE must not be empty when AMQP_URL is set")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP_QUEUE must not be empty when AMQP_URL is set")
		}
	}

	if c.SnapshotInterval < time.Minute {
		errs = append(errs, fmt.Sprintf("SNAPSHOT_INTERVAL must be at least 1m, got %s", c.SnapshotInterval))
	}

	if c.TrendMonths < 2 {
		errs = append(errs, fmt.Sprintf("TREND_MONTHS must be at least 2, got %d", c.TrendMonths))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}

// EventsEnabled reports whether a message broker is configured.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
