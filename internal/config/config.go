// Package config provides configuration loading for the mesh-bridge binaries.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/nucleus/mesh-bridge/internal/engine"
)

// Config holds all configuration for the bridge worker and sync binaries.
type Config struct {
	// Engine settings
	EngineDriver     string
	ProjectDir       string
	Gateway          string
	Environment      string
	ConcurrencyLimit int
	IgnoreCron       bool

	// Temporal settings
	TemporalAddress   string
	TemporalNamespace string
	TemporalTaskQueue string
	ScheduleTimezone  string

	// Run-history store (optional; disabled when empty)
	DatabaseURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		EngineDriver:     getEnv("MESH_ENGINE_DRIVER", "manifest"),
		ProjectDir:       getEnv("MESH_PROJECT_DIR", "."),
		Gateway:          getEnv("MESH_GATEWAY", engine.DefaultGateway),
		Environment:      getEnv("MESH_ENVIRONMENT", engine.DefaultEnvironment),
		ConcurrencyLimit: getEnvInt("MESH_CONCURRENCY_LIMIT", 1),
		IgnoreCron:       getEnvBool("MESH_IGNORE_CRON", false),

		TemporalAddress:   getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		TemporalNamespace: getEnv("TEMPORAL_NAMESPACE", "default"),
		TemporalTaskQueue: getEnv("TEMPORAL_TASK_QUEUE", "mesh-bridge"),
		ScheduleTimezone:  getEnv("MESH_SCHEDULE_TIMEZONE", "UTC"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
	}
}

// Validate rejects configurations the engine would refuse anyway.
func (c *Config) Validate() error {
	if c.ConcurrencyLimit < 1 {
		return fmt.Errorf("MESH_CONCURRENCY_LIMIT must be positive, got %d", c.ConcurrencyLimit)
	}
	if c.ProjectDir == "" {
		return fmt.Errorf("MESH_PROJECT_DIR is required")
	}
	return nil
}

// EngineConfig maps the bridge configuration onto the engine contract.
func (c *Config) EngineConfig() engine.Config {
	return engine.Config{
		ProjectDir:       c.ProjectDir,
		Gateway:          c.Gateway,
		Environment:      c.Environment,
		ConcurrencyLimit: c.ConcurrencyLimit,
		IgnoreCron:       c.IgnoreCron,
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
