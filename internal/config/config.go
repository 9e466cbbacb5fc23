// Package config loads application configuration from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Engine holds the check-in engine's tunables. Defaults mirror the protocol
// constants: 30s payload freshness, a 60s/10 scan rate window, 3 retries with
// exponential backoff, a 24h offline queue ceiling and a 30s connection probe.
type Engine struct {
	BackendURL     string        `envconfig:"BACKEND_URL" default:"http://localhost:8080"`
	APIToken       string        `envconfig:"API_TOKEN"`
	DeviceInfo     string        `envconfig:"DEVICE_INFO" default:"clockin-agent"`
	StoragePath    string        `envconfig:"STORAGE_PATH" default:"clockin.db"`
	TokenFreshness time.Duration `envconfig:"TOKEN_FRESHNESS" default:"30s"`

	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"60s"`
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"10"`

	RetryAttempts  int           `envconfig:"RETRY_ATTEMPTS" default:"3"`
	RetryBaseDelay time.Duration `envconfig:"RETRY_BASE_DELAY" default:"1s"`
	AttemptTimeout time.Duration `envconfig:"ATTEMPT_TIMEOUT" default:"5s"`

	QueueMaxRetries int           `envconfig:"QUEUE_MAX_RETRIES" default:"3"`
	QueueMaxAge     time.Duration `envconfig:"QUEUE_MAX_AGE" default:"24h"`

	ProbeInterval time.Duration `envconfig:"PROBE_INTERVAL" default:"30s"`
	MetricsMaxAge time.Duration `envconfig:"METRICS_MAX_AGE" default:"1h"`
}

// LoadEngine reads the engine configuration from the environment.
func LoadEngine() (Engine, error) {
	var cfg Engine
	err := envconfig.Process("CLOCKIN", &cfg)
	return cfg, err
}

// LoadEnv loads variables from a .env file if present.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found: %v", err)
	}
}

// GetEnv returns an environment variable or a default value.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// GetIntEnv returns an int environment variable or a default value.
func GetIntEnv(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// IsProduction checks if the app runs in production mode.
func IsProduction() bool {
	return GetEnv("ENV", "development") == "production"
}
