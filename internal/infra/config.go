package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	Port           string
	DatabaseURL    string
	StoragePath    string
	StorageBaseURL string
	GeoIPDBPath    string
	AllowedOrigins []string

	ReplicateAPIToken string
	ReplicateBaseURL  string

	RunwayAPISecret string
	RunwayBaseURL   string
	RunwayVersion   string
	RunwayModel     string

	// Polling policy for the two flows. The generate flow polls in-process
	// behind the wait header; the animate flow is client-driven, so its
	// interval only applies when the submit response is not already terminal.
	GeneratePollInterval time.Duration
	AnimatePollInterval  time.Duration
	PollMaxAttempts      int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StoragePath:    getEnv("STORAGE_PATH", "./storage"),
		StorageBaseURL: getEnv("STORAGE_BASE_URL", "http://localhost:8080/static"),
		GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),

		ReplicateAPIToken: os.Getenv("REPLICATE_API_TOKEN"),
		ReplicateBaseURL:  getEnv("REPLICATE_BASE_URL", "https://api.replicate.com/v1"),

		RunwayAPISecret: os.Getenv("RUNWAYML_API_SECRET"),
		RunwayBaseURL:   getEnv("RUNWAY_BASE_URL", "https://api.dev.runwayml.com/v1"),
		RunwayVersion:   getEnv("RUNWAY_VERSION", "2024-11-06"),
		RunwayModel:     getEnv("RUNWAY_MODEL", "gen3a_turbo"),

		GeneratePollInterval: time.Second * time.Duration(getEnvInt("GENERATE_POLL_INTERVAL_SECONDS", 1)),
		AnimatePollInterval:  time.Second * time.Duration(getEnvInt("ANIMATE_POLL_INTERVAL_SECONDS", 2)),
		PollMaxAttempts:      getEnvInt("POLL_MAX_ATTEMPTS", 30),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 90)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	// Local development can run without provider credentials; the clients
	// reject calls at request time instead.
	allowMissing := getEnv("ALLOW_MISSING_PROVIDERS", "false") == "true"
	if !allowMissing {
		if cfg.ReplicateAPIToken == "" {
			return nil, fmt.Errorf("REPLICATE_API_TOKEN is required")
		}
		if cfg.RunwayAPISecret == "" {
			return nil, fmt.Errorf("RUNWAYML_API_SECRET is required")
		}
	}

	return cfg, nil
}

// Production reports whether the service runs with production hardening,
// which suppresses stack traces in error responses.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
