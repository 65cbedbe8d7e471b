package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string

	// External backends
	StorageBaseURL  string
	AnalysisBaseURL string
	StorageTimeout  time.Duration
	AnalysisTimeout time.Duration

	// Team id sent with ad-hoc analyses and stored analyses whose folder
	// chain carries none
	DefaultTeamID string

	// Sessions
	MaxSessions   int
	SessionTTL    time.Duration
	SessionCookie string

	// Auth is disabled when AuthJWKSURL is empty
	AuthJWKSURL string

	AnalyzeRatePerMinute int
	MaxUploadBytes       int64

	// Logging
	LogDir      string
	LogMaxFiles int

	// Debug flags
	Debug bool // Enables debug-level logging
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		// Empty base URLs fall back to the client defaults
		StorageBaseURL:  getEnv("STORAGE_BASE_URL", ""),
		AnalysisBaseURL: getEnv("ANALYSIS_BASE_URL", ""),
		StorageTimeout:  getDuration("STORAGE_TIMEOUT", 30*time.Second),
		AnalysisTimeout: getDuration("ANALYSIS_TIMEOUT", 5*time.Minute),
		DefaultTeamID:   getEnv("DEFAULT_TEAM_ID", "default-team"),

		MaxSessions:   getInt("MAX_SESSIONS", 1000),
		SessionTTL:    getDuration("SESSION_TTL", 12*time.Hour),
		SessionCookie: getEnv("SESSION_COOKIE", "portal_session"),

		AuthJWKSURL: getEnv("AUTH_JWKS_URL", ""),

		AnalyzeRatePerMinute: getInt("ANALYZE_RATE_PER_MIN", 6),
		MaxUploadBytes:       int64(getInt("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),

		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getInt("LOG_MAX_FILES", 10),

		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// AuthEnabled reports whether requests must carry a verified bearer token.
func (c *Config) AuthEnabled() bool {
	return c.AuthJWKSURL != ""
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getInt falls back to defaultValue when the variable is unset or not a positive integer.
func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
