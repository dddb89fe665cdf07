package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the immutable process-wide configuration, loaded once at startup
// and passed explicitly into each component.
type Config struct {
	AppEnv     string
	Port       string
	CORSOrigin string

	// Upstream fal.ai configuration. Credentials and URLs are optional at
	// load time: the health endpoint reports what is missing and the
	// handlers refuse calls that cannot be made.
	FalKeyID      string
	FalKeySecret  string
	FalAuthScheme string
	FastURL       string
	QualityURL    string
	FastModel     string
	QualityModel  string
	ResultBase    string
	VoicesURL     string
	SubmitTimeout time.Duration

	MergeEnabled bool
	MergeTimeout time.Duration
	MediaDir     string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. Upstream URLs have trailing slashes trimmed so job
// ids can be appended by concatenation.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		CORSOrigin:       getEnv("CORS_ORIGIN", "*"),
		FalKeyID:         os.Getenv("FAL_KEY_ID"),
		FalKeySecret:     os.Getenv("FAL_KEY_SECRET"),
		FalAuthScheme:    getEnv("FAL_AUTH_SCHEME", "key"),
		FastURL:          strings.TrimRight(os.Getenv("FAL_UPSTREAM_FAST"), "/"),
		QualityURL:       strings.TrimRight(os.Getenv("FAL_UPSTREAM_QUALITY"), "/"),
		FastModel:        getEnv("FAL_MODEL_FAST", "fast"),
		QualityModel:     getEnv("FAL_MODEL_QUALITY", "quality"),
		ResultBase:       strings.TrimRight(os.Getenv("FAL_RESULT_BASE"), "/"),
		VoicesURL:        strings.TrimRight(os.Getenv("FAL_VOICES_URL"), "/"),
		SubmitTimeout:    time.Second * time.Duration(getEnvInt("SUBMIT_TIMEOUT_SECONDS", 120)),
		MergeEnabled:     getEnvBool("ENABLE_MERGE", false),
		MergeTimeout:     time.Second * time.Duration(getEnvInt("MERGE_TIMEOUT_SECONDS", 600)),
		MediaDir:         getEnv("MEDIA_DIR", "./media"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		// Write timeout must cover an inline poll loop and a merge run.
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 900)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 0),
	}

	switch cfg.FalAuthScheme {
	case "key", "bearer":
	default:
		return nil, fmt.Errorf("FAL_AUTH_SCHEME must be \"key\" or \"bearer\", got %q", cfg.FalAuthScheme)
	}

	return cfg, nil
}

// HasFalCredentials reports whether upstream calls can be authenticated.
func (c *Config) HasFalCredentials() bool {
	if c.FalAuthScheme == "bearer" {
		return c.FalKeyID != ""
	}
	return c.FalKeyID != "" && c.FalKeySecret != ""
}

// UpstreamConfigured reports whether the service is fully wired for
// generation requests. Mirrored by the health endpoint.
func (c *Config) UpstreamConfigured() bool {
	return c.HasFalCredentials() && c.FastURL != "" && c.QualityURL != ""
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

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
