package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	RequestTimeout     time.Duration
	BackendBaseURL     string
	BackendTimeout     time.Duration
	MaxUploadSize      int64
	SessionSecret      string
	SessionTTL         time.Duration
	SessionCookie      string
	SessionSecure      bool
	CORSOrigins        []string
	RateLimitRPM       int
	AuthRateLimitRPM   int
	ViewIdleTTL        time.Duration
	ThumbnailMaxPixels int
	TagsBaseURL        string
	TagsAPIKey         string
	TagsModel          string
	TagsTimeout        time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:         getEnv("SERVER_PORT", "3000"),
		ServerReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
		ServerIdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:     getDuration("REQUEST_TIMEOUT", 30*time.Second),
		BackendBaseURL:     strings.TrimRight(getEnv("API_BASE", "http://127.0.0.1:8000"), "/"),
		BackendTimeout:     getDuration("API_TIMEOUT", 30*time.Second),
		MaxUploadSize:      getInt64("MAX_UPLOAD_SIZE", 2147483648),
		SessionSecret:      strings.TrimSpace(os.Getenv("SESSION_SECRET")),
		SessionTTL:         getDuration("SESSION_TTL", 720*time.Hour),
		SessionCookie:      getEnv("SESSION_COOKIE", "td_session"),
		SessionSecure:      getBool("SESSION_SECURE", false),
		CORSOrigins:        splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		RateLimitRPM:       getInt("RATE_LIMIT_RPM", 300),
		AuthRateLimitRPM:   getInt("AUTH_RATE_LIMIT_RPM", 10),
		ViewIdleTTL:        getDuration("VIEW_IDLE_TTL", 30*time.Minute),
		ThumbnailMaxPixels: getInt("THUMBNAIL_MAX_PIXELS", 512),
		TagsBaseURL:        strings.TrimRight(getEnv("TAGS_API_BASE", ""), "/"),
		TagsAPIKey:         strings.TrimSpace(os.Getenv("TAGS_API_KEY")),
		TagsModel:          getEnv("TAGS_MODEL", "gpt-4o-mini"),
		TagsTimeout:        getDuration("TAGS_TIMEOUT", 20*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.SessionSecret) == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if strings.TrimSpace(c.BackendBaseURL) == "" {
		return fmt.Errorf("API_BASE cannot be empty")
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if c.ThumbnailMaxPixels <= 0 {
		return fmt.Errorf("THUMBNAIL_MAX_PIXELS must be positive")
	}

	return nil
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
