// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Client holds configuration for the portal client.
type Client struct {
	APIBaseURL string
	LogPath    string
}

// LoadClient reads portal client configuration from environment variables.
func LoadClient() (*Client, error) {
	cfg := &Client{
		APIBaseURL: getEnv("PORTAL_API_URL", "http://localhost:8080"),
		LogPath:    getEnv("PORTAL_LOG_PATH", "./orderdesk.log"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required client fields are set.
func (c *Client) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("PORTAL_API_URL cannot be empty")
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("PORTAL_API_URL must be an http(s) URL")
	}
	return nil
}

// Stub holds configuration for the local development backend.
type Stub struct {
	Port           string
	DBPath         string
	CookieSecret   string
	AllowedOrigins []string
	SessionTTL     time.Duration
	OrderCacheTTL  time.Duration
}

// LoadStub reads stub backend configuration from environment variables.
func LoadStub() (*Stub, error) {
	cfg := &Stub{
		Port:           getEnv("PORT", "8080"),
		DBPath:         getEnv("DB_PATH", "./data/orderdesk.db"),
		CookieSecret:   getEnv("COOKIE_SECRET", "dev-only-secret"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),
		SessionTTL:     time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		OrderCacheTTL:  time.Duration(getEnvInt("ORDER_CACHE_TTL_MINUTES", 10)) * time.Minute,
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required stub fields are set.
func (c *Stub) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.CookieSecret == "" {
		return fmt.Errorf("COOKIE_SECRET cannot be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_MINUTES must be > 0")
	}
	if c.OrderCacheTTL <= 0 {
		return fmt.Errorf("ORDER_CACHE_TTL_MINUTES must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Stub) IsDevelopment() bool {
	if env := os.Getenv("APP_ENV"); env != "" {
		return env == "development"
	}
	for _, origin := range c.AllowedOrigins {
		if origin == "*" || strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1") {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
