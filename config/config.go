package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Listing source
	Source         string
	BaseURL        string
	StrictCalibers bool
	FastTimeout    time.Duration
	BrowserBin     string
	NoHeadless     bool

	// Politeness
	RespectRobots bool
	DelayProfile  string // "cautious", "normal", "aggressive", "off"

	// Rate limiting
	RatePerSecond float64
	RateBurst     int
	MaxConcurrent int

	// HTTP server
	HTTPPort string
	APIKey   string

	// Proxy
	ProxyMode string // "direct", "file"
	ProxyFile string // file with one proxy URL per line for "file" mode

	LogLevel string
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Source:        "ammoseek",
		BaseURL:       "https://ammoseek.com",
		FastTimeout:   10 * time.Second,
		RespectRobots: true,
		DelayProfile:  "normal",
		RatePerSecond: 2.0,
		RateBurst:     3,
		MaxConcurrent: 4,
		ProxyMode:     "direct",
		HTTPPort:      "8080",
		LogLevel:      "info",
	}
}

// LoadFromEnv loads .env file (if present) then overrides config from environment variables.
func (c *Config) LoadFromEnv() {
	// silently ignored if missing
	_ = godotenv.Load()

	if v := os.Getenv("AMMOBUNDLE_SOURCE"); v != "" {
		c.Source = v
	}
	if v := os.Getenv("AMMOBUNDLE_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("AMMOBUNDLE_STRICT_CALIBERS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.StrictCalibers = b
		}
	}
	if v := os.Getenv("AMMOBUNDLE_FAST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.FastTimeout = d
		}
	}
	if v := os.Getenv("AMMOBUNDLE_NO_HEADLESS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.NoHeadless = b
		}
	}
	if v := os.Getenv("ROD_BROWSER_BIN"); v != "" {
		c.BrowserBin = v
	}
	if v := os.Getenv("AMMOBUNDLE_DELAY_PROFILE"); v != "" {
		c.DelayProfile = v
	}
	if v := os.Getenv("AMMOBUNDLE_RATE_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RatePerSecond = f
		}
	}
	if v := os.Getenv("AMMOBUNDLE_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateBurst = n
		}
	}
	if v := os.Getenv("AMMOBUNDLE_MAX_CONCURRENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrent = n
		}
	}
	if v := os.Getenv("AMMOBUNDLE_PROXY_MODE"); v != "" {
		c.ProxyMode = v
	}
	if v := os.Getenv("AMMOBUNDLE_PROXIES"); v != "" {
		c.ProxyFile = v
	}
	if v := os.Getenv("AMMOBUNDLE_RESPECT_ROBOTS"); strings.EqualFold(v, "false") {
		c.RespectRobots = false
	}
	if v := os.Getenv("AMMOBUNDLE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("AMMOBUNDLE_API_KEY"); v != "" {
		c.APIKey = v
	}
}
