package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	assert.Equal(t, "ammoseek", c.Source)
	assert.True(t, c.RespectRobots)
	assert.Equal(t, 4, c.MaxConcurrent)
	assert.Equal(t, 10*time.Second, c.FastTimeout)
	assert.Equal(t, "direct", c.ProxyMode)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("AMMOBUNDLE_BASE_URL", "http://localhost:9999")
	t.Setenv("AMMOBUNDLE_STRICT_CALIBERS", "true")
	t.Setenv("AMMOBUNDLE_FAST_TIMEOUT", "3s")
	t.Setenv("AMMOBUNDLE_RATE_PER_SECOND", "0.5")
	t.Setenv("AMMOBUNDLE_MAX_CONCURRENT", "8")
	t.Setenv("AMMOBUNDLE_RESPECT_ROBOTS", "FALSE")
	t.Setenv("AMMOBUNDLE_PROXY_MODE", "file")
	t.Setenv("AMMOBUNDLE_PROXIES", "/etc/proxies.txt")
	t.Setenv("AMMOBUNDLE_LOG_LEVEL", "debug")
	t.Setenv("PORT", "9090")

	c := DefaultConfig()
	c.LoadFromEnv()

	assert.Equal(t, "http://localhost:9999", c.BaseURL)
	assert.True(t, c.StrictCalibers)
	assert.Equal(t, 3*time.Second, c.FastTimeout)
	assert.Equal(t, 0.5, c.RatePerSecond)
	assert.Equal(t, 8, c.MaxConcurrent)
	assert.False(t, c.RespectRobots)
	assert.Equal(t, "file", c.ProxyMode)
	assert.Equal(t, "/etc/proxies.txt", c.ProxyFile)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "9090", c.HTTPPort)
}

func TestLoadFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("AMMOBUNDLE_FAST_TIMEOUT", "soon")
	t.Setenv("AMMOBUNDLE_RATE_BURST", "many")
	t.Setenv("AMMOBUNDLE_STRICT_CALIBERS", "maybe")

	c := DefaultConfig()
	c.LoadFromEnv()

	def := DefaultConfig()
	assert.Equal(t, def.FastTimeout, c.FastTimeout)
	assert.Equal(t, def.RateBurst, c.RateBurst)
	assert.False(t, c.StrictCalibers)
}
