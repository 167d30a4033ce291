package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigWithDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://www.themealdb.com/api/json/v1/1", cfg.Gateway.BaseURL)
	assert.Equal(t, "Indian", cfg.Gateway.PreferredCuisine)
	assert.Equal(t, 300000*time.Millisecond, cfg.Cache.TTL)
	assert.Equal(t, CacheBackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 12, cfg.Search.SuggestionLimit)
	assert.InDelta(t, 0.7, cfg.Search.PreferredBias, 1e-9)
}

func TestLoadConfigFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PREFERRED_CUISINE", "Thai")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("APP_SEARCH_SUGGESTION_LIMIT", "8")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "Thai", cfg.Gateway.PreferredCuisine)
	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 8, cfg.Search.SuggestionLimit)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero ttl", func(c *Config) { c.Cache.TTL = 0 }},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis without addr", func(c *Config) { c.Cache.Backend = CacheBackendRedis; c.Redis.Addr = "" }},
		{"empty cuisine", func(c *Config) { c.Gateway.PreferredCuisine = "" }},
		{"bias above one", func(c *Config) { c.Search.PreferredBias = 1.5 }},
		{"zero suggestion limit", func(c *Config) { c.Search.SuggestionLimit = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, validateConfig(cfg))
		})
	}

	assert.NoError(t, validateConfig(Default()))
}

// chdirTemp 切換到空目錄，避免讀到開發環境的 .env
func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
