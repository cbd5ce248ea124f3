package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 12, cfg.PageSize)
	assert.Equal(t, 20, cfg.SearchTopK)
	assert.Equal(t, 30, cfg.TagCloudLimit)
	assert.Equal(t, time.Minute, cfg.StatusRefreshInterval)
	assert.Equal(t, "auto", cfg.EmbeddingProvider)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("IVENTS_PORT", "9090")
	t.Setenv("IVENTS_PAGE_SIZE", "24")
	t.Setenv("IVENTS_STATUS_REFRESH_INTERVAL", "30s")
	t.Setenv("IVENTS_RATE_LIMIT_PER_SECOND", "5.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 24, cfg.PageSize)
	assert.Equal(t, 30*time.Second, cfg.StatusRefreshInterval)
	assert.InDelta(t, 5.5, cfg.RateLimitPerSecond, 1e-9)
}

func TestValidate(t *testing.T) {
	valid, err := Load()
	require.NoError(t, err)

	broken := valid
	broken.PageSize = 0
	assert.Error(t, broken.Validate())

	broken = valid
	broken.SearchTopK = -1
	assert.Error(t, broken.Validate())

	broken = valid
	broken.DatabaseURL = ""
	assert.Error(t, broken.Validate())
}
