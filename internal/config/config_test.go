package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Without a config file on disk, Load falls back to defaults.
func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "nosuchenv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "release", cfg.Mode)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, 10, cfg.MaxPortRetries)
	assert.Equal(t, 2*time.Minute, cfg.PendingRequestTTL)
	assert.Equal(t, 30*time.Second, cfg.SweepInterval)
	assert.Equal(t, 100*time.Millisecond, cfg.JoinVerifyDelay)
}
