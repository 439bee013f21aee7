package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Options(t *testing.T) {
	cfg := Config{URL: "redis://:secret@localhost:6380/2", ReadTimeout: 1, WriteTimeout: 2, DialTimeout: 4}
	require.True(t, cfg.Enabled())

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, time.Second, opts.ReadTimeout)
	assert.Equal(t, 2*time.Second, opts.WriteTimeout)
	assert.Equal(t, 4*time.Second, opts.DialTimeout)
}

func TestConfig_InvalidURL(t *testing.T) {
	cfg := Config{URL: "http://localhost"}
	_, err := cfg.Options()
	assert.Error(t, err)
	assert.False(t, (&Config{}).Enabled())
}
