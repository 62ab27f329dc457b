package redis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	tests := []struct {
		name         string
		host, port   string
		expectedAddr string
	}{
		{name: "defaults", expectedAddr: "localhost:6379"},
		{name: "custom", host: "cache.internal", port: "6380", expectedAddr: "cache.internal:6380"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REDIS_HOST", tt.host)
			t.Setenv("REDIS_PORT", tt.port)
			t.Setenv("REDIS_PASSWORD", "secret")

			cfg := LoadConfigFromEnv()
			assert.Equal(t, tt.expectedAddr, cfg.Addr())
			assert.Equal(t, "secret", cfg.Password)
		})
	}
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	t.Parallel()

	// Port 1 is reserved and never serves redis.
	rdb, err := NewRedisClient(context.Background(), Config{Host: "127.0.0.1", Port: "1"})
	require.Error(t, err)
	assert.Nil(t, rdb)
}
