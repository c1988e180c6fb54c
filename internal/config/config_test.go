package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	t.Setenv("MONGODB_DATABASE", "")
	t.Setenv("REDIS_HOST", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	require.Equal(t, "PythonTestDB", cfg.MongoDB.Database)
	require.Equal(t, "test_collection", cfg.MongoDB.Collection)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.Equal(t, "", cfg.Redis.Addr())
	require.False(t, cfg.Auth.Enabled())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://db.internal:27018")
	t.Setenv("MONGODB_DATABASE", "devices")
	t.Setenv("MONGODB_CONNECT_ATTEMPTS", "0")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")
	t.Setenv("RATE_LIMIT_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "mongodb://db.internal:27018", cfg.MongoDB.URI)
	require.Equal(t, "devices", cfg.MongoDB.Database)
	require.Equal(t, 1, cfg.MongoDB.ConnectAttempts)
	require.Equal(t, "localhost:6380", cfg.Redis.Addr())
	require.True(t, cfg.Auth.Enabled())
	require.True(t, cfg.RateLimit.Enabled)
}
