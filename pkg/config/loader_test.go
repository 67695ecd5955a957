package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Defaults(t *testing.T) {
	cfg, v, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"), "test")
	require.NoError(t, err)
	require.NotNil(t, v)

	assert.Equal(t, "test", cfg.AppEnv)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "+14155238886", cfg.Twilio.WhatsAppNumber)
	assert.Equal(t, "memory", cfg.Session.Backend)
	assert.Equal(t, "local", cfg.Jobs.Backend)
	assert.Empty(t, cfg.Restaurant.Phone)
	assert.False(t, cfg.UsesRedis())
}

func TestLoadFile_YAMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "staging.yaml")
	content := []byte(`
server:
  port: "8081"
  shutdown_timeout: 3s
restaurant:
  phone: "+233200000001"
session:
  backend: redis
  ttl: 2h
redis:
  addr: "localhost:6379"
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("RESTAURANT_PHONE", "+233200000002")
	t.Setenv("LOGGER_LEVEL", "debug")

	cfg, _, err := LoadFile(path, "staging")
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "+233200000002", cfg.Restaurant.Phone)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.UsesRedis())
}

func TestLoadFile_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown session backend", env: map[string]string{"SESSION_BACKEND": "postgres"}},
		{name: "redis backend without address", env: map[string]string{"SESSION_BACKEND": "redis"}},
		{name: "asynq without address", env: map[string]string{"JOBS_BACKEND": "asynq"}},
		{name: "sentry without dsn", env: map[string]string{"SENTRY_ENABLED": "true"}},
		{name: "signature validation without url", env: map[string]string{"TWILIO_VALIDATE_SIGNATURES": "true"}},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			_, _, err := LoadFile("", "test")
			assert.Error(t, err)
		})
	}
}
