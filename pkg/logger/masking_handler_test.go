package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskingHandler_MasksSensitiveAttributes(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMaskingHandler(slog.NewJSONHandler(&buf, nil)))

	log.With(slog.String("auth_token", "abc123")).Info("twilio configured",
		slog.String("account_sid", "AC123"),
		slog.Group("sentry", slog.String("dsn", "https://key@sentry.example/1")),
	)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "***", entry["auth_token"])
	assert.Equal(t, "AC123", entry["account_sid"])

	group, ok := entry["sentry"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "***", group["dsn"])
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		in       string
		expected slog.Level
	}{
		{in: "debug", expected: slog.LevelDebug},
		{in: " WARN ", expected: slog.LevelWarn},
		{in: "error", expected: slog.LevelError},
		{in: "", expected: slog.LevelInfo},
		{in: "verbose", expected: slog.LevelInfo},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, ParseLevel(tc.in), tc.in)
	}
}
