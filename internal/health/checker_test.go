package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecker_Handler(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	configured := true
	checker := NewChecker(slog.New(slog.NewTextHandler(io.Discard, nil)))
	checker.AddCheck("redis", NewRedisChecker(rdb))
	checker.AddCheck("twilio", NewTwilioChecker(func() bool { return configured }))
	checker.AddCheck("", CheckFunc(func(context.Context) error { return errors.New("ignored") }))

	rec := httptest.NewRecorder()
	checker.Handler(time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status     string            `json:"status"`
		Components map[string]string `json:"components"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, map[string]string{"redis": "OK", "twilio": "OK"}, body.Components)

	configured = false
	rec = httptest.NewRecorder()
	checker.Handler(time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "twilio credentials are not configured", body.Components["twilio"])
}

func TestRedisChecker_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	assert.Error(t, NewRedisChecker(rdb).HealthCheck(context.Background()))

	var nilChecker *RedisChecker
	assert.ErrorIs(t, nilChecker.HealthCheck(context.Background()), redis.ErrClosed)
}

func TestBanner(t *testing.T) {
	rec := httptest.NewRecorder()
	Banner("WasaWasa WhatsApp Bot (Twilio)", "2.0.0").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "WasaWasa WhatsApp Bot (Twilio)", body["service"])
	assert.Equal(t, "2.0.0", body["version"])

	_, err := time.Parse(time.RFC3339, body["timestamp"])
	assert.NoError(t, err)

	rec = httptest.NewRecorder()
	Banner("svc", "1").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
