package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Proton-105/wasawasa-bot/pkg/logger"
)

func TestChain_LogsStatusAndCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}),
		logger.Middleware,
		Logging(log),
	)

	req := httptest.NewRequest(http.MethodPost, "/webhook", nil)
	req.Header.Set(logger.CorrelationHeader, "req-9")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "req-9", rec.Header().Get(logger.CorrelationHeader))
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"correlation_id":"req-9"`)
	assert.Contains(t, buf.String(), `"path":"/webhook"`)
}

func TestLogging_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	h := Logging(slog.New(slog.NewJSONHandler(&buf, nil)))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("OK"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "OK", rec.Body.String())
	assert.Contains(t, buf.String(), `"status":200`)
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	h := Chain(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("nil session") }),
		Recover(slog.New(slog.NewJSONHandler(&buf, nil))),
	)

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "nil session")
}

func TestMetrics_PassesThrough(t *testing.T) {
	h := Metrics("webhook", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}
