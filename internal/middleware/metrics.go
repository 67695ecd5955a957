package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Proton-105/wasawasa-bot/pkg/metrics"
)

// Metrics reports request counts and latency per route to Prometheus.
// route is the fixed label for the wrapped handler, never the raw path.
func Metrics(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		metrics.RecordHTTPRequest(route, r.Method, strconv.Itoa(rec.code()), time.Since(start))
	})
}
