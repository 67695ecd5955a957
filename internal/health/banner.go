package health

import (
	"net/http"
	"time"
)

// Banner answers GET / with the service identity, for uptime probes.
func Banner(service, version string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"service":   service,
			"version":   version,
			"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		})
	})
}
