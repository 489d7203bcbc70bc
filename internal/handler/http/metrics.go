package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsHandler returns the Prometheus exposition endpoint handler.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
