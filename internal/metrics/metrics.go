// Package metrics exposes Prometheus collectors for generation outcomes and
// HTTP traffic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpmetrics "github.com/slok/go-http-metrics/metrics/prometheus"
	"github.com/slok/go-http-metrics/middleware"
	"github.com/slok/go-http-metrics/middleware/std"
)

var (
	generationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "personagen_generations_total",
		Help: "Generation requests by type and terminal status.",
	}, []string{"type", "status"})

	providerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "personagen_provider_duration_seconds",
		Help:    "Latency of provider calls by generation type and outcome.",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	}, []string{"type", "outcome"})

	httpMiddleware = middleware.New(middleware.Config{
		Recorder: httpmetrics.NewRecorder(httpmetrics.Config{}),
	})
)

// ObserveGeneration counts a generation that reached status.
func ObserveGeneration(genType, status string) {
	generationsTotal.WithLabelValues(genType, status).Inc()
}

// ObserveProvider records the duration of one provider call. outcome is
// "ok" or a provider error kind.
func ObserveProvider(genType, outcome string, d time.Duration) {
	providerDuration.WithLabelValues(genType, outcome).Observe(d.Seconds())
}

// HTTP returns middleware recording request metrics under handlerID.
func HTTP(handlerID string) func(http.Handler) http.Handler {
	return std.HandlerProvider(handlerID, httpMiddleware)
}

// Handler serves the Prometheus exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
