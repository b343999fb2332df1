// Package metrics exposes the Prometheus collectors for the Sanctuary server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctuary_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sanctuary_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Mood and recommendations
	AssessmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctuary_assessments_total",
			Help: "Submitted DASS-21 assessments by overall severity label",
		},
		[]string{"overall_label"},
	)

	PlaylistSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sanctuary_playlist_size",
			Help:    "Number of tracks in generated playlists",
			Buckets: []float64{0, 1, 3, 5, 9, 15, 25, 50},
		},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctuary_recommendations_total",
			Help: "Generated recommendations by strategy",
		},
		[]string{"strategy"},
	)

	// Upload storage
	StorageDeleteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sanctuary_storage_delete_failures_total",
			Help: "Upload storage deletions that failed",
		},
	)

	StorageBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sanctuary_storage_breaker_state",
			Help: "Upload storage circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Auth
	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctuary_auth_failures_total",
			Help: "Rejected authentication attempts",
		},
		[]string{"reason"}, // "login", "reset_code", "token"
	)
)

// RecordAPIRequest records one handled request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordAssessment(overallLabel string) {
	AssessmentsTotal.WithLabelValues(overallLabel).Inc()
}

func RecordPlaylist(strategy string, size int) {
	RecommendationsTotal.WithLabelValues(strategy).Inc()
	PlaylistSize.Observe(float64(size))
}

func RecordStorageDeleteFailure() {
	StorageDeleteFailures.Inc()
}

func RecordAuthFailure(reason string) {
	AuthFailures.WithLabelValues(reason).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
