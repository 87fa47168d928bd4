// Package metrics declares the Prometheus collectors exported at /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogSongs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trackfinder_catalog_songs",
			Help: "Number of songs loaded into the similarity index",
		},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trackfinder_search_duration_seconds",
			Help:    "Duration of similarity searches in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trackfinder_search_results",
			Help:    "Number of distinct songs returned per similarity search",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
	)

	PlaylistSaves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackfinder_playlist_saves_total",
			Help: "Playlist save attempts by result",
		},
		[]string{"result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "trackfinder_active_sessions",
			Help: "Number of live sessions held in memory",
		},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trackfinder_http_requests_total",
			Help: "HTTP requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trackfinder_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordSearch records one similarity search.
func RecordSearch(duration time.Duration, results int) {
	SearchDuration.Observe(duration.Seconds())
	SearchResults.Observe(float64(results))
}

// RecordPlaylistSave counts a save attempt.
func RecordPlaylistSave(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	PlaylistSaves.WithLabelValues(result).Inc()
}

func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
