package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FeedLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedreader_feed_loads_total",
		Help: "Feed loads into the page by result",
	}, []string{"result"})

	FeedLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "feedreader_feed_load_duration_seconds",
		Help:    "Time from loadFeed call to completion",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	FeedsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedreader_feeds_processed_total",
		Help: "Background feed refreshes by result",
	}, []string{"result"})

	CheckResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "feedreader_check_results_total",
		Help: "Assertion suite checks by group and outcome",
	}, []string{"group", "outcome"})
)

// Handler отдает метрики в формате Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}
