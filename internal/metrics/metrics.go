// Package metrics defines Prometheus metrics for winning-products.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "wp"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 if the last /healthz probe succeeded, 0 otherwise.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 if the last /readyz probe succeeded, 0 otherwise.",
	})
)

// Rainforest API metrics.
var (
	RainforestRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rainforest_requests_total",
		Help:      "Total Rainforest API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	RainforestRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "rainforest_request_duration_seconds",
		Help:      "Duration of Rainforest API requests in seconds.",
		Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
	}, []string{"endpoint"})

	RainforestDailyUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rainforest_daily_usage",
		Help:      "Rainforest API calls made within the rolling 24-hour window.",
	})

	RainforestDailyLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rainforest_daily_limit_hits_total",
		Help:      "Total number of times the local daily call budget was exhausted.",
	})

	RainforestCreditsRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rainforest_credits_remaining",
		Help:      "Account credits remaining as last reported by the Rainforest API.",
	})
)

// Pipeline metrics.
var (
	RecordsFetchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_fetched_total",
		Help:      "Total raw search result records handed to the normalizer.",
	})

	RecordsNormalizedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_normalized_total",
		Help:      "Total records that normalized into products.",
	})

	RecordsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_dropped_total",
		Help:      "Total records excluded during normalization, by reason.",
	}, []string{"reason"})

	RankingPassesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ranking_passes_total",
		Help:      "Total ranking passes by rank mode.",
	}, []string{"mode"})

	ScoreDistribution = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "score_distribution",
		Help:      "Distribution of computed winning scores.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10), // 0.001 .. ~262
	})
)
