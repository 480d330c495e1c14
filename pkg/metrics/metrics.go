package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "redundancy", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "redundancy", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)

	// Submissions counts Submit outcomes: unique, duplicate, invalid, error.
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "redundancy", Name: "submissions_total", Help: "Number of submissions by outcome."},
		[]string{"outcome"},
	)
	StoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "redundancy", Name: "store_errors_total", Help: "Number of failed store calls by operation and driver."},
		[]string{"op", "driver"},
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "redundancy",
			Name:      "store_latency_seconds",
			Help:      "Latency of store calls by operation and driver.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"op", "driver"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(Submissions)
	reg.MustRegister(StoreErrors)
	reg.MustRegister(StoreLatency)
}
