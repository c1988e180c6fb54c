package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DBOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "devreg", Name: "db_operations_total", Help: "Collection operations by name and outcome."},
		[]string{"op", "result"},
	)
	DBOperationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "devreg", Name: "db_operation_seconds", Help: "Collection operation latency.", Buckets: prometheus.DefBuckets},
		[]string{"op"},
	)
	CountCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "devreg", Name: "count_cache_total", Help: "Count cache lookups by result (hit, miss, error)."},
		[]string{"result"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "devreg", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "devreg", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DBOperations)
	reg.MustRegister(DBOperationSeconds)
	reg.MustRegister(CountCache)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
