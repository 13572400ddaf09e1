package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scrapbook", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scrapbook", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	StoreOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scrapbook", Name: "store_operations_total", Help: "Remote store calls by table, operation and result."},
		[]string{"table", "op", "result"},
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: "scrapbook", Name: "store_operation_seconds", Help: "Remote store call latency.", Buckets: prometheus.DefBuckets},
		[]string{"table", "op"},
	)
	FanoutTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scrapbook", Name: "notification_fanout_total", Help: "Peer notifications written on create, by entity kind and result."},
		[]string{"kind", "result"},
	)
	AssetOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "scrapbook", Name: "asset_operations_total", Help: "Image asset uploads and deletions by result."},
		[]string{"op", "result"},
	)
	PushConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{Namespace: "scrapbook", Name: "push_connections", Help: "Open notification websocket connections."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(StoreOps)
	reg.MustRegister(StoreLatency)
	reg.MustRegister(FanoutTotal)
	reg.MustRegister(AssetOps)
	reg.MustRegister(PushConnections)
}

// Result maps an error to the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
