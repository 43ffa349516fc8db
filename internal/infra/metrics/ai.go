package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiCallsLatencyMs,
		aiRepliesTotal,
	)
}

var (
	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "AI call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 20000},
		},
		[]string{"provider", "success"},
	)

	aiRepliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_replies_total",
			Help: "Consultant replies sent, by outcome.",
		},
		[]string{"result"}, // 'ok', 'empty', 'error'
	)
)

func ObserveAICall(provider string, latencyMs int64, success bool) {
	aiCallsLatencyMs.WithLabelValues(norm(provider), boolLabel(success)).Observe(float64(latencyMs))
}

func IncAIReply(result string) {
	aiRepliesTotal.WithLabelValues(norm(result)).Inc()
}
