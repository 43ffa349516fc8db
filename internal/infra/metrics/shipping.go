package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(shippingQuotesTotal, shippingAPILatencyMs)
}

var (
	shippingQuotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shipping_quotes_total",
			Help: "Shipping calculations requested through the bot, by result.",
		},
		[]string{"result"}, // 'ok', 'no_tariffs', 'error'
	)

	shippingAPILatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shipping_api_latency_ms",
			Help:    "Shipping provider call latency in milliseconds.",
			Buckets: []float64{25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"success"},
	)
)

func IncShippingQuote(result string) {
	shippingQuotesTotal.WithLabelValues(norm(result)).Inc()
}

func ObserveShippingCall(latencyMs int64, success bool) {
	shippingAPILatencyMs.WithLabelValues(boolLabel(success)).Observe(float64(latencyMs))
}
