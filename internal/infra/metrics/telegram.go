package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramUpdatesTotal,
		telegramAPIRequestsTotal,
		telegramRateLimitTriggeredTotal,
	)
}

var (
	telegramUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_total",
			Help: "Incoming updates by kind and the route that handled them.",
		},
		[]string{"kind", "route"}, // kind: 'message', 'callback', 'other'
	)

	telegramAPIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_api_requests_total",
			Help: "Outbound Bot API calls by method and status.",
		},
		[]string{"method", "status"},
	)

	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times chats have been rate-limited.",
		},
	)
)

func IncTelegramUpdate(kind, route string) {
	telegramUpdatesTotal.WithLabelValues(norm(kind), norm(route)).Inc()
}

func IncTelegramAPI(method string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	telegramAPIRequestsTotal.WithLabelValues(method, status).Inc()
}

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

