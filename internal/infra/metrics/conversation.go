package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(conversationStepsTotal, sessionsSweptTotal)
}

var (
	conversationStepsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_steps_total",
			Help: "Calculator form inputs by step and outcome.",
		},
		[]string{"step", "result"}, // result: 'advanced', 'reprompt', 'completed', 'failed'
	)

	sessionsSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_swept_total",
			Help: "Expired calculator sessions removed by the sweeper.",
		},
	)
)

func IncConversationStep(step, result string) {
	conversationStepsTotal.WithLabelValues(norm(step), norm(result)).Inc()
}

func AddSessionsSwept(n int) {
	sessionsSweptTotal.Add(float64(n))
}
