package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	chatTurns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "premium_chat_turns_total",
			Help: "Conversational turns served, by branch.",
		},
		[]string{"branch"}, // greeting | relay | upload
	)

	chatUpstreamErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "premium_chat_upstream_errors_total",
			Help: "Completion API calls that failed or returned non-success.",
		},
	)
)

func init() {
	register(chatTurns, chatUpstreamErrors)
}

func IncChatTurn(branch string)  { chatTurns.WithLabelValues(branch).Inc() }
func IncChatUpstreamError()      { chatUpstreamErrors.Inc() }
