package metrics

import "github.com/prometheus/client_golang/prometheus"

// BotMetrics exposes counters/histograms for message routing and AI calls.
type BotMetrics struct {
	messagesTotal   *prometheus.CounterVec
	aiRequestsTotal *prometheus.CounterVec
	aiDuration      *prometheus.HistogramVec
	sessionsCreated prometheus.Counter
}

func NewBotMetrics(reg prometheus.Registerer) *BotMetrics {
	m := &BotMetrics{
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assistant_bot",
			Name:      "messages_total",
			Help:      "Total inbound messages by route",
		}, []string{"route"}),
		aiRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "assistant_bot",
			Name:      "ai_requests_total",
			Help:      "Total AI exchanges by mode and outcome",
		}, []string{"mode", "outcome"}),
		aiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "assistant_bot",
			Name:      "ai_duration_seconds",
			Help:      "Duration of AI exchanges",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"mode"}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "assistant_bot",
			Name:      "sessions_created_total",
			Help:      "Total remote threads created for users",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.messagesTotal, m.aiRequestsTotal, m.aiDuration, m.sessionsCreated)
	return m
}

func (m *BotMetrics) ObserveMessage(route string) {
	if m == nil {
		return
	}
	m.messagesTotal.WithLabelValues(route).Inc()
}

func (m *BotMetrics) ObserveAIRequest(mode, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.aiRequestsTotal.WithLabelValues(mode, outcome).Inc()
	m.aiDuration.WithLabelValues(mode).Observe(seconds)
}

func (m *BotMetrics) ObserveSessionCreated() {
	if m == nil {
		return
	}
	m.sessionsCreated.Inc()
}
