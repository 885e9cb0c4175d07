package metrics

import "github.com/prometheus/client_golang/prometheus"

// ChatMetrics exposes counters/histograms for the widget chat pipeline.
type ChatMetrics struct {
	repliesTotal     *prometheus.CounterVec
	modelLatency     *prometheus.HistogramVec
	analyticsEvents  *prometheus.CounterVec
	policyViolations *prometheus.CounterVec
}

// Reply outcome labels.
const (
	ReplyOutcomeOK      = "ok"
	ReplyOutcomeContact = "contact"
	ReplyOutcomeApology = "apology"
)

func NewChatMetrics(reg prometheus.Registerer) *ChatMetrics {
	m := &ChatMetrics{
		repliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitechat",
			Subsystem: "chat",
			Name:      "replies_total",
			Help:      "Total replies delivered to widget visitors",
		}, []string{"outcome"}),
		modelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sitechat",
			Subsystem: "chat",
			Name:      "model_latency_seconds",
			Help:      "Latency of LLM completion calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"status"}),
		analyticsEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitechat",
			Subsystem: "analytics",
			Name:      "events_total",
			Help:      "Analytics events by disposition",
		}, []string{"disposition"}),
		policyViolations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sitechat",
			Subsystem: "chat",
			Name:      "policy_violations_total",
			Help:      "Model outputs rejected by the response policy, by stage",
		}, []string{"stage"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.repliesTotal, m.modelLatency, m.analyticsEvents, m.policyViolations)
	return m
}

func (m *ChatMetrics) ObserveReply(outcome string) {
	if m == nil {
		return
	}
	m.repliesTotal.WithLabelValues(outcome).Inc()
}

func (m *ChatMetrics) ObserveModelLatency(status string, seconds float64) {
	if m == nil {
		return
	}
	m.modelLatency.WithLabelValues(status).Observe(seconds)
}

// ObservePolicyViolation records a model output rejected at one pipeline
// stage: empty, denylist, or emoji.
func (m *ChatMetrics) ObservePolicyViolation(stage string) {
	if m == nil {
		return
	}
	m.policyViolations.WithLabelValues(stage).Inc()
}

// ObserveAnalyticsEvent records the fate of one analytics submission:
// enqueued, dropped, recorded, or failed.
func (m *ChatMetrics) ObserveAnalyticsEvent(disposition string) {
	if m == nil {
		return
	}
	m.analyticsEvents.WithLabelValues(disposition).Inc()
}
