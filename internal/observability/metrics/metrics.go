package metrics

import "github.com/prometheus/client_golang/prometheus"

// CallMetrics exposes counters/histograms for the webhook pipeline and
// outbound calling.
type CallMetrics struct {
	webhookEvents  *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
	contactUpdates *prometheus.CounterVec
	outboundCalls  *prometheus.CounterVec
}

func NewCallMetrics(reg prometheus.Registerer) *CallMetrics {
	m := &CallMetrics{
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voiceoutbound",
			Subsystem: "webhook",
			Name:      "events_total",
			Help:      "Total Retell webhook events by type and processing result",
		}, []string{"event_type", "result"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "voiceoutbound",
			Subsystem: "webhook",
			Name:      "processing_seconds",
			Help:      "Latency of webhook event processing after acknowledgment",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
		contactUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voiceoutbound",
			Subsystem: "crm",
			Name:      "contact_updates_total",
			Help:      "Total CRM contact updates dispatched, by call outcome",
		}, []string{"status"}),
		outboundCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voiceoutbound",
			Subsystem: "calls",
			Name:      "outbound_total",
			Help:      "Total outbound call sessions created",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.webhookEvents, m.webhookLatency, m.contactUpdates, m.outboundCalls)
	return m
}

func (m *CallMetrics) ObserveWebhookEvent(eventType, result string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(eventType, result).Inc()
}

func (m *CallMetrics) ObserveWebhookLatency(eventType string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(eventType).Observe(seconds)
}

func (m *CallMetrics) ObserveContactUpdate(status string) {
	if m == nil {
		return
	}
	m.contactUpdates.WithLabelValues(status).Inc()
}

func (m *CallMetrics) ObserveOutboundCall(status string) {
	if m == nil {
		return
	}
	m.outboundCalls.WithLabelValues(status).Inc()
}
