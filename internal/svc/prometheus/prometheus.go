package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Instance interface {
	Register(r prometheus.Registerer)

	PresenceWrites() prometheus.Counter
	ConflictsDetected() prometheus.Counter
	WebhookOutcomes() *prometheus.CounterVec
}

type Options struct {
	Labels prometheus.Labels
}

func New(o Options) Instance {
	return &metricsInst{
		presenceWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "api_presence_writes_total",
			Help:        "Number of presence records written",
			ConstLabels: o.Labels,
		}),
		conflictsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "api_conflicts_detected_total",
			Help:        "Number of concurrent-edit conflicts detected",
			ConstLabels: o.Labels,
		}),
		webhookOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "api_webhook_deliveries_total",
			Help:        "Webhook deliveries by terminal outcome",
			ConstLabels: o.Labels,
		}, []string{"outcome"}),
	}
}

type metricsInst struct {
	presenceWrites    prometheus.Counter
	conflictsDetected prometheus.Counter
	webhookOutcomes   *prometheus.CounterVec
}

func (m *metricsInst) Register(r prometheus.Registerer) {
	r.MustRegister(
		m.presenceWrites,
		m.conflictsDetected,
		m.webhookOutcomes,
	)
}

func (m *metricsInst) PresenceWrites() prometheus.Counter {
	return m.presenceWrites
}

func (m *metricsInst) ConflictsDetected() prometheus.Counter {
	return m.conflictsDetected
}

func (m *metricsInst) WebhookOutcomes() *prometheus.CounterVec {
	return m.webhookOutcomes
}
