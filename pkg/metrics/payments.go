package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records payment confirmation outcomes across both paths.
type PaymentMetrics struct {
	verifications *prometheus.CounterVec
	webhookEvents *prometheus.CounterVec
	tamper        prometheus.Counter
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
// A nil registerer yields a no-op instance.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_verifications_total",
		Help: "Payment confirmation attempts by path and outcome.",
	}, []string{"path", "outcome"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events_total",
		Help: "Gateway webhook deliveries by event type and outcome.",
	}, []string{"event", "outcome"})
	tamper := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_tamper_rejections_total",
		Help: "Confirmations rejected because the order contents were altered.",
	})
	reg.MustRegister(verifications, webhookEvents, tamper)
	return &PaymentMetrics{
		verifications: verifications,
		webhookEvents: webhookEvents,
		tamper:        tamper,
	}
}

// ObserveVerification counts a confirmation attempt on the named path.
func (p *PaymentMetrics) ObserveVerification(path, outcome string) {
	if p == nil || p.verifications == nil {
		return
	}
	p.verifications.WithLabelValues(normalizeLabel(path), normalizeLabel(outcome)).Inc()
}

// ObserveWebhookEvent counts a webhook delivery by event type.
func (p *PaymentMetrics) ObserveWebhookEvent(event, outcome string) {
	if p == nil || p.webhookEvents == nil {
		return
	}
	p.webhookEvents.WithLabelValues(normalizeLabel(event), normalizeLabel(outcome)).Inc()
}

// IncTamperRejection counts an integrity-check failure.
func (p *PaymentMetrics) IncTamperRejection() {
	if p == nil || p.tamper == nil {
		return
	}
	p.tamper.Inc()
}
