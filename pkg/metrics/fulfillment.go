package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FulfillmentMetrics tracks vendor pushes and status polling.
type FulfillmentMetrics struct {
	pushes   *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	syncs    *prometheus.CounterVec
	breakers *prometheus.GaugeVec
}

// NewFulfillmentMetrics registers the fulfillment metrics on reg. A nil
// registerer yields a no-op recorder.
func NewFulfillmentMetrics(reg prometheus.Registerer) *FulfillmentMetrics {
	if reg == nil {
		return &FulfillmentMetrics{}
	}
	pushes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prodata_provider_push_total",
		Help: "Order item submissions to upstream vendors.",
	}, []string{"provider", "outcome", "error_kind"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prodata_provider_request_duration_seconds",
		Help:    "Round trip duration of vendor HTTP calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
	syncs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prodata_provider_status_sync_total",
		Help: "Pending orders checked against vendor status endpoints.",
	}, []string{"provider", "result"})
	breakers := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "prodata_provider_breaker_state",
		Help: "Circuit breaker state per vendor (0 closed, 1 half-open, 2 open).",
	}, []string{"provider"})
	reg.MustRegister(pushes, latency, syncs, breakers)
	return &FulfillmentMetrics{pushes: pushes, latency: latency, syncs: syncs, breakers: breakers}
}

// IncPush counts one item submission.
func (m *FulfillmentMetrics) IncPush(provider, outcome, errorKind string) {
	if m == nil || m.pushes == nil {
		return
	}
	if errorKind == "" {
		errorKind = "none"
	}
	m.pushes.WithLabelValues(normalizeLabel(provider), outcome, errorKind).Inc()
}

func (m *FulfillmentMetrics) ObserveRequest(provider string, d time.Duration) {
	if m == nil || m.latency == nil {
		return
	}
	m.latency.WithLabelValues(normalizeLabel(provider)).Observe(d.Seconds())
}

// IncSync counts one polled order; result is completed, pending, failed or error.
func (m *FulfillmentMetrics) IncSync(provider, result string) {
	if m == nil || m.syncs == nil {
		return
	}
	m.syncs.WithLabelValues(normalizeLabel(provider), result).Inc()
}

func (m *FulfillmentMetrics) SetBreakerState(provider string, state int) {
	if m == nil || m.breakers == nil {
		return
	}
	m.breakers.WithLabelValues(normalizeLabel(provider)).Set(float64(state))
}
