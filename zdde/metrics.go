package zdde

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments traffic to the design server. The external process is
// known to degrade under heavy call volume, so per-operation counts are the
// first thing to look at when it starts timing out.
type Metrics struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the call instrumentation on its own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zdde_calls_total",
			Help: "Remote data items sent to the design server, by operation.",
		}, []string{"op"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zdde_call_errors_total",
			Help: "Remote calls that failed at the transport, by operation.",
		}, []string{"op"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "zdde_call_duration_seconds",
			Help:    "Remote call latency, by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}
	m.registry.MustRegister(m.calls, m.errors, m.duration)
	return m
}

func (m *Metrics) observe(op string, d time.Duration, err error) {
	m.calls.WithLabelValues(op).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		m.errors.WithLabelValues(op).Inc()
	}
}

// Registry exposes the metrics for gathering or HTTP export.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// CallCounts gathers the per-operation call totals, for quick reporting
// without an HTTP endpoint.
func (m *Metrics) CallCounts() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	counts := make(map[string]float64)
	for _, fam := range families {
		if fam.GetName() != "zdde_calls_total" {
			continue
		}
		for _, metric := range fam.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "op" {
					counts[label.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}
	return counts, nil
}
