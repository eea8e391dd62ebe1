package metrics

import "github.com/prometheus/client_golang/prometheus"

// FormMetrics exposes counters/histograms for the lead form engine.
type FormMetrics struct {
	fieldValidations *prometheus.CounterVec
	partialTotal     *prometheus.CounterVec
	submitTotal      *prometheus.CounterVec
	apiLatency       *prometheus.HistogramVec
	snapshotOps      *prometheus.CounterVec
	trackingEvents   *prometheus.CounterVec
	activeSessions   prometheus.Gauge
}

func NewFormMetrics(reg prometheus.Registerer) *FormMetrics {
	m := &FormMetrics{
		fieldValidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadform",
			Subsystem: "form",
			Name:      "field_validations_total",
			Help:      "Field validations run on update, by outcome",
		}, []string{"field", "result"}),
		partialTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadform",
			Subsystem: "form",
			Name:      "partial_submissions_total",
			Help:      "Partial lead submissions",
		}, []string{"status"}),
		submitTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadform",
			Subsystem: "form",
			Name:      "submissions_total",
			Help:      "Final form submissions",
		}, []string{"status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadform",
			Subsystem: "leadapi",
			Name:      "request_seconds",
			Help:      "Latency of lead intake calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		snapshotOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadform",
			Subsystem: "snapshot",
			Name:      "operations_total",
			Help:      "Snapshot store operations by outcome",
		}, []string{"op", "result"}),
		trackingEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadform",
			Subsystem: "tracking",
			Name:      "events_total",
			Help:      "Analytics events emitted",
		}, []string{"destination", "event"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "leadform",
			Subsystem: "session",
			Name:      "active",
			Help:      "Form sessions held in memory",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.fieldValidations, m.partialTotal, m.submitTotal, m.apiLatency, m.snapshotOps, m.trackingEvents, m.activeSessions)
	return m
}

func (m *FormMetrics) ObserveFieldValidation(field string, valid bool) {
	if m == nil {
		return
	}
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.fieldValidations.WithLabelValues(field, result).Inc()
}

func (m *FormMetrics) ObservePartial(status string) {
	if m == nil {
		return
	}
	m.partialTotal.WithLabelValues(status).Inc()
}

func (m *FormMetrics) ObserveSubmit(status string) {
	if m == nil {
		return
	}
	m.submitTotal.WithLabelValues(status).Inc()
}

func (m *FormMetrics) ObserveAPILatency(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.apiLatency.WithLabelValues(endpoint).Observe(seconds)
}

func (m *FormMetrics) ObserveSnapshot(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.snapshotOps.WithLabelValues(op, result).Inc()
}

func (m *FormMetrics) ObserveTrackingEvent(destination, event string) {
	if m == nil {
		return
	}
	m.trackingEvents.WithLabelValues(destination, event).Inc()
}

func (m *FormMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
