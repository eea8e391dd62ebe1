package tracking

import (
	"context"

	"github.com/mushinbuys/leadform/internal/observability/metrics"
)

// MetricsTracker counts events instead of sending them anywhere.
type MetricsTracker struct {
	metrics *metrics.FormMetrics
}

func NewMetricsTracker(m *metrics.FormMetrics) *MetricsTracker {
	return &MetricsTracker{metrics: m}
}

func (t *MetricsTracker) Track(_ context.Context, evt Event) error {
	t.metrics.ObserveTrackingEvent(string(evt.Destination), evt.Name)
	return nil
}
