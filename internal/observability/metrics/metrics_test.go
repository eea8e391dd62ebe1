package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestFormMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewFormMetrics(reg)

	m.ObserveFieldValidation("phone", false)
	m.ObserveFieldValidation("phone", false)
	m.ObservePartial("success")
	m.ObserveSubmit("validation_failed")
	m.ObserveAPILatency("submit-form", 0.2)
	m.ObserveSnapshot("save", errors.New("down"))
	m.ObserveTrackingEvent("analytics", "generate_lead")
	m.SetActiveSessions(3)

	if got := testutil.ToFloat64(m.fieldValidations.WithLabelValues("phone", "invalid")); got != 2 {
		t.Fatalf("expected 2 invalid phone validations, got %v", got)
	}
	if got := testutil.ToFloat64(m.snapshotOps.WithLabelValues("save", "error")); got != 1 {
		t.Fatalf("expected 1 failed snapshot save, got %v", got)
	}
	if got := testutil.ToFloat64(m.activeSessions); got != 3 {
		t.Fatalf("expected 3 active sessions, got %v", got)
	}
}

func TestFormMetricsNilSafe(t *testing.T) {
	var m *FormMetrics
	m.ObserveFieldValidation("email", true)
	m.ObservePartial("error")
	m.ObserveSubmit("success")
	m.ObserveAPILatency("submit-partial", 0.1)
	m.ObserveSnapshot("clear", nil)
	m.ObserveTrackingEvent("pixel", "Lead")
	m.SetActiveSessions(1)
}
