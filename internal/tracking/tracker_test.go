package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mushinbuys/leadform/internal/observability/metrics"
	"github.com/mushinbuys/leadform/pkg/logging"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (r *recorder) Track(_ context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return r.err
}

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Name)
	}
	return out
}

func TestMultiJoinsErrors(t *testing.T) {
	ok := &recorder{}
	bad := &recorder{err: errors.New("pixel down")}
	err := Multi{ok, nil, bad}.Track(context.Background(), Event{Name: EventLead})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pixel down")
	assert.Equal(t, []string{EventLead}, ok.names())
}

func TestEventSets(t *testing.T) {
	gen := LeadGenerated("s1", "L1")
	require.Len(t, gen, 2)
	assert.Equal(t, EventGenerateLead, gen[0].Name)
	assert.Equal(t, "USD", gen[0].Params["currency"])

	done := LeadCompleted("s1", "L1")
	require.Len(t, done, 3)
	assert.Equal(t, DestinationHeatmap, done[2].Destination)
}

func TestConversionEvent(t *testing.T) {
	assert.False(t, ConversionTarget{ID: "AW-1"}.Enabled())
	target := ConversionTarget{ID: "AW-1", Label: "abc"}
	require.True(t, target.Enabled())

	params := map[string]any{"lead_id": "L1", "send_to": "other"}
	evt := Conversion("s1", target, params)
	assert.Equal(t, EventConversion, evt.Name)
	assert.Equal(t, DestinationAnalytics, evt.Destination)
	assert.Equal(t, "AW-1/abc", evt.Params["send_to"])
	assert.Equal(t, "L1", evt.Params["lead_id"])
	assert.Equal(t, "other", params["send_to"], "caller params are not modified")
}

func TestGA4DisabledIsNoop(t *testing.T) {
	g := NewGA4(nil, GA4Config{})
	assert.False(t, g.Enabled())
	assert.NoError(t, g.Track(context.Background(), Event{Destination: DestinationAnalytics, Name: EventGenerateLead}))
}

func TestGA4PostsAnalyticsEvents(t *testing.T) {
	var hits int
	var payload ga4Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, "G-TEST", r.URL.Query().Get("measurement_id"))
		assert.Equal(t, "secret", r.URL.Query().Get("api_secret"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	g := NewGA4(nil, GA4Config{MeasurementID: "G-TEST", APISecret: "secret", Endpoint: srv.URL})
	ctx := context.Background()
	for _, evt := range LeadCompleted("s1", "L1") {
		require.NoError(t, g.Track(ctx, evt))
	}
	assert.Equal(t, 1, hits, "only analytics-destination events go to GA4")
	assert.Equal(t, "s1", payload.ClientID)
	require.Len(t, payload.Events, 1)
	assert.Equal(t, EventFormSubmissionSuccess, payload.Events[0].Name)
}

func TestGA4ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	g := NewGA4(nil, GA4Config{MeasurementID: "G", APISecret: "s", Endpoint: srv.URL})
	err := g.Track(context.Background(), Event{Destination: DestinationAnalytics, Name: "x"})
	assert.Error(t, err)
}

func TestAsyncDeliversAndDrains(t *testing.T) {
	rec := &recorder{err: errors.New("ignored")}
	a := NewAsync(rec, 8, logging.Discard())
	for _, evt := range LeadGenerated("s1", "L1") {
		assert.NoError(t, a.Track(context.Background(), evt))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, a.Close(ctx))
	assert.Equal(t, []string{EventGenerateLead, EventLead}, rec.names())

	assert.NoError(t, a.Track(context.Background(), Event{Name: "late"}), "tracking after close is dropped")
}

type blockingTracker struct{ release chan struct{} }

func (b blockingTracker) Track(context.Context, Event) error {
	<-b.release
	return nil
}

func TestAsyncDropsWhenFull(t *testing.T) {
	bt := blockingTracker{release: make(chan struct{})}
	a := NewAsync(bt, 1, logging.Discard())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			_ = a.Track(context.Background(), Event{Name: "e"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Track blocked on a full queue")
	}
	close(bt.release)
	require.NoError(t, a.Close(context.Background()))
}

func TestMetricsTrackerCounts(t *testing.T) {
	m := metrics.NewFormMetrics(prometheus.NewRegistry())
	mt := NewMetricsTracker(m)
	assert.NoError(t, mt.Track(context.Background(), Event{Destination: DestinationPixel, Name: EventLead}))
	assert.NoError(t, NewMetricsTracker(nil).Track(context.Background(), Event{Name: "x"}))
}
