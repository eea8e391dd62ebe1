package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mushinbuys/leadform/internal/form"
	"github.com/mushinbuys/leadform/internal/leadapi"
	"github.com/mushinbuys/leadform/internal/leads"
	"github.com/mushinbuys/leadform/internal/observability/metrics"
	"github.com/mushinbuys/leadform/internal/snapshot"
	"github.com/mushinbuys/leadform/pkg/logging"
)

type stubAPI struct{}

func (stubAPI) SubmitPartial(context.Context, leadapi.PartialLead) (leadapi.PartialResult, error) {
	return leadapi.PartialResult{LeadID: "lead-1"}, nil
}

func (stubAPI) SubmitForm(context.Context, leads.LeadFormData) (leads.SubmissionResponse, error) {
	return leads.SubmissionResponse{Success: true}, nil
}

type fixture struct {
	mgr   *Manager
	store *snapshot.MemoryStore
	built []string
	mu    sync.Mutex
	clock time.Time
}

func newFixture(t *testing.T, m *metrics.FormMetrics) *fixture {
	t.Helper()
	f := &fixture{
		store: snapshot.NewMemoryStore(),
		clock: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	factory := func(ctx context.Context, id string) *form.Controller {
		f.mu.Lock()
		f.built = append(f.built, id)
		f.mu.Unlock()
		return form.New(ctx, form.Options{
			SessionID: id,
			Snapshots: snapshot.Bind(f.store, snapshot.KeyFor(snapshot.DefaultKeyPrefix, id)),
			API:       stubAPI{},
			Logger:    logging.Discard(),
		})
	}
	f.mgr = NewManager(Config{
		Secret:      []byte("test-secret"),
		TTL:         time.Hour,
		IdleTimeout: 10 * time.Minute,
	}, factory, m, logging.Discard())
	f.mgr.now = func() time.Time { return f.clock }
	return f
}

func TestNewManagerRequiresSecretAndFactory(t *testing.T) {
	assert.Panics(t, func() { NewManager(Config{}, func(context.Context, string) *form.Controller { return nil }, nil, nil) })
	assert.Panics(t, func() { NewManager(Config{Secret: []byte("x")}, nil, nil, nil) })
}

func TestCreateAndResolve(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	sess, ctrl, err := f.mgr.Create(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, f.clock.Add(time.Hour), sess.ExpiresAt)

	id, resolved, err := f.mgr.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, id)
	assert.Same(t, ctrl, resolved)
	assert.Equal(t, 1, f.mgr.Len())
}

func TestResolveRejectsBadTokens(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, _, err := f.mgr.Resolve(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "0b6c3f0e-6a6b-4a53-8a53-2f4f8f1c8e11",
		Issuer:  defaultIssuer,
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)
	_, _, err = f.mgr.Resolve(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidToken)

	sess, _, err := f.mgr.Create(ctx)
	require.NoError(t, err)
	f.clock = f.clock.Add(2 * time.Hour)
	_, _, err = f.mgr.Resolve(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrInvalidToken, "expired")
}

func TestResolveRebuildsEvictedSessionFromSnapshot(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	sess, ctrl, err := f.mgr.Create(ctx)
	require.NoError(t, err)
	ctrl.Update(ctx, leads.Patch{FirstName: leads.Ptr("Ada")})

	f.mgr.Evict(sess.ID)
	assert.Zero(t, f.mgr.Len())

	_, restored, err := f.mgr.Resolve(ctx, sess.Token)
	require.NoError(t, err)
	assert.NotSame(t, ctrl, restored)
	assert.Equal(t, "Ada", restored.State().FirstName)
	assert.Equal(t, []string{sess.ID, sess.ID}, f.built)
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewFormMetrics(reg)
	f := newFixture(t, m)
	ctx := context.Background()

	idle, _, err := f.mgr.Create(ctx)
	require.NoError(t, err)
	f.clock = f.clock.Add(8 * time.Minute)
	active, _, err := f.mgr.Create(ctx)
	require.NoError(t, err)
	assertActive(t, reg, 2)

	f.clock = f.clock.Add(5 * time.Minute)
	assert.Equal(t, 1, f.mgr.Sweep())
	assert.Equal(t, 1, f.mgr.Len())
	assertActive(t, reg, 1)

	// The idle one is rebuilt on demand; the active one is still held.
	_, _, err = f.mgr.Resolve(ctx, active.Token)
	require.NoError(t, err)
	_, _, err = f.mgr.Resolve(ctx, idle.Token)
	require.NoError(t, err)
	assert.Equal(t, 2, f.mgr.Len())
}

func assertActive(t *testing.T, reg *prometheus.Registry, n int) {
	t.Helper()
	expected := fmt.Sprintf(`
# HELP leadform_session_active Form sessions held in memory
# TYPE leadform_session_active gauge
leadform_session_active %d
`, n)
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "leadform_session_active"))
}

func TestRunStopsOnCancel(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.mgr.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
