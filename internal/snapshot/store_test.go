package snapshot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mushinbuys/leadform/internal/leads"
)

func TestKeyFor(t *testing.T) {
	assert.Equal(t, "leadFormData", KeyFor("", ""))
	assert.Equal(t, "leadFormData:abc", KeyFor("", "abc"))
	assert.Equal(t, "lf:abc", KeyFor("lf", "abc"))
}

func TestPortRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	port := Bind(store, KeyFor("", "s1"))

	state, found, err := port.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, leads.DefaultFormState(), state)

	state.Address = "123 Main St"
	state.Phone = "5551234567"
	state.LeadID = "L1"
	require.NoError(t, port.Save(ctx, state))

	loaded, found, err := port.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, state, loaded)

	require.NoError(t, port.Clear(ctx))
	assert.Equal(t, 0, store.Len())
}

func TestPortLoadMergesOverDefaults(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, "k", []byte(`{"phone":"5551234567"}`)))

	state, found, err := Bind(store, "k").Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "5551234567", state.Phone)
	assert.Equal(t, "", state.Address)
	assert.False(t, state.IsSubmitting)
}

func TestPortLoadCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, "k", []byte(`{not json`)))

	state, found, err := Bind(store, "k").Load(ctx)
	require.Error(t, err)
	assert.False(t, found)
	assert.Equal(t, leads.DefaultFormState(), state)
}

func TestMemoryStoreCopiesData(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := []byte(`{"a":1}`)
	require.NoError(t, store.Save(ctx, "k", data))
	data[0] = 'x'

	got, err := store.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
