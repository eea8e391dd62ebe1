// Package snapshot persists the serialized form state between requests.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mushinbuys/leadform/internal/leads"
)

// DefaultKeyPrefix is the well-known key the form snapshot lives under.
const DefaultKeyPrefix = "leadFormData"

// ErrNotFound is returned when no snapshot exists for a key.
var ErrNotFound = errors.New("snapshot: not found")

// Store keeps one JSON blob per key.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// KeyFor scopes the well-known key to one form session.
func KeyFor(prefix, sessionID string) string {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if sessionID == "" {
		return prefix
	}
	return prefix + ":" + sessionID
}

// Port binds a Store to a single key and speaks FormState.
type Port struct {
	store Store
	key   string
}

// Bind returns the load/save/clear port for key.
func Bind(store Store, key string) *Port {
	if store == nil {
		panic("snapshot: store required")
	}
	return &Port{store: store, key: key}
}

// Key returns the bound key.
func (p *Port) Key() string {
	return p.key
}

// Load decodes the stored snapshot over the default state, so stored values
// win and defaults fill whatever the snapshot lacks. found is false when
// nothing was stored.
func (p *Port) Load(ctx context.Context) (state leads.FormState, found bool, err error) {
	state = leads.DefaultFormState()
	data, err := p.store.Load(ctx, p.key)
	if errors.Is(err, ErrNotFound) {
		return state, false, nil
	}
	if err != nil {
		return state, false, fmt.Errorf("snapshot: load %s: %w", p.key, err)
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return leads.DefaultFormState(), false, fmt.Errorf("snapshot: decode %s: %w", p.key, err)
	}
	return state, true, nil
}

// Save writes the full state.
func (p *Port) Save(ctx context.Context, state leads.FormState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("snapshot: encode %s: %w", p.key, err)
	}
	if err := p.store.Save(ctx, p.key, data); err != nil {
		return fmt.Errorf("snapshot: save %s: %w", p.key, err)
	}
	return nil
}

// Clear removes the snapshot entirely.
func (p *Port) Clear(ctx context.Context) error {
	if err := p.store.Delete(ctx, p.key); err != nil {
		return fmt.Errorf("snapshot: clear %s: %w", p.key, err)
	}
	return nil
}
