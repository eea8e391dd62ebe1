// Package session maps signed session handles to live form controllers.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mushinbuys/leadform/internal/form"
	"github.com/mushinbuys/leadform/internal/observability/metrics"
	"github.com/mushinbuys/leadform/pkg/logging"
)

const defaultIssuer = "leadform"

// ErrInvalidToken is returned for handles that are malformed, expired, or not ours.
var ErrInvalidToken = errors.New("session: invalid token")

// Factory builds the controller for a session id. It is called on creation
// and again when a handle outlives the in-memory registry, so the controller
// must hydrate from durable snapshots.
type Factory func(ctx context.Context, sessionID string) *form.Controller

// Config controls handle signing and eviction.
type Config struct {
	Secret      []byte
	Issuer      string
	TTL         time.Duration
	IdleTimeout time.Duration
}

// Session is what a client receives on creation.
type Session struct {
	ID        string    `json:"sessionId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type entry struct {
	ctrl     *form.Controller
	lastSeen time.Time
}

// Manager is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry

	cfg     Config
	factory Factory
	metrics *metrics.FormMetrics
	logger  *logging.Logger
	now     func() time.Time
}

func NewManager(cfg Config, factory Factory, m *metrics.FormMetrics, logger *logging.Logger) *Manager {
	if len(cfg.Secret) == 0 {
		panic("session: signing secret required")
	}
	if factory == nil {
		panic("session: controller factory required")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = defaultIssuer
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Manager{
		sessions: make(map[string]*entry),
		cfg:      cfg,
		factory:  factory,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Create starts a new form session.
func (m *Manager) Create(ctx context.Context) (Session, *form.Controller, error) {
	id := uuid.NewString()
	now := m.now()
	expires := now.Add(m.cfg.TTL)
	token, err := m.sign(id, now, expires)
	if err != nil {
		return Session{}, nil, err
	}

	ctrl := m.factory(ctx, id)
	m.mu.Lock()
	m.sessions[id] = &entry{ctrl: ctrl, lastSeen: now}
	n := len(m.sessions)
	m.mu.Unlock()
	m.metrics.SetActiveSessions(n)

	m.logger.Info("form session created", "session_id", id)
	return Session{ID: id, Token: token, ExpiresAt: expires}, ctrl, nil
}

// Resolve verifies token and returns its controller, rebuilding it from the
// snapshot store when it is no longer held in memory.
func (m *Manager) Resolve(ctx context.Context, token string) (string, *form.Controller, error) {
	id, err := m.parse(token)
	if err != nil {
		return "", nil, err
	}

	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		e.lastSeen = m.now()
		m.mu.Unlock()
		return id, e.ctrl, nil
	}
	m.mu.Unlock()

	ctrl := m.factory(ctx, id)
	m.mu.Lock()
	// Another request may have rebuilt it first.
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.now()
		m.mu.Unlock()
		return id, e.ctrl, nil
	}
	m.sessions[id] = &entry{ctrl: ctrl, lastSeen: m.now()}
	n := len(m.sessions)
	m.mu.Unlock()
	m.metrics.SetActiveSessions(n)

	m.logger.Info("form session restored", "session_id", id)
	return id, ctrl, nil
}

// Evict drops a session from memory. Its snapshot is left alone.
func (m *Manager) Evict(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	m.metrics.SetActiveSessions(n)
}

// Sweep evicts sessions idle for longer than the idle timeout and returns how many went.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.cfg.IdleTimeout)
	m.mu.Lock()
	evicted := 0
	for id, e := range m.sessions {
		// A session mid-submit stays until its request finishes.
		if e.lastSeen.Before(cutoff) && !e.ctrl.State().IsSubmitting {
			delete(m.sessions, id)
			evicted++
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()
	m.metrics.SetActiveSessions(n)
	return evicted
}

// Run sweeps idle sessions until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	interval := m.cfg.IdleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Debug("evicted idle form sessions", "count", n)
			}
		}
	}
}

// Len reports how many sessions are held in memory.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) sign(id string, issued, expires time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   id,
		Issuer:    m.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("session: sign token: %w", err)
	}
	return token, nil
}

func (m *Manager) parse(tokenString string) (string, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.cfg.Secret, nil
	},
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}
