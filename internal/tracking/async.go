package tracking

import (
	"context"
	"sync"
	"time"

	"github.com/mushinbuys/leadform/pkg/logging"
)

const asyncSendTimeout = 5 * time.Second

// Async queues events for a background worker so callers never wait on a provider.
// When the queue is full the event is dropped.
type Async struct {
	next   Tracker
	logger *logging.Logger
	queue  chan Event

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAsync starts the worker.
func NewAsync(next Tracker, size int, logger *logging.Logger) *Async {
	if next == nil {
		next = Noop{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	if size <= 0 {
		size = 64
	}
	a := &Async{
		next:   next,
		logger: logger,
		queue:  make(chan Event, size),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

// Track enqueues evt. It never blocks and never fails.
func (a *Async) Track(_ context.Context, evt Event) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return nil
	}
	select {
	case a.queue <- evt:
	default:
		a.logger.Warn("tracking queue full, dropping event", "event", evt.Name, "destination", evt.Destination)
	}
	return nil
}

func (a *Async) run() {
	defer close(a.done)
	for evt := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), asyncSendTimeout)
		if err := a.next.Track(ctx, evt); err != nil {
			a.logger.Warn("tracking event failed", "event", evt.Name, "destination", evt.Destination, "error", err)
		}
		cancel()
	}
}

// Close stops accepting events and waits for the queue to drain or ctx to end.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
