// Package slotlock serializes capacity mutations on a per-slot basis.
// Every slot gets its own gate, so writes against different slots never
// contend while writes against the same slot run one at a time.
package slotlock

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBusy is returned when a gate could not be acquired within the
// configured wait budget. Callers should surface it as a retryable
// condition rather than an outright failure.
var ErrBusy = errors.New("slot is busy, try again")

const defaultWaitTimeout = 3 * time.Second

// Gate hands out one permit per slot ID.
type Gate struct {
	mu          sync.Mutex
	slots       map[string]*permit
	waitTimeout time.Duration
}

type permit struct {
	sem  chan struct{}
	refs int
}

// New creates a gate with the given acquisition wait budget.
// A non-positive timeout falls back to the default.
func New(waitTimeout time.Duration) *Gate {
	if waitTimeout <= 0 {
		waitTimeout = defaultWaitTimeout
	}
	return &Gate{
		slots:       make(map[string]*permit),
		waitTimeout: waitTimeout,
	}
}

// WithSlot runs fn while holding the gate for slotID. If the gate cannot
// be acquired before the wait budget expires, ErrBusy is returned and fn
// never runs. Context cancellation also aborts the wait.
func (g *Gate) WithSlot(ctx context.Context, slotID string, fn func() error) error {
	p := g.acquireRef(slotID)
	defer g.releaseRef(slotID)

	timer := time.NewTimer(g.waitTimeout)
	defer timer.Stop()

	select {
	case p.sem <- struct{}{}:
		defer func() { <-p.sem }()
		return fn()
	case <-timer.C:
		return ErrBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

// acquireRef returns the permit for slotID, creating it on first use.
// Refcounting lets idle permits be dropped so the map does not grow
// with every slot ever touched.
func (g *Gate) acquireRef(slotID string) *permit {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.slots[slotID]
	if !ok {
		p = &permit{sem: make(chan struct{}, 1)}
		g.slots[slotID] = p
	}
	p.refs++
	return p
}

func (g *Gate) releaseRef(slotID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, ok := g.slots[slotID]
	if !ok {
		return
	}
	p.refs--
	if p.refs <= 0 {
		delete(g.slots, slotID)
	}
}
