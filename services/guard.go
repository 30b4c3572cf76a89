package services

import "sync/atomic"

// Guard marks a full table rewrite as in flight. The snapshot refresher is the only
// writer; the health prober reads it at entry and again before applying a patch.
type Guard struct {
	busy atomic.Bool
}

// TryAcquire sets the guard if it is free and reports whether it did.
func (g *Guard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Release clears the guard.
func (g *Guard) Release() {
	g.busy.Store(false)
}

// Held reports whether a rewrite is in flight.
func (g *Guard) Held() bool {
	return g.busy.Load()
}
