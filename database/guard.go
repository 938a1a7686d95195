package database

import "sync/atomic"

// Guard rejects re-entry into an adapter while a call is in flight.
type Guard struct {
	busy atomic.Bool
}

// Enter marks the adapter busy or fails with ErrConcurrentUse.
func (g *Guard) Enter() error {
	if !g.busy.CompareAndSwap(false, true) {
		return ErrConcurrentUse
	}
	return nil
}

// Leave marks the adapter idle.
func (g *Guard) Leave() {
	g.busy.Store(false)
}
