package view

import (
	"context"
	"errors"
	"sync"
)

var ErrSuperseded = errors.New("superseded by a newer load")

// generation orders the loads of one controller. Starting a load cancels the
// one in flight, and a result is only committed while its generation is
// still the newest.
type generation struct {
	mu      sync.Mutex
	current uint64
	cancel  context.CancelFunc
}

func (g *generation) begin(ctx context.Context) (context.Context, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
	}
	g.current++

	ctx, cancel := context.WithCancel(ctx)
	g.cancel = cancel

	return ctx, g.current
}

// now returns the current generation without starting a new one. Mutations use
// it so that a navigation started meanwhile wins over their result.
func (g *generation) now() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.current
}

// commit runs fn while holding the lock, only if gen is still current.
func (g *generation) commit(gen uint64, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if gen != g.current {
		return false
	}
	fn()
	return true
}

// read runs fn while holding the lock.
func (g *generation) read(fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	fn()
}

// Close cancels whatever load is still in flight.
func (g *generation) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.current++
}
