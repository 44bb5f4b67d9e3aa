package efis

import (
	"context"
	"sync/atomic"
)

// Redraw is the dirty flag shared by writers and the render actor. A
// request sets the flag and wakes a waiting actor; any number of requests
// made before the actor consumes the flag produce a single frame.
type Redraw struct {
	dirty atomic.Bool
	wake  chan struct{}
}

var _ Invalidator = (*Redraw)(nil)

func NewRedraw() *Redraw {
	return &Redraw{wake: make(chan struct{}, 1)}
}

// RequestRender marks the display dirty. It never blocks.
func (r *Redraw) RequestRender() {
	r.dirty.Store(true)
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Dirty reports whether a frame is pending without consuming it.
func (r *Redraw) Dirty() bool {
	return r.dirty.Load()
}

// Consume clears the flag and reports whether it was set. The render actor
// calls it once per opportunity to paint and draws only on true.
func (r *Redraw) Consume() bool {
	return r.dirty.Swap(false)
}

// Run is a render actor for hosts without their own frame loop: it sleeps
// until a request arrives and calls frame once per consumed request batch.
// It returns when ctx is done.
func (r *Redraw) Run(ctx context.Context, frame func()) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-r.wake:
			if r.Consume() {
				frame()
			}
		}
	}
}
