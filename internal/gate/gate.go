// Package gate bounds the number of simultaneous downstream inference
// calls. The inference backend is a shared, resource-constrained service,
// so callers must hold a permit for the duration of each call.
package gate

import (
	"context"
	"errors"
	"time"
)

// ErrBusy is returned when a permit could not be acquired within the
// configured queue timeout.
var ErrBusy = errors.New("all inference slots busy")

// Gate is a counting permit set of fixed size. Acquire blocks up to the
// queue timeout; Release must be called on every terminating path of a
// call that acquired a permit.
type Gate struct {
	permits     chan struct{}
	waitTimeout time.Duration
}

// New creates a Gate with size permits and the given maximum queue wait.
// Defaults are applied for zero/negative values: size=2, waitTimeout=30s.
func New(size int, waitTimeout time.Duration) *Gate {
	if size <= 0 {
		size = 2
	}
	if waitTimeout <= 0 {
		waitTimeout = 30 * time.Second
	}
	return &Gate{
		permits:     make(chan struct{}, size),
		waitTimeout: waitTimeout,
	}
}

// Acquire obtains a permit, waiting up to the queue timeout. It returns
// ErrBusy on timeout and ctx.Err() if the context is cancelled first.
// On a nil return the caller holds a permit and must call Release.
func (g *Gate) Acquire(ctx context.Context) error {
	select {
	case g.permits <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(g.waitTimeout)
	defer timer.Stop()

	select {
	case g.permits <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrBusy
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release returns a permit. Calling Release without a matching Acquire is
// a programming error and panics.
func (g *Gate) Release() {
	select {
	case <-g.permits:
	default:
		panic("gate: release without acquire")
	}
}

// InFlight returns the number of permits currently held.
func (g *Gate) InFlight() int {
	return len(g.permits)
}

// Size returns the total permit count.
func (g *Gate) Size() int {
	return cap(g.permits)
}
