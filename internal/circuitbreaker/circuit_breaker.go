// Package circuitbreaker implements the circuit-breaker pattern for the
// inference backend. The insight engine consults the breaker before each
// downstream call so a struggling backend is not hammered with work.
//
// State transitions:
//
//	Closed   -> Open      when consecutive failures reach the failure threshold
//	Open     -> HalfOpen  after the cooldown elapses
//	HalfOpen -> Closed    when consecutive successes reach the success threshold
//	HalfOpen -> Open      on any failure
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// State represents the circuit breaker's current state.
type State int

const (
	// StateClosed is normal operation; calls pass through.
	StateClosed State = iota
	// StateOpen rejects calls while the backend is considered failing.
	StateOpen
	// StateHalfOpen probes recovery with live calls.
	StateHalfOpen
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned when a call is rejected because the circuit
// is open.
var ErrCircuitOpen = errors.New("circuit breaker open")

// Breaker guards the downstream inference backend.
type Breaker struct {
	mu               sync.Mutex
	state            State
	failures         int
	successes        int
	failureThreshold int
	successThreshold int
	cooldown         time.Duration
	reopenAt         time.Time
}

// New creates a Breaker. Defaults are applied for zero/negative values:
// failureThreshold=5, successThreshold=1, cooldown=30s.
func New(failureThreshold, successThreshold int, cooldown time.Duration) *Breaker {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if successThreshold <= 0 {
		successThreshold = 1
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &Breaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		cooldown:         cooldown,
	}
}

// State returns the current state, transitioning Open to HalfOpen once the
// cooldown has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resolveState()
}

// resolveState must be called with b.mu held.
func (b *Breaker) resolveState() State {
	if b.state == StateOpen && time.Now().After(b.reopenAt) {
		b.state = StateHalfOpen
		b.successes = 0
	}
	return b.state
}

// Allow reports whether a call should proceed (Closed or HalfOpen).
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resolveState() != StateOpen
}

// RecordSuccess notifies the breaker that a call succeeded.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.successThreshold {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
		}
	case StateClosed:
		b.failures = 0
	}
}

// RecordFailure notifies the breaker that a call failed.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.failureThreshold {
			b.state = StateOpen
			b.reopenAt = time.Now().Add(b.cooldown)
		}
	case StateHalfOpen:
		b.state = StateOpen
		b.reopenAt = time.Now().Add(b.cooldown)
		b.successes = 0
	}
}
