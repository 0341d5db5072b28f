package circuitbreaker

import (
	"testing"
	"time"
)

func TestBreaker_StartsClosed(t *testing.T) {
	b := New(3, 1, time.Second)
	if b.State() != StateClosed {
		t.Errorf("expected closed, got %s", b.State())
	}
	if !b.Allow() {
		t.Error("expected calls to be allowed when closed")
	}
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := New(3, 1, time.Second)
	b.RecordFailure()
	b.RecordFailure()
	if b.State() != StateClosed {
		t.Errorf("expected closed before threshold, got %s", b.State())
	}
	b.RecordFailure()
	if b.State() != StateOpen {
		t.Errorf("expected open after 3 failures, got %s", b.State())
	}
	if b.Allow() {
		t.Error("expected calls to be rejected when open")
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New(3, 1, time.Second)
	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	if b.State() != StateClosed {
		t.Errorf("expected closed, got %s", b.State())
	}
}

func TestBreaker_HalfOpenAfterCooldown(t *testing.T) {
	b := New(1, 1, 10*time.Millisecond)
	b.RecordFailure()
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %s", b.State())
	}

	time.Sleep(20 * time.Millisecond)
	if b.State() != StateHalfOpen {
		t.Errorf("expected half_open after cooldown, got %s", b.State())
	}
	if !b.Allow() {
		t.Error("expected probe calls to be allowed when half-open")
	}
}

func TestBreaker_HalfOpenClosesOnSuccess(t *testing.T) {
	b := New(1, 2, 10*time.Millisecond)
	b.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	b.State() // force Open to HalfOpen

	b.RecordSuccess()
	if b.State() != StateHalfOpen {
		t.Errorf("expected half_open before success threshold, got %s", b.State())
	}
	b.RecordSuccess()
	if b.State() != StateClosed {
		t.Errorf("expected closed after success threshold, got %s", b.State())
	}
}

func TestBreaker_HalfOpenReopensOnFailure(t *testing.T) {
	b := New(1, 1, 10*time.Millisecond)
	b.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	b.State() // force Open to HalfOpen

	b.RecordFailure()
	if b.State() != StateOpen {
		t.Errorf("expected open after half-open failure, got %s", b.State())
	}
}

func TestState_String(t *testing.T) {
	cases := map[State]string{
		StateClosed:   "closed",
		StateOpen:     "open",
		StateHalfOpen: "half_open",
		State(99):     "unknown",
	}
	for s, want := range cases {
		if s.String() != want {
			t.Errorf("State(%d).String() = %s, want %s", s, s.String(), want)
		}
	}
}
