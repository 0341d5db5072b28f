package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter_AllowsBurst(t *testing.T) {
	l := New(1, 3)
	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("request %d within burst should be allowed", i)
		}
	}
	if l.Allow() {
		t.Error("request beyond burst should be rejected")
	}
}

func TestLimiter_Refills(t *testing.T) {
	l := New(100, 1)
	if !l.Allow() {
		t.Fatal("first request should be allowed")
	}
	if l.Allow() {
		t.Fatal("bucket should be empty")
	}
	time.Sleep(20 * time.Millisecond) // refills ~2 tokens, capped at burst 1
	if !l.Allow() {
		t.Error("request after refill should be allowed")
	}
}

func TestLimiter_DefaultBurst(t *testing.T) {
	l := New(2, 0)
	if !l.Allow() || !l.Allow() {
		t.Error("burst should default to the rate")
	}
	if l.Allow() {
		t.Error("third request should be rejected")
	}
}

func TestStore_PerKeyIsolation(t *testing.T) {
	s := NewStore(1, 1)
	if !s.Allow("student-a") {
		t.Fatal("first request for student-a should be allowed")
	}
	if s.Allow("student-a") {
		t.Error("second request for student-a should be rejected")
	}
	if !s.Allow("student-b") {
		t.Error("student-b has an independent bucket")
	}
}
