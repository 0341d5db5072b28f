package gate

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestGate_AcquireRelease(t *testing.T) {
	g := New(2, time.Second)

	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.InFlight() != 1 {
		t.Errorf("expected 1 in flight, got %d", g.InFlight())
	}
	g.Release()
	if g.InFlight() != 0 {
		t.Errorf("expected 0 in flight, got %d", g.InFlight())
	}
}

func TestGate_BusyTimeout(t *testing.T) {
	g := New(1, 20*time.Millisecond)

	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer g.Release()

	start := time.Now()
	err := g.Acquire(context.Background())
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("Acquire returned before the queue timeout elapsed")
	}
}

func TestGate_ContextCancellation(t *testing.T) {
	g := New(1, time.Minute)

	if err := g.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer g.Release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := g.Acquire(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGate_BoundsConcurrency(t *testing.T) {
	const size = 2
	g := New(size, time.Second)

	var (
		mu      sync.Mutex
		current int
		peak    int
	)

	var wg sync.WaitGroup
	for i := 0; i < size+3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.Acquire(context.Background()); err != nil {
				t.Error(err)
				return
			}
			defer g.Release()

			mu.Lock()
			current++
			if current > peak {
				peak = current
			}
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			current--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if peak > size {
		t.Errorf("observed %d simultaneous holders, gate size is %d", peak, size)
	}
}

func TestGate_Defaults(t *testing.T) {
	g := New(0, 0)
	if g.Size() != 2 {
		t.Errorf("expected default size 2, got %d", g.Size())
	}
}
