package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryStore_WindowLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c, _ := s.Increment(ctx, "k", time.Minute, t0)
	if c.Count != 1 || !c.ResetAt.Equal(t0.Add(time.Minute)) {
		t.Fatalf("first=%+v", c)
	}
	c, _ = s.Increment(ctx, "k", time.Minute, t0.Add(30*time.Second))
	if c.Count != 2 || !c.ResetAt.Equal(t0.Add(time.Minute)) {
		t.Fatalf("second=%+v", c)
	}

	// The window ends exactly at ResetAt.
	c, _ = s.Increment(ctx, "k", time.Minute, t0.Add(time.Minute))
	if c.Count != 1 || !c.ResetAt.Equal(t0.Add(2*time.Minute)) {
		t.Fatalf("after reset=%+v", c)
	}
}

func TestMemoryStore_Sweep(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	t0 := time.Now()

	_, _ = s.Increment(ctx, "short", time.Second, t0)
	_, _ = s.Increment(ctx, "long", time.Hour, t0)

	if n := s.Sweep(t0.Add(2 * time.Second)); n != 1 {
		t.Fatalf("swept %d want 1", n)
	}
	if s.Len() != 1 {
		t.Fatalf("len=%d want 1", s.Len())
	}
}

func TestMemoryStore_RunStopsOnCancel(t *testing.T) {
	s := NewMemoryStore()
	_, _ = s.Increment(context.Background(), "k", time.Nanosecond, time.Now().Add(-time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for s.Len() != 0 {
		select {
		case <-deadline:
			t.Fatalf("sweep did not run")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestMemoryStore_ConcurrentIncrements(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Increment(ctx, "k", time.Minute, now)
		}()
	}
	wg.Wait()

	c, _ := s.Increment(ctx, "k", time.Minute, now)
	if c.Count != 51 {
		t.Fatalf("count=%d want 51", c.Count)
	}
}
