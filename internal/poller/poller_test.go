package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestTickRunsSynchronously(t *testing.T) {
	var count atomic.Int32
	p := New(time.Hour, func(ctx context.Context) { count.Add(1) })

	p.Tick(context.Background())
	p.Tick(context.Background())

	if got := count.Load(); got != 2 {
		t.Fatalf("expected 2 runs, got %d", got)
	}
}

func TestStartFiresOnInterval(t *testing.T) {
	ran := make(chan struct{}, 10)
	p := New(10*time.Millisecond, func(ctx context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	})

	p.Start(context.Background())
	defer p.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("poller never fired")
	}
}

func TestStopTerminatesLoop(t *testing.T) {
	p := New(10*time.Millisecond, func(ctx context.Context) {})
	p.Start(context.Background())

	p.Stop()
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit after Stop")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	p := New(time.Hour, func(ctx context.Context) {})
	p.Start(context.Background())

	p.Stop()
	p.Stop()

	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit")
	}
}

func TestStopWithoutStart(t *testing.T) {
	p := New(time.Hour, func(ctx context.Context) {})
	p.Stop()
}

func TestContextCancelTerminatesLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := New(10*time.Millisecond, func(ctx context.Context) {})
	p.Start(ctx)

	cancel()
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not exit on context cancel")
	}
}
