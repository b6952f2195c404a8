package poller

import (
	"context"
	"sync"
	"time"
)

// Poller runs a function on a fixed interval with an explicit start/stop
// lifecycle. Tests drive a single Tick directly instead of waiting on the
// wall clock.
type Poller struct {
	interval time.Duration
	fn       func(ctx context.Context)

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func New(interval time.Duration, fn func(ctx context.Context)) *Poller {
	return &Poller{
		interval: interval,
		fn:       fn,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the periodic loop. The first tick fires after one interval;
// callers wanting an immediate run invoke Tick themselves.
func (p *Poller) Start(ctx context.Context) {
	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.fn(ctx)
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Tick runs the function once, synchronously.
func (p *Poller) Tick(ctx context.Context) {
	p.fn(ctx)
}

// Stop terminates the loop. Safe to call more than once, and safe to call on
// a poller that was never started.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
}

// Done is closed once the loop has exited.
func (p *Poller) Done() <-chan struct{} {
	return p.done
}
