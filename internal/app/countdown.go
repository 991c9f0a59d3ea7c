package app

import (
	"context"
	"sync"
	"time"
)

// Countdown calls tick once per interval until stopped.
type Countdown struct {
	interval time.Duration
	tick     func(context.Context)

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	runOnce  sync.Once
}

func NewCountdown(interval time.Duration, tick func(context.Context)) *Countdown {
	return &Countdown{
		interval: interval,
		tick:     tick,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the ticking goroutine. Calling it more than once has no effect.
func (c *Countdown) Start(ctx context.Context) {
	c.runOnce.Do(func() {
		go c.run(ctx)
	})
}

func (c *Countdown) run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Stop may have raced with the tick; the stop signal wins.
			select {
			case <-c.stop:
				return
			default:
			}
			c.tick(ctx)
		}
	}
}

// Stop halts the countdown. It is safe to call repeatedly and from within tick.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

// Done is closed once the ticking goroutine has exited. It never closes if
// Start was not called.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}
