package service

import (
	"context"
	"sync"
	"time"
)

// DefaultReapInterval is how often the reaper sweeps for idle
// sessions.
const DefaultReapInterval = 1 * time.Minute

// Reaper periodically destroys sessions whose idle clock has lapsed.
// It reuses the coordinator's locking, so a sweep can never destroy a
// session mid-operation.
type Reaper struct {
	coordinator *Coordinator
	interval    time.Duration
	stopChan    chan struct{}
	wg          sync.WaitGroup
	once        sync.Once // Prevent double-close panic on Stop()
}

// NewReaper creates a reaper sweeping at the given interval. A
// non-positive interval falls back to the default.
func NewReaper(c *Coordinator, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	return &Reaper{
		coordinator: c,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

// Start launches the background sweep goroutine. It stops when ctx is
// cancelled or Stop is called.
func (r *Reaper) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stopChan:
				return
			case <-ticker.C:
				r.coordinator.ReapIdle(ctx)
			}
		}
	}()
}

// Stop stops the sweep goroutine and waits for it to exit.
// Safe to call multiple times.
func (r *Reaper) Stop() {
	r.once.Do(func() {
		close(r.stopChan)
	})
	r.wg.Wait()
}
