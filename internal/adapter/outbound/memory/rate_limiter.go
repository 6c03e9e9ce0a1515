package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/ratelimit"
)

// Sweep defaults. One-off clients stay tracked for an hour at most.
const (
	DefaultSweepInterval = 5 * time.Minute
	DefaultKeyTTL        = time.Hour
)

// RateLimiter is a GCRA limiter keyed by client. Each key tracks a
// theoretical arrival time; a request is allowed when it does not run
// ahead of that time by more than the burst allowance. A background
// sweep drops keys idle past the TTL so the map stays bounded.
type RateLimiter struct {
	mu   sync.Mutex
	tats map[string]time.Time

	sweepInterval time.Duration
	keyTTL        time.Duration

	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
}

// NewRateLimiter creates a limiter with the default sweep settings.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(DefaultSweepInterval, DefaultKeyTTL)
}

// NewRateLimiterWithConfig creates a limiter that drops keys idle
// longer than keyTTL on every sweepInterval tick.
func NewRateLimiterWithConfig(sweepInterval, keyTTL time.Duration) *RateLimiter {
	return &RateLimiter{
		tats:          make(map[string]time.Time),
		sweepInterval: sweepInterval,
		keyTTL:        keyTTL,
		stop:          make(chan struct{}),
	}
}

// Allow reports whether a request under key may proceed. A denied
// result carries RetryAfter for the 429 response header.
func (r *RateLimiter) Allow(ctx context.Context, key string, cfg ratelimit.RateLimitConfig) (ratelimit.RateLimitResult, error) {
	if cfg.Rate <= 0 {
		cfg.Rate = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.Rate
	}
	emission := cfg.Period / time.Duration(cfg.Rate)
	burst := time.Duration(cfg.Burst) * emission

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	tat, ok := r.tats[key]
	if !ok || tat.Before(now) {
		tat = now
	}
	if earliest := tat.Add(-burst); now.Before(earliest) {
		return ratelimit.RateLimitResult{
			RetryAfter: earliest.Sub(now),
			ResetAfter: tat.Sub(now),
		}, nil
	}

	tat = tat.Add(emission)
	if tat.Before(now) {
		tat = now.Add(emission)
	}
	r.tats[key] = tat

	remaining := int((burst - tat.Sub(now)) / emission)
	if remaining < 0 {
		remaining = 0
	}
	if remaining > cfg.Burst {
		remaining = cfg.Burst
	}
	return ratelimit.RateLimitResult{
		Allowed:    true,
		Remaining:  remaining,
		ResetAfter: tat.Sub(now),
	}, nil
}

// Start launches the background sweep. It ends when ctx is cancelled
// or Stop is called.
func (r *RateLimiter) Start(ctx context.Context) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.stop:
				return
			case <-ticker.C:
				r.sweep()
			}
		}
	}()
}

func (r *RateLimiter) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().Add(-r.keyTTL)
	dropped := 0
	for key, tat := range r.tats {
		if tat.Before(cutoff) {
			delete(r.tats, key)
			dropped++
		}
	}
	if dropped > 0 {
		slog.Debug("rate limiter dropped idle clients",
			"dropped", dropped,
			"tracked", len(r.tats))
	}
}

// Stop ends the sweep goroutine and waits for it to exit. Safe to call
// more than once.
func (r *RateLimiter) Stop() {
	r.once.Do(func() { close(r.stop) })
	r.wg.Wait()
}

// Len reports the number of tracked clients.
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tats)
}

var _ ratelimit.RateLimiter = (*RateLimiter)(nil)
