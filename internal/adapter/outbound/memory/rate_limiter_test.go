package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/ratelimit"
)

func perMinute(rate, burst int) ratelimit.RateLimitConfig {
	return ratelimit.RateLimitConfig{Rate: rate, Burst: burst, Period: time.Minute}
}

func TestRateLimiter_AllowsWithinBurst(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter()
	ctx := context.Background()

	// Three rapid requests fit a burst of three.
	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "client-a", perMinute(1, 3))
		if err != nil {
			t.Fatalf("Allow() error on request %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("request %d denied, want allowed within burst", i)
		}
		if res.Remaining < 0 {
			t.Errorf("request %d: Remaining = %d, want >= 0", i, res.Remaining)
		}
	}
}

func TestRateLimiter_DeniesPastBurst(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter()
	ctx := context.Background()
	cfg := perMinute(1, 2)

	allowed, denied := 0, 0
	var retryAfter time.Duration
	for i := 0; i < 10; i++ {
		res, err := limiter.Allow(ctx, "client-b", cfg)
		if err != nil {
			t.Fatalf("Allow() error: %v", err)
		}
		if res.Allowed {
			allowed++
		} else {
			denied++
			retryAfter = res.RetryAfter
		}
	}
	if allowed < cfg.Burst {
		t.Errorf("allowed = %d, want at least the burst of %d", allowed, cfg.Burst)
	}
	if denied == 0 {
		t.Fatal("no request denied after exhausting the burst")
	}
	if retryAfter <= 0 {
		t.Errorf("RetryAfter = %v on a denied request, want positive", retryAfter)
	}
}

func TestRateLimiter_KeysAreIsolated(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter()
	ctx := context.Background()
	cfg := perMinute(1, 1)

	// Exhaust one client.
	for i := 0; i < 5; i++ {
		_, _ = limiter.Allow(ctx, "greedy", cfg)
	}

	res, err := limiter.Allow(ctx, "patient", cfg)
	if err != nil {
		t.Fatalf("Allow() error: %v", err)
	}
	if !res.Allowed {
		t.Error("a fresh client should not pay for another client's burst")
	}
}

func TestRateLimiter_RecoversAfterPeriod(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter()
	ctx := context.Background()
	cfg := ratelimit.RateLimitConfig{Rate: 2, Burst: 1, Period: 100 * time.Millisecond}

	if res, err := limiter.Allow(ctx, "client-c", cfg); err != nil || !res.Allowed {
		t.Fatalf("first request: allowed=%v err=%v", res.Allowed, err)
	}

	time.Sleep(150 * time.Millisecond)

	res, err := limiter.Allow(ctx, "client-c", cfg)
	if err != nil {
		t.Fatalf("Allow() error: %v", err)
	}
	if !res.Allowed {
		t.Error("request after a full period should be allowed again")
	}
}

func TestRateLimiter_DefaultsZeroConfig(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter()
	ctx := context.Background()

	// Rate 0 falls back to 1, burst 0 falls back to the rate.
	res, err := limiter.Allow(ctx, "client-d", ratelimit.RateLimitConfig{Period: time.Second})
	if err != nil {
		t.Fatalf("Allow() error: %v", err)
	}
	if !res.Allowed {
		t.Error("first request with zero config should be allowed")
	}
}

func TestRateLimiter_ConcurrentClients(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter()
	ctx := context.Background()
	cfg := ratelimit.RateLimitConfig{Rate: 100, Burst: 50, Period: time.Second}

	var wg sync.WaitGroup
	errCh := make(chan error, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := "client-" + string(rune('a'+n%10))
			if _, err := limiter.Allow(ctx, key, cfg); err != nil {
				errCh <- err
			}
		}(i)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Errorf("Allow() error: %v", err)
	}
}

func TestRateLimiter_SweepDropsIdleClients(t *testing.T) {
	defer goleak.VerifyNone(t)

	limiter := NewRateLimiterWithConfig(20*time.Millisecond, 50*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	limiter.Start(ctx)
	defer limiter.Stop()

	cfg := ratelimit.RateLimitConfig{Rate: 10, Burst: 5, Period: time.Second}
	for _, key := range []string{"idle-1", "idle-2", "idle-3"} {
		if _, err := limiter.Allow(ctx, key, cfg); err != nil {
			t.Fatalf("Allow(%s) error: %v", key, err)
		}
	}
	if limiter.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", limiter.Len())
	}

	deadline := time.Now().Add(2 * time.Second)
	for limiter.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if n := limiter.Len(); n != 0 {
		t.Errorf("Len() = %d after the TTL elapsed, want 0", n)
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	limiter := NewRateLimiterWithConfig(50*time.Millisecond, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	limiter.Start(ctx)

	limiter.Stop()
	limiter.Stop()
}

func TestRateLimiter_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	limiter := NewRateLimiterWithConfig(20*time.Millisecond, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	limiter.Start(ctx)

	if _, err := limiter.Allow(ctx, "client-e", perMinute(10, 5)); err != nil {
		t.Fatalf("Allow() error: %v", err)
	}

	cancel()
	limiter.Stop()
}
