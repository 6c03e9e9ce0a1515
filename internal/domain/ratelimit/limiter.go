package ratelimit

import "context"

// RateLimiter is the interface for rate limiting operations.
//
// Implementations should use the GCRA (Generic Cell Rate Algorithm)
// for smooth rate limiting without burst issues at window boundaries.
// GCRA spreads requests evenly over time instead of resetting at fixed
// window edges, which matters here because document mutations are
// expensive and a bursty client would otherwise stack them up against
// one session.
//
// The interface is storage-agnostic; the in-memory adapter is the only
// implementation this service ships.
type RateLimiter interface {
	// Allow checks if a request identified by key is allowed under the
	// given config. The key should be built with FormatKey. If the
	// request is not allowed, RetryAfter in the result indicates when
	// the next one will be.
	Allow(ctx context.Context, key string, config RateLimitConfig) (RateLimitResult, error)
}
