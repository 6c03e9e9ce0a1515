package rest

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/ctxkey"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/ratelimit"
)

// requestIDMiddleware extracts or generates a request ID, stores an
// enriched logger in the context, and echoes the ID for correlation.
func (h *Handler) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		enriched := h.logger.With("request_id", requestID)
		ctx := context.WithValue(r.Context(), ctxkey.RequestIDKey{}, requestID)
		ctx = context.WithValue(ctx, ctxkey.LoggerKey{}, enriched)

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggerFromContext retrieves the enriched logger from context,
// falling back to the handler's base logger.
func (h *Handler) loggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxkey.LoggerKey{}).(*slog.Logger); ok {
		return logger
	}
	return h.logger
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush delegates to the underlying ResponseWriter if it supports
// http.Flusher.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// statusToLabel converts an HTTP status code to a metric label value.
func statusToLabel(code int) string {
	if code >= 200 && code < 400 {
		return "ok"
	}
	return "error"
}

// metricsMiddleware records request counts and durations. The scrape
// and health endpoints are excluded.
func (h *Handler) metricsMiddleware(next http.Handler) http.Handler {
	if h.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" || r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		h.metrics.RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		h.metrics.RequestsTotal.WithLabelValues(r.Method, statusToLabel(wrapped.status)).Inc()
	})
}

// requestLogMiddleware logs one line per request with method, path,
// status, duration, and client IP.
func (h *Handler) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" || r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		h.loggerFromContext(r.Context()).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", extractRealIP(r))
	})
}

// securityHeadersMiddleware sets defensive headers on all responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// rateLimitMiddleware enforces the GCRA limiter per client IP.
// Disabled limiters pass everything through.
func (h *Handler) rateLimitMiddleware(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := ratelimit.FormatKey(ratelimit.KeyTypeIP, extractRealIP(r))
		result, err := h.limiter.Allow(r.Context(), key, h.rateCfg)
		if err != nil {
			h.logger.Error("rate limiter failed", "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if !result.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())+1))
			h.respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// apiKeyMiddleware verifies the bearer token against the configured
// argon2id hashes. With no hashes configured the API is open.
func (h *Handler) apiKeyMiddleware(next http.Handler) http.Handler {
	if len(h.apiKeyHashes) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Health and scrape endpoints stay open.
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			h.respondError(w, http.StatusUnauthorized, "missing API key")
			return
		}
		rawKey := strings.TrimPrefix(auth, "Bearer ")
		for _, hash := range h.apiKeyHashes {
			match, err := argon2id.ComparePasswordAndHash(rawKey, hash)
			if err != nil {
				h.logger.Warn("malformed API key hash in configuration", "error", err)
				continue
			}
			if match {
				next.ServeHTTP(w, r)
				return
			}
		}
		h.respondError(w, http.StatusUnauthorized, "invalid API key")
	})
}

// extractRealIP extracts the client's real IP address from the request.
// Only the first IP in X-Forwarded-For is trusted to avoid spoofing.
func extractRealIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if ip := strings.TrimSpace(ips[0]); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
