package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"

	"github.com/OthmaneBlial/pdf-editor-offline/internal/adapter/outbound/memory"
	"github.com/OthmaneBlial/pdf-editor-offline/internal/domain/ratelimit"
)

func TestExtractRealIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{"forwarded chain trusts first hop", "203.0.113.9, 10.0.0.1", "", "10.0.0.2:1234", "203.0.113.9"},
		{"real ip header", "", "198.51.100.4", "10.0.0.2:1234", "198.51.100.4"},
		{"remote addr fallback", "", "", "192.0.2.7:56000", "192.0.2.7"},
		{"remote addr without port", "", "", "192.0.2.7", "192.0.2.7"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := extractRealIP(r); got != tt.want {
				t.Errorf("extractRealIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatusToLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want string
	}{
		{200, "ok"},
		{201, "ok"},
		{304, "ok"},
		{400, "error"},
		{404, "error"},
		{500, "error"},
	}
	for _, tt := range tests {
		if got := statusToLabel(tt.code); got != tt.want {
			t.Errorf("statusToLabel(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestRequestIDEchoed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Request-ID"); got != "fixed-id-123" {
		t.Errorf("X-Request-ID = %q, want the caller's ID echoed", got)
	}

	// Without a caller ID one is generated.
	resp2, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.Header.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID should be generated when absent")
	}
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	limiter := memory.NewRateLimiter()
	srv := newTestServer(t, WithRateLimiter(limiter, ratelimit.RateLimitConfig{
		Rate:   1,
		Burst:  2,
		Period: time.Minute,
	}))

	var denied bool
	for i := 0; i < 10; i++ {
		resp, err := http.Get(srv.URL + "/healthz")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			denied = true
			if resp.Header.Get("Retry-After") == "" {
				t.Error("429 response missing Retry-After")
			}
			break
		}
	}
	if !denied {
		t.Error("limiter never denied within 10 rapid requests")
	}
}

func TestAPIKeyMiddleware(t *testing.T) {
	t.Parallel()

	hash, err := argon2id.CreateHash("sekret-key", argon2id.DefaultParams)
	if err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, WithAPIKeyHashes([]string{hash}))

	// Health stays open.
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", resp.StatusCode)
	}

	// API routes require the key.
	resp, env := doJSON(t, srv, http.MethodGet, "/api/documents/whatever", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status without key = %d, want 401", resp.StatusCode)
	}
	if env.Success {
		t.Error("success = true on a 401")
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/documents/whatever", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusUnauthorized {
		t.Errorf("status with wrong key = %d, want 401", resp2.StatusCode)
	}

	// The right key reaches the handler; the unknown session yields
	// 404, not 401.
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/documents/whatever", nil)
	req.Header.Set("Authorization", "Bearer sekret-key")
	resp3, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp3.Body.Close()
	if resp3.StatusCode != http.StatusNotFound {
		t.Errorf("status with valid key = %d, want 404", resp3.StatusCode)
	}
}
