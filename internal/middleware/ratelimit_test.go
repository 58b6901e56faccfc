// AngelaMos | 2026
// ratelimit_test.go

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimitedHandler(t *testing.T, cfg RateLimitConfig) http.Handler {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	limiter := NewRateLimiter(rdb, cfg)
	return limiter.Handler(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	))
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	handler := newLimitedHandler(t, RateLimitConfig{
		Limit: PerMinute(10, 5),
	})

	for i := range 5 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
		if rec.Header().Get("X-RateLimit-Limit") != "10" {
			t.Errorf("missing X-RateLimit-Limit header")
		}
	}
}

func TestRateLimiterRejectsOverBurst(t *testing.T) {
	handler := newLimitedHandler(t, RateLimitConfig{
		Limit: PerMinute(1, 1),
	})

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	handler.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("first request: status = %d, want 200", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request: status = %d, want 429", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("429 response missing Retry-After")
	}
}

func TestRateLimiterKeysByClient(t *testing.T) {
	handler := newLimitedHandler(t, RateLimitConfig{
		Limit: PerMinute(1, 1),
	})

	exhaust := httptest.NewRequest(http.MethodGet, "/", nil)
	exhaust.RemoteAddr = "10.0.0.3:1234"
	handler.ServeHTTP(httptest.NewRecorder(), exhaust)

	// a different client is unaffected
	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.4:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, other)

	if rec.Code != http.StatusOK {
		t.Errorf("other client: status = %d, want 200", rec.Code)
	}
}

func TestRateLimiterBypass(t *testing.T) {
	handler := newLimitedHandler(t, RateLimitConfig{
		Limit: PerMinute(1, 1),
		BypassFunc: func(r *http.Request) bool {
			return r.URL.Path == "/healthz"
		},
	})

	for range 10 {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "10.0.0.5:1234"

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("bypassed path limited: status = %d", rec.Code)
		}
	}
}

// With Redis down the limiter falls back to the in-process limiter and
// keeps enforcing.
func TestRateLimiterLocalFallback(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	limiter := NewRateLimiter(rdb, RateLimitConfig{Limit: PerMinute(1, 1)})
	handler := limiter.Handler(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	))

	mr.Close()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.6:1234"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("first request via fallback: status = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second request via fallback: status = %d, want 429", rec.Code)
	}
}

func TestKeyByIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"remote addr", "192.168.1.10:5555", "", "ratelimit:ip:192.168.1.10"},
		{"forwarded for", "10.0.0.1:80", "203.0.113.7", "ratelimit:ip:203.0.113.7"},
		{
			"forwarded chain uses last hop",
			"10.0.0.1:80",
			"198.51.100.1, 203.0.113.9",
			"ratelimit:ip:203.0.113.9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if got := KeyByIP(req); got != tt.want {
				t.Errorf("KeyByIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/v1/registrations", "/v1/registrations"},
		{"/v1/registrations/42", "/v1/registrations/{id}"},
		{"/v1/registrations/42/qr", "/v1/registrations/{id}/qr"},
		{
			"/v1/admin/users/7c9e6679-7425-40de-944b-e07fc1f90ae7",
			"/v1/admin/users/{id}",
		},
	}

	for _, tt := range tests {
		if got := normalizeEndpoint(tt.in); got != tt.want {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
