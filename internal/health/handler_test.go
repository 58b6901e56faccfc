// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

type stubChecker struct {
	err error
}

func (s *stubChecker) Ping(_ context.Context) error {
	return s.err
}

func newHealthServer(t *testing.T, dbErr, redisErr error) (*httptest.Server, *Handler) {
	t.Helper()

	handler := NewHandler(&stubChecker{err: dbErr}, &stubChecker{err: redisErr})

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, handler
}

func get(t *testing.T, url string) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestLiveness(t *testing.T) {
	server, _ := newHealthServer(t, nil, nil)

	for _, path := range []string{"/healthz", "/livez"} {
		if resp := get(t, server.URL+path); resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestReadinessHealthy(t *testing.T) {
	server, _ := newHealthServer(t, nil, nil)

	if resp := get(t, server.URL+"/readyz"); resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestReadinessDatabaseDown(t *testing.T) {
	server, _ := newHealthServer(t, errors.New("connection refused"), nil)

	resp := get(t, server.URL+"/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestReadinessRedisDown(t *testing.T) {
	server, _ := newHealthServer(t, nil, errors.New("connection refused"))

	resp := get(t, server.URL+"/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestShutdownDrainsProbes(t *testing.T) {
	server, handler := newHealthServer(t, nil, nil)

	handler.SetShutdown(true)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp := get(t, server.URL+path)
		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Errorf("%s during shutdown: status = %d, want 503",
				path, resp.StatusCode)
		}
	}
}
