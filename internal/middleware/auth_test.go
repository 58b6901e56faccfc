// AngelaMos | 2026
// auth_test.go

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelamos/plate-registry/internal/core"
)

type stubVerifier struct {
	claims *AccessTokenClaims
	err    error
}

func (s *stubVerifier) VerifyAccessToken(
	_ context.Context,
	_ string,
) (*AccessTokenClaims, error) {
	return s.claims, s.err
}

func okHandler(captured **http.Request) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			*captured = r
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticatorMissingToken(t *testing.T) {
	handler := Authenticator(&stubVerifier{})(okHandler(nil))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/registrations", nil)

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAuthenticatorValidToken(t *testing.T) {
	verifier := &stubVerifier{claims: &AccessTokenClaims{
		UserID:       "user-1",
		Role:         "admin",
		TokenVersion: 3,
	}}

	var captured *http.Request
	handler := Authenticator(verifier)(okHandler(&captured))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/registrations", nil)
	req.Header.Set("Authorization", "Bearer some.jwt.token")

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	ctx := captured.Context()
	if got := GetUserID(ctx); got != "user-1" {
		t.Errorf("user id = %q, want user-1", got)
	}
	if got := GetUserRole(ctx); got != "admin" {
		t.Errorf("role = %q, want admin", got)
	}
	if !IsAdmin(ctx) || !IsAuthenticated(ctx) {
		t.Error("context predicates disagree with the stored claims")
	}
	if claims := GetClaims(ctx); claims == nil || claims.TokenVersion != 3 {
		t.Errorf("claims = %+v", claims)
	}
}

func TestAuthenticatorExpiredToken(t *testing.T) {
	verifier := &stubVerifier{err: core.ErrTokenExpired}
	handler := Authenticator(verifier)(okHandler(nil))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer stale.jwt.token")

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name string
		role string
		want int
	}{
		{"admin passes", "admin", http.StatusOK},
		{"user forbidden", "user", http.StatusForbidden},
		{"anonymous unauthorized", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireAdmin(okHandler(nil))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/v1/registrations/1", nil)
			if tt.role != "" {
				ctx := context.WithValue(req.Context(), UserRoleKey, tt.role)
				req = req.WithContext(ctx)
			}

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc123", "abc123"},
		{"bearer abc123", "abc123"},
		{"Basic dXNlcjpwYXNz", ""},
		{"Bearer", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		if got := ExtractToken(req); got != tt.want {
			t.Errorf("ExtractToken(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestRequestIDPropagation(t *testing.T) {
	var captured *http.Request
	handler := RequestID(okHandler(&captured))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-abc")

	handler.ServeHTTP(rec, req)

	if got := GetRequestID(captured.Context()); got != "req-abc" {
		t.Errorf("request id = %q, want req-abc", got)
	}
	if got := rec.Header().Get("X-Request-ID"); got != "req-abc" {
		t.Errorf("response header = %q, want req-abc", got)
	}

	// absent header gets a generated id
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing request id was not generated")
	}
}
