// AngelaMos | 2026
// errors_test.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestAppErrorUnwrap(t *testing.T) {
	appErr := DuplicateError("plateNumber")

	if !errors.Is(appErr, ErrDuplicateKey) {
		t.Error("DuplicateError must unwrap to ErrDuplicateKey")
	}
	if appErr.Status != http.StatusConflict {
		t.Errorf("status = %d, want 409", appErr.Status)
	}

	wrapped := fmt.Errorf("service layer: %w", appErr)
	if !IsAppError(wrapped) {
		t.Error("IsAppError must see through wrapping")
	}
	if !errors.Is(wrapped, ErrDuplicateKey) {
		t.Error("sentinel must survive double wrapping")
	}
}

func TestTokenErrors(t *testing.T) {
	tests := []struct {
		err      *AppError
		sentinel error
		code     string
	}{
		{TokenExpiredError(), ErrTokenExpired, "TOKEN_EXPIRED"},
		{TokenRevokedError(), ErrTokenRevoked, "TOKEN_REVOKED"},
		{TokenInvalidError(), ErrTokenInvalid, "TOKEN_INVALID"},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.sentinel) {
			t.Errorf("%s does not unwrap to its sentinel", tt.code)
		}
		if tt.err.Code != tt.code {
			t.Errorf("code = %q, want %q", tt.err.Code, tt.code)
		}
		if tt.err.Status != http.StatusUnauthorized {
			t.Errorf("%s status = %d, want 401", tt.code, tt.err.Status)
		}
	}
}

func TestFormatValidationError(t *testing.T) {
	type payload struct {
		PlateNumber string `validate:"required,min=2"`
		OwnerEmail  string `validate:"required,email"`
		Status      string `validate:"omitempty,oneof=active expired suspended"`
	}

	v := validator.New(validator.WithRequiredStructEnabled())

	err := v.Struct(payload{OwnerEmail: "nope", Status: "pending"})
	if err == nil {
		t.Fatal("expected validation failure")
	}

	msg := FormatValidationError(err)
	for _, want := range []string{
		"plateNumber is required",
		"ownerEmail must be a valid email address",
		"status must be one of: active expired suspended",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestFormatValidationErrorUnknownType(t *testing.T) {
	if got := FormatValidationError(errors.New("boom")); got != "invalid request" {
		t.Errorf("got %q, want the generic fallback", got)
	}
}
