// AngelaMos | 2026
// entity_test.go

package registration

import (
	"testing"
	"time"
)

func TestNormalizePlate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"gov-123", "GOV-123"},
		{"  GH-4567-20  ", "GH-4567-20"},
		{"AbC 99", "ABC 99"},
	}

	for _, tt := range tests {
		if got := NormalizePlate(tt.in); got != tt.want {
			t.Errorf("NormalizePlate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusActive, StatusExpired, StatusSuspended} {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = false, want true", s)
		}
	}
	for _, s := range []string{"", "pending", "ACTIVE", "deleted"} {
		if ValidStatus(s) {
			t.Errorf("ValidStatus(%q) = true, want false", s)
		}
	}
}

func TestIsExpiringSoon(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status string
		expiry time.Time
		want   bool
	}{
		{"29 days", StatusActive, now.AddDate(0, 0, 29), true},
		{"exactly 30 days", StatusActive, now.Add(ExpiringSoonWindow), true},
		{"31 days", StatusActive, now.AddDate(0, 0, 31), false},
		{"expiring this instant", StatusActive, now, true},
		{"already lapsed", StatusActive, now.Add(-time.Minute), false},
		{"expired status", StatusExpired, now.AddDate(0, 0, 10), false},
		{"suspended status", StatusSuspended, now.AddDate(0, 0, 10), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := Registration{Status: tt.status, ExpiryDate: tt.expiry}
			if got := reg.IsExpiringSoon(now); got != tt.want {
				t.Errorf("IsExpiringSoon = %v, want %v", got, tt.want)
			}
		})
	}
}
