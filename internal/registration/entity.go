// AngelaMos | 2026
// entity.go

package registration

import (
	"strings"
	"time"
)

type Registration struct {
	ID               int64     `db:"id"`
	PlateNumber      string    `db:"plate_number"`
	OwnerName        string    `db:"owner_name"`
	OwnerEmail       string    `db:"owner_email"`
	OwnerPhone       *string   `db:"owner_phone"`
	RegistrationDate time.Time `db:"registration_date"`
	ExpiryDate       time.Time `db:"expiry_date"`
	Status           string    `db:"status"`
	CreatedBy        string    `db:"created_by"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

const (
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusSuspended = "suspended"
)

// ExpiringSoonWindow is how far ahead the statistics endpoint looks for
// active registrations nearing expiry. The bound is inclusive: a
// registration expiring exactly 30 days from now counts.
const ExpiringSoonWindow = 30 * 24 * time.Hour

func ValidStatus(s string) bool {
	switch s {
	case StatusActive, StatusExpired, StatusSuspended:
		return true
	}
	return false
}

// NormalizePlate canonicalizes a plate number for storage and lookup.
// Uniqueness is enforced on the canonical form.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

func (r *Registration) IsExpiringSoon(now time.Time) bool {
	if r.Status != StatusActive {
		return false
	}
	horizon := now.Add(ExpiringSoonWindow)
	return !r.ExpiryDate.Before(now) && !r.ExpiryDate.After(horizon)
}
