// AngelaMos | 2026
// dto.go

package registration

import (
	"time"
)

type CreateRegistrationRequest struct {
	PlateNumber string    `json:"plateNumber" validate:"required,min=2,max=16"`
	OwnerName   string    `json:"ownerName"   validate:"required,min=1,max=100"`
	OwnerEmail  string    `json:"ownerEmail"  validate:"required,email,max=255"`
	OwnerPhone  *string   `json:"ownerPhone,omitempty" validate:"omitempty,min=3,max=32"`
	ExpiryDate  time.Time `json:"expiryDate"  validate:"required"`
	Status      string    `json:"status,omitempty" validate:"omitempty,oneof=active expired suspended"`
}

// UpdateRegistrationRequest carries a partial update: only fields that
// are present in the request body are applied. Absent fields keep their
// stored value; id, registrationDate and createdBy are immutable.
type UpdateRegistrationRequest struct {
	PlateNumber *string    `json:"plateNumber,omitempty" validate:"omitempty,min=2,max=16"`
	OwnerName   *string    `json:"ownerName,omitempty"   validate:"omitempty,min=1,max=100"`
	OwnerEmail  *string    `json:"ownerEmail,omitempty"  validate:"omitempty,email,max=255"`
	OwnerPhone  *string    `json:"ownerPhone,omitempty"  validate:"omitempty,min=3,max=32"`
	ExpiryDate  *time.Time `json:"expiryDate,omitempty"`
	Status      *string    `json:"status,omitempty"      validate:"omitempty,oneof=active expired suspended"`
}

type RegistrationResponse struct {
	ID               int64     `json:"id"`
	PlateNumber      string    `json:"plateNumber"`
	OwnerName        string    `json:"ownerName"`
	OwnerEmail       string    `json:"ownerEmail"`
	OwnerPhone       string    `json:"ownerPhone,omitempty"`
	RegistrationDate time.Time `json:"registrationDate"`
	ExpiryDate       time.Time `json:"expiryDate"`
	Status           string    `json:"status"`
	CreatedBy        string    `json:"createdBy"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type ListRegistrationsParams struct {
	Page   int
	Limit  int
	Search string
	Status string
}

// Normalize clamps paging values and drops a status filter that is not
// one of the known states, which then behaves as if it were absent.
func (p *ListRegistrationsParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Status != "" && !ValidStatus(p.Status) {
		p.Status = ""
	}
}

func (p *ListRegistrationsParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

type ListPagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ListRegistrationsResponse struct {
	Records    []RegistrationResponse `json:"records"`
	Pagination ListPagination         `json:"pagination"`
}

// Statistics is both the aggregate row scanned from the store and the
// dashboard wire format. The JSON field names are a fixed contract.
type Statistics struct {
	Total        int64 `db:"total"         json:"total"`
	Active       int64 `db:"active"        json:"active"`
	Expired      int64 `db:"expired"       json:"expired"`
	Suspended    int64 `db:"suspended"     json:"suspended"`
	ExpiringSoon int64 `db:"expiring_soon" json:"expiring_soon"`
}

func ToRegistrationResponse(r *Registration) RegistrationResponse {
	resp := RegistrationResponse{
		ID:               r.ID,
		PlateNumber:      r.PlateNumber,
		OwnerName:        r.OwnerName,
		OwnerEmail:       r.OwnerEmail,
		RegistrationDate: r.RegistrationDate,
		ExpiryDate:       r.ExpiryDate,
		Status:           r.Status,
		CreatedBy:        r.CreatedBy,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.OwnerPhone != nil {
		resp.OwnerPhone = *r.OwnerPhone
	}
	return resp
}

func ToRegistrationResponseList(regs []Registration) []RegistrationResponse {
	responses := make([]RegistrationResponse, 0, len(regs))
	for _, r := range regs {
		responses = append(responses, ToRegistrationResponse(&r))
	}
	return responses
}
