// AngelaMos | 2026
// service.go

package registration

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/angelamos/plate-registry/internal/core"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Create registers a new plate. The plate pre-check exists only to
// produce a field-specific message; the unique constraint on
// plate_number is the actual guarantee, so a race that slips past the
// check still comes back as ErrDuplicateKey from the store.
func (s *Service) Create(
	ctx context.Context,
	req CreateRegistrationRequest,
	createdBy string,
) (*Registration, error) {
	plate := NormalizePlate(req.PlateNumber)

	if _, err := s.repo.FindByPlate(ctx, plate); err == nil {
		return nil, fmt.Errorf("create registration: %w", core.ErrDuplicateKey)
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	status := req.Status
	if status == "" {
		status = StatusActive
	}

	reg := &Registration{
		PlateNumber:      plate,
		OwnerName:        req.OwnerName,
		OwnerEmail:       req.OwnerEmail,
		OwnerPhone:       req.OwnerPhone,
		RegistrationDate: s.now(),
		ExpiryDate:       req.ExpiryDate,
		Status:           status,
		CreatedBy:        createdBy,
	}

	if err := s.repo.Create(ctx, reg); err != nil {
		return nil, err
	}

	return reg, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Registration, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns one page of registrations plus its page descriptor.
// Parameters are normalized here so the metadata reflects the values
// actually used for the query, not the raw caller input.
func (s *Service) List(
	ctx context.Context,
	params ListRegistrationsParams,
) (*ListRegistrationsResponse, error) {
	params.Normalize()

	regs, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	return &ListRegistrationsResponse{
		Records: ToRegistrationResponseList(regs),
		Pagination: ListPagination{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: core.TotalPages(total, params.Limit),
		},
	}, nil
}

// Update applies a partial update: only fields present in the request
// are touched. A plate change colliding with a different registration
// fails with ErrDuplicateKey before the statement runs, again as a
// courtesy on top of the unique constraint.
func (s *Service) Update(
	ctx context.Context,
	id int64,
	req UpdateRegistrationRequest,
) (*Registration, error) {
	fields := req.fields()
	if len(fields) == 0 {
		return nil, fmt.Errorf(
			"update registration: no fields to update: %w",
			core.ErrInvalidInput,
		)
	}

	if plate, ok := fields["plateNumber"].(string); ok {
		existing, err := s.repo.FindByPlate(ctx, plate)
		if err == nil && existing.ID != id {
			return nil, fmt.Errorf(
				"update registration: %w",
				core.ErrDuplicateKey,
			)
		}
		if err != nil && !errors.Is(err, core.ErrNotFound) {
			return nil, err
		}
	}

	return s.repo.UpdateFields(ctx, id, fields)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.repo.Statistics(ctx, s.now())
}

// fields flattens the pointer-typed request into the external-name map
// the repository translates through updatableColumns. Plates are
// canonicalized here so the uniqueness check and the stored value
// agree.
func (r *UpdateRegistrationRequest) fields() map[string]any {
	fields := make(map[string]any)

	if r.PlateNumber != nil {
		fields["plateNumber"] = NormalizePlate(*r.PlateNumber)
	}
	if r.OwnerName != nil {
		fields["ownerName"] = *r.OwnerName
	}
	if r.OwnerEmail != nil {
		fields["ownerEmail"] = *r.OwnerEmail
	}
	if r.OwnerPhone != nil {
		fields["ownerPhone"] = *r.OwnerPhone
	}
	if r.ExpiryDate != nil {
		fields["expiryDate"] = *r.ExpiryDate
	}
	if r.Status != nil {
		fields["status"] = *r.Status
	}

	return fields
}
