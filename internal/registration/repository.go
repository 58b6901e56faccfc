// AngelaMos | 2026
// repository.go

package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/angelamos/plate-registry/internal/core"
)

type Repository interface {
	Create(ctx context.Context, reg *Registration) error
	GetByID(ctx context.Context, id int64) (*Registration, error)
	FindByPlate(ctx context.Context, plate string) (*Registration, error)
	List(
		ctx context.Context,
		params ListRegistrationsParams,
	) ([]Registration, int64, error)
	UpdateFields(
		ctx context.Context,
		id int64,
		fields map[string]any,
	) (*Registration, error)
	Delete(ctx context.Context, id int64) error
	Statistics(ctx context.Context, now time.Time) (*Statistics, error)
}

// updatableColumns maps external field names to their columns. It is
// the complete set of fields a partial update may touch; everything
// else (id, registrationDate, createdBy, timestamps) is immutable or
// store-maintained.
var updatableColumns = map[string]string{
	"plateNumber": "plate_number",
	"ownerName":   "owner_name",
	"ownerEmail":  "owner_email",
	"ownerPhone":  "owner_phone",
	"expiryDate":  "expiry_date",
	"status":      "status",
}

const registrationColumns = `
	id, plate_number, owner_name, owner_email, owner_phone,
	registration_date, expiry_date, status, created_by,
	created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, reg *Registration) error {
	query := `
		INSERT INTO registrations (
			plate_number, owner_name, owner_email, owner_phone,
			registration_date, expiry_date, status, created_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.GetContext(ctx, reg, query,
		reg.PlateNumber,
		reg.OwnerName,
		reg.OwnerEmail,
		reg.OwnerPhone,
		reg.RegistrationDate,
		reg.ExpiryDate,
		reg.Status,
		reg.CreatedBy,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("create registration: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create registration: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id int64,
) (*Registration, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations
		WHERE id = $1`, registrationColumns)

	var reg Registration
	err := r.db.GetContext(ctx, &reg, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get registration: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}

	return &reg, nil
}

func (r *repository) FindByPlate(
	ctx context.Context,
	plate string,
) (*Registration, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM registrations
		WHERE plate_number = $1`, registrationColumns)

	var reg Registration
	err := r.db.GetContext(ctx, &reg, query, plate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find registration by plate: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find registration by plate: %w", err)
	}

	return &reg, nil
}

// List runs the count and the page select inside one read-only
// transaction so both see the same snapshot; a concurrent insert can
// never produce a page that disagrees with its total.
func (r *repository) List(
	ctx context.Context,
	params ListRegistrationsParams,
) ([]Registration, int64, error) {
	params.Normalize()

	where, args, argIdx := buildListFilter(params)

	countQuery := "SELECT COUNT(*) FROM registrations" + where

	pageQuery := fmt.Sprintf(`
		SELECT %s
		FROM registrations%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		registrationColumns, where, argIdx, argIdx+1)

	pageArgs := make([]any, 0, len(args)+2)
	pageArgs = append(pageArgs, args...)
	pageArgs = append(pageArgs, params.Limit, params.Offset())

	var (
		total int64
		regs  []Registration
	)

	txOpts := &sql.TxOptions{ReadOnly: true}
	err := core.InTxWithOptions(ctx, r.db, txOpts, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &total, countQuery, args...); err != nil {
			return fmt.Errorf("count registrations: %w", err)
		}

		if err := tx.SelectContext(ctx, &regs, pageQuery, pageArgs...); err != nil {
			return fmt.Errorf("list registrations: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	return regs, total, nil
}

// buildListFilter translates list parameters into a WHERE clause.
// The search term matches plate, owner name or owner email as a
// case-insensitive substring; the status filter is an exact match and
// is combined with AND. Absent parameters add no condition.
func buildListFilter(params ListRegistrationsParams) (string, []any, int) {
	var conditions []string
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(plate_number ILIKE $%d OR owner_name ILIKE $%d OR owner_email ILIKE $%d)",
			argIdx, argIdx, argIdx))
		args = append(args, "%"+escapeLike(params.Search)+"%")
		argIdx++
	}

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	if len(conditions) == 0 {
		return "", nil, argIdx
	}

	return " WHERE " + strings.Join(conditions, " AND "), args, argIdx
}

func (r *repository) UpdateFields(
	ctx context.Context,
	id int64,
	fields map[string]any,
) (*Registration, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf(
			"update registration: no fields to update: %w",
			core.ErrInvalidInput,
		)
	}

	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	argIdx := 1

	for _, name := range slices.Sorted(maps.Keys(fields)) {
		column, ok := updatableColumns[name]
		if !ok {
			return nil, fmt.Errorf(
				"update registration: unknown field %q: %w",
				name,
				core.ErrInvalidInput,
			)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, fields[name])
		argIdx++
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE registrations
		SET %s
		WHERE id = $%d
		RETURNING %s`,
		strings.Join(sets, ", "), argIdx, registrationColumns)

	args = append(args, id)

	var reg Registration
	err := r.db.GetContext(ctx, &reg, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update registration: %w", core.ErrNotFound)
	}
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, fmt.Errorf(
				"update registration: %w",
				core.ErrDuplicateKey,
			)
		}
		return nil, fmt.Errorf("update registration: %w", err)
	}

	return &reg, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM registrations WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete registration: %w", core.ErrNotFound)
	}

	return nil
}

// Statistics computes every counter in a single aggregate statement so
// the numbers always describe one snapshot: total is the sum of the
// three status counts, and expiring_soon is a subset of active.
func (r *repository) Statistics(
	ctx context.Context,
	now time.Time,
) (*Statistics, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'active') AS active,
			COUNT(*) FILTER (WHERE status = 'expired') AS expired,
			COUNT(*) FILTER (WHERE status = 'suspended') AS suspended,
			COUNT(*) FILTER (
				WHERE status = 'active'
				AND expiry_date >= $1
				AND expiry_date <= $2
			) AS expiring_soon
		FROM registrations`

	horizon := now.Add(ExpiringSoonWindow)

	var stats Statistics
	if err := r.db.GetContext(ctx, &stats, query, now, horizon); err != nil {
		return nil, fmt.Errorf("registration statistics: %w", err)
	}

	return &stats, nil
}

func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
