package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/infrastructure/persistence/models"
	"github.com/siadin-id/siadin/pkg/composables"
)

const divisionFindQuery = `
	SELECT id, agency_id, code, name, type, province_code, regency_code,
	       address, admin_principal_id, status, created_at, updated_at
	FROM divisions`

type DivisionRepository struct{}

func NewDivisionRepository() division.Repository {
	return &DivisionRepository{}
}

func divisionFilters(params *division.FindParams) (string, []any) {
	var where []string
	var args []any

	if params.Search != "" {
		args = append(args, "%"+strings.ToLower(params.Search)+"%")
		where = append(where, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(code) LIKE $%d)", len(args), len(args)))
	}
	if params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Type != "" {
		args = append(args, string(params.Type))
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if params.AgencyID != 0 {
		args = append(args, params.AgencyID)
		where = append(where, fmt.Sprintf("agency_id = $%d", len(args)))
	}
	if params.Admin != uuid.Nil {
		args = append(args, params.Admin.String())
		where = append(where, fmt.Sprintf("admin_principal_id = $%d", len(args)))
	}
	if params.IDs != nil {
		args = append(args, params.IDs)
		where = append(where, fmt.Sprintf("id = ANY($%d)", len(args)))
	}

	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func divisionOrder(params *division.FindParams) string {
	column := "name"
	switch params.SortBy {
	case division.SortByCode:
		column = "code"
	case division.SortByCreatedAt:
		column = "created_at"
	}
	dir := "ASC"
	if params.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", column, dir)
}

func (r *DivisionRepository) GetPaginated(ctx context.Context, params *division.FindParams) ([]division.Division, error) {
	if params == nil {
		params = &division.FindParams{}
	}
	where, args := divisionFilters(params)
	query := divisionFindQuery + where + divisionOrder(params)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	return r.queryDivisions(ctx, query, args...)
}

func (r *DivisionRepository) Count(ctx context.Context, params *division.FindParams) (int64, error) {
	if params == nil {
		params = &division.FindParams{}
	}
	where, args := divisionFilters(params)

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM divisions"+where, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count divisions")
	}
	return count, nil
}

func (r *DivisionRepository) GetByID(ctx context.Context, id uint) (division.Division, error) {
	out, err := r.queryDivisions(ctx, divisionFindQuery+" WHERE id = $1", id)
	if err != nil {
		return division.Division{}, err
	}
	if len(out) == 0 {
		return division.Division{}, division.ErrNotFound
	}
	return out[0], nil
}

func (r *DivisionRepository) GetByAgency(ctx context.Context, agencyID uint) ([]division.Division, error) {
	return r.queryDivisions(ctx, divisionFindQuery+" WHERE agency_id = $1 ORDER BY id ASC", agencyID)
}

func (r *DivisionRepository) GetAllByAdmin(ctx context.Context, admin uuid.UUID) ([]division.Division, error) {
	return r.queryDivisions(ctx, divisionFindQuery+" WHERE admin_principal_id = $1 ORDER BY id ASC", admin.String())
}

func (r *DivisionRepository) GetActivePusat(ctx context.Context, agencyID uint) (division.Division, error) {
	out, err := r.queryDivisions(
		ctx,
		divisionFindQuery+" WHERE agency_id = $1 AND type = $2 AND status = $3",
		agencyID,
		string(division.TypePusat),
		string(division.StatusActive),
	)
	if err != nil {
		return division.Division{}, err
	}
	if len(out) == 0 {
		return division.Division{}, division.ErrNoPusat
	}
	return out[0], nil
}

func (r *DivisionRepository) Create(ctx context.Context, d division.Division) (division.Division, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return division.Division{}, err
	}

	query := `
		INSERT INTO divisions (agency_id, code, name, type, province_code, regency_code,
		                       address, admin_principal_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id`

	admin := nullString("")
	if d.AdminPrincipalID() != uuid.Nil {
		admin = nullString(d.AdminPrincipalID().String())
	}

	var id uint
	err = tx.QueryRow(
		ctx,
		query,
		d.AgencyID(),
		d.Code(),
		d.Name(),
		string(d.Type()),
		d.ProvinceCode(),
		d.RegencyCode(),
		nullString(d.Address()),
		admin,
		string(d.Status()),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "divisions_code_key") {
			return division.Division{}, division.ErrCodeTaken
		}
		return division.Division{}, errors.Wrap(err, "failed to create division")
	}

	return r.GetByID(ctx, id)
}

func (r *DivisionRepository) Update(ctx context.Context, d division.Division) (division.Division, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return division.Division{}, err
	}

	query := `
		UPDATE divisions
		SET name = $1, province_code = $2, regency_code = $3, address = $4,
		    admin_principal_id = $5, status = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING id`

	admin := nullString("")
	if d.AdminPrincipalID() != uuid.Nil {
		admin = nullString(d.AdminPrincipalID().String())
	}

	var id uint
	err = tx.QueryRow(
		ctx,
		query,
		d.Name(),
		d.ProvinceCode(),
		d.RegencyCode(),
		nullString(d.Address()),
		admin,
		string(d.Status()),
		d.ID(),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return division.Division{}, division.ErrNotFound
		}
		return division.Division{}, errors.Wrap(err, "failed to update division")
	}

	return r.GetByID(ctx, id)
}

func (r *DivisionRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM divisions WHERE id = $1`, id)
	return err
}

func (r *DivisionRepository) queryDivisions(ctx context.Context, query string, args ...any) ([]division.Division, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var out []division.Division
	for rows.Next() {
		var m models.Division
		if err := rows.Scan(
			&m.ID,
			&m.AgencyID,
			&m.Code,
			&m.Name,
			&m.Type,
			&m.ProvinceCode,
			&m.RegencyCode,
			&m.Address,
			&m.AdminPrincipalID,
			&m.Status,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan division row")
		}
		out = append(out, toDomainDivision(&m))
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}

	return out, nil
}
