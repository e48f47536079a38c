package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/infrastructure/persistence/models"
	"github.com/siadin-id/siadin/pkg/composables"
)

const agencyFindQuery = `
	SELECT id, code, name, status, province_code, regency_code,
	       owner_principal_id, created_by, created_at, updated_at
	FROM agencies`

type AgencyRepository struct{}

func NewAgencyRepository() agency.Repository {
	return &AgencyRepository{}
}

func agencyFilters(params *agency.FindParams) (string, []any) {
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
	if params.Owner != uuid.Nil {
		args = append(args, params.Owner.String())
		where = append(where, fmt.Sprintf("owner_principal_id = $%d", len(args)))
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

func agencyOrder(params *agency.FindParams) string {
	column := "name"
	switch params.SortBy {
	case agency.SortByCode:
		column = "code"
	case agency.SortByCreatedAt:
		column = "created_at"
	}
	dir := "ASC"
	if params.Desc {
		dir = "DESC"
	}
	// Secondary key keeps pagination deterministic across equal values.
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", column, dir)
}

func (r *AgencyRepository) GetPaginated(ctx context.Context, params *agency.FindParams) ([]agency.Agency, error) {
	if params == nil {
		params = &agency.FindParams{}
	}
	where, args := agencyFilters(params)
	query := agencyFindQuery + where + agencyOrder(params)

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

	return r.queryAgencies(ctx, query, args...)
}

func (r *AgencyRepository) Count(ctx context.Context, params *agency.FindParams) (int64, error) {
	if params == nil {
		params = &agency.FindParams{}
	}
	where, args := agencyFilters(params)

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM agencies"+where, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count agencies")
	}
	return count, nil
}

func (r *AgencyRepository) GetByID(ctx context.Context, id uint) (agency.Agency, error) {
	out, err := r.queryAgencies(ctx, agencyFindQuery+" WHERE id = $1", id)
	if err != nil {
		return agency.Agency{}, err
	}
	if len(out) == 0 {
		return agency.Agency{}, agency.ErrNotFound
	}
	return out[0], nil
}

func (r *AgencyRepository) GetByCode(ctx context.Context, code string) (agency.Agency, error) {
	out, err := r.queryAgencies(ctx, agencyFindQuery+" WHERE code = $1", strings.TrimSpace(code))
	if err != nil {
		return agency.Agency{}, err
	}
	if len(out) == 0 {
		return agency.Agency{}, agency.ErrNotFound
	}
	return out[0], nil
}

func (r *AgencyRepository) GetAllByOwner(ctx context.Context, owner uuid.UUID) ([]agency.Agency, error) {
	return r.queryAgencies(ctx, agencyFindQuery+" WHERE owner_principal_id = $1 ORDER BY id ASC", owner.String())
}

func (r *AgencyRepository) Create(ctx context.Context, a agency.Agency) (agency.Agency, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return agency.Agency{}, err
	}

	query := `
		INSERT INTO agencies (code, name, status, province_code, regency_code,
		                      owner_principal_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id`

	var id uint
	err = tx.QueryRow(
		ctx,
		query,
		a.Code(),
		a.Name(),
		string(a.Status()),
		a.ProvinceCode(),
		a.RegencyCode(),
		a.OwnerPrincipalID().String(),
		a.CreatedBy().String(),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "agencies_code_key") {
			return agency.Agency{}, agency.ErrCodeTaken
		}
		return agency.Agency{}, errors.Wrap(err, "failed to create agency")
	}

	return r.GetByID(ctx, id)
}

func (r *AgencyRepository) Update(ctx context.Context, a agency.Agency) (agency.Agency, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return agency.Agency{}, err
	}

	query := `
		UPDATE agencies
		SET name = $1, status = $2, province_code = $3, regency_code = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING id`

	var id uint
	err = tx.QueryRow(
		ctx,
		query,
		a.Name(),
		string(a.Status()),
		a.ProvinceCode(),
		a.RegencyCode(),
		a.ID(),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return agency.Agency{}, agency.ErrNotFound
		}
		return agency.Agency{}, errors.Wrap(err, "failed to update agency")
	}

	return r.GetByID(ctx, id)
}

func (r *AgencyRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM agencies WHERE id = $1`, id)
	return err
}

func (r *AgencyRepository) queryAgencies(ctx context.Context, query string, args ...any) ([]agency.Agency, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var out []agency.Agency
	for rows.Next() {
		var m models.Agency
		if err := rows.Scan(
			&m.ID,
			&m.Code,
			&m.Name,
			&m.Status,
			&m.ProvinceCode,
			&m.RegencyCode,
			&m.OwnerPrincipalID,
			&m.CreatedBy,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan agency row")
		}
		out = append(out, toDomainAgency(&m))
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}

	return out, nil
}
