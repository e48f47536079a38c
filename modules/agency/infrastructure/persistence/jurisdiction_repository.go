package persistence

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/siadin-id/siadin/modules/agency/domain/entities/jurisdiction"
	"github.com/siadin-id/siadin/modules/agency/infrastructure/persistence/models"
	"github.com/siadin-id/siadin/pkg/composables"
)

const jurisdictionFindQuery = `
	SELECT id, division_id, territory_code, is_primary, created_by, created_at
	FROM jurisdiction_assignments`

type JurisdictionRepository struct{}

func NewJurisdictionRepository() jurisdiction.Repository {
	return &JurisdictionRepository{}
}

func (r *JurisdictionRepository) ListByDivision(ctx context.Context, divisionID uint) ([]jurisdiction.Assignment, error) {
	return r.queryAssignments(
		ctx,
		jurisdictionFindQuery+" WHERE division_id = $1 ORDER BY is_primary DESC, territory_code ASC",
		divisionID,
	)
}

func (r *JurisdictionRepository) ListByAgency(ctx context.Context, agencyID uint) ([]jurisdiction.Assignment, error) {
	query := `
		SELECT ja.id, ja.division_id, ja.territory_code, ja.is_primary, ja.created_by, ja.created_at
		FROM jurisdiction_assignments ja
		JOIN divisions d ON d.id = ja.division_id
		WHERE d.agency_id = $1
		ORDER BY ja.division_id ASC, ja.territory_code ASC`
	return r.queryAssignments(ctx, query, agencyID)
}

func (r *JurisdictionRepository) CreateBatch(ctx context.Context, assignments []jurisdiction.Assignment) ([]jurisdiction.Assignment, error) {
	if len(assignments) == 0 {
		return nil, nil
	}

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO jurisdiction_assignments (division_id, territory_code, is_primary, created_by, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, created_at`

	out := make([]jurisdiction.Assignment, 0, len(assignments))
	for _, a := range assignments {
		var m models.JurisdictionAssignment
		err := tx.QueryRow(
			ctx,
			query,
			a.DivisionID(),
			a.TerritoryCode(),
			a.IsPrimary(),
			a.CreatedBy().String(),
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			if isUniqueViolation(err, "jurisdiction_assignments_division_territory_key") {
				return nil, jurisdiction.ErrCodeTaken.WithDetail("territory %s is already assigned", a.TerritoryCode())
			}
			return nil, errors.Wrap(err, "failed to create jurisdiction assignment")
		}
		m.DivisionID = a.DivisionID()
		m.TerritoryCode = a.TerritoryCode()
		m.IsPrimary = a.IsPrimary()
		m.CreatedBy = a.CreatedBy().String()
		out = append(out, toDomainAssignment(&m))
	}

	return out, nil
}

func (r *JurisdictionRepository) DeleteByDivision(ctx context.Context, divisionID uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM jurisdiction_assignments WHERE division_id = $1`, divisionID)
	return err
}

func (r *JurisdictionRepository) queryAssignments(ctx context.Context, query string, args ...any) ([]jurisdiction.Assignment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var out []jurisdiction.Assignment
	for rows.Next() {
		var m models.JurisdictionAssignment
		if err := rows.Scan(
			&m.ID,
			&m.DivisionID,
			&m.TerritoryCode,
			&m.IsPrimary,
			&m.CreatedBy,
			&m.CreatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan jurisdiction row")
		}
		out = append(out, toDomainAssignment(&m))
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}

	return out, nil
}
