package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/employee"
	"github.com/siadin-id/siadin/modules/agency/infrastructure/persistence/models"
	"github.com/siadin-id/siadin/pkg/composables"
)

const employeeFindQuery = `
	SELECT id, agency_id, division_id, principal_id, name, email, phone,
	       position, status, created_at, updated_at
	FROM employees`

type EmployeeRepository struct{}

func NewEmployeeRepository() employee.Repository {
	return &EmployeeRepository{}
}

func employeeFilters(params *employee.FindParams) (string, []any) {
	var where []string
	var args []any

	if params.Search != "" {
		args = append(args, "%"+strings.ToLower(params.Search)+"%")
		where = append(where, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d OR LOWER(position) LIKE $%d)", len(args), len(args), len(args)))
	}
	if params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.AgencyID != 0 {
		args = append(args, params.AgencyID)
		where = append(where, fmt.Sprintf("agency_id = $%d", len(args)))
	}
	if params.DivisionID != 0 {
		args = append(args, params.DivisionID)
		where = append(where, fmt.Sprintf("division_id = $%d", len(args)))
	}
	if params.DivisionIDs != nil {
		args = append(args, params.DivisionIDs)
		where = append(where, fmt.Sprintf("division_id = ANY($%d)", len(args)))
	}

	if len(where) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(where, " AND "), args
}

func employeeOrder(params *employee.FindParams) string {
	column := "name"
	switch params.SortBy {
	case employee.SortByPosition:
		column = "position"
	case employee.SortByCreatedAt:
		column = "created_at"
	}
	dir := "ASC"
	if params.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", column, dir)
}

func (r *EmployeeRepository) GetPaginated(ctx context.Context, params *employee.FindParams) ([]employee.Employee, error) {
	if params == nil {
		params = &employee.FindParams{}
	}
	where, args := employeeFilters(params)
	query := employeeFindQuery + where + employeeOrder(params)

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

	return r.queryEmployees(ctx, query, args...)
}

func (r *EmployeeRepository) Count(ctx context.Context, params *employee.FindParams) (int64, error) {
	if params == nil {
		params = &employee.FindParams{}
	}
	where, args := employeeFilters(params)

	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM employees"+where, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count employees")
	}
	return count, nil
}

func (r *EmployeeRepository) GetByID(ctx context.Context, id uint) (employee.Employee, error) {
	out, err := r.queryEmployees(ctx, employeeFindQuery+" WHERE id = $1", id)
	if err != nil {
		return employee.Employee{}, err
	}
	if len(out) == 0 {
		return employee.Employee{}, employee.ErrNotFound
	}
	return out[0], nil
}

func (r *EmployeeRepository) GetByDivision(ctx context.Context, divisionID uint) ([]employee.Employee, error) {
	return r.queryEmployees(ctx, employeeFindQuery+" WHERE division_id = $1 ORDER BY id ASC", divisionID)
}

func (r *EmployeeRepository) GetByPrincipal(ctx context.Context, agencyID uint, principalID uuid.UUID) (employee.Employee, error) {
	out, err := r.queryEmployees(
		ctx,
		employeeFindQuery+" WHERE agency_id = $1 AND principal_id = $2 AND status = $3",
		agencyID,
		principalID.String(),
		string(employee.StatusActive),
	)
	if err != nil {
		return employee.Employee{}, err
	}
	if len(out) == 0 {
		return employee.Employee{}, employee.ErrNotFound
	}
	return out[0], nil
}

func (r *EmployeeRepository) GetAllByPrincipal(ctx context.Context, principalID uuid.UUID) ([]employee.Employee, error) {
	return r.queryEmployees(
		ctx,
		employeeFindQuery+" WHERE principal_id = $1 AND status = $2 ORDER BY id ASC",
		principalID.String(),
		string(employee.StatusActive),
	)
}

func (r *EmployeeRepository) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return employee.Employee{}, err
	}

	query := `
		INSERT INTO employees (agency_id, division_id, principal_id, name, email,
		                       phone, position, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id`

	var id uint
	err = tx.QueryRow(
		ctx,
		query,
		e.AgencyID(),
		e.DivisionID(),
		e.PrincipalID().String(),
		e.Name(),
		nullString(e.Email()),
		nullString(e.Phone()),
		nullString(e.Position()),
		string(e.Status()),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "employees_agency_principal_key") {
			return employee.Employee{}, employee.ErrPrincipalTaken
		}
		return employee.Employee{}, errors.Wrap(err, "failed to create employee")
	}

	return r.GetByID(ctx, id)
}

func (r *EmployeeRepository) Update(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return employee.Employee{}, err
	}

	query := `
		UPDATE employees
		SET division_id = $1, name = $2, email = $3, phone = $4, position = $5,
		    status = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING id`

	var id uint
	err = tx.QueryRow(
		ctx,
		query,
		e.DivisionID(),
		e.Name(),
		nullString(e.Email()),
		nullString(e.Phone()),
		nullString(e.Position()),
		string(e.Status()),
		e.ID(),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrNotFound
		}
		return employee.Employee{}, errors.Wrap(err, "failed to update employee")
	}

	return r.GetByID(ctx, id)
}

func (r *EmployeeRepository) Delete(ctx context.Context, id uint) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	return err
}

func (r *EmployeeRepository) queryEmployees(ctx context.Context, query string, args ...any) ([]employee.Employee, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var out []employee.Employee
	for rows.Next() {
		var m models.Employee
		if err := rows.Scan(
			&m.ID,
			&m.AgencyID,
			&m.DivisionID,
			&m.PrincipalID,
			&m.Name,
			&m.Email,
			&m.Phone,
			&m.Position,
			&m.Status,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan employee row")
		}
		out = append(out, toDomainEmployee(&m))
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}

	return out, nil
}
