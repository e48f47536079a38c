package services

import (
	"context"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/employee"
	"github.com/siadin-id/siadin/pkg/composables"
	"github.com/siadin-id/siadin/pkg/configuration"
	"github.com/siadin-id/siadin/pkg/eventbus"
	"github.com/siadin-id/siadin/pkg/identity"
	"github.com/siadin-id/siadin/pkg/serrors"
)

type EmployeeService struct {
	repo       employee.Repository
	divisions  division.Repository
	agencies   agency.Repository
	access     *AccessService
	publisher  eventbus.EventBusWithError
	deleteMode string
}

func NewEmployeeService(
	repo employee.Repository,
	divisions division.Repository,
	agencies agency.Repository,
	access *AccessService,
	publisher eventbus.EventBusWithError,
	deleteMode string,
) *EmployeeService {
	return &EmployeeService{
		repo:       repo,
		divisions:  divisions,
		agencies:   agencies,
		access:     access,
		publisher:  publisher,
		deleteMode: deleteMode,
	}
}

func (s *EmployeeService) GetByID(ctx context.Context, id uint) (employee.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *EmployeeService) GetByDivision(ctx context.Context, divisionID uint) ([]employee.Employee, error) {
	return s.repo.GetByDivision(ctx, divisionID)
}

func (s *EmployeeService) GetPaginated(ctx context.Context, params *employee.FindParams) ([]employee.Employee, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *EmployeeService) Count(ctx context.Context, params *employee.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

func (s *EmployeeService) Create(ctx context.Context, dto *employee.CreateDTO, actor identity.Principal) (employee.Employee, error) {
	if fields, ok := dto.Ok(); !ok {
		return employee.Employee{}, fields
	}

	allowed, err := s.access.CanUpdate(ctx, actor, EntityDivision, dto.DivisionID)
	if err != nil {
		return employee.Employee{}, err
	}
	if !allowed {
		return employee.Employee{}, ErrForbidden
	}

	d, err := s.divisions.GetByID(ctx, dto.DivisionID)
	if err != nil {
		return employee.Employee{}, err
	}
	if d.AgencyID() != dto.AgencyID {
		return employee.Employee{}, serrors.Validation("EMPLOYEE_DIVISION_MISMATCH", "division does not belong to the given agency")
	}
	owner, err := s.agencies.GetByID(ctx, d.AgencyID())
	if err != nil {
		return employee.Employee{}, err
	}
	if !owner.IsActive() || !d.IsActive() {
		return employee.Employee{}, agency.ErrInactive
	}

	entity, err := dto.ToEntity()
	if err != nil {
		return employee.Employee{}, err
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (employee.Employee, error) {
		out, err := s.repo.Create(txCtx, entity)
		if err != nil {
			return employee.Employee{}, err
		}
		if err := publishTx(s.publisher, txCtx, employee.NewCreatedEvent(out, actor)); err != nil {
			return employee.Employee{}, err
		}
		return out, nil
	})
	if err != nil {
		return employee.Employee{}, err
	}

	s.access.InvalidateEntity(ctx, EntityAgency, d.AgencyID())
	s.access.InvalidateEntity(ctx, EntityDivision, d.ID())
	s.publisher.Publish(employee.NewCreatedEvent(created, actor))
	return created, nil
}

func (s *EmployeeService) Update(ctx context.Context, id uint, dto *employee.UpdateDTO, actor identity.Principal) (employee.Employee, error) {
	allowed, err := s.access.CanUpdate(ctx, actor, EntityEmployee, id)
	if err != nil {
		return employee.Employee{}, err
	}
	if !allowed {
		return employee.Employee{}, ErrForbidden
	}
	if fields, ok := dto.Ok(); !ok {
		return employee.Employee{}, fields
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return employee.Employee{}, err
	}

	applied := dto.Apply(existing)
	if applied.DivisionID() != existing.DivisionID() {
		// Transfers stay within the agency.
		target, err := s.divisions.GetByID(ctx, applied.DivisionID())
		if err != nil {
			return employee.Employee{}, err
		}
		if target.AgencyID() != existing.AgencyID() {
			return employee.Employee{}, serrors.Validation("EMPLOYEE_DIVISION_MISMATCH", "division does not belong to the given agency")
		}
		if !target.IsActive() {
			return employee.Employee{}, agency.ErrInactive
		}
	}

	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (employee.Employee, error) {
		out, err := s.repo.Update(txCtx, applied)
		if err != nil {
			return employee.Employee{}, err
		}
		if err := publishTx(s.publisher, txCtx, employee.NewUpdatedEvent(existing, out, actor)); err != nil {
			return employee.Employee{}, err
		}
		return out, nil
	})
	if err != nil {
		return employee.Employee{}, err
	}

	s.access.InvalidateEntity(ctx, EntityEmployee, id)
	s.publisher.Publish(employee.NewUpdatedEvent(existing, updated, actor))
	return updated, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id uint, actor identity.Principal) (employee.Employee, error) {
	allowed, err := s.access.CanDelete(ctx, actor, EntityEmployee, id)
	if err != nil {
		return employee.Employee{}, err
	}
	if !allowed {
		return employee.Employee{}, ErrForbidden
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return employee.Employee{}, err
	}

	hard := s.deleteMode == configuration.DeleteModeHard
	if err := publishTx(s.publisher, ctx, employee.NewBeforeDeletedEvent(existing, actor, hard)); err != nil {
		return employee.Employee{}, err
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if hard {
			if err := s.repo.Delete(txCtx, id); err != nil {
				return err
			}
		} else {
			if _, err := s.repo.Update(txCtx, existing.Deactivate()); err != nil {
				return err
			}
		}
		return publishTx(s.publisher, txCtx, employee.NewDeletedEvent(existing, actor, hard))
	})
	if err != nil {
		return employee.Employee{}, err
	}

	s.access.InvalidateAll(ctx)
	s.publisher.Publish(employee.NewDeletedEvent(existing, actor, hard))
	return existing, nil
}
