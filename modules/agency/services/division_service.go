package services

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/pkg/composables"
	"github.com/siadin-id/siadin/pkg/configuration"
	"github.com/siadin-id/siadin/pkg/eventbus"
	"github.com/siadin-id/siadin/pkg/geo"
	"github.com/siadin-id/siadin/pkg/identity"
	"github.com/siadin-id/siadin/pkg/serrors"
)

type DivisionService struct {
	repo       division.Repository
	agencies   agency.Repository
	geo        geo.Service
	access     *AccessService
	publisher  eventbus.EventBusWithError
	deleteMode string
}

func NewDivisionService(
	repo division.Repository,
	agencies agency.Repository,
	geoService geo.Service,
	access *AccessService,
	publisher eventbus.EventBusWithError,
	deleteMode string,
) *DivisionService {
	return &DivisionService{
		repo:       repo,
		agencies:   agencies,
		geo:        geoService,
		access:     access,
		publisher:  publisher,
		deleteMode: deleteMode,
	}
}

func (s *DivisionService) GetByID(ctx context.Context, id uint) (division.Division, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *DivisionService) GetByAgency(ctx context.Context, agencyID uint) ([]division.Division, error) {
	return s.repo.GetByAgency(ctx, agencyID)
}

func (s *DivisionService) GetPaginated(ctx context.Context, params *division.FindParams) ([]division.Division, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *DivisionService) Count(ctx context.Context, params *division.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

func (s *DivisionService) validateGeo(ctx context.Context, provinceCode, regencyCode string) error {
	if _, err := s.geo.LookupProvince(ctx, provinceCode); err != nil {
		return serrors.Validation("DIVISION_BAD_PROVINCE", "unknown province code").WithDetail("province %q", provinceCode)
	}
	if _, err := s.geo.LookupRegency(ctx, regencyCode); err != nil {
		return serrors.Validation("DIVISION_BAD_REGENCY", "unknown regency code").WithDetail("regency %q", regencyCode)
	}
	return nil
}

// Create adds a division to an active agency. Creating a second active pusat
// division is rejected; the headquarters cascade owns the first one.
func (s *DivisionService) Create(ctx context.Context, dto *division.CreateDTO, actor identity.Principal) (division.Division, error) {
	if fields, ok := dto.Ok(); !ok {
		return division.Division{}, fields
	}

	allowed, err := s.access.CanUpdate(ctx, actor, EntityAgency, dto.AgencyID)
	if err != nil {
		return division.Division{}, err
	}
	if !allowed {
		return division.Division{}, ErrForbidden
	}
	if err := s.validateGeo(ctx, dto.ProvinceCode, dto.RegencyCode); err != nil {
		return division.Division{}, err
	}

	owner, err := s.agencies.GetByID(ctx, dto.AgencyID)
	if err != nil {
		return division.Division{}, err
	}
	if !owner.IsActive() {
		return division.Division{}, agency.ErrInactive
	}

	entity, err := dto.ToEntity(owner)
	if err != nil {
		return division.Division{}, err
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (division.Division, error) {
		if entity.IsPusat() {
			_, err := s.repo.GetActivePusat(txCtx, owner.ID())
			if err == nil {
				return division.Division{}, division.ErrPusatExists
			}
			if !errors.Is(err, division.ErrNoPusat) {
				return division.Division{}, err
			}
		}
		// Each attempt runs in its own nested transaction so a unique
		// violation does not abort the enclosing one.
		out, err := composables.InNestedTxResult(txCtx, func(spCtx context.Context) (division.Division, error) {
			return s.repo.Create(spCtx, entity)
		})
		if errors.Is(err, division.ErrCodeTaken) {
			retry, retryErr := dto.ToEntity(owner)
			if retryErr != nil {
				return division.Division{}, retryErr
			}
			out, err = composables.InNestedTxResult(txCtx, func(spCtx context.Context) (division.Division, error) {
				return s.repo.Create(spCtx, retry)
			})
		}
		if err != nil {
			return division.Division{}, err
		}
		if err := publishTx(s.publisher, txCtx, division.NewCreatedEvent(out, actor)); err != nil {
			return division.Division{}, err
		}
		return out, nil
	})
	if err != nil {
		return division.Division{}, err
	}

	s.access.InvalidateEntity(ctx, EntityAgency, owner.ID())
	s.publisher.Publish(division.NewCreatedEvent(created, actor))
	return created, nil
}

func (s *DivisionService) Update(ctx context.Context, id uint, dto *division.UpdateDTO, actor identity.Principal) (division.Division, error) {
	allowed, err := s.access.CanUpdate(ctx, actor, EntityDivision, id)
	if err != nil {
		return division.Division{}, err
	}
	if !allowed {
		return division.Division{}, ErrForbidden
	}
	if fields, ok := dto.Ok(); !ok {
		return division.Division{}, fields
	}
	if err := s.validateGeo(ctx, dto.ProvinceCode, dto.RegencyCode); err != nil {
		return division.Division{}, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return division.Division{}, err
	}

	applied, err := dto.Apply(existing)
	if err != nil {
		return division.Division{}, err
	}

	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (division.Division, error) {
		out, err := s.repo.Update(txCtx, applied)
		if err != nil {
			return division.Division{}, err
		}
		if err := publishTx(s.publisher, txCtx, division.NewUpdatedEvent(existing, out, actor)); err != nil {
			return division.Division{}, err
		}
		return out, nil
	})
	if err != nil {
		return division.Division{}, err
	}

	s.access.InvalidateEntity(ctx, EntityDivision, id)
	s.publisher.Publish(division.NewUpdatedEvent(existing, updated, actor))
	return updated, nil
}

// Delete removes or deactivates a branch division and cascades to its
// employees and jurisdiction assignments. The headquarters division can only
// go down with its agency.
func (s *DivisionService) Delete(ctx context.Context, id uint, actor identity.Principal) (division.Division, error) {
	allowed, err := s.access.CanDelete(ctx, actor, EntityDivision, id)
	if err != nil {
		return division.Division{}, err
	}
	if !allowed {
		return division.Division{}, ErrForbidden
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return division.Division{}, err
	}
	if existing.IsPusat() {
		return division.Division{}, division.ErrPusatImmutable
	}

	hard := s.deleteMode == configuration.DeleteModeHard
	if err := publishTx(s.publisher, ctx, division.NewBeforeDeletedEvent(existing, actor, hard)); err != nil {
		return division.Division{}, err
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		// Children go first so hard deletes never leave dangling references.
		if err := publishTx(s.publisher, txCtx, division.NewDeletedEvent(existing, actor, hard)); err != nil {
			return err
		}
		if hard {
			return s.repo.Delete(txCtx, id)
		}
		_, err := s.repo.Update(txCtx, existing.Deactivate())
		return err
	})
	if err != nil {
		return division.Division{}, err
	}

	s.access.InvalidateAll(ctx)
	s.publisher.Publish(division.NewDeletedEvent(existing, actor, hard))
	return existing, nil
}
