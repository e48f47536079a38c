package services

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/pkg/composables"
	"github.com/siadin-id/siadin/pkg/configuration"
	"github.com/siadin-id/siadin/pkg/eventbus"
	"github.com/siadin-id/siadin/pkg/geo"
	"github.com/siadin-id/siadin/pkg/identity"
	"github.com/siadin-id/siadin/pkg/rbac"
	"github.com/siadin-id/siadin/pkg/serrors"
)

// publishTx dispatches an event to in-transaction cascade handlers. Events
// with no registered handlers are not an error.
func publishTx(publisher eventbus.EventBusWithError, args ...any) error {
	err := publisher.PublishE(args...)
	if errors.Is(err, eventbus.ErrNoSubscribers) {
		return nil
	}
	return err
}

type AgencyService struct {
	repo       agency.Repository
	geo        geo.Service
	access     *AccessService
	publisher  eventbus.EventBusWithError
	deleteMode string
}

func NewAgencyService(
	repo agency.Repository,
	geoService geo.Service,
	access *AccessService,
	publisher eventbus.EventBusWithError,
	deleteMode string,
) *AgencyService {
	return &AgencyService{
		repo:       repo,
		geo:        geoService,
		access:     access,
		publisher:  publisher,
		deleteMode: deleteMode,
	}
}

func (s *AgencyService) GetByID(ctx context.Context, id uint) (agency.Agency, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AgencyService) GetByCode(ctx context.Context, code string) (agency.Agency, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *AgencyService) GetPaginated(ctx context.Context, params *agency.FindParams) ([]agency.Agency, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *AgencyService) Count(ctx context.Context, params *agency.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

func (s *AgencyService) validateGeo(ctx context.Context, provinceCode, regencyCode string) error {
	if _, err := s.geo.LookupProvince(ctx, provinceCode); err != nil {
		return serrors.Validation("AGENCY_BAD_PROVINCE", "unknown province code").WithDetail("province %q", provinceCode)
	}
	if _, err := s.geo.LookupRegency(ctx, regencyCode); err != nil {
		return serrors.Validation("AGENCY_BAD_REGENCY", "unknown regency code").WithDetail("regency %q", regencyCode)
	}
	return nil
}

// Create persists the agency and runs the headquarters cascade inside one
// transaction. When the call returns, the agency, its pusat division and the
// headquarters employee all exist.
func (s *AgencyService) Create(ctx context.Context, dto *agency.CreateDTO, actor identity.Principal) (agency.Agency, error) {
	if !s.access.Can(actor, rbac.CapManageAgencies) {
		return agency.Agency{}, ErrForbidden
	}
	if fields, ok := dto.Ok(); !ok {
		return agency.Agency{}, fields
	}
	if err := s.validateGeo(ctx, dto.ProvinceCode, dto.RegencyCode); err != nil {
		return agency.Agency{}, err
	}

	entity, err := dto.ToEntity(actor.ID)
	if err != nil {
		return agency.Agency{}, err
	}
	admin, _ := dto.AdminOverride()

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) (agency.Agency, error) {
		// Each attempt runs in its own nested transaction so a unique
		// violation does not abort the enclosing one.
		out, err := composables.InNestedTxResult(txCtx, func(spCtx context.Context) (agency.Agency, error) {
			return s.repo.Create(spCtx, entity)
		})
		if errors.Is(err, agency.ErrCodeTaken) {
			// Generated code collided; one retry with a fresh code.
			retry, retryErr := dto.ToEntity(actor.ID)
			if retryErr != nil {
				return agency.Agency{}, retryErr
			}
			out, err = composables.InNestedTxResult(txCtx, func(spCtx context.Context) (agency.Agency, error) {
				return s.repo.Create(spCtx, retry)
			})
		}
		if err != nil {
			return agency.Agency{}, err
		}
		if err := publishTx(s.publisher, txCtx, agency.NewCreatedEvent(out, actor, admin)); err != nil {
			return agency.Agency{}, err
		}
		return out, nil
	})
	if err != nil {
		return agency.Agency{}, err
	}

	s.publisher.Publish(agency.NewCreatedEvent(created, actor, admin))
	return created, nil
}

func (s *AgencyService) Update(ctx context.Context, id uint, dto *agency.UpdateDTO, actor identity.Principal) (agency.Agency, error) {
	allowed, err := s.access.CanUpdate(ctx, actor, EntityAgency, id)
	if err != nil {
		return agency.Agency{}, err
	}
	if !allowed {
		return agency.Agency{}, ErrForbidden
	}
	if fields, ok := dto.Ok(); !ok {
		return agency.Agency{}, fields
	}
	if err := s.validateGeo(ctx, dto.ProvinceCode, dto.RegencyCode); err != nil {
		return agency.Agency{}, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return agency.Agency{}, err
	}

	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (agency.Agency, error) {
		out, err := s.repo.Update(txCtx, dto.Apply(existing))
		if err != nil {
			return agency.Agency{}, err
		}
		if err := publishTx(s.publisher, txCtx, agency.NewUpdatedEvent(existing, out, actor)); err != nil {
			return agency.Agency{}, err
		}
		return out, nil
	})
	if err != nil {
		return agency.Agency{}, err
	}

	s.access.InvalidateEntity(ctx, EntityAgency, id)
	s.publisher.Publish(agency.NewUpdatedEvent(existing, updated, actor))
	return updated, nil
}

// Delete removes or deactivates the agency and cascades through its divisions
// to their employees and jurisdiction assignments, all in one transaction.
func (s *AgencyService) Delete(ctx context.Context, id uint, actor identity.Principal) (agency.Agency, error) {
	allowed, err := s.access.CanDelete(ctx, actor, EntityAgency, id)
	if err != nil {
		return agency.Agency{}, err
	}
	if !allowed {
		return agency.Agency{}, ErrForbidden
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return agency.Agency{}, err
	}

	hard := s.deleteMode == configuration.DeleteModeHard
	if err := publishTx(s.publisher, ctx, agency.NewBeforeDeletedEvent(existing, actor, hard)); err != nil {
		return agency.Agency{}, err
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		// Children go first so hard deletes never leave dangling references;
		// the whole tree commits or rolls back as one unit.
		if err := publishTx(s.publisher, txCtx, agency.NewDeletedEvent(existing, actor, hard)); err != nil {
			return err
		}
		if hard {
			return s.repo.Delete(txCtx, id)
		}
		_, err := s.repo.Update(txCtx, existing.Deactivate())
		return err
	})
	if err != nil {
		return agency.Agency{}, err
	}

	s.access.InvalidateAll(ctx)
	s.publisher.Publish(agency.NewDeletedEvent(existing, actor, hard))
	return existing, nil
}
