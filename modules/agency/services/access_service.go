package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/employee"
	"github.com/siadin-id/siadin/pkg/cache"
	"github.com/siadin-id/siadin/pkg/identity"
	"github.com/siadin-id/siadin/pkg/rbac"
	"github.com/siadin-id/siadin/pkg/serrors"
)

var ErrForbidden = serrors.Permission("ACCESS_DENIED", "operation not permitted")

type EntityType string

const (
	EntityAgency   EntityType = "agency"
	EntityDivision EntityType = "division"
	EntityEmployee EntityType = "employee"
)

type AccessType string

const (
	AccessSystemAdmin   AccessType = "system_admin"
	AccessOwner         AccessType = "owner"
	AccessDivisionAdmin AccessType = "division_admin"
	AccessEmployee      AccessType = "employee"
	AccessNone          AccessType = "none"
)

// Relation describes how a principal relates to one entity. AccessType is the
// strongest matching relation; the booleans expose each relation separately
// because several can hold at once.
type Relation struct {
	IsSystemAdmin   bool       `json:"is_system_admin"`
	IsOwner         bool       `json:"is_owner"`
	IsDivisionAdmin bool       `json:"is_division_admin"`
	IsEmployee      bool       `json:"is_employee"`
	IsSelf          bool       `json:"is_self"`
	AccessType      AccessType `json:"access_type"`
}

const accessCachePrefix = "access"

// AccessService resolves principal-to-entity relations and derives allowed
// operations. Resolutions are cached per (entity, principal) pair; list-row
// rendering hits this on every row.
type AccessService struct {
	agencies  agency.Repository
	divisions division.Repository
	employees employee.Repository
	directory identity.Directory
	rbac      *rbac.Config
	cache     cache.Store
	ttl       time.Duration
}

func NewAccessService(
	agencies agency.Repository,
	divisions division.Repository,
	employees employee.Repository,
	directory identity.Directory,
	rbacConfig *rbac.Config,
	store cache.Store,
	ttl time.Duration,
) *AccessService {
	return &AccessService{
		agencies:  agencies,
		divisions: divisions,
		employees: employees,
		directory: directory,
		rbac:      rbacConfig,
		cache:     store,
		ttl:       ttl,
	}
}

func accessCacheKey(entityType EntityType, entityID uint, principalID uuid.UUID) string {
	return cache.Key(accessCachePrefix, string(entityType), strconv.FormatUint(uint64(entityID), 10), principalID.String())
}

// Resolve computes the relation between a principal and a target entity.
// First match wins for AccessType: system_admin, owner, division_admin,
// employee, none.
func (s *AccessService) Resolve(ctx context.Context, principalID uuid.UUID, entityType EntityType, entityID uint) (Relation, error) {
	key := accessCacheKey(entityType, entityID, principalID)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached Relation
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	relation, err := s.resolve(ctx, principalID, entityType, entityID)
	if err != nil {
		return Relation{}, err
	}

	if raw, err := json.Marshal(relation); err == nil {
		s.cache.Set(ctx, key, raw, s.ttl)
	}
	return relation, nil
}

func (s *AccessService) resolve(ctx context.Context, principalID uuid.UUID, entityType EntityType, entityID uint) (Relation, error) {
	relation := Relation{AccessType: AccessNone}

	principal, err := s.directory.PrincipalByID(ctx, principalID)
	if err == nil {
		relation.IsSystemAdmin = principal.HasRole(rbac.RoleSystemAdmin)
	}
	// An unknown principal still resolves; it can only reach relations
	// derivable from entity rows.

	switch entityType {
	case EntityAgency:
		err = s.resolveAgency(ctx, principalID, entityID, &relation)
	case EntityDivision:
		err = s.resolveDivision(ctx, principalID, entityID, &relation)
	case EntityEmployee:
		err = s.resolveEmployee(ctx, principalID, entityID, &relation)
	default:
		return Relation{}, serrors.Validation("ACCESS_BAD_ENTITY_TYPE", "unknown entity type").WithDetail("entity type %q", entityType)
	}
	if err != nil {
		return Relation{}, err
	}

	switch {
	case relation.IsSystemAdmin:
		relation.AccessType = AccessSystemAdmin
	case relation.IsOwner:
		relation.AccessType = AccessOwner
	case relation.IsDivisionAdmin:
		relation.AccessType = AccessDivisionAdmin
	case relation.IsEmployee:
		relation.AccessType = AccessEmployee
	}
	return relation, nil
}

func (s *AccessService) resolveAgency(ctx context.Context, principalID uuid.UUID, agencyID uint, relation *Relation) error {
	a, err := s.agencies.GetByID(ctx, agencyID)
	if err != nil {
		return err
	}
	relation.IsOwner = a.OwnerPrincipalID() == principalID

	divs, err := s.divisions.GetByAgency(ctx, agencyID)
	if err != nil {
		return err
	}
	for _, d := range divs {
		if d.IsActive() && d.AdminPrincipalID() == principalID {
			relation.IsDivisionAdmin = true
			break
		}
	}

	return s.markEmployee(ctx, agencyID, principalID, relation)
}

func (s *AccessService) resolveDivision(ctx context.Context, principalID uuid.UUID, divisionID uint, relation *Relation) error {
	d, err := s.divisions.GetByID(ctx, divisionID)
	if err != nil {
		return err
	}
	a, err := s.agencies.GetByID(ctx, d.AgencyID())
	if err != nil {
		return err
	}
	relation.IsOwner = a.OwnerPrincipalID() == principalID
	relation.IsDivisionAdmin = d.AdminPrincipalID() == principalID

	return s.markEmployee(ctx, d.AgencyID(), principalID, relation)
}

func (s *AccessService) resolveEmployee(ctx context.Context, principalID uuid.UUID, employeeID uint, relation *Relation) error {
	e, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return err
	}
	relation.IsSelf = e.PrincipalID() == principalID

	a, err := s.agencies.GetByID(ctx, e.AgencyID())
	if err != nil {
		return err
	}
	relation.IsOwner = a.OwnerPrincipalID() == principalID

	d, err := s.divisions.GetByID(ctx, e.DivisionID())
	if err != nil {
		return err
	}
	relation.IsDivisionAdmin = d.AdminPrincipalID() == principalID

	return s.markEmployee(ctx, e.AgencyID(), principalID, relation)
}

func (s *AccessService) markEmployee(ctx context.Context, agencyID uint, principalID uuid.UUID, relation *Relation) error {
	_, err := s.employees.GetByPrincipal(ctx, agencyID, principalID)
	if err == nil {
		relation.IsEmployee = true
		return nil
	}
	if errors.Is(err, employee.ErrNotFound) {
		return nil
	}
	return err
}

// Can reports whether the actor's global roles grant a capability, without
// resolving any entity relation.
func (s *AccessService) Can(actor identity.Principal, capability rbac.Capability) bool {
	return s.rbac.AnyAllows(actor.Roles, capability)
}

func (s *AccessService) CanView(ctx context.Context, actor identity.Principal, entityType EntityType, entityID uint) (bool, error) {
	relation, err := s.Resolve(ctx, actor.ID, entityType, entityID)
	if err != nil {
		return false, err
	}
	return relation.AccessType != AccessNone || relation.IsSelf, nil
}

func (s *AccessService) CanUpdate(ctx context.Context, actor identity.Principal, entityType EntityType, entityID uint) (bool, error) {
	relation, err := s.Resolve(ctx, actor.ID, entityType, entityID)
	if err != nil {
		return false, err
	}
	switch {
	case relation.IsSystemAdmin, relation.IsOwner:
		return true, nil
	case relation.IsDivisionAdmin:
		// A division admin manages their division and its employees but never
		// the agency itself.
		return entityType == EntityDivision || entityType == EntityEmployee, nil
	default:
		return false, nil
	}
}

func (s *AccessService) CanDelete(ctx context.Context, actor identity.Principal, entityType EntityType, entityID uint) (bool, error) {
	relation, err := s.Resolve(ctx, actor.ID, entityType, entityID)
	if err != nil {
		return false, err
	}
	switch {
	case relation.IsSystemAdmin, relation.IsOwner:
		return true, nil
	case relation.IsDivisionAdmin:
		return entityType == EntityEmployee, nil
	default:
		return false, nil
	}
}

// InvalidateEntity drops every cached relation for one entity, covering all
// principals at once.
func (s *AccessService) InvalidateEntity(ctx context.Context, entityType EntityType, entityID uint) {
	s.cache.DeleteByPrefix(ctx, cache.Key(accessCachePrefix, string(entityType), strconv.FormatUint(uint64(entityID), 10))+":")
}

// InvalidateAll drops the whole access keyspace. Lifecycle delete cascades
// change reachability for arbitrary principals across the subtree, so they
// invalidate both scopes wholesale rather than track affected pairs.
func (s *AccessService) InvalidateAll(ctx context.Context) {
	s.cache.DeleteByPrefix(ctx, accessCachePrefix+":")
}
