package services

import (
	"context"
	"sync"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/employee"
	"github.com/siadin-id/siadin/pkg/identity"
	"github.com/siadin-id/siadin/pkg/rbac"
)

// ListResult is the gateway's answer shape. TotalCount is the number of rows
// visible to the principal before search filtering; FilteredCount is the
// count after it; Rows is the requested page.
type ListResult[T any] struct {
	Rows          []T
	TotalCount    int64
	FilteredCount int64
}

// Scope is the set of entities a principal can see. Unrestricted short-cuts
// every check; otherwise AgencyIDs and DivisionIDs enumerate reachability.
// Both empty means no access at all.
type Scope struct {
	Unrestricted bool
	AgencyIDs    []uint
	DivisionIDs  []uint
}

func (s *Scope) Empty() bool {
	return !s.Unrestricted && len(s.AgencyIDs) == 0 && len(s.DivisionIDs) == 0
}

// ScopeFilter lets an external collaborator narrow or widen a principal's
// scope. Filters run after the base scope is computed and are combined with
// AND semantics: each sees the previous result and must never replace the
// base scope wholesale.
type ScopeFilter func(ctx context.Context, actor identity.Principal, scope *Scope) error

// QueryService builds permission-scoped, paginated views over entities. A
// principal with no recognized relation gets an empty result, never an error;
// list reads must not leak the existence of unauthorized entities.
type QueryService struct {
	agencies  agency.Repository
	divisions division.Repository
	employees employee.Repository
	access    *AccessService

	mu      sync.RWMutex
	filters []ScopeFilter
}

func NewQueryService(
	agencies agency.Repository,
	divisions division.Repository,
	employees employee.Repository,
	access *AccessService,
) *QueryService {
	return &QueryService{
		agencies:  agencies,
		divisions: divisions,
		employees: employees,
		access:    access,
	}
}

// RegisterScopeFilter appends a filter applied to every subsequent list call.
func (s *QueryService) RegisterScopeFilter(filter ScopeFilter) {
	s.mu.Lock()
	s.filters = append(s.filters, filter)
	s.mu.Unlock()
}

// ResolveScope computes the base scope for a principal: a system admin sees
// everything; otherwise scope is the union of owned agencies, administered
// divisions and active employee memberships. Registered filters run last.
func (s *QueryService) ResolveScope(ctx context.Context, actor identity.Principal) (*Scope, error) {
	scope := &Scope{}

	if actor.HasRole(rbac.RoleSystemAdmin) {
		scope.Unrestricted = true
	} else {
		owned, err := s.agencies.GetAllByOwner(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		for _, a := range owned {
			scope.AgencyIDs = append(scope.AgencyIDs, a.ID())
		}

		administered, err := s.divisions.GetAllByAdmin(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		for _, d := range administered {
			scope.DivisionIDs = append(scope.DivisionIDs, d.ID())
			scope.AgencyIDs = append(scope.AgencyIDs, d.AgencyID())
		}

		memberships, err := s.employees.GetAllByPrincipal(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range memberships {
			scope.AgencyIDs = append(scope.AgencyIDs, e.AgencyID())
		}

		scope.AgencyIDs = dedupeIDs(scope.AgencyIDs)
		scope.DivisionIDs = dedupeIDs(scope.DivisionIDs)
	}

	s.mu.RLock()
	filters := s.filters
	s.mu.RUnlock()
	for _, filter := range filters {
		if err := filter(ctx, actor, scope); err != nil {
			return nil, err
		}
	}
	return scope, nil
}

// statusFilter applies the base status rule: inactive rows are only visible
// to callers holding the view-inactive capability.
func (s *QueryService) statusFilter(actor identity.Principal, requested string) string {
	if requested != "" && s.access.Can(actor, rbac.CapViewInactive) {
		return requested
	}
	return "active"
}

func (s *QueryService) ListAgencies(ctx context.Context, actor identity.Principal, params *agency.FindParams) (*ListResult[agency.Agency], error) {
	if params == nil {
		params = &agency.FindParams{}
	}
	scope, err := s.ResolveScope(ctx, actor)
	if err != nil {
		return nil, err
	}

	scoped := *params
	scoped.Status = agency.Status(s.statusFilter(actor, string(params.Status)))
	if !scope.Unrestricted {
		ids := scope.AgencyIDs
		if ids == nil {
			ids = []uint{}
		}
		scoped.IDs = intersectIDs(params.IDs, ids)
	}

	base := scoped
	base.Search = ""

	totalCount, err := s.agencies.Count(ctx, &base)
	if err != nil {
		return nil, err
	}
	filteredCount, err := s.agencies.Count(ctx, &scoped)
	if err != nil {
		return nil, err
	}
	rows, err := s.agencies.GetPaginated(ctx, &scoped)
	if err != nil {
		return nil, err
	}
	return &ListResult[agency.Agency]{Rows: rows, TotalCount: totalCount, FilteredCount: filteredCount}, nil
}

func (s *QueryService) ListDivisions(ctx context.Context, actor identity.Principal, params *division.FindParams) (*ListResult[division.Division], error) {
	if params == nil {
		params = &division.FindParams{}
	}
	scope, err := s.ResolveScope(ctx, actor)
	if err != nil {
		return nil, err
	}

	scoped := *params
	scoped.Status = division.Status(s.statusFilter(actor, string(params.Status)))
	if !scope.Unrestricted {
		ids, err := s.scopeDivisionIDs(ctx, scope)
		if err != nil {
			return nil, err
		}
		scoped.IDs = intersectIDs(params.IDs, ids)
	}

	base := scoped
	base.Search = ""

	totalCount, err := s.divisions.Count(ctx, &base)
	if err != nil {
		return nil, err
	}
	filteredCount, err := s.divisions.Count(ctx, &scoped)
	if err != nil {
		return nil, err
	}
	rows, err := s.divisions.GetPaginated(ctx, &scoped)
	if err != nil {
		return nil, err
	}
	return &ListResult[division.Division]{Rows: rows, TotalCount: totalCount, FilteredCount: filteredCount}, nil
}

func (s *QueryService) ListEmployees(ctx context.Context, actor identity.Principal, params *employee.FindParams) (*ListResult[employee.Employee], error) {
	if params == nil {
		params = &employee.FindParams{}
	}
	scope, err := s.ResolveScope(ctx, actor)
	if err != nil {
		return nil, err
	}

	scoped := *params
	scoped.Status = employee.Status(s.statusFilter(actor, string(params.Status)))
	if !scope.Unrestricted {
		ids, err := s.scopeDivisionIDs(ctx, scope)
		if err != nil {
			return nil, err
		}
		scoped.DivisionIDs = intersectIDs(params.DivisionIDs, ids)
	}

	base := scoped
	base.Search = ""

	totalCount, err := s.employees.Count(ctx, &base)
	if err != nil {
		return nil, err
	}
	filteredCount, err := s.employees.Count(ctx, &scoped)
	if err != nil {
		return nil, err
	}
	rows, err := s.employees.GetPaginated(ctx, &scoped)
	if err != nil {
		return nil, err
	}
	return &ListResult[employee.Employee]{Rows: rows, TotalCount: totalCount, FilteredCount: filteredCount}, nil
}

// scopeDivisionIDs expands a scope into concrete division IDs: every division
// of a reachable agency plus explicitly administered ones.
func (s *QueryService) scopeDivisionIDs(ctx context.Context, scope *Scope) ([]uint, error) {
	ids := append([]uint{}, scope.DivisionIDs...)
	for _, agencyID := range scope.AgencyIDs {
		divs, err := s.divisions.GetByAgency(ctx, agencyID)
		if err != nil {
			return nil, err
		}
		for _, d := range divs {
			ids = append(ids, d.ID())
		}
	}
	return dedupeIDs(ids), nil
}

func dedupeIDs(ids []uint) []uint {
	if len(ids) == 0 {
		return ids
	}
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// intersectIDs combines a caller-requested ID restriction with the scope.
// A nil request means scope-only; the result is always non-nil so an empty
// scope fails closed at the repository.
func intersectIDs(requested, scope []uint) []uint {
	if requested == nil {
		if scope == nil {
			return []uint{}
		}
		return scope
	}
	allowed := make(map[uint]struct{}, len(scope))
	for _, id := range scope {
		allowed[id] = struct{}{}
	}
	out := make([]uint, 0, len(requested))
	for _, id := range requested {
		if _, ok := allowed[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
