package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/domain/entities/jurisdiction"
	"github.com/siadin-id/siadin/pkg/cache"
	"github.com/siadin-id/siadin/pkg/composables"
	"github.com/siadin-id/siadin/pkg/geo"
	"github.com/siadin-id/siadin/pkg/identity"
	"github.com/siadin-id/siadin/pkg/serrors"
)

const (
	territoriesCachePrefix   = "territories"
	jurisdictionsCachePrefix = "jurisdictions"
	territoriesCacheTTL      = 5 * time.Minute
)

// JurisdictionService manages the territory codes attached to a division.
// Exclusivity is scoped to the owning agency: a territory belongs to at most
// one division there, while two different agencies may both cover it.
type JurisdictionService struct {
	repo      jurisdiction.Repository
	divisions division.Repository
	geo       geo.Service
	access    *AccessService
	cache     cache.Store
}

func NewJurisdictionService(
	repo jurisdiction.Repository,
	divisions division.Repository,
	geoService geo.Service,
	access *AccessService,
	store cache.Store,
) *JurisdictionService {
	return &JurisdictionService{
		repo:      repo,
		divisions: divisions,
		geo:       geoService,
		access:    access,
		cache:     store,
	}
}

// ListByDivision returns the division's assignments, primary first. Reads go
// through the cache; Assign invalidates it synchronously.
func (s *JurisdictionService) ListByDivision(ctx context.Context, divisionID uint) ([]jurisdiction.Assignment, error) {
	key := cache.Key(jurisdictionsCachePrefix, "division", strconv.FormatUint(uint64(divisionID), 10))
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached []cachedAssignment
		if err := json.Unmarshal(raw, &cached); err == nil {
			return fromCachedAssignments(cached), nil
		}
	}

	out, err := s.repo.ListByDivision(ctx, divisionID)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(toCachedAssignments(out)); err == nil {
		s.cache.Set(ctx, key, raw, territoriesCacheTTL)
	}
	return out, nil
}

// Assign replaces the division's assignment set atomically. Within one
// transaction it drops the existing assignments, checks every requested code
// against the rest of the agency, auto-appends the division's own regency and
// inserts the surviving set. Any conflict rolls back the whole operation.
func (s *JurisdictionService) Assign(ctx context.Context, divisionID uint, codes, primaryCodes []string, actor identity.Principal) ([]jurisdiction.Assignment, error) {
	relation, err := s.access.Resolve(ctx, actor.ID, EntityDivision, divisionID)
	if err != nil {
		return nil, err
	}
	if !relation.IsSystemAdmin && !relation.IsOwner {
		return nil, ErrForbidden
	}

	d, err := s.divisions.GetByID(ctx, divisionID)
	if err != nil {
		return nil, err
	}

	requested := dedupe(codes)
	primary := dedupe(primaryCodes)

	requestedSet := make(map[string]struct{}, len(requested))
	for _, code := range requested {
		requestedSet[code] = struct{}{}
	}
	for _, code := range primary {
		if _, ok := requestedSet[code]; !ok {
			return nil, jurisdiction.ErrPrimaryOutside
		}
		if code != d.RegencyCode() {
			return nil, jurisdiction.ErrPrimaryMismatch
		}
	}

	for _, code := range requested {
		if _, err := s.geo.LookupRegency(ctx, code); err != nil {
			return nil, serrors.Validation("JURISDICTION_BAD_CODE", "unknown territory code").WithDetail("territory %q", code)
		}
	}

	// The division's own regency is always part of its jurisdiction.
	if _, ok := requestedSet[d.RegencyCode()]; !ok {
		requested = append(requested, d.RegencyCode())
	}

	created, err := composables.InTxResult(ctx, func(txCtx context.Context) ([]jurisdiction.Assignment, error) {
		existing, err := s.repo.ListByAgency(txCtx, d.AgencyID())
		if err != nil {
			return nil, err
		}
		held := make(map[string]uint, len(existing))
		for _, a := range existing {
			if a.DivisionID() != divisionID {
				held[a.TerritoryCode()] = a.DivisionID()
			}
		}
		for _, code := range requested {
			if _, taken := held[code]; taken {
				return nil, jurisdiction.ErrCodeTaken.WithDetail("territory %q", code)
			}
		}

		if err := s.repo.DeleteByDivision(txCtx, divisionID); err != nil {
			return nil, err
		}

		assignments := make([]jurisdiction.Assignment, 0, len(requested))
		for _, code := range requested {
			assignments = append(assignments, jurisdiction.New(divisionID, code, code == d.RegencyCode(), actor.ID))
		}
		return s.repo.CreateBatch(txCtx, assignments)
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, d.AgencyID(), divisionID)
	return created, nil
}

// AvailableTerritories returns the regencies of the agency's province not yet
// assigned to any of its divisions. The view is cached per agency.
func (s *JurisdictionService) AvailableTerritories(ctx context.Context, agencyID uint, provinceCode string) ([]geo.Territory, error) {
	key := cache.Key(territoriesCachePrefix, "agency", strconv.FormatUint(uint64(agencyID), 10), provinceCode)
	if raw, ok := s.cache.Get(ctx, key); ok {
		var cached []geo.Territory
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	all, err := s.geo.RegenciesOfProvince(ctx, provinceCode)
	if err != nil {
		return nil, serrors.Validation("JURISDICTION_BAD_PROVINCE", "unknown province code").WithDetail("province %q", provinceCode)
	}
	assigned, err := s.repo.ListByAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]struct{}, len(assigned))
	for _, a := range assigned {
		taken[a.TerritoryCode()] = struct{}{}
	}

	out := make([]geo.Territory, 0, len(all))
	for _, t := range all {
		if _, ok := taken[t.Code]; !ok {
			out = append(out, t)
		}
	}

	if raw, err := json.Marshal(out); err == nil {
		s.cache.Set(ctx, key, raw, territoriesCacheTTL)
	}
	return out, nil
}

func (s *JurisdictionService) invalidate(ctx context.Context, agencyID, divisionID uint) {
	s.cache.DeleteByPrefix(ctx, cache.Key(territoriesCachePrefix, "agency", strconv.FormatUint(uint64(agencyID), 10)))
	s.cache.Delete(ctx, cache.Key(jurisdictionsCachePrefix, "division", strconv.FormatUint(uint64(divisionID), 10)))
}

// InvalidateDivision drops the caches touched by a division's assignments.
// Lifecycle cascades call it when tearing a division down.
func (s *JurisdictionService) InvalidateDivision(ctx context.Context, agencyID, divisionID uint) {
	s.invalidate(ctx, agencyID, divisionID)
}

func dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

type cachedAssignment struct {
	ID            uint      `json:"id"`
	DivisionID    uint      `json:"division_id"`
	TerritoryCode string    `json:"territory_code"`
	IsPrimary     bool      `json:"is_primary"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}

func toCachedAssignments(in []jurisdiction.Assignment) []cachedAssignment {
	out := make([]cachedAssignment, 0, len(in))
	for _, a := range in {
		out = append(out, cachedAssignment{
			ID:            a.ID(),
			DivisionID:    a.DivisionID(),
			TerritoryCode: a.TerritoryCode(),
			IsPrimary:     a.IsPrimary(),
			CreatedBy:     a.CreatedBy().String(),
			CreatedAt:     a.CreatedAt(),
		})
	}
	return out
}

func fromCachedAssignments(in []cachedAssignment) []jurisdiction.Assignment {
	out := make([]jurisdiction.Assignment, 0, len(in))
	for _, c := range in {
		createdBy, err := uuid.Parse(c.CreatedBy)
		if err != nil {
			createdBy = uuid.Nil
		}
		out = append(out, jurisdiction.Hydrate(c.ID, c.DivisionID, c.TerritoryCode, c.IsPrimary, createdBy, c.CreatedAt))
	}
	return out
}
