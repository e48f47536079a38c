package employee

import (
	"context"

	"github.com/google/uuid"
)

type SortBy string

const (
	SortByName      SortBy = "name"
	SortByPosition  SortBy = "position"
	SortByCreatedAt SortBy = "created_at"
)

type FindParams struct {
	Search     string
	Status     Status
	AgencyID   uint
	DivisionID uint
	// DivisionIDs restricts results to the given divisions; nil means
	// unrestricted, an empty non-nil slice yields no rows (fail closed).
	DivisionIDs []uint
	SortBy      SortBy
	Desc        bool
	Limit       int
	Offset      int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Employee, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	GetByID(ctx context.Context, id uint) (Employee, error)
	GetByDivision(ctx context.Context, divisionID uint) ([]Employee, error)
	// GetByPrincipal returns the active employee record linking a principal
	// to an agency, or ErrNotFound.
	GetByPrincipal(ctx context.Context, agencyID uint, principalID uuid.UUID) (Employee, error)
	// GetAllByPrincipal returns every active employee record of a principal
	// across agencies; the access resolver derives reachability from it.
	GetAllByPrincipal(ctx context.Context, principalID uuid.UUID) ([]Employee, error)
	Create(ctx context.Context, e Employee) (Employee, error)
	Update(ctx context.Context, e Employee) (Employee, error)
	Delete(ctx context.Context, id uint) error
}
