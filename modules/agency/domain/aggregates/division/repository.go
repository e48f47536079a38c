package division

import (
	"context"

	"github.com/google/uuid"
)

type SortBy string

const (
	SortByName      SortBy = "name"
	SortByCode      SortBy = "code"
	SortByCreatedAt SortBy = "created_at"
)

type FindParams struct {
	Search   string
	Status   Status
	Type     Type
	AgencyID uint
	// Admin restricts results to divisions administered by the given
	// principal; uuid.Nil means unrestricted.
	Admin uuid.UUID
	// IDs restricts results to the given divisions; nil means unrestricted,
	// an empty non-nil slice yields no rows (fail closed).
	IDs    []uint
	SortBy SortBy
	Desc   bool
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Division, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	GetByID(ctx context.Context, id uint) (Division, error)
	GetByAgency(ctx context.Context, agencyID uint) ([]Division, error)
	// GetAllByAdmin returns every division administered by the principal,
	// without pagination; scope resolution must never truncate.
	GetAllByAdmin(ctx context.Context, admin uuid.UUID) ([]Division, error)
	// GetActivePusat returns the active headquarters division of an agency,
	// or ErrNoPusat. The creation cascade uses it as its idempotence check.
	GetActivePusat(ctx context.Context, agencyID uint) (Division, error)
	Create(ctx context.Context, d Division) (Division, error)
	Update(ctx context.Context, d Division) (Division, error)
	Delete(ctx context.Context, id uint) error
}
