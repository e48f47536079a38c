package agency

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
	// Search matches name and code (case-insensitive substring).
	Search string
	// Status filters by lifecycle status; empty means all.
	Status Status
	// Owner restricts results to agencies owned by the given principal;
	// uuid.Nil means unrestricted.
	Owner uuid.UUID
	// IDs restricts results to the given agencies; nil means unrestricted,
	// an empty non-nil slice yields no rows (fail closed).
	IDs    []uint
	SortBy SortBy
	Desc   bool
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Agency, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	GetByID(ctx context.Context, id uint) (Agency, error)
	GetByCode(ctx context.Context, code string) (Agency, error)
	// GetAllByOwner returns every agency owned by the principal, without
	// pagination; scope resolution must never truncate.
	GetAllByOwner(ctx context.Context, owner uuid.UUID) ([]Agency, error)
	Create(ctx context.Context, a Agency) (Agency, error)
	Update(ctx context.Context, a Agency) (Agency, error)
	Delete(ctx context.Context, id uint) error
}
