package jurisdiction

import "context"

type Repository interface {
	ListByDivision(ctx context.Context, divisionID uint) ([]Assignment, error)
	// ListByAgency returns every assignment across all divisions of an
	// agency; the exclusivity check runs against this set.
	ListByAgency(ctx context.Context, agencyID uint) ([]Assignment, error)
	// CreateBatch inserts all assignments or none.
	CreateBatch(ctx context.Context, assignments []Assignment) ([]Assignment, error)
	DeleteByDivision(ctx context.Context, divisionID uint) error
}
