package jurisdiction

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siadin-id/siadin/pkg/serrors"
)

var (
	ErrNotFound = serrors.NotFound("JURISDICTION_NOT_FOUND", "jurisdiction assignment not found")
	// ErrCodeTaken names the clashing code via WithDetail at the call site.
	ErrCodeTaken       = serrors.Conflict("JURISDICTION_CODE_TAKEN", "territory already assigned to another division in this agency")
	ErrPrimaryOutside  = serrors.Validation("JURISDICTION_PRIMARY_OUTSIDE", "primary codes must be a subset of the assigned codes")
	ErrPrimaryMismatch = serrors.Validation("JURISDICTION_PRIMARY_MISMATCH", "primary code must match the division's own regency")
)

// Assignment binds one territory code to a division. Within an agency a
// territory belongs to at most one division; exactly one assignment per
// division is primary and matches the division's own regency.
type Assignment struct {
	id            uint
	divisionID    uint
	territoryCode string
	isPrimary     bool
	createdBy     uuid.UUID
	createdAt     time.Time
}

func New(divisionID uint, territoryCode string, isPrimary bool, createdBy uuid.UUID) Assignment {
	return Assignment{
		divisionID:    divisionID,
		territoryCode: strings.TrimSpace(territoryCode),
		isPrimary:     isPrimary,
		createdBy:     createdBy,
	}
}

func Hydrate(id, divisionID uint, territoryCode string, isPrimary bool, createdBy uuid.UUID, createdAt time.Time) Assignment {
	return Assignment{
		id:            id,
		divisionID:    divisionID,
		territoryCode: territoryCode,
		isPrimary:     isPrimary,
		createdBy:     createdBy,
		createdAt:     createdAt,
	}
}

func (a Assignment) ID() uint              { return a.id }
func (a Assignment) DivisionID() uint      { return a.divisionID }
func (a Assignment) TerritoryCode() string { return a.territoryCode }
func (a Assignment) IsPrimary() bool       { return a.isPrimary }
func (a Assignment) CreatedBy() uuid.UUID  { return a.createdBy }
func (a Assignment) CreatedAt() time.Time  { return a.createdAt }
