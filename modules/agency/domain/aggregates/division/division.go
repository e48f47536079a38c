package division

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/pkg/serrors"
)

type Type string

const (
	// TypePusat marks the single headquarters division of an agency.
	TypePusat Type = "pusat"
	// TypeCabang marks a branch division.
	TypeCabang Type = "cabang"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var (
	ErrNotFound       = serrors.NotFound("DIVISION_NOT_FOUND", "division not found")
	ErrCodeTaken      = serrors.Conflict("DIVISION_CODE_TAKEN", "division code already exists")
	ErrPusatExists    = serrors.Conflict("DIVISION_PUSAT_EXISTS", "agency already has an active headquarters division")
	ErrPusatImmutable = serrors.Conflict("DIVISION_PUSAT_IMMUTABLE", "headquarters division cannot be deleted directly")
	ErrNoPusat        = serrors.Dependency("DIVISION_NO_PUSAT", "agency has no headquarters division")
)

// Division is a branch or headquarters unit owned by exactly one agency.
type Division struct {
	id               uint
	agencyID         uint
	code             string
	name             string
	typ              Type
	provinceCode     string
	regencyCode      string
	address          string
	adminPrincipalID uuid.UUID // uuid.Nil when unset
	status           Status
	createdAt        time.Time
	updatedAt        time.Time
}

// New derives the division code from the owning agency's code plus a random
// suffix, the same scheme the agency itself uses.
func New(a agency.Agency, name string, typ Type, provinceCode, regencyCode, address string, adminPrincipalID uuid.UUID) Division {
	return Division{
		agencyID:         a.ID(),
		code:             a.Code() + "-" + agency.RandomSuffix(4),
		name:             strings.TrimSpace(name),
		typ:              typ,
		provinceCode:     strings.TrimSpace(provinceCode),
		regencyCode:      strings.TrimSpace(regencyCode),
		address:          strings.TrimSpace(address),
		adminPrincipalID: adminPrincipalID,
		status:           StatusActive,
	}
}

func Hydrate(
	id uint,
	agencyID uint,
	code string,
	name string,
	typ Type,
	provinceCode string,
	regencyCode string,
	address string,
	adminPrincipalID uuid.UUID,
	status Status,
	createdAt time.Time,
	updatedAt time.Time,
) Division {
	return Division{
		id:               id,
		agencyID:         agencyID,
		code:             code,
		name:             strings.TrimSpace(name),
		typ:              typ,
		provinceCode:     provinceCode,
		regencyCode:      regencyCode,
		address:          address,
		adminPrincipalID: adminPrincipalID,
		status:           status,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (d Division) ID() uint                    { return d.id }
func (d Division) AgencyID() uint              { return d.agencyID }
func (d Division) Code() string                { return d.code }
func (d Division) Name() string                { return d.name }
func (d Division) Type() Type                  { return d.typ }
func (d Division) ProvinceCode() string        { return d.provinceCode }
func (d Division) RegencyCode() string         { return d.regencyCode }
func (d Division) Address() string             { return d.address }
func (d Division) AdminPrincipalID() uuid.UUID { return d.adminPrincipalID }
func (d Division) Status() Status              { return d.status }
func (d Division) CreatedAt() time.Time        { return d.createdAt }
func (d Division) UpdatedAt() time.Time        { return d.updatedAt }
func (d Division) IsActive() bool              { return d.status == StatusActive }
func (d Division) IsPusat() bool               { return d.typ == TypePusat }
func (d Division) IsZero() bool                { return d.id == 0 && d.code == "" }

func (d Division) Rename(name, provinceCode, regencyCode, address string) Division {
	out := d
	out.name = strings.TrimSpace(name)
	out.provinceCode = strings.TrimSpace(provinceCode)
	out.regencyCode = strings.TrimSpace(regencyCode)
	out.address = strings.TrimSpace(address)
	return out
}

func (d Division) WithAdmin(principalID uuid.UUID) Division {
	out := d
	out.adminPrincipalID = principalID
	return out
}

func (d Division) Deactivate() Division {
	out := d
	out.status = StatusInactive
	return out
}

func (d Division) Activate() Division {
	out := d
	out.status = StatusActive
	return out
}
