package agency

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/siadin-id/siadin/pkg/serrors"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

var (
	ErrNotFound  = serrors.NotFound("AGENCY_NOT_FOUND", "agency not found")
	ErrCodeTaken = serrors.Conflict("AGENCY_CODE_TAKEN", "agency code already exists")
	ErrInactive  = serrors.Conflict("AGENCY_INACTIVE", "agency is inactive")
)

// Agency is the top-level organizational entity. It owns exactly one
// headquarters division and zero or more branch divisions; both are managed
// by lifecycle cascades, never directly by callers.
type Agency struct {
	id               uint
	code             string
	name             string
	status           Status
	provinceCode     string
	regencyCode      string
	ownerPrincipalID uuid.UUID
	createdBy        uuid.UUID
	createdAt        time.Time
	updatedAt        time.Time
}

func New(name, provinceCode, regencyCode string, owner, createdBy uuid.UUID) Agency {
	return Agency{
		code:             GenerateCode(),
		name:             strings.TrimSpace(name),
		status:           StatusActive,
		provinceCode:     strings.TrimSpace(provinceCode),
		regencyCode:      strings.TrimSpace(regencyCode),
		ownerPrincipalID: owner,
		createdBy:        createdBy,
	}
}

func Hydrate(
	id uint,
	code string,
	name string,
	status Status,
	provinceCode string,
	regencyCode string,
	ownerPrincipalID uuid.UUID,
	createdBy uuid.UUID,
	createdAt time.Time,
	updatedAt time.Time,
) Agency {
	return Agency{
		id:               id,
		code:             code,
		name:             strings.TrimSpace(name),
		status:           status,
		provinceCode:     provinceCode,
		regencyCode:      regencyCode,
		ownerPrincipalID: ownerPrincipalID,
		createdBy:        createdBy,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (a Agency) ID() uint                    { return a.id }
func (a Agency) Code() string                { return a.code }
func (a Agency) Name() string                { return a.name }
func (a Agency) Status() Status              { return a.status }
func (a Agency) ProvinceCode() string        { return a.provinceCode }
func (a Agency) RegencyCode() string         { return a.regencyCode }
func (a Agency) OwnerPrincipalID() uuid.UUID { return a.ownerPrincipalID }
func (a Agency) CreatedBy() uuid.UUID        { return a.createdBy }
func (a Agency) CreatedAt() time.Time        { return a.createdAt }
func (a Agency) UpdatedAt() time.Time        { return a.updatedAt }
func (a Agency) IsActive() bool              { return a.status == StatusActive }
func (a Agency) IsZero() bool                { return a.id == 0 && a.code == "" }

// Rename returns a copy with updated mutable fields. Code, owner and audit
// fields never change after creation.
func (a Agency) Rename(name, provinceCode, regencyCode string) Agency {
	out := a
	out.name = strings.TrimSpace(name)
	out.provinceCode = strings.TrimSpace(provinceCode)
	out.regencyCode = strings.TrimSpace(regencyCode)
	return out
}

func (a Agency) Deactivate() Agency {
	out := a
	out.status = StatusInactive
	return out
}

func (a Agency) Activate() Agency {
	out := a
	out.status = StatusActive
	return out
}

const codeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateCode produces an "AG" prefixed random code. Uniqueness is enforced
// by the repository; collisions are retried once there.
func GenerateCode() string {
	return "AG" + RandomSuffix(6)
}

// RandomSuffix returns n random characters from an unambiguous upper
// alphanumeric charset.
func RandomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back to
		// a degenerate but unique-enough value rather than panic.
		return strings.ToUpper(uuid.NewString()[:n])
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = codeCharset[int(b)%len(codeCharset)]
	}
	return string(out)
}
