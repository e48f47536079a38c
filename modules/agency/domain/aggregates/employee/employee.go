package employee

import (
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
	ErrNotFound       = serrors.NotFound("EMPLOYEE_NOT_FOUND", "employee not found")
	ErrPrincipalTaken = serrors.Conflict("EMPLOYEE_PRINCIPAL_TAKEN", "principal already has an employee record in this agency")
)

// Employee links a principal to exactly one division and, transitively, one
// agency.
type Employee struct {
	id          uint
	agencyID    uint
	divisionID  uint
	principalID uuid.UUID
	name        string
	email       string
	phone       string
	position    string
	status      Status
	createdAt   time.Time
	updatedAt   time.Time
}

func New(agencyID, divisionID uint, principalID uuid.UUID, name, email, phone, position string) Employee {
	return Employee{
		agencyID:    agencyID,
		divisionID:  divisionID,
		principalID: principalID,
		name:        strings.TrimSpace(name),
		email:       strings.ToLower(strings.TrimSpace(email)),
		phone:       strings.TrimSpace(phone),
		position:    strings.TrimSpace(position),
		status:      StatusActive,
	}
}

func Hydrate(
	id uint,
	agencyID uint,
	divisionID uint,
	principalID uuid.UUID,
	name string,
	email string,
	phone string,
	position string,
	status Status,
	createdAt time.Time,
	updatedAt time.Time,
) Employee {
	return Employee{
		id:          id,
		agencyID:    agencyID,
		divisionID:  divisionID,
		principalID: principalID,
		name:        strings.TrimSpace(name),
		email:       email,
		phone:       phone,
		position:    position,
		status:      status,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (e Employee) ID() uint               { return e.id }
func (e Employee) AgencyID() uint         { return e.agencyID }
func (e Employee) DivisionID() uint       { return e.divisionID }
func (e Employee) PrincipalID() uuid.UUID { return e.principalID }
func (e Employee) Name() string           { return e.name }
func (e Employee) Email() string          { return e.email }
func (e Employee) Phone() string          { return e.phone }
func (e Employee) Position() string       { return e.position }
func (e Employee) Status() Status         { return e.status }
func (e Employee) CreatedAt() time.Time   { return e.createdAt }
func (e Employee) UpdatedAt() time.Time   { return e.updatedAt }
func (e Employee) IsActive() bool         { return e.status == StatusActive }
func (e Employee) IsZero() bool           { return e.id == 0 && e.principalID == uuid.Nil }

func (e Employee) Rename(name, email, phone, position string) Employee {
	out := e
	out.name = strings.TrimSpace(name)
	out.email = strings.ToLower(strings.TrimSpace(email))
	out.phone = strings.TrimSpace(phone)
	out.position = strings.TrimSpace(position)
	return out
}

// Transfer moves the employee to another division within the same agency.
func (e Employee) Transfer(divisionID uint) Employee {
	out := e
	out.divisionID = divisionID
	return out
}

func (e Employee) Deactivate() Employee {
	out := e
	out.status = StatusInactive
	return out
}

func (e Employee) Activate() Employee {
	out := e
	out.status = StatusActive
	return out
}
