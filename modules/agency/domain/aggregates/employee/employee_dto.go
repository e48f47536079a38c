package employee

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/siadin-id/siadin/pkg/constants"
	"github.com/siadin-id/siadin/pkg/serrors"
)

type CreateDTO struct {
	AgencyID    uint   `json:"agency_id" validate:"required"`
	DivisionID  uint   `json:"division_id" validate:"required"`
	PrincipalID string `json:"principal_id" validate:"required,uuid"`
	Name        string `json:"name" validate:"required,max=255"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,max=32"`
	Position    string `json:"position" validate:"max=128"`
}

func (d *CreateDTO) Normalize() {
	d.PrincipalID = strings.TrimSpace(d.PrincipalID)
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Phone = strings.TrimSpace(d.Phone)
	d.Position = strings.TrimSpace(d.Position)
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	errs := constants.Validate.Struct(d)
	if errs == nil {
		return nil, true
	}
	return serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors), employeeFieldLabel), false
}

func (d *CreateDTO) ToEntity() (Employee, error) {
	principalID, err := uuid.Parse(d.PrincipalID)
	if err != nil {
		return Employee{}, serrors.Validation("EMPLOYEE_BAD_PRINCIPAL", "principal_id is not a valid UUID")
	}
	return New(d.AgencyID, d.DivisionID, principalID, d.Name, d.Email, d.Phone, d.Position), nil
}

type UpdateDTO struct {
	Name       string `json:"name" validate:"required,max=255"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	Position   string `json:"position" validate:"max=128"`
	DivisionID uint   `json:"division_id" validate:"omitempty"`
}

func (d *UpdateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.Phone = strings.TrimSpace(d.Phone)
	d.Position = strings.TrimSpace(d.Position)
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	errs := constants.Validate.Struct(d)
	if errs == nil {
		return nil, true
	}
	return serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors), employeeFieldLabel), false
}

func (d *UpdateDTO) Apply(e Employee) Employee {
	out := e.Rename(d.Name, d.Email, d.Phone, d.Position)
	if d.DivisionID != 0 {
		out = out.Transfer(d.DivisionID)
	}
	return out
}

func employeeFieldLabel(field string) string {
	switch field {
	case "AgencyID":
		return "agency"
	case "DivisionID":
		return "division"
	case "PrincipalID":
		return "principal"
	case "Name":
		return "employee name"
	case "Email":
		return "email"
	case "Phone":
		return "phone"
	case "Position":
		return "position"
	default:
		return ""
	}
}
