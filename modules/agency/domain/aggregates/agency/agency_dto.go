package agency

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/siadin-id/siadin/pkg/constants"
	"github.com/siadin-id/siadin/pkg/serrors"
)

type CreateDTO struct {
	Name         string `json:"name" validate:"required,max=255"`
	ProvinceCode string `json:"province_code" validate:"required,len=2"`
	RegencyCode  string `json:"regency_code" validate:"required,len=4"`
	// Owner of the agency. Defaults to the acting principal when empty.
	OwnerPrincipalID string `json:"owner_principal_id" validate:"omitempty,uuid"`
	// Optional distinct admin for the headquarters division cascade.
	AdminPrincipalID string `json:"admin_principal_id" validate:"omitempty,uuid"`
}

func (d *CreateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.ProvinceCode = strings.TrimSpace(d.ProvinceCode)
	d.RegencyCode = strings.TrimSpace(d.RegencyCode)
	d.OwnerPrincipalID = strings.TrimSpace(d.OwnerPrincipalID)
	d.AdminPrincipalID = strings.TrimSpace(d.AdminPrincipalID)
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	errs := constants.Validate.Struct(d)
	if errs == nil {
		return nil, true
	}
	return serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors), agencyFieldLabel), false
}

// ToEntity builds the aggregate. actor is the creating principal; the owner
// falls back to the actor when the DTO carries no explicit owner.
func (d *CreateDTO) ToEntity(actor uuid.UUID) (Agency, error) {
	owner := actor
	if d.OwnerPrincipalID != "" {
		parsed, err := uuid.Parse(d.OwnerPrincipalID)
		if err != nil {
			return Agency{}, serrors.Validation("AGENCY_BAD_OWNER", "owner_principal_id is not a valid UUID")
		}
		owner = parsed
	}
	return New(d.Name, d.ProvinceCode, d.RegencyCode, owner, actor), nil
}

// AdminOverride returns the distinct headquarters admin, if supplied.
func (d *CreateDTO) AdminOverride() (uuid.UUID, bool) {
	if d.AdminPrincipalID == "" {
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(d.AdminPrincipalID)
	if err != nil {
		return uuid.Nil, false
	}
	return parsed, true
}

type UpdateDTO struct {
	Name         string `json:"name" validate:"required,max=255"`
	ProvinceCode string `json:"province_code" validate:"required,len=2"`
	RegencyCode  string `json:"regency_code" validate:"required,len=4"`
}

func (d *UpdateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.ProvinceCode = strings.TrimSpace(d.ProvinceCode)
	d.RegencyCode = strings.TrimSpace(d.RegencyCode)
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	errs := constants.Validate.Struct(d)
	if errs == nil {
		return nil, true
	}
	return serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors), agencyFieldLabel), false
}

func (d *UpdateDTO) Apply(a Agency) Agency {
	return a.Rename(d.Name, d.ProvinceCode, d.RegencyCode)
}

func agencyFieldLabel(field string) string {
	switch field {
	case "Name":
		return "agency name"
	case "ProvinceCode":
		return "province code"
	case "RegencyCode":
		return "regency code"
	case "OwnerPrincipalID":
		return "owner principal"
	case "AdminPrincipalID":
		return "admin principal"
	default:
		return ""
	}
}
