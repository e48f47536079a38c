package division

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/pkg/constants"
	"github.com/siadin-id/siadin/pkg/serrors"
)

type CreateDTO struct {
	AgencyID         uint   `json:"agency_id" validate:"required"`
	Name             string `json:"name" validate:"required,max=255"`
	Type             string `json:"type" validate:"required,oneof=pusat cabang"`
	ProvinceCode     string `json:"province_code" validate:"required,len=2"`
	RegencyCode      string `json:"regency_code" validate:"required,len=4"`
	Address          string `json:"address" validate:"max=500"`
	AdminPrincipalID string `json:"admin_principal_id" validate:"omitempty,uuid"`
}

func (d *CreateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Type = strings.ToLower(strings.TrimSpace(d.Type))
	d.ProvinceCode = strings.TrimSpace(d.ProvinceCode)
	d.RegencyCode = strings.TrimSpace(d.RegencyCode)
	d.Address = strings.TrimSpace(d.Address)
	d.AdminPrincipalID = strings.TrimSpace(d.AdminPrincipalID)
}

func (d *CreateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	errs := constants.Validate.Struct(d)
	if errs == nil {
		return nil, true
	}
	return serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors), divisionFieldLabel), false
}

func (d *CreateDTO) ToEntity(owner agency.Agency) (Division, error) {
	admin := uuid.Nil
	if d.AdminPrincipalID != "" {
		parsed, err := uuid.Parse(d.AdminPrincipalID)
		if err != nil {
			return Division{}, serrors.Validation("DIVISION_BAD_ADMIN", "admin_principal_id is not a valid UUID")
		}
		admin = parsed
	}
	return New(owner, d.Name, Type(d.Type), d.ProvinceCode, d.RegencyCode, d.Address, admin), nil
}

type UpdateDTO struct {
	Name             string `json:"name" validate:"required,max=255"`
	ProvinceCode     string `json:"province_code" validate:"required,len=2"`
	RegencyCode      string `json:"regency_code" validate:"required,len=4"`
	Address          string `json:"address" validate:"max=500"`
	AdminPrincipalID string `json:"admin_principal_id" validate:"omitempty,uuid"`
}

func (d *UpdateDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.ProvinceCode = strings.TrimSpace(d.ProvinceCode)
	d.RegencyCode = strings.TrimSpace(d.RegencyCode)
	d.Address = strings.TrimSpace(d.Address)
	d.AdminPrincipalID = strings.TrimSpace(d.AdminPrincipalID)
}

func (d *UpdateDTO) Ok() (serrors.ValidationErrors, bool) {
	d.Normalize()
	errs := constants.Validate.Struct(d)
	if errs == nil {
		return nil, true
	}
	return serrors.ProcessValidatorErrors(errs.(validator.ValidationErrors), divisionFieldLabel), false
}

func (d *UpdateDTO) Apply(entity Division) (Division, error) {
	out := entity.Rename(d.Name, d.ProvinceCode, d.RegencyCode, d.Address)
	if d.AdminPrincipalID != "" {
		parsed, err := uuid.Parse(d.AdminPrincipalID)
		if err != nil {
			return Division{}, serrors.Validation("DIVISION_BAD_ADMIN", "admin_principal_id is not a valid UUID")
		}
		out = out.WithAdmin(parsed)
	}
	return out, nil
}

func divisionFieldLabel(field string) string {
	switch field {
	case "AgencyID":
		return "agency"
	case "Name":
		return "division name"
	case "Type":
		return "division type"
	case "ProvinceCode":
		return "province code"
	case "RegencyCode":
		return "regency code"
	case "Address":
		return "address"
	case "AdminPrincipalID":
		return "admin principal"
	default:
		return ""
	}
}
