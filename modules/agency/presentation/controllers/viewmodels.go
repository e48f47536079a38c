package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/employee"
	"github.com/siadin-id/siadin/modules/agency/domain/entities/jurisdiction"
	"github.com/siadin-id/siadin/modules/agency/services"
	"github.com/siadin-id/siadin/pkg/geo"
)

type AgencyResponse struct {
	ID               uint      `json:"id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	Status           string    `json:"status"`
	ProvinceCode     string    `json:"province_code"`
	RegencyCode      string    `json:"regency_code"`
	OwnerPrincipalID string    `json:"owner_principal_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newAgencyResponse(a agency.Agency) AgencyResponse {
	return AgencyResponse{
		ID:               a.ID(),
		Code:             a.Code(),
		Name:             a.Name(),
		Status:           string(a.Status()),
		ProvinceCode:     a.ProvinceCode(),
		RegencyCode:      a.RegencyCode(),
		OwnerPrincipalID: a.OwnerPrincipalID().String(),
		CreatedAt:        a.CreatedAt(),
		UpdatedAt:        a.UpdatedAt(),
	}
}

type DivisionResponse struct {
	ID               uint      `json:"id"`
	AgencyID         uint      `json:"agency_id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	Status           string    `json:"status"`
	ProvinceCode     string    `json:"province_code"`
	RegencyCode      string    `json:"regency_code"`
	Address          string    `json:"address,omitempty"`
	AdminPrincipalID string    `json:"admin_principal_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newDivisionResponse(d division.Division) DivisionResponse {
	out := DivisionResponse{
		ID:           d.ID(),
		AgencyID:     d.AgencyID(),
		Code:         d.Code(),
		Name:         d.Name(),
		Type:         string(d.Type()),
		Status:       string(d.Status()),
		ProvinceCode: d.ProvinceCode(),
		RegencyCode:  d.RegencyCode(),
		Address:      d.Address(),
		CreatedAt:    d.CreatedAt(),
		UpdatedAt:    d.UpdatedAt(),
	}
	if admin := d.AdminPrincipalID(); admin != uuid.Nil {
		out.AdminPrincipalID = admin.String()
	}
	return out
}

type EmployeeResponse struct {
	ID          uint      `json:"id"`
	AgencyID    uint      `json:"agency_id"`
	DivisionID  uint      `json:"division_id"`
	PrincipalID string    `json:"principal_id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Position    string    `json:"position,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func newEmployeeResponse(e employee.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:          e.ID(),
		AgencyID:    e.AgencyID(),
		DivisionID:  e.DivisionID(),
		PrincipalID: e.PrincipalID().String(),
		Name:        e.Name(),
		Email:       e.Email(),
		Phone:       e.Phone(),
		Position:    e.Position(),
		Status:      string(e.Status()),
		CreatedAt:   e.CreatedAt(),
		UpdatedAt:   e.UpdatedAt(),
	}
}

type AssignmentResponse struct {
	ID            uint      `json:"id"`
	DivisionID    uint      `json:"division_id"`
	TerritoryCode string    `json:"territory_code"`
	IsPrimary     bool      `json:"is_primary"`
	CreatedAt     time.Time `json:"created_at"`
}

func newAssignmentResponses(assignments []jurisdiction.Assignment) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, AssignmentResponse{
			ID:            a.ID(),
			DivisionID:    a.DivisionID(),
			TerritoryCode: a.TerritoryCode(),
			IsPrimary:     a.IsPrimary(),
			CreatedAt:     a.CreatedAt(),
		})
	}
	return out
}

type TerritoryResponse struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func newTerritoryResponses(territories []geo.Territory) []TerritoryResponse {
	out := make([]TerritoryResponse, 0, len(territories))
	for _, t := range territories {
		out = append(out, TerritoryResponse{Code: t.Code, Name: t.Name})
	}
	return out
}

// ListResponse is the common list envelope: the page plus the two counts the
// gateway computes (visible total and post-search total).
type ListResponse[T any] struct {
	Data          []T   `json:"data"`
	TotalCount    int64 `json:"total_count"`
	FilteredCount int64 `json:"filtered_count"`
}

func newListResponse[R, T any](result *services.ListResult[T], mapper func(T) R) ListResponse[R] {
	data := make([]R, 0, len(result.Rows))
	for _, row := range result.Rows {
		data = append(data, mapper(row))
	}
	return ListResponse[R]{
		Data:          data,
		TotalCount:    result.TotalCount,
		FilteredCount: result.FilteredCount,
	}
}
