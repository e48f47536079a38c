package persistence

import (
	"github.com/google/uuid"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/employee"
	"github.com/siadin-id/siadin/modules/agency/domain/entities/jurisdiction"
	"github.com/siadin-id/siadin/modules/agency/infrastructure/persistence/models"
)

func parseUUID(v string) uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func toDomainAgency(m *models.Agency) agency.Agency {
	return agency.Hydrate(
		m.ID,
		m.Code,
		m.Name,
		agency.Status(m.Status),
		m.ProvinceCode,
		m.RegencyCode,
		parseUUID(m.OwnerPrincipalID),
		parseUUID(m.CreatedBy),
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainDivision(m *models.Division) division.Division {
	admin := uuid.Nil
	if m.AdminPrincipalID.Valid {
		admin = parseUUID(m.AdminPrincipalID.String)
	}
	return division.Hydrate(
		m.ID,
		m.AgencyID,
		m.Code,
		m.Name,
		division.Type(m.Type),
		m.ProvinceCode,
		m.RegencyCode,
		stringValue(m.Address),
		admin,
		division.Status(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainEmployee(m *models.Employee) employee.Employee {
	return employee.Hydrate(
		m.ID,
		m.AgencyID,
		m.DivisionID,
		parseUUID(m.PrincipalID),
		m.Name,
		stringValue(m.Email),
		stringValue(m.Phone),
		stringValue(m.Position),
		employee.Status(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainAssignment(m *models.JurisdictionAssignment) jurisdiction.Assignment {
	return jurisdiction.Hydrate(
		m.ID,
		m.DivisionID,
		m.TerritoryCode,
		m.IsPrimary,
		parseUUID(m.CreatedBy),
		m.CreatedAt,
	)
}
