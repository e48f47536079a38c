package models

import (
	"database/sql"
	"time"
)

type Agency struct {
	ID               uint
	Code             string
	Name             string
	Status           string
	ProvinceCode     string
	RegencyCode      string
	OwnerPrincipalID string
	CreatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Division struct {
	ID               uint
	AgencyID         uint
	Code             string
	Name             string
	Type             string
	ProvinceCode     string
	RegencyCode      string
	Address          sql.NullString
	AdminPrincipalID sql.NullString
	Status           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Employee struct {
	ID          uint
	AgencyID    uint
	DivisionID  uint
	PrincipalID string
	Name        string
	Email       sql.NullString
	Phone       sql.NullString
	Position    sql.NullString
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type JurisdictionAssignment struct {
	ID            uint
	DivisionID    uint
	TerritoryCode string
	IsPrimary     bool
	CreatedBy     string
	CreatedAt     time.Time
}
