package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/employee"
)

func TestCreateEmployee_DuplicatePrincipalRejected(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	pusat, err := env.divisions.GetActivePusat(ctx, created.ID())
	require.NoError(t, err)

	// The cascade already linked the owner as employee of this agency.
	_, err = env.employeeService.Create(ctx, &employee.CreateDTO{
		AgencyID:    created.ID(),
		DivisionID:  pusat.ID(),
		PrincipalID: env.owner.ID.String(),
		Name:        "Budi Santoso",
	}, env.owner)
	require.ErrorIs(t, err, employee.ErrPrincipalTaken)
}

func TestCreateEmployee_DivisionAgencyMismatch(t *testing.T) {
	env, ctx := softEnv(t)

	first := createDisnakerAceh(t, env, ctx)
	second, err := env.agencyService.Create(ctx, &agency.CreateDTO{
		Name:             "Dinas Pendidikan Aceh",
		ProvinceCode:     "11",
		RegencyCode:      "1102",
		OwnerPrincipalID: env.owner.ID.String(),
	}, env.sysAdmin)
	require.NoError(t, err)

	pusat, err := env.divisions.GetActivePusat(ctx, first.ID())
	require.NoError(t, err)

	_, err = env.employeeService.Create(ctx, &employee.CreateDTO{
		AgencyID:    second.ID(),
		DivisionID:  pusat.ID(),
		PrincipalID: env.outsider.ID.String(),
		Name:        "Siti Rahma",
	}, env.sysAdmin)
	require.Error(t, err)
}

func TestUpdateEmployee_TransferWithinAgency(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	pusat, err := env.divisions.GetActivePusat(ctx, created.ID())
	require.NoError(t, err)

	branch, err := env.divisionService.Create(ctx, &division.CreateDTO{
		AgencyID:     created.ID(),
		Name:         "Cabang Tenggara",
		Type:         "cabang",
		ProvinceCode: "11",
		RegencyCode:  "1102",
	}, env.owner)
	require.NoError(t, err)

	emp, err := env.employeeService.Create(ctx, &employee.CreateDTO{
		AgencyID:    created.ID(),
		DivisionID:  pusat.ID(),
		PrincipalID: env.outsider.ID.String(),
		Name:        "Siti Rahma",
		Position:    "Staf",
	}, env.owner)
	require.NoError(t, err)

	updated, err := env.employeeService.Update(ctx, emp.ID(), &employee.UpdateDTO{
		Name:       "Siti Rahma",
		Position:   "Staf Senior",
		DivisionID: branch.ID(),
	}, env.owner)
	require.NoError(t, err)
	require.Equal(t, branch.ID(), updated.DivisionID())
	require.Equal(t, "Staf Senior", updated.Position())
}

func TestUpdateEmployee_TransferAcrossAgenciesRejected(t *testing.T) {
	env, ctx := softEnv(t)

	first := createDisnakerAceh(t, env, ctx)
	firstPusat, err := env.divisions.GetActivePusat(ctx, first.ID())
	require.NoError(t, err)

	second, err := env.agencyService.Create(ctx, &agency.CreateDTO{
		Name:             "Dinas Pendidikan Aceh",
		ProvinceCode:     "11",
		RegencyCode:      "1102",
		OwnerPrincipalID: env.owner.ID.String(),
	}, env.sysAdmin)
	require.NoError(t, err)
	secondPusat, err := env.divisions.GetActivePusat(ctx, second.ID())
	require.NoError(t, err)

	emp, err := env.employeeService.Create(ctx, &employee.CreateDTO{
		AgencyID:    first.ID(),
		DivisionID:  firstPusat.ID(),
		PrincipalID: env.outsider.ID.String(),
		Name:        "Siti Rahma",
	}, env.sysAdmin)
	require.NoError(t, err)

	_, err = env.employeeService.Update(ctx, emp.ID(), &employee.UpdateDTO{
		Name:       "Siti Rahma",
		DivisionID: secondPusat.ID(),
	}, env.sysAdmin)
	require.Error(t, err)
}

func TestDeleteEmployee_DivisionAdminAllowed(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)

	branch, err := env.divisionService.Create(ctx, &division.CreateDTO{
		AgencyID:         created.ID(),
		Name:             "Cabang Tenggara",
		Type:             "cabang",
		ProvinceCode:     "11",
		RegencyCode:      "1102",
		AdminPrincipalID: env.outsider.ID.String(),
	}, env.owner)
	require.NoError(t, err)

	emps, err := env.employees.GetByDivision(ctx, branch.ID())
	require.NoError(t, err)
	require.Len(t, emps, 1)

	deleted, err := env.employeeService.Delete(ctx, emps[0].ID(), env.outsider)
	require.NoError(t, err)

	stored, err := env.employees.GetByID(ctx, deleted.ID())
	require.NoError(t, err)
	require.Equal(t, employee.StatusInactive, stored.Status())
}
