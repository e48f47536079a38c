package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/employee"
	"github.com/siadin-id/siadin/pkg/identity"
)

func TestListAgencies_SystemAdminSeesAll(t *testing.T) {
	env, ctx := softEnv(t)

	createDisnakerAceh(t, env, ctx)

	result, err := env.query.ListAgencies(ctx, env.sysAdmin, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), result.TotalCount)
	require.Len(t, result.Rows, 1)
}

func TestListAgencies_OwnerSeesOwn(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)

	result, err := env.query.ListAgencies(ctx, env.owner, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), result.TotalCount)
	require.Equal(t, created.ID(), result.Rows[0].ID())
}

func TestListAgencies_FailClosed(t *testing.T) {
	env, ctx := softEnv(t)

	createDisnakerAceh(t, env, ctx)

	result, err := env.query.ListAgencies(ctx, env.outsider, nil)
	require.NoError(t, err)
	require.Equal(t, int64(0), result.TotalCount)
	require.Equal(t, int64(0), result.FilteredCount)
	require.Empty(t, result.Rows)
}

func TestListAgencies_InactiveHiddenWithoutCapability(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	_, err := env.agencyService.Delete(ctx, created.ID(), env.sysAdmin)
	require.NoError(t, err)

	result, err := env.query.ListAgencies(ctx, env.owner, &agency.FindParams{Status: agency.StatusInactive})
	require.NoError(t, err)
	require.Equal(t, int64(0), result.TotalCount)

	// The view-inactive capability unlocks the requested status filter.
	admin, err := env.query.ListAgencies(ctx, env.sysAdmin, &agency.FindParams{Status: agency.StatusInactive})
	require.NoError(t, err)
	require.Equal(t, int64(1), admin.TotalCount)
}

func TestListAgencies_SearchCounts(t *testing.T) {
	env, ctx := softEnv(t)

	createDisnakerAceh(t, env, ctx)
	_, err := env.agencyService.Create(ctx, &agency.CreateDTO{
		Name:             "Dinas Pendidikan Aceh",
		ProvinceCode:     "11",
		RegencyCode:      "1102",
		OwnerPrincipalID: env.owner.ID.String(),
	}, env.sysAdmin)
	require.NoError(t, err)

	result, err := env.query.ListAgencies(ctx, env.sysAdmin, &agency.FindParams{Search: "Disnaker"})
	require.NoError(t, err)
	require.Equal(t, int64(2), result.TotalCount)
	require.Equal(t, int64(1), result.FilteredCount)
	require.Len(t, result.Rows, 1)
	require.Equal(t, "Disnaker Aceh", result.Rows[0].Name())
}

func TestListDivisions_EmployeeSeesAgencyScope(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)

	_, err := env.divisionService.Create(ctx, &division.CreateDTO{
		AgencyID:         created.ID(),
		Name:             "Cabang Tenggara",
		Type:             "cabang",
		ProvinceCode:     "11",
		RegencyCode:      "1102",
		AdminPrincipalID: env.outsider.ID.String(),
	}, env.owner)
	require.NoError(t, err)

	// The branch cascade made the outsider an employee of the agency, so
	// both divisions are in scope now.
	result, err := env.query.ListDivisions(ctx, env.outsider, nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), result.TotalCount)
}

func TestListEmployees_FailClosed(t *testing.T) {
	env, ctx := softEnv(t)

	createDisnakerAceh(t, env, ctx)

	result, err := env.query.ListEmployees(ctx, env.outsider, nil)
	require.NoError(t, err)
	require.Equal(t, int64(0), result.TotalCount)
	require.Empty(t, result.Rows)
}

func TestListEmployees_OwnerSeesAgencyEmployees(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	pusat, err := env.divisions.GetActivePusat(ctx, created.ID())
	require.NoError(t, err)

	_, err = env.employeeService.Create(ctx, &employee.CreateDTO{
		AgencyID:    created.ID(),
		DivisionID:  pusat.ID(),
		PrincipalID: env.outsider.ID.String(),
		Name:        "Siti Rahma",
		Position:    "Staf",
	}, env.owner)
	require.NoError(t, err)

	result, err := env.query.ListEmployees(ctx, env.owner, nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), result.TotalCount)
}

func TestScopeFilter_NarrowsWithAndSemantics(t *testing.T) {
	env, ctx := softEnv(t)

	createDisnakerAceh(t, env, ctx)

	env.query.RegisterScopeFilter(func(_ context.Context, _ identity.Principal, scope *Scope) error {
		scope.Unrestricted = false
		scope.AgencyIDs = nil
		scope.DivisionIDs = nil
		return nil
	})

	// Even the system admin is narrowed down by a registered filter.
	result, err := env.query.ListAgencies(ctx, env.sysAdmin, nil)
	require.NoError(t, err)
	require.Equal(t, int64(0), result.TotalCount)

	owner, err := env.query.ListAgencies(ctx, env.owner, nil)
	require.NoError(t, err)
	require.Equal(t, int64(0), owner.TotalCount)
}

func TestResolveScope_DeterministicFailClosedShape(t *testing.T) {
	env, ctx := softEnv(t)

	scope, err := env.query.ResolveScope(ctx, env.outsider)
	require.NoError(t, err)
	require.True(t, scope.Empty())
}

func TestResolveScope_LargeOwnershipNotTruncated(t *testing.T) {
	env, ctx := softEnv(t)

	for i := 0; i < 1200; i++ {
		id := env.agencies.nextID
		env.agencies.nextID++
		env.agencies.agencies[id] = agency.Hydrate(
			id,
			fmt.Sprintf("AG%06d", i),
			fmt.Sprintf("Dinas %d", i),
			agency.StatusActive,
			"11",
			"1101",
			env.owner.ID,
			env.sysAdmin.ID,
			time.Now(),
			time.Now(),
		)
	}

	scope, err := env.query.ResolveScope(ctx, env.owner)
	require.NoError(t, err)
	require.Len(t, scope.AgencyIDs, 1200)

	result, err := env.query.ListAgencies(ctx, env.owner, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1200), result.TotalCount)
}
