package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
	"github.com/siadin-id/siadin/modules/agency/domain/entities/jurisdiction"
)

func TestAssign_PrimaryInvariant(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	pusat, err := env.divisions.GetActivePusat(ctx, created.ID())
	require.NoError(t, err)

	assignments, err := env.territoryService.Assign(ctx, pusat.ID(), []string{"1101", "1102"}, []string{"1101"}, env.owner)
	require.NoError(t, err)
	require.Len(t, assignments, 2)

	primaries := 0
	for _, a := range assignments {
		if a.IsPrimary() {
			primaries++
			require.Equal(t, pusat.RegencyCode(), a.TerritoryCode())
		}
	}
	require.Equal(t, 1, primaries)
}

func TestAssign_AutoAppendsOwnRegency(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	pusat, err := env.divisions.GetActivePusat(ctx, created.ID())
	require.NoError(t, err)

	assignments, err := env.territoryService.Assign(ctx, pusat.ID(), []string{"1102"}, nil, env.owner)
	require.NoError(t, err)
	require.Len(t, assignments, 2)

	codes := map[string]bool{}
	for _, a := range assignments {
		codes[a.TerritoryCode()] = a.IsPrimary()
	}
	require.True(t, codes["1101"])
	require.False(t, codes["1102"])
}

func TestAssign_ExclusivityWithinAgency(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	pusat, err := env.divisions.GetActivePusat(ctx, created.ID())
	require.NoError(t, err)

	_, err = env.territoryService.Assign(ctx, pusat.ID(), []string{"1101", "1102"}, []string{"1101"}, env.owner)
	require.NoError(t, err)

	branch, err := env.divisionService.Create(ctx, &division.CreateDTO{
		AgencyID:     created.ID(),
		Name:         "Cabang Timur",
		Type:         "cabang",
		ProvinceCode: "11",
		RegencyCode:  "1103",
	}, env.owner)
	require.NoError(t, err)

	// 1101 belongs to the headquarters; the branch cannot claim it.
	_, err = env.territoryService.Assign(ctx, branch.ID(), []string{"1101", "1103"}, []string{"1103"}, env.owner)
	require.ErrorIs(t, err, jurisdiction.ErrCodeTaken)

	// The failed call must leave the branch's assignments untouched.
	assignments, err := env.jurisdictions.ListByDivision(ctx, branch.ID())
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	require.Equal(t, "1103", assignments[0].TerritoryCode())

	held, err := env.jurisdictions.ListByDivision(ctx, pusat.ID())
	require.NoError(t, err)
	require.Len(t, held, 2)
}

func TestAssign_PrimaryOutsideRejected(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	pusat, err := env.divisions.GetActivePusat(ctx, created.ID())
	require.NoError(t, err)

	_, err = env.territoryService.Assign(ctx, pusat.ID(), []string{"1101"}, []string{"1102"}, env.owner)
	require.ErrorIs(t, err, jurisdiction.ErrPrimaryOutside)
}

func TestAssign_PrimaryMismatchRejected(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	pusat, err := env.divisions.GetActivePusat(ctx, created.ID())
	require.NoError(t, err)

	_, err = env.territoryService.Assign(ctx, pusat.ID(), []string{"1101", "1102"}, []string{"1102"}, env.owner)
	require.ErrorIs(t, err, jurisdiction.ErrPrimaryMismatch)
}

func TestAssign_UnknownCodeRejected(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	pusat, err := env.divisions.GetActivePusat(ctx, created.ID())
	require.NoError(t, err)

	_, err = env.territoryService.Assign(ctx, pusat.ID(), []string{"9999"}, nil, env.owner)
	require.Error(t, err)
}

func TestAssign_Forbidden(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	pusat, err := env.divisions.GetActivePusat(ctx, created.ID())
	require.NoError(t, err)

	_, err = env.territoryService.Assign(ctx, pusat.ID(), []string{"1102"}, nil, env.outsider)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestAssign_ReplacesExistingSet(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	pusat, err := env.divisions.GetActivePusat(ctx, created.ID())
	require.NoError(t, err)

	_, err = env.territoryService.Assign(ctx, pusat.ID(), []string{"1101", "1102", "1103"}, []string{"1101"}, env.owner)
	require.NoError(t, err)

	assignments, err := env.territoryService.Assign(ctx, pusat.ID(), []string{"1101"}, []string{"1101"}, env.owner)
	require.NoError(t, err)
	require.Len(t, assignments, 1)

	stored, err := env.jurisdictions.ListByDivision(ctx, pusat.ID())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, "1101", stored[0].TerritoryCode())
}

func TestAvailableTerritories_ExcludesAssigned(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	pusat, err := env.divisions.GetActivePusat(ctx, created.ID())
	require.NoError(t, err)

	_, err = env.territoryService.Assign(ctx, pusat.ID(), []string{"1101", "1102"}, []string{"1101"}, env.owner)
	require.NoError(t, err)

	available, err := env.territoryService.AvailableTerritories(ctx, created.ID(), "11")
	require.NoError(t, err)
	require.Len(t, available, 1)
	require.Equal(t, "1103", available[0].Code)
}

func TestAvailableTerritories_CacheInvalidatedOnAssign(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	pusat, err := env.divisions.GetActivePusat(ctx, created.ID())
	require.NoError(t, err)

	before, err := env.territoryService.AvailableTerritories(ctx, created.ID(), "11")
	require.NoError(t, err)
	require.Len(t, before, 2)

	_, err = env.territoryService.Assign(ctx, pusat.ID(), []string{"1101", "1102"}, []string{"1101"}, env.owner)
	require.NoError(t, err)

	after, err := env.territoryService.AvailableTerritories(ctx, created.ID(), "11")
	require.NoError(t, err)
	require.Len(t, after, 1)
}
