package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/division"
)

func TestResolve_OwnerRelation(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)

	relation, err := env.access.Resolve(ctx, env.owner.ID, EntityAgency, created.ID())
	require.NoError(t, err)
	require.True(t, relation.IsOwner)
	require.True(t, relation.IsEmployee, "the headquarters cascade links the owner as employee")
	require.Equal(t, AccessOwner, relation.AccessType)
}

func TestResolve_SystemAdminWinsOrder(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)

	relation, err := env.access.Resolve(ctx, env.sysAdmin.ID, EntityAgency, created.ID())
	require.NoError(t, err)
	require.True(t, relation.IsSystemAdmin)
	require.Equal(t, AccessSystemAdmin, relation.AccessType)
}

func TestResolve_NoRelationIsNone(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)

	relation, err := env.access.Resolve(ctx, env.outsider.ID, EntityAgency, created.ID())
	require.NoError(t, err)
	require.Equal(t, AccessNone, relation.AccessType)
	require.False(t, relation.IsOwner)
	require.False(t, relation.IsEmployee)
}

func TestResolve_DivisionAdmin(t *testing.T) {
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

	relation, err := env.access.Resolve(ctx, env.outsider.ID, EntityDivision, branch.ID())
	require.NoError(t, err)
	require.True(t, relation.IsDivisionAdmin)
	require.True(t, relation.IsEmployee, "the branch cascade creates the admin's employee record")
	require.Equal(t, AccessDivisionAdmin, relation.AccessType)

	// A division admin updates but never deletes their own division.
	canUpdate, err := env.access.CanUpdate(ctx, env.outsider, EntityDivision, branch.ID())
	require.NoError(t, err)
	require.True(t, canUpdate)
	canDelete, err := env.access.CanDelete(ctx, env.outsider, EntityDivision, branch.ID())
	require.NoError(t, err)
	require.False(t, canDelete)
}

func TestResolve_SelfOnEmployee(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)
	emp, err := env.employees.GetByPrincipal(ctx, created.ID(), env.owner.ID)
	require.NoError(t, err)

	relation, err := env.access.Resolve(ctx, env.owner.ID, EntityEmployee, emp.ID())
	require.NoError(t, err)
	require.True(t, relation.IsSelf)
	require.True(t, relation.IsOwner)
}

func TestResolve_CachesUntilInvalidated(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)

	first, err := env.access.Resolve(ctx, env.outsider.ID, EntityAgency, created.ID())
	require.NoError(t, err)
	require.Equal(t, AccessNone, first.AccessType)

	// Hand ownership to the outsider behind the resolver's back; the cached
	// relation must survive until the entity is invalidated.
	raw := agency.Hydrate(created.ID(), created.Code(), created.Name(), created.Status(), created.ProvinceCode(), created.RegencyCode(), env.outsider.ID, created.CreatedBy(), created.CreatedAt(), created.UpdatedAt())
	env.agencies.agencies[created.ID()] = raw

	cached, err := env.access.Resolve(ctx, env.outsider.ID, EntityAgency, created.ID())
	require.NoError(t, err)
	require.Equal(t, AccessNone, cached.AccessType)

	env.access.InvalidateEntity(ctx, EntityAgency, created.ID())

	fresh, err := env.access.Resolve(ctx, env.outsider.ID, EntityAgency, created.ID())
	require.NoError(t, err)
	require.Equal(t, AccessOwner, fresh.AccessType)
}

func TestResolve_UnknownEntity(t *testing.T) {
	env, ctx := softEnv(t)

	_, err := env.access.Resolve(ctx, env.sysAdmin.ID, EntityAgency, 42)
	require.ErrorIs(t, err, agency.ErrNotFound)
}

func TestResolve_UnknownPrincipalFailsClosed(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)

	relation, err := env.access.Resolve(ctx, uuid.New(), EntityAgency, created.ID())
	require.NoError(t, err)
	require.Equal(t, AccessNone, relation.AccessType)
}
