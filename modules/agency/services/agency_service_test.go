package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/siadin-id/siadin/modules/agency/domain/aggregates/agency"
	"github.com/siadin-id/siadin/pkg/composables"
	"github.com/siadin-id/siadin/pkg/configuration"
	"github.com/siadin-id/siadin/pkg/serrors"
)

func TestCreateAgency_FieldValidationMessages(t *testing.T) {
	env, ctx := softEnv(t)

	_, err := env.agencyService.Create(ctx, &agency.CreateDTO{ProvinceCode: "1"}, env.sysAdmin)
	require.Error(t, err)

	var fields serrors.ValidationErrors
	require.ErrorAs(t, err, &fields)

	messages := fields.Messages()
	require.Equal(t, "agency name is required", messages["Name"])
	require.Contains(t, messages, "ProvinceCode")
	require.Contains(t, messages, "RegencyCode")
}

func TestUpdateAgency_FieldValidationMessages(t *testing.T) {
	env, ctx := softEnv(t)

	created := createDisnakerAceh(t, env, ctx)

	_, err := env.agencyService.Update(ctx, created.ID(), &agency.UpdateDTO{Name: "   "}, env.sysAdmin)
	require.Error(t, err)

	var fields serrors.ValidationErrors
	require.ErrorAs(t, err, &fields)
	require.Contains(t, fields.Messages(), "Name")
}

// collideOnceAgencyRepo reports a code collision on the first insert and
// delegates afterwards.
type collideOnceAgencyRepo struct {
	agency.Repository
	collided bool
}

func (r *collideOnceAgencyRepo) Create(ctx context.Context, a agency.Agency) (agency.Agency, error) {
	if !r.collided {
		r.collided = true
		return agency.Agency{}, agency.ErrCodeTaken
	}
	return r.Repository.Create(ctx, a)
}

func TestCreateAgency_CodeCollisionRetriedInFreshNestedTx(t *testing.T) {
	env, _ := softEnv(t)

	flaky := &collideOnceAgencyRepo{Repository: env.agencies}
	svc := NewAgencyService(flaky, env.geoSvc, env.access, env.bus, configuration.DeleteModeSoft)

	root := &nestedTxRecorder{}
	ctx := composables.WithTx(context.Background(), root)

	created, err := svc.Create(ctx, &agency.CreateDTO{
		Name:             "Disnaker Aceh",
		ProvinceCode:     "11",
		RegencyCode:      "1101",
		OwnerPrincipalID: env.owner.ID.String(),
	}, env.sysAdmin)
	require.NoError(t, err)
	require.NotZero(t, created.ID())

	// The failed insert rolled back to its savepoint, so the retry ran in a
	// usable transaction instead of an aborted one.
	require.Len(t, root.children, 2)
	require.True(t, root.children[0].rolledBack)
	require.False(t, root.children[0].committed)
	require.True(t, root.children[1].committed)
}
