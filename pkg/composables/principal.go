package composables

import (
	"context"
	"errors"

	"github.com/siadin-id/siadin/pkg/constants"
	"github.com/siadin-id/siadin/pkg/identity"
)

var ErrNoPrincipal = errors.New("no principal found in context")

// WithPrincipal stores the authenticated principal resolved by the transport
// layer. Controllers read it back and pass it to services explicitly; domain
// code never touches the context for identity.
func WithPrincipal(ctx context.Context, p identity.Principal) context.Context {
	return context.WithValue(ctx, constants.PrincipalKey, p)
}

func UsePrincipal(ctx context.Context) (identity.Principal, error) {
	p, ok := ctx.Value(constants.PrincipalKey).(identity.Principal)
	if !ok || p.IsZero() {
		return identity.Principal{}, ErrNoPrincipal
	}
	return p, nil
}
