package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/siadin-id/siadin/pkg/rbac"
)

var ErrPrincipalNotFound = errors.New("principal not found")

// Principal is an authenticated actor. Every core operation takes the acting
// principal as an explicit argument; domain logic never reads it from ambient
// state.
type Principal struct {
	ID    uuid.UUID
	Name  string
	Roles []rbac.Role
}

func (p Principal) IsZero() bool { return p.ID == uuid.Nil }

func (p Principal) HasRole(role rbac.Role) bool {
	return rbac.HasRole(p.Roles, role)
}

// Directory resolves principals to their global roles. It is an external
// collaborator; this package only defines the consumed surface plus a static
// implementation for seeds and tests.
type Directory interface {
	PrincipalByID(ctx context.Context, id uuid.UUID) (Principal, error)
}

type StaticDirectory struct {
	principals map[uuid.UUID]Principal
}

func NewStaticDirectory(principals ...Principal) *StaticDirectory {
	m := make(map[uuid.UUID]Principal, len(principals))
	for _, p := range principals {
		m[p.ID] = p
	}
	return &StaticDirectory{principals: m}
}

func (d *StaticDirectory) PrincipalByID(_ context.Context, id uuid.UUID) (Principal, error) {
	p, ok := d.principals[id]
	if !ok {
		return Principal{}, ErrPrincipalNotFound
	}
	return p, nil
}

func (d *StaticDirectory) Add(p Principal) {
	d.principals[p.ID] = p
}
