package agency

import (
	"github.com/google/uuid"

	"github.com/siadin-id/siadin/pkg/identity"
)

// CreatedEvent fires after the agency row is persisted, inside the same
// transaction. The headquarters cascade subscribes to it.
type CreatedEvent struct {
	Agency Agency
	Actor  identity.Principal
	// AdminPrincipalID is the distinct headquarters admin, when supplied;
	// uuid.Nil means the cascade inherits the agency owner.
	AdminPrincipalID uuid.UUID
}

type UpdatedEvent struct {
	Old   Agency
	New   Agency
	Actor identity.Principal
}

// BeforeDeletedEvent is published before any delete is persisted. Handlers
// returning an error veto the whole operation.
type BeforeDeletedEvent struct {
	Agency Agency
	Actor  identity.Principal
	Hard   bool
}

// DeletedEvent fires after the agency delete is persisted, still inside the
// transaction; the division cascade subscribes to it.
type DeletedEvent struct {
	Agency Agency
	Actor  identity.Principal
	Hard   bool
}

func NewCreatedEvent(a Agency, actor identity.Principal, adminPrincipalID uuid.UUID) CreatedEvent {
	return CreatedEvent{Agency: a, Actor: actor, AdminPrincipalID: adminPrincipalID}
}

func NewUpdatedEvent(old, updated Agency, actor identity.Principal) UpdatedEvent {
	return UpdatedEvent{Old: old, New: updated, Actor: actor}
}

func NewBeforeDeletedEvent(a Agency, actor identity.Principal, hard bool) BeforeDeletedEvent {
	return BeforeDeletedEvent{Agency: a, Actor: actor, Hard: hard}
}

func NewDeletedEvent(a Agency, actor identity.Principal, hard bool) DeletedEvent {
	return DeletedEvent{Agency: a, Actor: actor, Hard: hard}
}
