package employee

import (
	"github.com/siadin-id/siadin/pkg/identity"
)

type CreatedEvent struct {
	Employee Employee
	Actor    identity.Principal
}

type UpdatedEvent struct {
	Old   Employee
	New   Employee
	Actor identity.Principal
}

// BeforeDeletedEvent handlers returning an error veto the delete.
type BeforeDeletedEvent struct {
	Employee Employee
	Actor    identity.Principal
	Hard     bool
}

type DeletedEvent struct {
	Employee Employee
	Actor    identity.Principal
	Hard     bool
}

func NewCreatedEvent(e Employee, actor identity.Principal) CreatedEvent {
	return CreatedEvent{Employee: e, Actor: actor}
}

func NewUpdatedEvent(old, updated Employee, actor identity.Principal) UpdatedEvent {
	return UpdatedEvent{Old: old, New: updated, Actor: actor}
}

func NewBeforeDeletedEvent(e Employee, actor identity.Principal, hard bool) BeforeDeletedEvent {
	return BeforeDeletedEvent{Employee: e, Actor: actor, Hard: hard}
}

func NewDeletedEvent(e Employee, actor identity.Principal, hard bool) DeletedEvent {
	return DeletedEvent{Employee: e, Actor: actor, Hard: hard}
}
