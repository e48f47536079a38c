package division

import (
	"github.com/siadin-id/siadin/pkg/identity"
)

// CreatedEvent fires after the division row is persisted, inside the same
// transaction; the headquarters-employee cascade subscribes to it.
type CreatedEvent struct {
	Division Division
	Actor    identity.Principal
}

type UpdatedEvent struct {
	Old   Division
	New   Division
	Actor identity.Principal
}

type BeforeDeletedEvent struct {
	Division Division
	Actor    identity.Principal
	Hard     bool
}

// DeletedEvent fires after the division delete is persisted; the employee
// and jurisdiction cascades subscribe to it.
type DeletedEvent struct {
	Division Division
	Actor    identity.Principal
	Hard     bool
}

func NewCreatedEvent(d Division, actor identity.Principal) CreatedEvent {
	return CreatedEvent{Division: d, Actor: actor}
}

func NewUpdatedEvent(old, updated Division, actor identity.Principal) UpdatedEvent {
	return UpdatedEvent{Old: old, New: updated, Actor: actor}
}

func NewBeforeDeletedEvent(d Division, actor identity.Principal, hard bool) BeforeDeletedEvent {
	return BeforeDeletedEvent{Division: d, Actor: actor, Hard: hard}
}

func NewDeletedEvent(d Division, actor identity.Principal, hard bool) DeletedEvent {
	return DeletedEvent{Division: d, Actor: actor, Hard: hard}
}
