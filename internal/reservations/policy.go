package reservations

import (
	"examly/internal/users"

	"github.com/google/uuid"
)

// Action is something an actor wants to do to a reservation.
type Action string

const (
	ActionView    Action = "view"
	ActionModify  Action = "modify"
	ActionDelete  Action = "delete"
	ActionConfirm Action = "confirm"
)

// Actor is the authenticated caller, as resolved by the auth middleware.
type Actor struct {
	ID   uuid.UUID
	Role users.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == users.RoleAdmin
}

// Authorize decides whether actor may perform action on the reservation.
// Admins may do anything. Owners may view, modify and delete their own
// reservations but never confirm them. Everyone else is turned away.
// Status rules (pending-only modification and the like) are enforced
// separately; this is identity and role only.
func Authorize(actor Actor, reservation *Reservation, action Action) error {
	if actor.IsAdmin() {
		return nil
	}

	if action == ActionConfirm {
		return ErrForbidden
	}

	if reservation.UserID != actor.ID {
		return ErrForbidden
	}

	return nil
}
