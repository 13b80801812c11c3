package reservations

import "errors"

var (
	ErrReservationNotFound = errors.New("reservation not found")
	ErrForbidden           = errors.New("not allowed to access this reservation")
	ErrWindowClosed        = errors.New("slot starts too soon to reserve")
	ErrInvalidHeadcount    = errors.New("headcount must be positive")
	ErrAlreadyConfirmed    = errors.New("reservation is already confirmed")
	ErrNotPending          = errors.New("reservation is not pending")
	ErrCapacityExceeded    = errors.New("slot does not have enough remaining capacity")
	ErrSlotBusy            = errors.New("slot is busy, try again")
)
