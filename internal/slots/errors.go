package slots

import "errors"

var (
	ErrSlotNotFound     = errors.New("slot not found")
	ErrInvalidWindow    = errors.New("slot window is invalid")
	ErrDuplicateSlot    = errors.New("slot already exists at this start time")
	ErrCapacityExceeded = errors.New("slot capacity exceeded")
)
