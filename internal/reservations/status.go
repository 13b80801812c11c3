package reservations

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
)

// IsValid checks if the reservation status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanBeConfirmed checks if a reservation with this status can be confirmed
func (s Status) CanBeConfirmed() bool {
	return s == StatusPending
}

// CanBeModified checks if the owner may still change or withdraw the reservation
func (s Status) CanBeModified() bool {
	return s == StatusPending
}

// HoldsCapacity reports whether the reservation counts against slot capacity
func (s Status) HoldsCapacity() bool {
	return s == StatusConfirmed
}
