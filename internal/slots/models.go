package slots

import (
	"time"

	"github.com/google/uuid"
)

// Slot is one bookable exam time window on the calendar grid.
// CapacityUsed counts confirmed headcount only; pending reservations
// do not hold capacity.
type Slot struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	StartTime    time.Time `json:"start_time" gorm:"not null;uniqueIndex:idx_slots_start_time_unique"`
	EndTime      time.Time `json:"end_time" gorm:"not null"`
	MaxCapacity  int       `json:"max_capacity" gorm:"not null;check:max_capacity > 0"`
	CapacityUsed int       `json:"capacity_used" gorm:"default:0;check:capacity_used >= 0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type SlotResponse struct {
	ID                string    `json:"id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	MaxCapacity       int       `json:"max_capacity"`
	CapacityUsed      int       `json:"capacity_used"`
	RemainingCapacity int       `json:"remaining_capacity"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type CreateSlotRequest struct {
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	MaxCapacity int       `json:"max_capacity" binding:"omitempty,min=1,max=100000"`
}

type GenerateCalendarRequest struct {
	StartDate   string `json:"start_date" binding:"required"` // YYYY-MM-DD
	EndDate     string `json:"end_date" binding:"required"`   // YYYY-MM-DD
	StartHour   int    `json:"start_hour" binding:"omitempty,min=0,max=23"`
	EndHour     int    `json:"end_hour" binding:"omitempty,min=1,max=24"`
	MaxCapacity int    `json:"max_capacity" binding:"omitempty,min=1,max=100000"`
}

type DaySlotsQuery struct {
	Date          string `form:"date" binding:"required"` // YYYY-MM-DD
	AvailableOnly bool   `form:"available_only"`
}

type AvailableDatesQuery struct {
	Year  int `form:"year" binding:"required,min=2000,max=2100"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

// DateAvailability summarizes one calendar day that still has open slots
type DateAvailability struct {
	Date           string `json:"date"`
	AvailableSlots int    `json:"available_slots"`
}

// RemainingCapacity reports how much headcount the slot can still take
func (s *Slot) RemainingCapacity() int {
	remaining := s.MaxCapacity - s.CapacityUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsBookable reports whether the slot starts strictly more than the
// notice window after now. A slot exactly at the boundary is closed.
func (s *Slot) IsBookable(now time.Time, notice time.Duration) bool {
	return s.StartTime.Sub(now) > notice
}

func (s *Slot) ToResponse() SlotResponse {
	return SlotResponse{
		ID:                s.ID.String(),
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		MaxCapacity:       s.MaxCapacity,
		CapacityUsed:      s.CapacityUsed,
		RemainingCapacity: s.RemainingCapacity(),
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

// TableName specifies the table name for GORM
func (Slot) TableName() string {
	return "slots"
}
