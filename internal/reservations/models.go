package reservations

import (
	"time"

	"examly/internal/slots"
	"examly/internal/users"

	"github.com/google/uuid"
)

// Reservation requests headcount seats in one exam slot. A pending
// reservation holds no capacity; capacity is taken when an admin
// confirms it.
type Reservation struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	SlotID    uuid.UUID `json:"slot_id" gorm:"type:uuid;not null;index"`
	Headcount int       `json:"headcount" gorm:"not null;check:headcount > 0"`
	Status    Status    `json:"status" gorm:"type:varchar(20);default:'PENDING';not null"`

	User users.User `json:"-" gorm:"foreignKey:UserID"`
	Slot slots.Slot `json:"-" gorm:"foreignKey:SlotID"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

type ReservationResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	SlotID    string    `json:"slot_id"`
	Headcount int       `json:"headcount"`
	Status    Status    `json:"status"`
	SlotStart time.Time `json:"slot_start,omitempty"`
	SlotEnd   time.Time `json:"slot_end,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateReservationRequest struct {
	SlotID    string `json:"slot_id" binding:"required,uuid"`
	Headcount int    `json:"headcount" binding:"required,min=1"`
}

type UpdateReservationRequest struct {
	SlotID    *string `json:"slot_id" binding:"omitempty,uuid"`
	Headcount *int    `json:"headcount" binding:"omitempty,min=1"`
}

type ReservationListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Status string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED"`

	// Admin listing only: narrow by user, slot, or the slot's exam day
	UserID string `form:"user_id" binding:"omitempty,uuid"`
	SlotID string `form:"slot_id" binding:"omitempty,uuid"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`

	// Resolved from From/To in the event timezone by the service
	FromTime *time.Time `form:"-"`
	ToTime   *time.Time `form:"-"`
}

type PaginatedReservations struct {
	Reservations []ReservationResponse `json:"reservations"`
	TotalCount   int64                 `json:"total_count"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
	TotalPages   int                   `json:"total_pages"`
}

// Helper method to convert Reservation to ReservationResponse.
// Slot times are only populated when the Slot relation was preloaded.
func (r *Reservation) ToResponse() ReservationResponse {
	resp := ReservationResponse{
		ID:        r.ID.String(),
		UserID:    r.UserID.String(),
		SlotID:    r.SlotID.String(),
		Headcount: r.Headcount,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}

	if r.Slot.ID != uuid.Nil {
		resp.SlotStart = r.Slot.StartTime
		resp.SlotEnd = r.Slot.EndTime
	}

	return resp
}

// TableName specifies the table name for GORM
func (Reservation) TableName() string {
	return "reservations"
}
