package reservations

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"examly/internal/slots"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// Core reservation operations
	Create(ctx context.Context, reservation *Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	GetByIDWithSlot(ctx context.Context, id uuid.UUID) (*Reservation, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Listing
	GetUserReservations(ctx context.Context, userID uuid.UUID, query ReservationListQuery) ([]Reservation, int64, error)
	GetAllReservations(ctx context.Context, query ReservationListQuery) ([]Reservation, int64, error)

	// Capacity-coupled transitions
	ConfirmWithCapacityCheck(ctx context.Context, id uuid.UUID) (*Reservation, error)
	DeleteWithCapacityRelease(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, reservation *Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) GetByIDWithSlot(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Preload("Slot").
		Where("id = ?", id).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()

	result := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Reservation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *repository) GetUserReservations(ctx context.Context, userID uuid.UUID, query ReservationListQuery) ([]Reservation, int64, error) {
	baseQuery := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("user_id = ?", userID)

	return r.paginate(baseQuery, query)
}

func (r *repository) GetAllReservations(ctx context.Context, query ReservationListQuery) ([]Reservation, int64, error) {
	baseQuery := r.db.WithContext(ctx).Model(&Reservation{})

	if query.UserID != "" {
		if userID, err := uuid.Parse(query.UserID); err == nil {
			baseQuery = baseQuery.Where("user_id = ?", userID)
		}
	}
	if query.SlotID != "" {
		if slotID, err := uuid.Parse(query.SlotID); err == nil {
			baseQuery = baseQuery.Where("slot_id = ?", slotID)
		}
	}

	// Date bounds apply to the reserved slot's start time
	if query.FromTime != nil || query.ToTime != nil {
		baseQuery = baseQuery.Joins("JOIN slots ON slots.id = reservations.slot_id")
		if query.FromTime != nil {
			baseQuery = baseQuery.Where("slots.start_time >= ?", *query.FromTime)
		}
		if query.ToTime != nil {
			baseQuery = baseQuery.Where("slots.start_time < ?", *query.ToTime)
		}
	}

	return r.paginate(baseQuery, query)
}

func (r *repository) paginate(baseQuery *gorm.DB, query ReservationListQuery) ([]Reservation, int64, error) {
	var list []Reservation
	var totalCount int64

	// Set defaults
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 10
	}

	// Columns are qualified: the admin listing may join slots, which
	// shares created_at with reservations.
	if query.Status != "" {
		baseQuery = baseQuery.Where("reservations.status = ?", query.Status)
	}

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Preload("Slot").
		Order("reservations.created_at DESC").
		Offset(offset).
		Limit(query.Limit).
		Find(&list).Error

	return list, totalCount, err
}

// lockReservation reads a reservation row with FOR UPDATE inside tx.
func lockReservation(tx *gorm.DB, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&reservation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to lock reservation: %w", err)
	}
	return &reservation, nil
}

// ConfirmWithCapacityCheck confirms a pending reservation and charges its
// headcount against the slot, atomically. The slot row is locked first so
// concurrent confirmations against the same slot serialize at the
// database and the capacity bound survives process crashes.
func (r *repository) ConfirmWithCapacityCheck(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	var confirmed Reservation

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the reservation row
		reservation, err := lockReservation(tx, id)
		if err != nil {
			return err
		}

		// 2. Only pending reservations can be confirmed
		if !reservation.Status.CanBeConfirmed() {
			if reservation.Status == StatusConfirmed {
				return ErrAlreadyConfirmed
			}
			return ErrNotPending
		}

		// 3. Lock the slot row and charge the headcount
		if err := slots.AdjustUsedTx(tx, reservation.SlotID, reservation.Headcount); err != nil {
			if errors.Is(err, slots.ErrCapacityExceeded) {
				return ErrCapacityExceeded
			}
			return err
		}

		// 4. Flip the reservation to confirmed
		err = tx.Model(&Reservation{}).
			Where("id = ?", reservation.ID).
			Updates(map[string]interface{}{
				"status":     StatusConfirmed,
				"updated_at": time.Now(),
			}).Error
		if err != nil {
			return fmt.Errorf("failed to confirm reservation: %w", err)
		}

		reservation.Status = StatusConfirmed
		confirmed = *reservation
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &confirmed, nil
}

// DeleteWithCapacityRelease removes a reservation. A confirmed
// reservation gives its headcount back to the slot in the same
// transaction; a pending one held no capacity and is simply deleted.
func (r *repository) DeleteWithCapacityRelease(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reservation, err := lockReservation(tx, id)
		if err != nil {
			return err
		}

		if reservation.Status.HoldsCapacity() {
			if err := slots.AdjustUsedTx(tx, reservation.SlotID, -reservation.Headcount); err != nil {
				return fmt.Errorf("failed to release slot capacity: %w", err)
			}
		}

		if err := tx.Where("id = ?", reservation.ID).Delete(&Reservation{}).Error; err != nil {
			return fmt.Errorf("failed to delete reservation: %w", err)
		}

		return nil
	})
}

// Helper function to calculate total pages
func CalculateTotalPages(totalCount int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(totalCount) / float64(limit)))
}
