package slots

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	Create(slot *Slot) error
	CreateBatch(batch []Slot) (int64, error)
	GetByID(id uuid.UUID) (*Slot, error)
	GetByDay(dayStart, dayEnd time.Time, availableOnly bool) ([]Slot, error)
	GetAvailableDates(rangeStart, rangeEnd time.Time, location *time.Location) ([]DateAvailability, error)
	Delete(id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(slot *Slot) error {
	err := r.db.Create(slot).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSlot
	}
	return err
}

// CreateBatch inserts a batch of slots, silently skipping grid positions
// that already exist. Returns the number of rows actually inserted.
func (r *repository) CreateBatch(batch []Slot) (int64, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "start_time"}},
		DoNothing: true,
	}).CreateInBatches(batch, 200)

	return result.RowsAffected, result.Error
}

func (r *repository) GetByID(id uuid.UUID) (*Slot, error) {
	var slot Slot
	err := r.db.Where("id = ?", id).First(&slot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &slot, nil
}

func (r *repository) GetByDay(dayStart, dayEnd time.Time, availableOnly bool) ([]Slot, error) {
	var daySlots []Slot

	db := r.db.Where("start_time >= ? AND start_time < ?", dayStart, dayEnd)
	if availableOnly {
		db = db.Where("capacity_used < max_capacity")
	}

	err := db.Order("start_time ASC").Find(&daySlots).Error
	return daySlots, err
}

// GetAvailableDates aggregates the days within [rangeStart, rangeEnd) that
// still have at least one slot with remaining capacity. Dates are grouped
// in the event timezone, not UTC, so a late-evening slot lands on the
// right calendar day.
func (r *repository) GetAvailableDates(rangeStart, rangeEnd time.Time, location *time.Location) ([]DateAvailability, error) {
	type row struct {
		Date           string `json:"date"`
		AvailableSlots int    `json:"available_slots"`
	}

	var rows []row
	err := r.db.Model(&Slot{}).
		Select("TO_CHAR(start_time AT TIME ZONE ?, 'YYYY-MM-DD') as date, COUNT(*) as available_slots", location.String()).
		Where("start_time >= ? AND start_time < ?", rangeStart, rangeEnd).
		Where("capacity_used < max_capacity").
		Group("date").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	dates := make([]DateAvailability, len(rows))
	for i, r := range rows {
		dates[i] = DateAvailability{Date: r.Date, AvailableSlots: r.AvailableSlots}
	}
	return dates, nil
}

func (r *repository) Delete(id uuid.UUID) error {
	result := r.db.Where("id = ?", id).Delete(&Slot{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// AdjustUsedTx is the sole mutator of capacity_used. It locks the slot
// row, applies delta (releases clamp at zero), and fails with
// ErrCapacityExceeded when the result would pass max_capacity. It must
// run inside the caller's transaction so the capacity change commits
// atomically with whatever ledger write motivated it.
func AdjustUsedTx(tx *gorm.DB, slotID uuid.UUID, delta int) error {
	var slot Slot

	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", slotID).
		First(&slot).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSlotNotFound
		}
		return err
	}

	newUsed := slot.CapacityUsed + delta
	if newUsed < 0 {
		newUsed = 0
	}
	if newUsed > slot.MaxCapacity {
		return ErrCapacityExceeded
	}

	return tx.Model(&slot).Update("capacity_used", newUsed).Error
}
