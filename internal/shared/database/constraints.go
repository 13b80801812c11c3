package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds database constraints the capacity accounting relies on.
// AutoMigrate creates the columns; these guards make the invariant
// 0 <= capacity_used <= max_capacity hold at the storage layer too.
func MigrateConstraints(db *gorm.DB) error {
	// A slot's usage can never go negative or past its capacity
	err := db.Exec(`
		ALTER TABLE slots DROP CONSTRAINT IF EXISTS chk_slot_capacity_bounds;
	`).Error
	if err != nil {
		return err
	}
	err = db.Exec(`
		ALTER TABLE slots
		ADD CONSTRAINT chk_slot_capacity_bounds
		CHECK (capacity_used >= 0 AND capacity_used <= max_capacity);
	`).Error
	if err != nil {
		return err
	}

	// One slot per grid position
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_slots_start_time_unique
		ON slots (start_time);
	`).Error
	if err != nil {
		return err
	}

	// Reservation lookups by slot during confirm/release
	err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_reservations_slot_status
		ON reservations (slot_id, status);
	`).Error
	if err != nil {
		return err
	}

	return nil
}
