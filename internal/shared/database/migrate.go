package database

import (
	"examly/internal/reservations"
	"examly/internal/slots"
	"examly/internal/users"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates the schema for every persisted model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&slots.Slot{},
		&reservations.Reservation{},
	)
}
