package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates or updates the schema, including the partial unique index
// that keeps a student to one active booking.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&userModel{},
		&roomTypeModel{},
		&roomModel{},
		&bookingModel{},
		&paymentModel{},
		&depositModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	idx := fmt.Sprintf(
		"CREATE UNIQUE INDEX IF NOT EXISTS %s ON bookings (student_id) WHERE status IN ('pending','confirmed','checked_in')",
		ActiveBookingIndex,
	)
	if err := db.Exec(idx).Error; err != nil {
		return fmt.Errorf("create %s: %w", ActiveBookingIndex, err)
	}
	return nil
}
