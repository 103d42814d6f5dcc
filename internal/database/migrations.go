package database

import (
	"gorm.io/gorm"

	"github.com/ridebid/ridebid-backend/internal/models"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.Ride{},
		&models.Bid{},
		&models.Message{},
	)
	if err != nil {
		return err
	}

	// Rides keep their status constrained at the database level too, so a
	// bad archive write can never record an unknown state.
	db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_status_check`)
	if err := db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_status_check CHECK (status IN ('pending', 'accepted', 'driver_arrived', 'ride_started', 'completed', 'cancelled'))`).Error; err != nil {
		return err
	}

	db.Exec(`ALTER TABLE users DROP CONSTRAINT IF EXISTS users_user_type_check`)
	db.Exec(`ALTER TABLE users ADD CONSTRAINT users_user_type_check CHECK (user_type IN ('client', 'driver'))`)

	return nil
}
