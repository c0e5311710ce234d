package database

import (
	"parkly/internal/reservations"
	"parkly/internal/spots"
	"parkly/internal/users"
	"parkly/internal/vehicles"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&vehicles.Vehicle{},
		&spots.Location{},
		&spots.Spot{},
		&reservations.Reservation{},
		&reservations.Transition{},
	)
}
