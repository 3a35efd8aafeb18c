package database

import (
	"floorly/internal/guests"
	"floorly/internal/reservations"
	"floorly/internal/tables"
	"floorly/internal/waitlist"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&guests.Guest{},
		&tables.CombinedGroup{},
		&tables.Table{},
		&reservations.Reservation{},
		&waitlist.Entry{},
	)
}
