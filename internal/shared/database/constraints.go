package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds a PostgreSQL exclusion constraint so two live reservations
// can never overlap on one spot, even if a writer bypasses the allocator.
// Other drivers rely on the allocator's row locks alone.
func MigrateConstraints(db *gorm.DB) error {
	if db.Dialector.Name() != DriverPostgres {
		return nil
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return err
	}

	var exists int64
	err := db.Raw(`SELECT COUNT(*) FROM pg_constraint WHERE conname = 'reservations_no_overlap'`).Scan(&exists).Error
	if err != nil {
		return err
	}
	if exists > 0 {
		return nil
	}

	return db.Exec(`
		ALTER TABLE reservations
		ADD CONSTRAINT reservations_no_overlap
		EXCLUDE USING gist (
			spot_id WITH =,
			tstzrange(start_time, end_time, '[)') WITH &&
		) WHERE (status IN ('pending', 'active'))
	`).Error
}
