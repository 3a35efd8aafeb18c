package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds database constraints backing the single-holder
// invariant: at most one non-terminal reservation may reference a table or a
// combined group.
func MigrateConstraints(db *gorm.DB) error {
	// One active reservation per table
	err := db.Exec(`
		CREATE UNIQUE INDEX CONCURRENTLY IF NOT EXISTS uniq_active_reservation_per_table
		ON reservations (org_id, table_id)
		WHERE table_id IS NOT NULL AND status NOT IN ('COMPLETED', 'CANCELLED', 'NO_SHOW');
	`).Error
	if err != nil {
		return err
	}

	// One active reservation per combined group
	err = db.Exec(`
		CREATE UNIQUE INDEX CONCURRENTLY IF NOT EXISTS uniq_active_reservation_per_group
		ON reservations (org_id, group_id)
		WHERE group_id IS NOT NULL AND status NOT IN ('COMPLETED', 'CANCELLED', 'NO_SHOW');
	`).Error
	if err != nil {
		return err
	}

	// FIFO scans over the open waitlist
	err = db.Exec(`
		CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_waitlist_open_fifo
		ON waitlist_entries (org_id, created_at)
		WHERE status IN ('WAITING', 'NOTIFIED');
	`).Error
	if err != nil {
		return err
	}

	return nil
}
