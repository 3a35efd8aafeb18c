package tables

import (
	"time"

	"floorly/internal/reservations"
)

// DerivedStatus is the displayed state of a table, computed on demand from
// the reservation set plus the blocked flag, never stored.
type DerivedStatus string

const (
	StatusBlocked     DerivedStatus = "BLOCKED"
	StatusAvailable   DerivedStatus = "AVAILABLE"
	StatusReserved    DerivedStatus = "RESERVED"
	StatusSeated      DerivedStatus = "SEATED"
	StatusBillDropped DerivedStatus = "BILL_DROPPED"
)

func (s DerivedStatus) String() string {
	return string(s)
}

// Assignable reports whether a table in this state can take a new party
func (s DerivedStatus) Assignable() bool {
	return s == StatusAvailable
}

// MidService reports whether guests are at the table right now. Blocking a
// mid-service table is rejected.
func (s DerivedStatus) MidService() bool {
	return s == StatusSeated || s == StatusBillDropped
}

// Derive computes a table's displayed status. The blocked flag overrides
// everything. A CONFIRMED reservation claims the table visually only once now
// is inside the lookahead window before its scheduled time; a confirmed
// reservation hours away leaves the table AVAILABLE. For a combined group the
// caller passes the group's reservation so all members derive uniformly.
func Derive(blocked bool, active *reservations.Reservation, now time.Time, lookahead time.Duration) DerivedStatus {
	if blocked {
		return StatusBlocked
	}
	if active == nil {
		return StatusAvailable
	}

	switch active.Status {
	case reservations.StatusSeated:
		return StatusSeated
	case reservations.StatusBillDropped:
		return StatusBillDropped
	case reservations.StatusConfirmed:
		if !now.Before(active.ScheduledAt.Add(-lookahead)) {
			return StatusReserved
		}
		return StatusAvailable
	default:
		// ENQUIRY holds no visual claim; terminal statuses never reach here
		return StatusAvailable
	}
}
