package reservations

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reservation defines the main reservation structure. A reservation holds at
// most one table or combined group at a time; it is never deleted, only moved
// to a terminal status.
type Reservation struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID       uuid.UUID  `gorm:"type:uuid;index;not null" json:"org_id"`
	GuestID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"guest_id"`
	PartySize   int        `gorm:"not null" json:"party_size"`
	ScheduledAt time.Time  `gorm:"not null;index" json:"scheduled_at"`
	TableID     *uuid.UUID `gorm:"type:uuid;index" json:"table_id,omitempty"`
	GroupID     *uuid.UUID `gorm:"type:uuid;index" json:"group_id,omitempty"`
	Status      Status     `gorm:"type:varchar(20);not null;index;default:'ENQUIRY'" json:"status"`
	Notes       string     `json:"notes,omitempty"`

	// Status timestamps, each set exactly once and monotonically
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	SeatedAt      *time.Time `json:"seated_at,omitempty"`
	BillDroppedAt *time.Time `json:"bill_dropped_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	NoShowAt      *time.Time `json:"no_show_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the table name for Reservation
func (Reservation) TableName() string {
	return "reservations"
}

// BeforeCreate generates an ID when the database does not
func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// HoldsTable reports whether the reservation currently claims a table or group
func (r *Reservation) HoldsTable() bool {
	return r.TableID != nil || r.GroupID != nil
}

// ReleaseTable drops the table/group claim
func (r *Reservation) ReleaseTable() {
	r.TableID = nil
	r.GroupID = nil
}

// stampStatus records the timestamp for a newly entered status. Each field is
// written exactly once; re-stamping indicates a state machine bug.
func (r *Reservation) stampStatus(status Status, now time.Time) error {
	var slot **time.Time
	switch status {
	case StatusConfirmed:
		slot = &r.ConfirmedAt
	case StatusSeated:
		slot = &r.SeatedAt
	case StatusBillDropped:
		slot = &r.BillDroppedAt
	case StatusCompleted:
		slot = &r.CompletedAt
	case StatusCancelled:
		slot = &r.CancelledAt
	case StatusNoShow:
		slot = &r.NoShowAt
	default:
		return nil
	}
	if *slot != nil {
		return fmt.Errorf("timestamp for status %s already set", status)
	}
	t := now
	*slot = &t
	return nil
}

// Apply advances the reservation along the transition table and stamps the
// new status. ok is false when cmd is not legal from the current status, in
// which case the reservation is left untouched.
func (r *Reservation) Apply(cmd Command, now time.Time) (Status, bool) {
	next, ok := r.Status.Next(cmd)
	if !ok {
		return r.Status, false
	}
	if err := r.stampStatus(next, now); err != nil {
		return r.Status, false
	}
	r.Status = next
	return next, true
}

// BillDropped reports the mid-service sub-phase used by the floor display
func (r *Reservation) BillDropped() bool {
	return r.Status == StatusBillDropped
}
