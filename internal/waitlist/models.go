package waitlist

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status represents the status of a waitlist entry
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusNotified Status = "NOTIFIED"
	StatusSeated   Status = "SEATED"
	StatusLeft     Status = "LEFT"
)

// IsValid checks if the waitlist status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusWaiting, StatusNotified, StatusSeated, StatusLeft:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are accepted
func (s Status) IsTerminal() bool {
	return s == StatusSeated || s == StatusLeft
}

var validTransitions = map[Status][]Status{
	StatusWaiting:  {StatusNotified, StatusSeated, StatusLeft},
	StatusNotified: {StatusSeated, StatusLeft},
	StatusSeated:   {},
	StatusLeft:     {},
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// TransitionSources returns every status a transition to target is legal from
func TransitionSources(target Status) []Status {
	var sources []Status
	for from, allowed := range validTransitions {
		for _, to := range allowed {
			if to == target {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

// Entry represents a walk-in party waiting for a table. Entries form a strict
// FIFO by creation time; promotion offers a freed table to the earliest entry
// that fits it.
type Entry struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID                uuid.UUID  `gorm:"type:uuid;index;not null" json:"org_id"`
	GuestName            string     `gorm:"not null" json:"guest_name"`
	GuestID              *uuid.UUID `gorm:"type:uuid;index" json:"guest_id,omitempty"`
	PartySize            int        `gorm:"not null" json:"party_size"`
	Status               Status     `gorm:"type:varchar(20);not null;index;default:'WAITING'" json:"status"`
	EstimatedWaitMinutes int        `json:"estimated_wait_minutes"`

	CreatedAt  time.Time  `gorm:"not null;index" json:"created_at"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
	SeatedAt   *time.Time `json:"seated_at,omitempty"`
	LeftAt     *time.Time `json:"left_at,omitempty"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName sets the table name for Entry
func (Entry) TableName() string {
	return "waitlist_entries"
}

// BeforeCreate generates an ID when the database does not
func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Transition moves the entry to target and stamps the matching timestamp.
// ok is false when the transition is not legal; the entry is left untouched.
func (e *Entry) Transition(target Status, now time.Time) bool {
	if !e.Status.CanTransitionTo(target) {
		return false
	}

	switch target {
	case StatusNotified:
		t := now
		e.NotifiedAt = &t
	case StatusSeated:
		t := now
		e.SeatedAt = &t
	case StatusLeft:
		t := now
		e.LeftAt = &t
	}

	e.Status = target
	return true
}
