package floor

import (
	"time"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	GuestID     string    `json:"guest_id" binding:"required,uuid"`
	PartySize   int       `json:"party_size" binding:"required,min=1"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	TableID     *string   `json:"table_id,omitempty" binding:"omitempty,uuid"`
	Notes       string    `json:"notes,omitempty" binding:"max=500"`
}

type EditReservationRequest struct {
	PartySize   *int       `json:"party_size,omitempty" binding:"omitempty,min=1"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	TableID     *string    `json:"table_id,omitempty" binding:"omitempty,uuid"`
	Notes       *string    `json:"notes,omitempty" binding:"omitempty,max=500"`
}

type TransitionRequest struct {
	Command string `json:"command" binding:"required,lifecycle_command"`
}

type AssignRequest struct {
	PartySize        int     `json:"party_size" binding:"required,min=1"`
	PreferredTableID *string `json:"preferred_table_id,omitempty" binding:"omitempty,uuid"`
	ReservationID    *string `json:"reservation_id,omitempty" binding:"omitempty,uuid"`
}

func (r AssignRequest) preferredID() *uuid.UUID {
	return parseOptionalID(r.PreferredTableID)
}

type WalkInRequest struct {
	GuestName        string  `json:"guest_name,omitempty" binding:"max=100"`
	GuestID          *string `json:"guest_id,omitempty" binding:"omitempty,uuid"`
	PartySize        int     `json:"party_size" binding:"required,min=1"`
	PreferredTableID *string `json:"preferred_table_id,omitempty" binding:"omitempty,uuid"`
	Notes            string  `json:"notes,omitempty" binding:"max=500"`
}

func (r WalkInRequest) preferredID() *uuid.UUID {
	return parseOptionalID(r.PreferredTableID)
}

type EnqueueRequest struct {
	GuestName string  `json:"guest_name,omitempty" binding:"max=100"`
	GuestID   *string `json:"guest_id,omitempty" binding:"omitempty,uuid"`
	PartySize int     `json:"party_size" binding:"required,min=1"`
}

type CombineRequest struct {
	TableIDs []string `json:"table_ids" binding:"required,min=2,dive,uuid"`
}

type SeatWaitlistRequest struct {
	PreferredTableID *string `json:"preferred_table_id,omitempty" binding:"omitempty,uuid"`
}

func parseOptionalID(raw *string) *uuid.UUID {
	if raw == nil {
		return nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil
	}
	return &id
}
