package tables

import (
	"testing"
	"time"

	"floorly/internal/reservations"

	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	now := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	lookahead := 2 * time.Hour

	confirmedAt := func(scheduled time.Time) *reservations.Reservation {
		return &reservations.Reservation{Status: reservations.StatusConfirmed, ScheduledAt: scheduled}
	}

	tests := []struct {
		name    string
		blocked bool
		active  *reservations.Reservation
		want    DerivedStatus
	}{
		{"no reservation", false, nil, StatusAvailable},
		{"blocked wins", true, &reservations.Reservation{Status: reservations.StatusSeated}, StatusBlocked},
		{"seated party", false, &reservations.Reservation{Status: reservations.StatusSeated}, StatusSeated},
		{"bill dropped", false, &reservations.Reservation{Status: reservations.StatusBillDropped}, StatusBillDropped},
		{"confirmed inside lookahead", false, confirmedAt(now.Add(time.Hour)), StatusReserved},
		{"confirmed at lookahead boundary", false, confirmedAt(now.Add(lookahead)), StatusReserved},
		{"confirmed past scheduled time", false, confirmedAt(now.Add(-30 * time.Minute)), StatusReserved},
		{"confirmed hours away", false, confirmedAt(now.Add(5 * time.Hour)), StatusAvailable},
		{"enquiry holds no claim", false, &reservations.Reservation{Status: reservations.StatusEnquiry, ScheduledAt: now}, StatusAvailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.blocked, tt.active, now, lookahead)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDerivedStatusPredicates(t *testing.T) {
	assert.True(t, StatusAvailable.Assignable())
	assert.False(t, StatusReserved.Assignable())
	assert.False(t, StatusBlocked.Assignable())

	assert.True(t, StatusSeated.MidService())
	assert.True(t, StatusBillDropped.MidService())
	assert.False(t, StatusReserved.MidService())
	assert.False(t, StatusAvailable.MidService())
	assert.False(t, StatusBlocked.MidService())
}
