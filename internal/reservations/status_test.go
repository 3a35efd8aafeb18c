package reservations

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		command Command
		want    Status
		ok      bool
	}{
		{"confirm enquiry", StatusEnquiry, CommandConfirm, StatusConfirmed, true},
		{"cancel enquiry", StatusEnquiry, CommandCancel, StatusCancelled, true},
		{"seat confirmed", StatusConfirmed, CommandSeat, StatusSeated, true},
		{"cancel confirmed", StatusConfirmed, CommandCancel, StatusCancelled, true},
		{"no-show confirmed", StatusConfirmed, CommandMarkNoShow, StatusNoShow, true},
		{"drop bill seated", StatusSeated, CommandDropBill, StatusBillDropped, true},
		{"leave seated", StatusSeated, CommandMarkLeft, StatusCompleted, true},
		{"leave after bill", StatusBillDropped, CommandMarkLeft, StatusCompleted, true},

		{"seat enquiry", StatusEnquiry, CommandSeat, "", false},
		{"confirm twice", StatusConfirmed, CommandConfirm, "", false},
		{"cancel seated", StatusSeated, CommandCancel, "", false},
		{"no-show seated", StatusSeated, CommandMarkNoShow, "", false},
		{"cancel after bill", StatusBillDropped, CommandCancel, "", false},
		{"completed is terminal", StatusCompleted, CommandMarkLeft, "", false},
		{"cancelled is terminal", StatusCancelled, CommandConfirm, "", false},
		{"no-show is terminal", StatusNoShow, CommandSeat, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.from.Next(tt.command)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusCancelled, StatusNoShow} {
		assert.True(t, s.IsTerminal(), "%s should be terminal", s)
	}
	for _, s := range []Status{StatusEnquiry, StatusConfirmed, StatusSeated, StatusBillDropped} {
		assert.False(t, s.IsTerminal(), "%s should not be terminal", s)
	}
}

func TestCanEdit(t *testing.T) {
	assert.True(t, StatusEnquiry.CanEdit())
	assert.True(t, StatusConfirmed.CanEdit())
	assert.False(t, StatusSeated.CanEdit())
	assert.False(t, StatusBillDropped.CanEdit())
	assert.False(t, StatusCompleted.CanEdit())
}

func TestCommandReleasesTable(t *testing.T) {
	assert.True(t, CommandCancel.ReleasesTable())
	assert.True(t, CommandMarkNoShow.ReleasesTable())
	assert.True(t, CommandMarkLeft.ReleasesTable())
	assert.False(t, CommandConfirm.ReleasesTable())
	assert.False(t, CommandSeat.ReleasesTable())
	assert.False(t, CommandDropBill.ReleasesTable())
}

func TestApplyStampsTimestampsOnce(t *testing.T) {
	now := time.Now()
	r := &Reservation{Status: StatusEnquiry, ScheduledAt: now}

	next, ok := r.Apply(CommandConfirm, now)
	require.True(t, ok)
	assert.Equal(t, StatusConfirmed, next)
	require.NotNil(t, r.ConfirmedAt)
	stamped := *r.ConfirmedAt

	// A second confirm is rejected and the stamp is untouched
	_, ok = r.Apply(CommandConfirm, now.Add(time.Minute))
	assert.False(t, ok)
	assert.Equal(t, StatusConfirmed, r.Status)
	assert.Equal(t, stamped, *r.ConfirmedAt)
}

func TestApplyFullLifecycle(t *testing.T) {
	now := time.Now()
	r := &Reservation{Status: StatusEnquiry, ScheduledAt: now}

	steps := []struct {
		command Command
		want    Status
	}{
		{CommandConfirm, StatusConfirmed},
		{CommandSeat, StatusSeated},
		{CommandDropBill, StatusBillDropped},
		{CommandMarkLeft, StatusCompleted},
	}
	for _, step := range steps {
		got, ok := r.Apply(step.command, now)
		require.True(t, ok, "command %s", step.command)
		assert.Equal(t, step.want, got)
	}

	assert.NotNil(t, r.ConfirmedAt)
	assert.NotNil(t, r.SeatedAt)
	assert.NotNil(t, r.BillDroppedAt)
	assert.NotNil(t, r.CompletedAt)
	assert.Nil(t, r.CancelledAt)
	assert.Nil(t, r.NoShowAt)
}

func TestApplyInvalidLeavesReservationUntouched(t *testing.T) {
	r := &Reservation{Status: StatusEnquiry}
	got, ok := r.Apply(CommandDropBill, time.Now())
	assert.False(t, ok)
	assert.Equal(t, StatusEnquiry, got)
	assert.Equal(t, StatusEnquiry, r.Status)
	assert.Nil(t, r.BillDroppedAt)
}

func TestHoldsAndReleaseTable(t *testing.T) {
	r := &Reservation{Status: StatusConfirmed}
	assert.False(t, r.HoldsTable())

	id := uuid.New()
	r.TableID = &id
	assert.True(t, r.HoldsTable())

	r.ReleaseTable()
	assert.False(t, r.HoldsTable())
	assert.Nil(t, r.TableID)
	assert.Nil(t, r.GroupID)
}
