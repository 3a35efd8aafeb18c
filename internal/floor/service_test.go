package floor

import (
	"context"
	"sync"
	"testing"
	"time"

	"floorly/internal/broadcast"
	"floorly/internal/guests"
	"floorly/internal/reservations"
	"floorly/internal/shared/config"
	"floorly/internal/shared/faults"
	"floorly/internal/tables"
	"floorly/internal/waitlist"
	"floorly/pkg/locker"
	"floorly/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testDeps struct {
	svc       Service
	orgID     uuid.UUID
	guestRepo guests.Repository
	tableRepo tables.Repository
	resRepo   reservations.Repository
	wlRepo    waitlist.Repository
}

func setup(t *testing.T) *testDeps {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&guests.Guest{},
		&tables.CombinedGroup{},
		&tables.Table{},
		&reservations.Reservation{},
		&waitlist.Entry{},
	))

	cfg := &config.Config{
		Floor: config.FloorConfig{
			AverageTurnDuration:     45 * time.Minute,
			ReservationGraceWindow:  15 * time.Minute,
			ReservationLookahead:    2 * time.Hour,
			LockTimeout:             2 * time.Second,
			PromoteInterval:         5 * time.Second,
			ExpectedConcurrentFrees: 2,
		},
	}

	guestRepo := guests.NewRepository(db)
	tableRepo := tables.NewRepository(db)
	resRepo := reservations.NewRepository(db)
	wlRepo := waitlist.NewRepository(db)

	svc := NewService(
		tableRepo, resRepo, wlRepo, guestRepo,
		locker.NewLocalLocker(cfg.Floor.LockTimeout),
		broadcast.NewLogPublisher(logger.GetDefault()),
		cfg,
	)

	return &testDeps{
		svc:       svc,
		orgID:     uuid.New(),
		guestRepo: guestRepo,
		tableRepo: tableRepo,
		resRepo:   resRepo,
		wlRepo:    wlRepo,
	}
}

func (d *testDeps) guest(t *testing.T, name string) *guests.Guest {
	t.Helper()
	g := &guests.Guest{OrgID: d.orgID, Name: name}
	require.NoError(t, d.guestRepo.CreateGuest(context.Background(), g))
	return g
}

func (d *testDeps) table(t *testing.T, name string, capacity int) *tables.Table {
	t.Helper()
	tab := &tables.Table{OrgID: d.orgID, Name: name, Capacity: capacity}
	require.NoError(t, d.tableRepo.CreateTable(context.Background(), tab))
	return tab
}

func (d *testDeps) reservationOn(t *testing.T, tab *tables.Table, partySize int) *reservations.Reservation {
	t.Helper()
	g := d.guest(t, "party of "+tab.Name)
	tableID := tab.ID.String()
	r, err := d.svc.CreateReservation(context.Background(), d.orgID, CreateReservationRequest{
		GuestID:     g.ID.String(),
		PartySize:   partySize,
		ScheduledAt: time.Now(),
		TableID:     &tableID,
	})
	require.NoError(t, err)
	return r
}

func (d *testDeps) transition(t *testing.T, id uuid.UUID, cmd reservations.Command) *reservations.Reservation {
	t.Helper()
	r, err := d.svc.Transition(context.Background(), d.orgID, id, cmd)
	require.NoError(t, err)
	return r
}

func TestReservationLifecycle(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	tab := d.table(t, "T1", 4)
	g := d.guest(t, "Dana")

	tableID := tab.ID.String()
	r, err := d.svc.CreateReservation(ctx, d.orgID, CreateReservationRequest{
		GuestID:     g.ID.String(),
		PartySize:   3,
		ScheduledAt: time.Now().Add(time.Hour),
		TableID:     &tableID,
	})
	require.NoError(t, err)
	assert.Equal(t, reservations.StatusEnquiry, r.Status)
	require.NotNil(t, r.TableID)
	assert.Equal(t, tab.ID, *r.TableID)

	r = d.transition(t, r.ID, reservations.CommandConfirm)
	assert.Equal(t, reservations.StatusConfirmed, r.Status)

	r = d.transition(t, r.ID, reservations.CommandSeat)
	assert.Equal(t, reservations.StatusSeated, r.Status)

	view, err := d.svc.TableStatus(ctx, d.orgID, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, tables.StatusSeated, view.Status)

	r = d.transition(t, r.ID, reservations.CommandDropBill)
	assert.Equal(t, reservations.StatusBillDropped, r.Status)

	view, err = d.svc.TableStatus(ctx, d.orgID, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, tables.StatusBillDropped, view.Status)

	r = d.transition(t, r.ID, reservations.CommandMarkLeft)
	assert.Equal(t, reservations.StatusCompleted, r.Status)
	assert.False(t, r.HoldsTable())

	// Table is back on the floor and the guest's visit counted
	view, err = d.svc.TableStatus(ctx, d.orgID, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, tables.StatusAvailable, view.Status)

	fresh, err := d.guestRepo.GetGuestByID(ctx, d.orgID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.VisitCount)
}

func TestCancelFreesTable(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	tab := d.table(t, "T1", 4)

	r := d.reservationOn(t, tab, 2)
	d.transition(t, r.ID, reservations.CommandConfirm)

	r = d.transition(t, r.ID, reservations.CommandCancel)
	assert.Equal(t, reservations.StatusCancelled, r.Status)
	assert.False(t, r.HoldsTable())

	active, err := d.resRepo.GetActiveByTableID(ctx, d.orgID, tab.ID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestNoShowIncrementsCounter(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	tab := d.table(t, "T1", 2)

	g := d.guest(t, "Jonas")
	tableID := tab.ID.String()
	r, err := d.svc.CreateReservation(ctx, d.orgID, CreateReservationRequest{
		GuestID:     g.ID.String(),
		PartySize:   2,
		ScheduledAt: time.Now(),
		TableID:     &tableID,
	})
	require.NoError(t, err)
	d.transition(t, r.ID, reservations.CommandConfirm)
	d.transition(t, r.ID, reservations.CommandMarkNoShow)

	fresh, err := d.guestRepo.GetGuestByID(ctx, d.orgID, g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.NoShowCount)
	assert.Equal(t, 0, fresh.VisitCount)
}

func TestSeatRequiresTable(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	g := d.guest(t, "Priya")

	r, err := d.svc.CreateReservation(ctx, d.orgID, CreateReservationRequest{
		GuestID:     g.ID.String(),
		PartySize:   2,
		ScheduledAt: time.Now(),
	})
	require.NoError(t, err)
	d.transition(t, r.ID, reservations.CommandConfirm)

	_, err = d.svc.Transition(ctx, d.orgID, r.ID, reservations.CommandSeat)
	assert.True(t, faults.IsKind(err, faults.KindValidation))
}

func TestInvalidTransitionFault(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	tab := d.table(t, "T1", 4)
	r := d.reservationOn(t, tab, 2)

	_, err := d.svc.Transition(ctx, d.orgID, r.ID, reservations.CommandDropBill)
	assert.True(t, faults.IsKind(err, faults.KindInvalidTransition))

	// Reservation unchanged
	fresh, err := d.svc.GetReservation(ctx, d.orgID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, reservations.StatusEnquiry, fresh.Status)
}

func TestAssignBestFit(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	d.table(t, "T2", 2)
	four := d.table(t, "T4", 4)
	d.table(t, "T8", 8)

	result, err := d.svc.AssignTable(ctx, d.orgID, AssignRequest{PartySize: 3})
	require.NoError(t, err)
	require.False(t, result.NoFit)
	require.NotNil(t, result.TableID)
	assert.Equal(t, four.ID, *result.TableID)
}

func TestAssignNoFit(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	d.table(t, "T2", 2)

	result, err := d.svc.AssignTable(ctx, d.orgID, AssignRequest{PartySize: 6})
	require.NoError(t, err)
	assert.True(t, result.NoFit)
}

func TestAssignPreferredTable(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	d.table(t, "T2", 2)
	eight := d.table(t, "T8", 8)

	// Preferred table bypasses best-fit scoring
	preferred := eight.ID.String()
	result, err := d.svc.AssignTable(ctx, d.orgID, AssignRequest{PartySize: 2, PreferredTableID: &preferred})
	require.NoError(t, err)
	require.NotNil(t, result.TableID)
	assert.Equal(t, eight.ID, *result.TableID)

	// A preferred table that is too small is rejected, not downgraded
	two := d.table(t, "T2b", 2)
	small := two.ID.String()
	_, err = d.svc.AssignTable(ctx, d.orgID, AssignRequest{PartySize: 5, PreferredTableID: &small})
	assert.True(t, faults.IsKind(err, faults.KindTableUnavailable))
}

func TestFarFutureReservationStillHoldsTable(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	tab := d.table(t, "T1", 4)

	g := d.guest(t, "Dana")
	tableID := tab.ID.String()
	r, err := d.svc.CreateReservation(ctx, d.orgID, CreateReservationRequest{
		GuestID:     g.ID.String(),
		PartySize:   2,
		ScheduledAt: time.Now().Add(6 * time.Hour),
		TableID:     &tableID,
	})
	require.NoError(t, err)
	d.transition(t, r.ID, reservations.CommandConfirm)

	// Outside the lookahead window the table displays AVAILABLE
	view, err := d.svc.TableStatus(ctx, d.orgID, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, tables.StatusAvailable, view.Status)

	// but it is still held: no second reservation may take it
	preferred := tab.ID.String()
	_, err = d.svc.AssignTable(ctx, d.orgID, AssignRequest{PartySize: 2, PreferredTableID: &preferred})
	assert.True(t, faults.IsKind(err, faults.KindTableUnavailable))
}

func TestReservedWithinLookahead(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	tab := d.table(t, "T1", 4)

	now := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	SetClock(d.svc, func() time.Time { return now })

	g := d.guest(t, "Dana")
	tableID := tab.ID.String()
	r, err := d.svc.CreateReservation(ctx, d.orgID, CreateReservationRequest{
		GuestID:     g.ID.String(),
		PartySize:   2,
		ScheduledAt: now.Add(time.Hour),
		TableID:     &tableID,
	})
	require.NoError(t, err)
	d.transition(t, r.ID, reservations.CommandConfirm)

	view, err := d.svc.TableStatus(ctx, d.orgID, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, tables.StatusReserved, view.Status)

	// Advance past the visit: confirmed within the window stays RESERVED
	now = now.Add(90 * time.Minute)
	view, err = d.svc.TableStatus(ctx, d.orgID, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, tables.StatusReserved, view.Status)
}

func TestOverdueFlagAfterGraceWindow(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	tab := d.table(t, "T1", 4)

	now := time.Date(2025, 6, 14, 19, 0, 0, 0, time.UTC)
	SetClock(d.svc, func() time.Time { return now })

	g := d.guest(t, "Priya")
	tableID := tab.ID.String()
	r, err := d.svc.CreateReservation(ctx, d.orgID, CreateReservationRequest{
		GuestID:     g.ID.String(),
		PartySize:   2,
		ScheduledAt: now,
		TableID:     &tableID,
	})
	require.NoError(t, err)
	d.transition(t, r.ID, reservations.CommandConfirm)

	view, err := d.svc.TableStatus(ctx, d.orgID, tab.ID)
	require.NoError(t, err)
	assert.False(t, view.Overdue)

	// Past scheduled time plus the grace window the party is flagged
	now = now.Add(16 * time.Minute)
	view, err = d.svc.TableStatus(ctx, d.orgID, tab.ID)
	require.NoError(t, err)
	assert.True(t, view.Overdue)

	views, err := d.svc.FloorStatus(ctx, d.orgID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Overdue)

	// Seating clears the flag
	d.transition(t, r.ID, reservations.CommandSeat)
	view, err = d.svc.TableStatus(ctx, d.orgID, tab.ID)
	require.NoError(t, err)
	assert.False(t, view.Overdue)
}

func TestWalkInSeatsImmediately(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	d.table(t, "T1", 4)

	result, err := d.svc.SeatWalkIn(ctx, d.orgID, WalkInRequest{GuestName: "Walk In", PartySize: 2})
	require.NoError(t, err)
	require.False(t, result.NoFit)
	require.NotNil(t, result.Reservation)
	assert.Equal(t, reservations.StatusSeated, result.Reservation.Status)
	assert.NotNil(t, result.Reservation.SeatedAt)
	assert.NotNil(t, result.Reservation.ConfirmedAt)
}

func TestWalkInNoFitThenWaitlistFlow(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	d.table(t, "T1", 2)

	// Occupy the only table
	first, err := d.svc.SeatWalkIn(ctx, d.orgID, WalkInRequest{GuestName: "First", PartySize: 2})
	require.NoError(t, err)
	require.False(t, first.NoFit)

	// Next party does not fit and is routed to the waitlist
	second, err := d.svc.SeatWalkIn(ctx, d.orgID, WalkInRequest{GuestName: "Second", PartySize: 2})
	require.NoError(t, err)
	assert.True(t, second.NoFit)

	entry, err := d.svc.EnqueueWaitlist(ctx, d.orgID, EnqueueRequest{GuestName: "Second", PartySize: 2})
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusWaiting, entry.Status)
	assert.Positive(t, entry.EstimatedWaitMinutes)

	// First party leaves; the freed table promotes the waiting entry
	d.transition(t, first.Reservation.ID, reservations.CommandMarkLeft)

	promoted, err := d.svc.PromoteFreedTable(ctx, d.orgID, *first.Assignment.TableID)
	require.NoError(t, err)
	assert.True(t, promoted)

	fresh, err := d.wlRepo.GetEntryByID(ctx, d.orgID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusNotified, fresh.Status)
	assert.NotNil(t, fresh.NotifiedAt)

	// Seating the notified entry creates a seated reservation and closes it
	seated, err := d.svc.SeatWaitlist(ctx, d.orgID, entry.ID, nil)
	require.NoError(t, err)
	require.False(t, seated.NoFit)
	assert.Equal(t, reservations.StatusSeated, seated.Reservation.Status)

	fresh, err = d.wlRepo.GetEntryByID(ctx, d.orgID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusSeated, fresh.Status)
}

func TestPromotionIsFIFOWithFit(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	small := d.table(t, "T2", 2)

	// Earlier entry is too big for the freed two-top; the later one fits
	big, err := d.svc.EnqueueWaitlist(ctx, d.orgID, EnqueueRequest{GuestName: "Big", PartySize: 4})
	require.NoError(t, err)
	fits, err := d.svc.EnqueueWaitlist(ctx, d.orgID, EnqueueRequest{GuestName: "Fits", PartySize: 2})
	require.NoError(t, err)

	promoted, err := d.svc.PromoteFreedTable(ctx, d.orgID, small.ID)
	require.NoError(t, err)
	assert.True(t, promoted)

	freshBig, err := d.wlRepo.GetEntryByID(ctx, d.orgID, big.ID)
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusWaiting, freshBig.Status)

	freshFits, err := d.wlRepo.GetEntryByID(ctx, d.orgID, fits.ID)
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusNotified, freshFits.Status)

	// Promoting again finds nothing left that fits: no double offers
	promoted, err = d.svc.PromoteFreedTable(ctx, d.orgID, small.ID)
	require.NoError(t, err)
	assert.False(t, promoted)
}

func TestPromotionPrefersEarlierFittingEntry(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	four := d.table(t, "T4", 4)

	first, err := d.svc.EnqueueWaitlist(ctx, d.orgID, EnqueueRequest{GuestName: "First", PartySize: 2})
	require.NoError(t, err)
	_, err = d.svc.EnqueueWaitlist(ctx, d.orgID, EnqueueRequest{GuestName: "Second", PartySize: 2})
	require.NoError(t, err)

	promoted, err := d.svc.PromoteFreedTable(ctx, d.orgID, four.ID)
	require.NoError(t, err)
	assert.True(t, promoted)

	fresh, err := d.wlRepo.GetEntryByID(ctx, d.orgID, first.ID)
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusNotified, fresh.Status)
}

func TestBlockRules(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	tab := d.table(t, "T1", 4)

	// Blocking a mid-service table is rejected
	seated, err := d.svc.SeatWalkIn(ctx, d.orgID, WalkInRequest{GuestName: "Party", PartySize: 2})
	require.NoError(t, err)
	_, err = d.svc.BlockTable(ctx, d.orgID, tab.ID)
	assert.True(t, faults.IsKind(err, faults.KindTableOccupied))

	// After the party leaves the block lands
	d.transition(t, seated.Reservation.ID, reservations.CommandMarkLeft)
	view, err := d.svc.BlockTable(ctx, d.orgID, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, tables.StatusBlocked, view.Status)

	// Blocked tables never enter the candidate set
	result, err := d.svc.AssignTable(ctx, d.orgID, AssignRequest{PartySize: 2})
	require.NoError(t, err)
	assert.True(t, result.NoFit)

	view, err = d.svc.UnblockTable(ctx, d.orgID, tab.ID)
	require.NoError(t, err)
	assert.Equal(t, tables.StatusAvailable, view.Status)
}

func TestCombineAndUncombine(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	a := d.table(t, "T1", 2)
	b := d.table(t, "T2", 2)

	group, err := d.svc.CombineTables(ctx, d.orgID, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, 4, group.Capacity)
	assert.Len(t, group.Tables, 2)

	// The group assigns as one unit with the combined capacity
	result, err := d.svc.AssignTable(ctx, d.orgID, AssignRequest{PartySize: 4})
	require.NoError(t, err)
	require.False(t, result.NoFit)
	require.NotNil(t, result.GroupID)
	assert.Equal(t, group.ID, *result.GroupID)
	assert.Equal(t, 4, result.Capacity)
}

func TestCombineRejectsOccupiedMember(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	a := d.table(t, "T1", 2)
	b := d.table(t, "T2", 2)

	_, err := d.svc.SeatWalkIn(ctx, d.orgID, WalkInRequest{GuestName: "Party", PartySize: 2})
	require.NoError(t, err)

	// One of the two tables is now seated
	_, err = d.svc.CombineTables(ctx, d.orgID, []uuid.UUID{a.ID, b.ID})
	assert.True(t, faults.IsKind(err, faults.KindTableUnavailable))
}

func TestUncombineRejectedWhileHeld(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	a := d.table(t, "T1", 2)
	b := d.table(t, "T2", 2)

	group, err := d.svc.CombineTables(ctx, d.orgID, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)

	seated, err := d.svc.SeatWalkIn(ctx, d.orgID, WalkInRequest{GuestName: "Party", PartySize: 4})
	require.NoError(t, err)
	require.NotNil(t, seated.Assignment.GroupID)

	err = d.svc.UncombineTables(ctx, d.orgID, group.ID)
	assert.True(t, faults.IsKind(err, faults.KindTableUnavailable))

	// Dissolves cleanly once the party is gone
	d.transition(t, seated.Reservation.ID, reservations.CommandMarkLeft)
	require.NoError(t, d.svc.UncombineTables(ctx, d.orgID, group.ID))

	fresh, err := d.tableRepo.GetTableByID(ctx, d.orgID, a.ID)
	require.NoError(t, err)
	assert.Nil(t, fresh.GroupID)
}

func TestEditReservation(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	tab := d.table(t, "T1", 4)
	other := d.table(t, "T2", 4)

	r := d.reservationOn(t, tab, 2)
	d.transition(t, r.ID, reservations.CommandConfirm)

	// Move to another table: availability is re-checked against the target
	newTable := other.ID.String()
	edited, err := d.svc.EditReservation(ctx, d.orgID, r.ID, EditReservationRequest{TableID: &newTable})
	require.NoError(t, err)
	require.NotNil(t, edited.TableID)
	assert.Equal(t, other.ID, *edited.TableID)

	// The old table is free again
	active, err := d.resRepo.GetActiveByTableID(ctx, d.orgID, tab.ID)
	require.NoError(t, err)
	assert.Nil(t, active)

	// Seated reservations reject edits
	d.transition(t, r.ID, reservations.CommandSeat)
	size := 4
	_, err = d.svc.EditReservation(ctx, d.orgID, r.ID, EditReservationRequest{PartySize: &size})
	assert.True(t, faults.IsKind(err, faults.KindInvalidTransition))
}

func TestConcurrentAssignSingleWinner(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	tab := d.table(t, "T1", 4)

	var wg sync.WaitGroup
	results := make([]*SeatResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = d.svc.SeatWalkIn(ctx, d.orgID, WalkInRequest{
				GuestName: "Racer",
				PartySize: 2,
			})
		}(i)
	}
	wg.Wait()

	seatedCount := 0
	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		if !results[i].NoFit {
			seatedCount++
		}
	}
	assert.Equal(t, 1, seatedCount, "exactly one walk-in wins the only table")

	active, err := d.resRepo.GetActiveByTableID(ctx, d.orgID, tab.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, reservations.StatusSeated, active.Status)
}

func TestConcurrentSeatWaitlistSingleWinner(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	d.table(t, "T1", 2)
	d.table(t, "T2", 2)

	entry, err := d.svc.EnqueueWaitlist(ctx, d.orgID, EnqueueRequest{GuestName: "Racer", PartySize: 2})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*SeatResult, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = d.svc.SeatWaitlist(ctx, d.orgID, entry.ID, nil)
		}(i)
	}
	wg.Wait()

	seated := 0
	for i := 0; i < 2; i++ {
		if errs[i] == nil && !results[i].NoFit {
			seated++
		} else if errs[i] != nil {
			assert.True(t, faults.IsKind(errs[i], faults.KindInvalidTransition))
		}
	}
	assert.Equal(t, 1, seated, "exactly one terminal seats the entry")

	active, err := d.resRepo.ListActive(ctx, d.orgID)
	require.NoError(t, err)
	assert.Len(t, active, 1, "one party, one reservation")

	fresh, err := d.wlRepo.GetEntryByID(ctx, d.orgID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusSeated, fresh.Status)
	assert.NotNil(t, fresh.SeatedAt)
}

func TestConcurrentPromotionSingleOffer(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	a := d.table(t, "T1", 2)
	b := d.table(t, "T2", 2)

	entry, err := d.svc.EnqueueWaitlist(ctx, d.orgID, EnqueueRequest{GuestName: "Only", PartySize: 2})
	require.NoError(t, err)

	// Two tables freeing at once must not offer the same party twice
	var wg sync.WaitGroup
	promoted := make([]bool, 2)
	errs := make([]error, 2)
	freed := []uuid.UUID{a.ID, b.ID}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			promoted[i], errs[i] = d.svc.PromoteFreedTable(ctx, d.orgID, freed[i])
		}(i)
	}
	wg.Wait()

	offers := 0
	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		if promoted[i] {
			offers++
		}
	}
	assert.Equal(t, 1, offers)

	fresh, err := d.wlRepo.GetEntryByID(ctx, d.orgID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, waitlist.StatusNotified, fresh.Status)
	assert.NotNil(t, fresh.NotifiedAt)
}

func TestEditCannotRevertCommittedSeat(t *testing.T) {
	d := setup(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		tab := d.table(t, "T", 4)
		r := d.reservationOn(t, tab, 2)
		d.transition(t, r.ID, reservations.CommandConfirm)

		notes := "window seat"
		var seatErr, editErr error
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, seatErr = d.svc.Transition(ctx, d.orgID, r.ID, reservations.CommandSeat)
		}()
		go func() {
			defer wg.Done()
			_, editErr = d.svc.EditReservation(ctx, d.orgID, r.ID, EditReservationRequest{Notes: &notes})
		}()
		wg.Wait()

		require.NoError(t, seatErr)
		if editErr != nil {
			assert.True(t, faults.IsKind(editErr, faults.KindInvalidTransition))
		}

		// Whatever order the race took, the seat must stand
		fresh, err := d.svc.GetReservation(ctx, d.orgID, r.ID)
		require.NoError(t, err)
		assert.Equal(t, reservations.StatusSeated, fresh.Status)
		assert.NotNil(t, fresh.SeatedAt)

		d.transition(t, r.ID, reservations.CommandDropBill)
		d.transition(t, r.ID, reservations.CommandMarkLeft)
	}
}

func TestEditKeepsOwnTable(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	tab := d.table(t, "T1", 4)

	r := d.reservationOn(t, tab, 2)
	d.transition(t, r.ID, reservations.CommandConfirm)

	// Re-submitting the held table alongside other edits is not a conflict
	sameTable := tab.ID.String()
	size := 3
	edited, err := d.svc.EditReservation(ctx, d.orgID, r.ID, EditReservationRequest{
		TableID:   &sameTable,
		PartySize: &size,
	})
	require.NoError(t, err)
	require.NotNil(t, edited.TableID)
	assert.Equal(t, tab.ID, *edited.TableID)
	assert.Equal(t, 3, edited.PartySize)
}

func TestEditMoveFreesOldTable(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	tab := d.table(t, "T1", 4)
	other := d.table(t, "T2", 4)

	var freed []uuid.UUID
	d.svc.SetFreedHook(func(orgID, tableID uuid.UUID) {
		freed = append(freed, tableID)
	})

	r := d.reservationOn(t, tab, 2)
	d.transition(t, r.ID, reservations.CommandConfirm)

	newTable := other.ID.String()
	_, err := d.svc.EditReservation(ctx, d.orgID, r.ID, EditReservationRequest{TableID: &newTable})
	require.NoError(t, err)

	require.Len(t, freed, 1, "moving a reservation frees its old table for promotion")
	assert.Equal(t, tab.ID, freed[0])
}

func TestOrgScopeIsolation(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	tab := d.table(t, "T1", 4)
	r := d.reservationOn(t, tab, 2)

	otherOrg := uuid.New()
	_, err := d.svc.GetReservation(ctx, otherOrg, r.ID)
	assert.True(t, faults.IsKind(err, faults.KindNotFound))

	_, err = d.svc.TableStatus(ctx, otherOrg, tab.ID)
	assert.True(t, faults.IsKind(err, faults.KindNotFound))
}
