package floor

import (
	"context"
	"testing"
	"time"

	"floorly/internal/reservations"
	"floorly/internal/waitlist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromoterPromotesOnFreedTrigger(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	d.table(t, "T1", 2)

	promoter := NewPromoter(d.svc, d.wlRepo, &PromoterConfig{
		SweepInterval: time.Hour, // trigger path only
		TriggerBuffer: 8,
	})
	promoter.Start(ctx)
	defer promoter.Stop()

	seated, err := d.svc.SeatWalkIn(ctx, d.orgID, WalkInRequest{GuestName: "First", PartySize: 2})
	require.NoError(t, err)

	entry, err := d.svc.EnqueueWaitlist(ctx, d.orgID, EnqueueRequest{GuestName: "Second", PartySize: 2})
	require.NoError(t, err)

	// Leaving frees the table, which feeds the promoter's trigger channel
	d.transition(t, seated.Reservation.ID, reservations.CommandMarkLeft)

	deadline := time.Now().Add(3 * time.Second)
	for {
		fresh, err := d.wlRepo.GetEntryByID(ctx, d.orgID, entry.ID)
		require.NoError(t, err)
		if fresh.Status == waitlist.StatusNotified {
			assert.NotNil(t, fresh.NotifiedAt)
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("entry still %s, expected NOTIFIED", fresh.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPromoterSweepCatchesMissedTrigger(t *testing.T) {
	d := setup(t)
	ctx := context.Background()
	d.table(t, "T1", 2)

	// Enqueue against an already-free table: no trigger ever fires, only the
	// sweep can find it.
	entry, err := d.svc.EnqueueWaitlist(ctx, d.orgID, EnqueueRequest{GuestName: "Waiting", PartySize: 2})
	require.NoError(t, err)

	promoter := NewPromoter(d.svc, d.wlRepo, &PromoterConfig{
		SweepInterval: 20 * time.Millisecond,
		TriggerBuffer: 8,
	})
	promoter.Start(ctx)
	defer promoter.Stop()

	deadline := time.Now().Add(3 * time.Second)
	for {
		fresh, err := d.wlRepo.GetEntryByID(ctx, d.orgID, entry.ID)
		require.NoError(t, err)
		if fresh.Status == waitlist.StatusNotified {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("sweep never promoted the entry, still %s", fresh.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPromoterTriggerNeverBlocks(t *testing.T) {
	d := setup(t)
	promoter := NewPromoter(d.svc, d.wlRepo, &PromoterConfig{
		SweepInterval: time.Hour,
		TriggerBuffer: 1,
	})
	// Not started: the buffer fills and further triggers must drop, not hang
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			promoter.TriggerFreed(d.orgID, d.orgID)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("TriggerFreed blocked on a full buffer")
	}
}
