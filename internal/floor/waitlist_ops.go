package floor

import (
	"context"
	"errors"
	"fmt"

	"floorly/internal/broadcast"
	"floorly/internal/shared/faults"
	"floorly/internal/waitlist"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *service) EnqueueWaitlist(ctx context.Context, orgID uuid.UUID, req EnqueueRequest) (*waitlist.Entry, error) {
	if req.PartySize < 1 {
		return nil, faults.Validation("party size must be at least 1")
	}
	if req.GuestName == "" && req.GuestID == nil {
		return nil, faults.Validation("guest name or guest ID is required")
	}

	entry := &waitlist.Entry{
		OrgID:     orgID,
		GuestName: req.GuestName,
		PartySize: req.PartySize,
		Status:    waitlist.StatusWaiting,
	}
	if req.GuestID != nil {
		guestID, err := uuid.Parse(*req.GuestID)
		if err != nil {
			return nil, faults.Validation("invalid guest ID")
		}
		entry.GuestID = &guestID
	}

	estimate, err := s.estimateWait(ctx, orgID, req.PartySize)
	if err != nil {
		return nil, err
	}
	entry.EstimatedWaitMinutes = estimate

	if err := s.wlRepo.CreateEntry(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create waitlist entry: %w", err)
	}
	return entry, nil
}

// estimateWait counts units mid-service that could hold the party and
// projects forward by the average turn time.
func (s *service) estimateWait(ctx context.Context, orgID uuid.UUID, partySize int) (int, error) {
	units, err := s.snapshot(ctx, orgID)
	if err != nil {
		return 0, err
	}

	now := s.nowFn()
	lookahead := s.cfg.Floor.ReservationLookahead
	occupiedFitting := 0
	for i := range units {
		u := &units[i]
		if u.capacity >= partySize && u.derived(now, lookahead).MidService() {
			occupiedFitting++
		}
	}

	return waitlist.EstimateWait(occupiedFitting, s.cfg.Floor.AverageTurnDuration, s.cfg.Floor.ExpectedConcurrentFrees), nil
}

func (s *service) NotifyWaitlist(ctx context.Context, orgID, entryID uuid.UUID) (*waitlist.Entry, error) {
	entry, err := s.claimEntry(ctx, orgID, entryID, waitlist.StatusNotified, "notify")
	if err != nil {
		return nil, err
	}
	s.publishWaitlistPromoted(ctx, entry, nil)
	return entry, nil
}

func (s *service) LeaveWaitlist(ctx context.Context, orgID, entryID uuid.UUID) (*waitlist.Entry, error) {
	return s.claimEntry(ctx, orgID, entryID, waitlist.StatusLeft, "leave")
}

// claimEntry flips an entry's status through the repository's conditional
// update, so a concurrent writer loses cleanly instead of overwriting.
func (s *service) claimEntry(ctx context.Context, orgID, entryID uuid.UUID, target waitlist.Status, verb string) (*waitlist.Entry, error) {
	entry, err := s.wlRepo.ClaimTransition(ctx, orgID, entryID, target, s.nowFn())
	if err != nil {
		return nil, fmt.Errorf("failed to update waitlist entry: %w", err)
	}
	if entry == nil {
		current, loadErr := s.loadEntry(ctx, orgID, entryID)
		if loadErr != nil {
			return nil, loadErr
		}
		return nil, faults.InvalidTransition(current.Status.String(), verb)
	}
	return entry, nil
}

func (s *service) loadEntry(ctx context.Context, orgID, entryID uuid.UUID) (*waitlist.Entry, error) {
	entry, err := s.wlRepo.GetEntryByID(ctx, orgID, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.NotFound("waitlist entry", entryID.String())
		}
		return nil, fmt.Errorf("failed to load waitlist entry: %w", err)
	}
	return entry, nil
}

// PromoteFreedTable offers a freed unit to the earliest waiting entry the
// unit can hold. Runs under the unit lock so a racing walk-in and a
// promotion cannot both take the table, and the WAITING -> NOTIFIED flip
// guarantees an entry is offered at most once per table freed.
func (s *service) PromoteFreedTable(ctx context.Context, orgID, tableID uuid.UUID) (bool, error) {
	u, err := s.resolveUnit(ctx, orgID, tableID)
	if err != nil {
		if faults.IsKind(err, faults.KindNotFound) {
			return false, nil
		}
		return false, err
	}

	release, err := s.acquire(ctx, orgID, u.memberIDs...)
	if err != nil {
		return false, err
	}
	defer release()

	u, err = s.refreshUnit(ctx, orgID, u)
	if err != nil {
		return false, err
	}
	if !u.assignable(s.nowFn(), s.cfg.Floor.ReservationLookahead) {
		return false, nil
	}

	// Another promoter instance may claim the same entry first; each lost
	// claim means that entry left WAITING, so retrying the pick terminates
	for {
		entry, err := s.wlRepo.NextFitting(ctx, orgID, u.capacity)
		if err != nil {
			return false, fmt.Errorf("failed to find fitting waitlist entry: %w", err)
		}
		if entry == nil {
			return false, nil
		}

		claimed, err := s.wlRepo.ClaimTransition(ctx, orgID, entry.ID, waitlist.StatusNotified, s.nowFn())
		if err != nil {
			return false, fmt.Errorf("failed to claim waitlist entry: %w", err)
		}
		if claimed == nil {
			continue
		}

		s.log.LogWaitlistPromoted(ctx, claimed.ID.String(), u.id.String())
		s.publishWaitlistPromoted(ctx, claimed, &u.id)
		return true, nil
	}
}

// resolveUnit accepts either a table ID or a group ID and returns the unit
func (s *service) resolveUnit(ctx context.Context, orgID, id uuid.UUID) (*unit, error) {
	table, err := s.tableRepo.GetTableByID(ctx, orgID, id)
	if err == nil {
		return s.unitForTable(ctx, orgID, table)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load table: %w", err)
	}
	return s.unitForGroup(ctx, orgID, id)
}

func (s *service) publishWaitlistPromoted(ctx context.Context, entry *waitlist.Entry, unitID *uuid.UUID) {
	event := broadcast.NewEvent(broadcast.EventWaitlistPromoted, entry.OrgID)
	event.WaitlistID = &entry.ID
	event.TableID = unitID
	event.NewStatus = entry.Status.String()
	s.publish(ctx, event)
}
