package floor

import (
	"context"
	"errors"
	"fmt"

	"floorly/internal/assignment"
	"floorly/internal/guests"
	"floorly/internal/reservations"
	"floorly/internal/shared/faults"
	"floorly/internal/waitlist"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AssignResult is the outcome of a table assignment. NoFit means no
// assignable unit can hold the party; nothing was committed.
type AssignResult struct {
	NoFit    bool       `json:"no_fit"`
	TableID  *uuid.UUID `json:"table_id,omitempty"`
	GroupID  *uuid.UUID `json:"group_id,omitempty"`
	Name     string     `json:"name,omitempty"`
	Capacity int        `json:"capacity,omitempty"`
}

// SeatResult is the outcome of a seat-and-assign command (walk-ins and
// waitlist seating).
type SeatResult struct {
	NoFit       bool                      `json:"no_fit"`
	Reservation *reservations.Reservation `json:"reservation,omitempty"`
	Assignment  *AssignResult             `json:"assignment,omitempty"`
}

func assignResultFor(u *unit) *AssignResult {
	result := &AssignResult{Name: u.name, Capacity: u.capacity}
	if u.isGroup {
		id := u.id
		result.GroupID = &id
	} else {
		id := u.id
		result.TableID = &id
	}
	return result
}

// maxAssignAttempts bounds the score-lock-recheck loop when concurrent
// assignments keep winning candidates out from under us
const maxAssignAttempts = 3

func (s *service) AssignTable(ctx context.Context, orgID uuid.UUID, req AssignRequest) (*AssignResult, error) {
	if req.PartySize < 1 {
		return nil, faults.Validation("party size must be at least 1")
	}

	var reservation *reservations.Reservation
	if req.ReservationID != nil {
		reservationID, err := uuid.Parse(*req.ReservationID)
		if err != nil {
			return nil, faults.Validation("invalid reservation ID")
		}
		reservation, err = s.resRepo.GetReservationByID(ctx, orgID, reservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, faults.NotFound("reservation", *req.ReservationID)
			}
			return nil, fmt.Errorf("failed to load reservation: %w", err)
		}
		if reservation.Status.IsTerminal() {
			return nil, faults.InvalidTransition(reservation.Status.String(), "assign")
		}
	}

	u, release, err := s.claimUnit(ctx, orgID, req.PartySize, req.preferredID())
	if err != nil {
		return nil, err
	}
	if u == nil {
		return &AssignResult{NoFit: true}, nil
	}
	defer release()

	result := assignResultFor(u)

	if reservation != nil {
		reservation.TableID = result.TableID
		reservation.GroupID = result.GroupID
		if err := s.resRepo.SaveReservation(ctx, reservation); err != nil {
			return nil, fmt.Errorf("failed to save reservation: %w", err)
		}
		s.log.LogTableAssigned(ctx, u.id.String(), reservation.ID.String(), req.PartySize)
		s.publishReservationChanged(ctx, reservation)
	}

	return result, nil
}

// claimUnit picks the best-fitting assignable unit and returns it with its
// lock held. The caller commits the hold and releases. A nil unit with nil
// error means NoFit.
//
// Scoring runs against an unlocked snapshot, so the winner is re-derived
// after its lock is acquired; if another terminal took it in the gap the
// next-best candidate is tried, a bounded number of times.
func (s *service) claimUnit(ctx context.Context, orgID uuid.UUID, partySize int, preferredID *uuid.UUID) (*unit, func(), error) {
	now := s.nowFn()
	lookahead := s.cfg.Floor.ReservationLookahead

	if preferredID != nil {
		return s.claimPreferred(ctx, orgID, partySize, *preferredID)
	}

	excluded := make(map[uuid.UUID]bool)
	for attempt := 0; attempt < maxAssignAttempts; attempt++ {
		units, err := s.snapshot(ctx, orgID)
		if err != nil {
			return nil, nil, err
		}

		candidates := make([]assignment.Candidate, 0, len(units))
		byID := make(map[uuid.UUID]*unit, len(units))
		for i := range units {
			u := &units[i]
			if excluded[u.id] || !u.assignable(now, lookahead) {
				continue
			}
			byID[u.id] = u
			candidates = append(candidates, assignment.Candidate{
				ID:        u.id,
				IsGroup:   u.isGroup,
				Capacity:  u.capacity,
				CreatedAt: u.createdAt,
			})
		}

		winner, found := assignment.BestFit(candidates, partySize)
		if !found {
			return nil, nil, nil
		}
		picked := byID[winner.ID]

		release, err := s.acquire(ctx, orgID, picked.memberIDs...)
		if err != nil {
			return nil, nil, err
		}

		// Re-derive under the lock before committing
		fresh, err := s.refreshUnit(ctx, orgID, picked)
		if err != nil {
			release()
			return nil, nil, err
		}
		if fresh.assignable(s.nowFn(), lookahead) {
			return fresh, release, nil
		}

		release()
		excluded[picked.id] = true
	}

	return nil, nil, nil
}

// claimPreferred bypasses scoring: the requested unit is taken if it is
// assignable and large enough, otherwise TableUnavailable.
func (s *service) claimPreferred(ctx context.Context, orgID uuid.UUID, partySize int, tableID uuid.UUID) (*unit, func(), error) {
	table, err := s.tableRepo.GetTableByID(ctx, orgID, tableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, faults.NotFound("table", tableID.String())
		}
		return nil, nil, fmt.Errorf("failed to load table: %w", err)
	}

	u, err := s.unitForTable(ctx, orgID, table)
	if err != nil {
		return nil, nil, err
	}

	release, err := s.acquire(ctx, orgID, u.memberIDs...)
	if err != nil {
		return nil, nil, err
	}

	u, err = s.unitForTable(ctx, orgID, table)
	if err != nil {
		release()
		return nil, nil, err
	}
	if !u.assignable(s.nowFn(), s.cfg.Floor.ReservationLookahead) || u.capacity < partySize {
		release()
		return nil, nil, faults.TableUnavailable(u.id.String())
	}
	return u, release, nil
}

// refreshUnit re-reads a unit's state without changing its membership
func (s *service) refreshUnit(ctx context.Context, orgID uuid.UUID, u *unit) (*unit, error) {
	if u.isGroup {
		return s.unitForGroup(ctx, orgID, u.id)
	}
	table, err := s.tableRepo.GetTableByID(ctx, orgID, u.id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload table: %w", err)
	}
	return s.unitForTable(ctx, orgID, table)
}

func (s *service) SeatWalkIn(ctx context.Context, orgID uuid.UUID, req WalkInRequest) (*SeatResult, error) {
	if req.PartySize < 1 {
		return nil, faults.Validation("party size must be at least 1")
	}

	guestID, err := s.resolveGuest(ctx, orgID, req.GuestID, req.GuestName)
	if err != nil {
		return nil, err
	}

	u, release, err := s.claimUnit(ctx, orgID, req.PartySize, req.preferredID())
	if err != nil {
		return nil, err
	}
	if u == nil {
		return &SeatResult{NoFit: true}, nil
	}
	defer release()

	reservation, err := s.seatOnUnit(ctx, orgID, guestID, req.PartySize, req.Notes, u)
	if err != nil {
		return nil, err
	}

	return &SeatResult{Reservation: reservation, Assignment: assignResultFor(u)}, nil
}

// seatOnUnit creates a reservation already confirmed and seats it on the
// claimed unit in one step. The caller holds the unit lock.
func (s *service) seatOnUnit(ctx context.Context, orgID, guestID uuid.UUID, partySize int, notes string, u *unit) (*reservations.Reservation, error) {
	now := s.nowFn()
	reservation := &reservations.Reservation{
		OrgID:       orgID,
		GuestID:     guestID,
		PartySize:   partySize,
		ScheduledAt: now,
		Status:      reservations.StatusEnquiry,
		Notes:       notes,
	}
	if u.isGroup {
		id := u.id
		reservation.GroupID = &id
	} else {
		id := u.id
		reservation.TableID = &id
	}

	if _, ok := reservation.Apply(reservations.CommandConfirm, now); !ok {
		return nil, faults.InvalidTransition(reservation.Status.String(), reservations.CommandConfirm.String())
	}
	if _, ok := reservation.Apply(reservations.CommandSeat, now); !ok {
		return nil, faults.InvalidTransition(reservation.Status.String(), reservations.CommandSeat.String())
	}

	if err := s.resRepo.CreateReservation(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	s.log.LogTableAssigned(ctx, u.id.String(), reservation.ID.String(), partySize)
	s.publishReservationChanged(ctx, reservation)
	return reservation, nil
}

// resolveGuest returns an existing guest or registers a minimal record for a
// first-time walk-in.
func (s *service) resolveGuest(ctx context.Context, orgID uuid.UUID, guestIDRaw *string, name string) (uuid.UUID, error) {
	if guestIDRaw != nil {
		guestID, err := uuid.Parse(*guestIDRaw)
		if err != nil {
			return uuid.Nil, faults.Validation("invalid guest ID")
		}
		if _, err := s.guestRepo.GetGuestByID(ctx, orgID, guestID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return uuid.Nil, faults.NotFound("guest", *guestIDRaw)
			}
			return uuid.Nil, fmt.Errorf("failed to load guest: %w", err)
		}
		return guestID, nil
	}

	if name == "" {
		return uuid.Nil, faults.Validation("guest name is required for walk-ins")
	}
	guest := &guests.Guest{OrgID: orgID, Name: name}
	if err := s.guestRepo.CreateGuest(ctx, guest); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create guest: %w", err)
	}
	return guest.ID, nil
}

func (s *service) SeatWaitlist(ctx context.Context, orgID, entryID uuid.UUID, preferredTableID *uuid.UUID) (*SeatResult, error) {
	entry, err := s.wlRepo.GetEntryByID(ctx, orgID, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.NotFound("waitlist entry", entryID.String())
		}
		return nil, fmt.Errorf("failed to load waitlist entry: %w", err)
	}
	if !entry.Status.CanTransitionTo(waitlist.StatusSeated) {
		return nil, faults.InvalidTransition(entry.Status.String(), "seat")
	}

	u, release, err := s.claimUnit(ctx, orgID, entry.PartySize, preferredTableID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return &SeatResult{NoFit: true}, nil
	}
	defer release()

	var guestIDRaw *string
	if entry.GuestID != nil {
		raw := entry.GuestID.String()
		guestIDRaw = &raw
	}
	guestID, err := s.resolveGuest(ctx, orgID, guestIDRaw, entry.GuestName)
	if err != nil {
		return nil, err
	}

	// Claim the entry before committing the seat: the conditional flip is
	// what stops two terminals seating the same party on different tables
	prior := *entry
	entry, err = s.wlRepo.ClaimTransition(ctx, orgID, entryID, waitlist.StatusSeated, s.nowFn())
	if err != nil {
		return nil, fmt.Errorf("failed to claim waitlist entry: %w", err)
	}
	if entry == nil {
		current, loadErr := s.loadEntry(ctx, orgID, entryID)
		if loadErr != nil {
			return nil, loadErr
		}
		return nil, faults.InvalidTransition(current.Status.String(), "seat")
	}

	reservation, err := s.seatOnUnit(ctx, orgID, guestID, entry.PartySize, "", u)
	if err != nil {
		if revertErr := s.wlRepo.SaveEntry(ctx, &prior); revertErr != nil {
			s.log.ErrorWithContext(ctx, "failed to restore waitlist entry after seat failure", revertErr, map[string]interface{}{
				"entry_id": entryID.String(),
			})
		}
		return nil, err
	}

	return &SeatResult{Reservation: reservation, Assignment: assignResultFor(u)}, nil
}
