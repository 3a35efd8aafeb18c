package floor

import (
	"context"
	"errors"
	"fmt"
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
	"gorm.io/gorm"
)

// Service is the single entry point external callers use. Every mutation is
// applied under the per-table lock of the unit it touches: acquire, re-derive
// status, apply, persist, release, publish. State is never left half
// transitioned; a command either commits fully or reports a typed fault.
type Service interface {
	// Reservations
	CreateReservation(ctx context.Context, orgID uuid.UUID, req CreateReservationRequest) (*reservations.Reservation, error)
	Transition(ctx context.Context, orgID, reservationID uuid.UUID, cmd reservations.Command) (*reservations.Reservation, error)
	EditReservation(ctx context.Context, orgID, reservationID uuid.UUID, req EditReservationRequest) (*reservations.Reservation, error)

	// Assignment and walk-ins
	AssignTable(ctx context.Context, orgID uuid.UUID, req AssignRequest) (*AssignResult, error)
	SeatWalkIn(ctx context.Context, orgID uuid.UUID, req WalkInRequest) (*SeatResult, error)

	// Table registry
	BlockTable(ctx context.Context, orgID, tableID uuid.UUID) (*TableStatusView, error)
	UnblockTable(ctx context.Context, orgID, tableID uuid.UUID) (*TableStatusView, error)
	CombineTables(ctx context.Context, orgID uuid.UUID, tableIDs []uuid.UUID) (*tables.CombinedGroup, error)
	UncombineTables(ctx context.Context, orgID, groupID uuid.UUID) error

	// Waitlist
	EnqueueWaitlist(ctx context.Context, orgID uuid.UUID, req EnqueueRequest) (*waitlist.Entry, error)
	NotifyWaitlist(ctx context.Context, orgID, entryID uuid.UUID) (*waitlist.Entry, error)
	SeatWaitlist(ctx context.Context, orgID, entryID uuid.UUID, preferredTableID *uuid.UUID) (*SeatResult, error)
	LeaveWaitlist(ctx context.Context, orgID, entryID uuid.UUID) (*waitlist.Entry, error)

	// PromoteFreedTable offers a freed table to the earliest fitting waitlist
	// entry. Called by the background promoter, never inline with the
	// transition that freed the table.
	PromoteFreedTable(ctx context.Context, orgID, tableID uuid.UUID) (bool, error)

	// Queries
	GetReservation(ctx context.Context, orgID, reservationID uuid.UUID) (*reservations.Reservation, error)
	TableStatus(ctx context.Context, orgID, tableID uuid.UUID) (*TableStatusView, error)
	FloorStatus(ctx context.Context, orgID uuid.UUID) ([]TableStatusView, error)
	ListReservations(ctx context.Context, orgID uuid.UUID, query reservations.ListQuery) ([]reservations.Reservation, int64, error)
	ListWaitlist(ctx context.Context, orgID uuid.UUID) ([]waitlist.Entry, error)

	// SetFreedHook registers the promoter's trigger for table-freed events
	SetFreedHook(hook func(orgID, tableID uuid.UUID))
}

// TableStatusView pairs a table with its derived status and, when occupied,
// the reservation occupying it. Overdue flags a confirmed party past its
// reserved time plus the grace window, the cue for staff to mark a no-show.
type TableStatusView struct {
	Table       tables.Table              `json:"table"`
	Status      tables.DerivedStatus      `json:"status"`
	Reservation *reservations.Reservation `json:"reservation,omitempty"`
	GroupID     *uuid.UUID                `json:"group_id,omitempty"`
	Capacity    int                       `json:"capacity"`
	Overdue     bool                      `json:"overdue,omitempty"`
}

// overdue reports whether a confirmed reservation has outstayed its grace window
func (s *service) overdue(active *reservations.Reservation, now time.Time) bool {
	return active != nil &&
		active.Status == reservations.StatusConfirmed &&
		now.After(active.ScheduledAt.Add(s.cfg.Floor.ReservationGraceWindow))
}

type service struct {
	tableRepo tables.Repository
	resRepo   reservations.Repository
	wlRepo    waitlist.Repository
	guestRepo guests.Repository
	locks     locker.Locker
	publisher broadcast.Publisher
	cfg       *config.Config
	log       *logger.Logger

	nowFn     func() time.Time
	freedHook func(orgID, tableID uuid.UUID)
}

// NewService wires the floor engine together
func NewService(
	tableRepo tables.Repository,
	resRepo reservations.Repository,
	wlRepo waitlist.Repository,
	guestRepo guests.Repository,
	locks locker.Locker,
	publisher broadcast.Publisher,
	cfg *config.Config,
) Service {
	return &service{
		tableRepo: tableRepo,
		resRepo:   resRepo,
		wlRepo:    wlRepo,
		guestRepo: guestRepo,
		locks:     locks,
		publisher: publisher,
		cfg:       cfg,
		log:       logger.GetDefault(),
		nowFn:     time.Now,
	}
}

func (s *service) SetFreedHook(hook func(orgID, tableID uuid.UUID)) {
	s.freedHook = hook
}

// SetClock overrides the engine's time source
func SetClock(svc Service, now func() time.Time) {
	if impl, ok := svc.(*service); ok {
		impl.nowFn = now
	}
}

//  UNITS AND DERIVATION

// unit is a lockable, assignable slice of the floor: a lone table or a whole
// combined group.
type unit struct {
	id        uuid.UUID
	isGroup   bool
	name      string
	capacity  int
	createdAt time.Time
	blocked   bool
	active    *reservations.Reservation
	memberIDs []uuid.UUID
}

func (u *unit) derived(now time.Time, lookahead time.Duration) tables.DerivedStatus {
	return tables.Derive(u.blocked, u.active, now, lookahead)
}

// assignable reports whether the unit can take a new party. A table whose
// confirmed reservation is hours away derives AVAILABLE on the floor display,
// but it is still held: at most one non-terminal reservation may reference a
// unit at a time.
func (u *unit) assignable(now time.Time, lookahead time.Duration) bool {
	return u.active == nil && u.derived(now, lookahead) == tables.StatusAvailable
}

// unitForTable resolves the unit a table belongs to: the table itself, or its
// combined group with every member loaded.
func (s *service) unitForTable(ctx context.Context, orgID uuid.UUID, table *tables.Table) (*unit, error) {
	if !table.InGroup() {
		active, err := s.resRepo.GetActiveByTableID(ctx, orgID, table.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up active reservation: %w", err)
		}
		return &unit{
			id:        table.ID,
			name:      table.Name,
			capacity:  table.Capacity,
			createdAt: table.CreatedAt,
			blocked:   table.Blocked,
			active:    active,
			memberIDs: []uuid.UUID{table.ID},
		}, nil
	}

	return s.unitForGroup(ctx, orgID, *table.GroupID)
}

func (s *service) unitForGroup(ctx context.Context, orgID, groupID uuid.UUID) (*unit, error) {
	group, err := s.tableRepo.GetGroupByID(ctx, orgID, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.NotFound("combined group", groupID.String())
		}
		return nil, fmt.Errorf("failed to load combined group: %w", err)
	}

	active, err := s.resRepo.GetActiveByGroupID(ctx, orgID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up active reservation: %w", err)
	}

	u := &unit{
		id:        group.ID,
		isGroup:   true,
		capacity:  group.Capacity,
		createdAt: group.CreatedAt,
		active:    active,
	}
	for _, member := range group.Tables {
		u.memberIDs = append(u.memberIDs, member.ID)
		u.blocked = u.blocked || member.Blocked
		if u.name != "" {
			u.name += "+"
		}
		u.name += member.Name
	}
	return u, nil
}

// snapshot builds all units of a floor with their active reservations in
// three reads. Assignment scores against this consistent view; the winner is
// re-checked under its lock before commit.
func (s *service) snapshot(ctx context.Context, orgID uuid.UUID) ([]unit, error) {
	allTables, err := s.tableRepo.ListTables(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	groups, err := s.tableRepo.ListGroups(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list combined groups: %w", err)
	}
	active, err := s.resRepo.ListActive(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active reservations: %w", err)
	}

	byTable := make(map[uuid.UUID]*reservations.Reservation)
	byGroup := make(map[uuid.UUID]*reservations.Reservation)
	for i := range active {
		r := &active[i]
		if r.TableID != nil {
			byTable[*r.TableID] = r
		}
		if r.GroupID != nil {
			byGroup[*r.GroupID] = r
		}
	}

	units := make([]unit, 0, len(allTables)+len(groups))
	for _, t := range allTables {
		if t.InGroup() {
			continue
		}
		units = append(units, unit{
			id:        t.ID,
			name:      t.Name,
			capacity:  t.Capacity,
			createdAt: t.CreatedAt,
			blocked:   t.Blocked,
			active:    byTable[t.ID],
			memberIDs: []uuid.UUID{t.ID},
		})
	}
	for _, g := range groups {
		u := unit{
			id:        g.ID,
			isGroup:   true,
			capacity:  g.Capacity,
			createdAt: g.CreatedAt,
			active:    byGroup[g.ID],
		}
		for _, member := range g.Tables {
			u.memberIDs = append(u.memberIDs, member.ID)
			u.blocked = u.blocked || member.Blocked
			if u.name != "" {
				u.name += "+"
			}
			u.name += member.Name
		}
		units = append(units, u)
	}
	return units, nil
}

//  LOCKING AND EVENTS

// acquire wraps the locker and translates its timeout into a Contended fault
func (s *service) acquire(ctx context.Context, orgID uuid.UUID, ids ...uuid.UUID) (func(), error) {
	release, err := s.locks.Acquire(ctx, orgID, ids...)
	if err != nil {
		if errors.Is(err, locker.ErrContended) {
			s.log.LogLockContention(ctx, ids[0].String(), s.cfg.Floor.LockTimeout)
			return nil, faults.Contended(ids[0].String())
		}
		return nil, fmt.Errorf("failed to acquire table lock: %w", err)
	}
	return release, nil
}

// publish emits a domain event after commit. A broadcast failure never rolls
// back the already-committed state change; it is logged and the poll-based
// consumers catch up.
func (s *service) publish(ctx context.Context, event broadcast.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.ErrorWithContext(ctx, "failed to publish floor event", err, map[string]interface{}{
			"type": string(event.Type),
		})
	}
}

func (s *service) publishReservationChanged(ctx context.Context, r *reservations.Reservation) {
	event := broadcast.NewEvent(broadcast.EventReservationChanged, r.OrgID)
	event.ReservationID = &r.ID
	event.TableID = r.TableID
	event.GroupID = r.GroupID
	event.NewStatus = r.Status.String()
	s.publish(ctx, event)
}

func (s *service) publishTableFreed(ctx context.Context, orgID uuid.UUID, reservationID uuid.UUID, tableID, groupID *uuid.UUID) {
	event := broadcast.NewEvent(broadcast.EventTableFreed, orgID)
	event.ReservationID = &reservationID
	event.TableID = tableID
	event.GroupID = groupID
	s.publish(ctx, event)

	freed := tableID
	if freed == nil {
		freed = groupID
	}
	if freed != nil {
		s.log.LogTableFreed(ctx, freed.String(), reservationID.String())
		if s.freedHook != nil {
			s.freedHook(orgID, *freed)
		}
	}
}

//  RESERVATIONS

func (s *service) CreateReservation(ctx context.Context, orgID uuid.UUID, req CreateReservationRequest) (*reservations.Reservation, error) {
	if req.PartySize < 1 {
		return nil, faults.Validation("party size must be at least 1")
	}

	guestID, err := uuid.Parse(req.GuestID)
	if err != nil {
		return nil, faults.Validation("invalid guest ID")
	}
	if _, err := s.guestRepo.GetGuestByID(ctx, orgID, guestID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.NotFound("guest", req.GuestID)
		}
		return nil, fmt.Errorf("failed to load guest: %w", err)
	}

	reservation := &reservations.Reservation{
		OrgID:       orgID,
		GuestID:     guestID,
		PartySize:   req.PartySize,
		ScheduledAt: req.ScheduledAt,
		Status:      reservations.StatusEnquiry,
		Notes:       req.Notes,
	}

	if req.TableID != nil {
		tableID, err := uuid.Parse(*req.TableID)
		if err != nil {
			return nil, faults.Validation("invalid table ID")
		}
		if err := s.attachTable(ctx, orgID, reservation, tableID); err != nil {
			return nil, err
		}
	} else if err := s.resRepo.CreateReservation(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	s.publishReservationChanged(ctx, reservation)
	return reservation, nil
}

// attachTable locks a unit, re-checks its availability and commits the hold,
// creating or saving the reservation inside the lock window.
func (s *service) attachTable(ctx context.Context, orgID uuid.UUID, reservation *reservations.Reservation, tableID uuid.UUID) error {
	table, err := s.tableRepo.GetTableByID(ctx, orgID, tableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return faults.NotFound("table", tableID.String())
		}
		return fmt.Errorf("failed to load table: %w", err)
	}

	u, err := s.unitForTable(ctx, orgID, table)
	if err != nil {
		return err
	}

	release, err := s.acquire(ctx, orgID, u.memberIDs...)
	if err != nil {
		return err
	}
	defer release()

	return s.attachTableLocked(ctx, orgID, reservation, tableID)
}

// attachTableLocked re-checks the unit's availability and commits the hold.
// The caller holds the unit lock; the read below raced other terminals only
// up to the acquire.
func (s *service) attachTableLocked(ctx context.Context, orgID uuid.UUID, reservation *reservations.Reservation, tableID uuid.UUID) error {
	table, err := s.tableRepo.GetTableByID(ctx, orgID, tableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return faults.NotFound("table", tableID.String())
		}
		return fmt.Errorf("failed to load table: %w", err)
	}

	u, err := s.unitForTable(ctx, orgID, table)
	if err != nil {
		return err
	}
	// A reservation moving within its own unit does not block itself
	if u.active != nil && u.active.ID == reservation.ID {
		u.active = nil
	}
	if !u.assignable(s.nowFn(), s.cfg.Floor.ReservationLookahead) {
		return faults.TableUnavailable(u.id.String())
	}
	if u.capacity < reservation.PartySize {
		return faults.TableUnavailable(u.id.String())
	}

	if u.isGroup {
		reservation.TableID = nil
		reservation.GroupID = &u.id
	} else {
		reservation.TableID = &u.id
		reservation.GroupID = nil
	}

	if reservation.ID == uuid.Nil {
		if err := s.resRepo.CreateReservation(ctx, reservation); err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return nil
	}
	if err := s.resRepo.SaveReservation(ctx, reservation); err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

func (s *service) Transition(ctx context.Context, orgID, reservationID uuid.UUID, cmd reservations.Command) (*reservations.Reservation, error) {
	if !cmd.IsValid() {
		return nil, faults.Validation(fmt.Sprintf("unknown command %q", cmd))
	}

	reservation, err := s.resRepo.GetReservationByID(ctx, orgID, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.NotFound("reservation", reservationID.String())
		}
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}

	// Serialize against the held unit when there is one
	if reservation.HoldsTable() {
		lockIDs, err := s.heldLockIDs(ctx, orgID, reservation)
		if err != nil {
			return nil, err
		}
		release, err := s.acquire(ctx, orgID, lockIDs...)
		if err != nil {
			return nil, err
		}
		defer release()

		// Reload under the lock
		reservation, err = s.resRepo.GetReservationByID(ctx, orgID, reservationID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload reservation: %w", err)
		}
	}

	return s.applyTransition(ctx, reservation, cmd)
}

// heldLockIDs resolves the lock set for the unit a reservation holds
func (s *service) heldLockIDs(ctx context.Context, orgID uuid.UUID, reservation *reservations.Reservation) ([]uuid.UUID, error) {
	if reservation.GroupID != nil {
		u, err := s.unitForGroup(ctx, orgID, *reservation.GroupID)
		if err != nil {
			return nil, err
		}
		return u.memberIDs, nil
	}
	return []uuid.UUID{*reservation.TableID}, nil
}

// applyTransition runs the state machine step, persists, updates guest
// counters and emits events. Callers hold the unit lock when one is needed.
func (s *service) applyTransition(ctx context.Context, reservation *reservations.Reservation, cmd reservations.Command) (*reservations.Reservation, error) {
	from := reservation.Status

	if cmd == reservations.CommandSeat && !reservation.HoldsTable() {
		return nil, faults.Validation("reservation has no table assigned; assign one first")
	}

	now := s.nowFn()
	next, ok := reservation.Apply(cmd, now)
	if !ok {
		return nil, faults.InvalidTransition(from.String(), cmd.String())
	}

	freedTable := reservation.TableID
	freedGroup := reservation.GroupID
	released := cmd.ReleasesTable() && reservation.HoldsTable()
	if released {
		reservation.ReleaseTable()
	}

	if err := s.resRepo.SaveReservation(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to save reservation: %w", err)
	}

	// Guest counters: visits on completion, no-shows on the side exit
	switch next {
	case reservations.StatusCompleted:
		if err := s.guestRepo.IncrementVisitCount(ctx, reservation.OrgID, reservation.GuestID); err != nil {
			s.log.ErrorWithContext(ctx, "failed to increment visit count", err, map[string]interface{}{
				"guest_id": reservation.GuestID.String(),
			})
		}
	case reservations.StatusNoShow:
		if err := s.guestRepo.IncrementNoShowCount(ctx, reservation.OrgID, reservation.GuestID); err != nil {
			s.log.ErrorWithContext(ctx, "failed to increment no-show count", err, map[string]interface{}{
				"guest_id": reservation.GuestID.String(),
			})
		}
	}

	s.log.LogReservationTransition(ctx, reservation.ID.String(), from.String(), next.String())
	s.publishReservationChanged(ctx, reservation)
	if released {
		s.publishTableFreed(ctx, reservation.OrgID, reservation.ID, freedTable, freedGroup)
	}

	return reservation, nil
}

func (s *service) EditReservation(ctx context.Context, orgID, reservationID uuid.UUID, req EditReservationRequest) (*reservations.Reservation, error) {
	reservation, err := s.resRepo.GetReservationByID(ctx, orgID, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.NotFound("reservation", reservationID.String())
		}
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}

	if !reservation.Status.CanEdit() {
		return nil, faults.InvalidTransition(reservation.Status.String(), "edit")
	}

	var newTableID *uuid.UUID
	if req.TableID != nil {
		id, err := uuid.Parse(*req.TableID)
		if err != nil {
			return nil, faults.Validation("invalid table ID")
		}
		newTableID = &id
	}

	// Serialize against the held unit and the target unit, then reload so
	// the edit cannot write back a row a concurrent transition outdated
	lockIDs, err := s.editLockIDs(ctx, orgID, reservation, newTableID)
	if err != nil {
		return nil, err
	}
	if len(lockIDs) > 0 {
		release, err := s.acquire(ctx, orgID, lockIDs...)
		if err != nil {
			return nil, err
		}
		defer release()

		reservation, err = s.resRepo.GetReservationByID(ctx, orgID, reservationID)
		if err != nil {
			return nil, fmt.Errorf("failed to reload reservation: %w", err)
		}
		if !reservation.Status.CanEdit() {
			return nil, faults.InvalidTransition(reservation.Status.String(), "edit")
		}
	}

	if req.PartySize != nil {
		if *req.PartySize < 1 {
			return nil, faults.Validation("party size must be at least 1")
		}
		reservation.PartySize = *req.PartySize
	}
	if req.ScheduledAt != nil {
		reservation.ScheduledAt = *req.ScheduledAt
	}
	if req.Notes != nil {
		reservation.Notes = *req.Notes
	}

	// Table change re-runs the availability check against the new unit
	if newTableID != nil {
		oldTableID, oldGroupID := reservation.TableID, reservation.GroupID
		reservation.ReleaseTable()
		if err := s.attachTableLocked(ctx, orgID, reservation, *newTableID); err != nil {
			return nil, err
		}
		if movedOff(oldTableID, oldGroupID, reservation) {
			s.publishTableFreed(ctx, orgID, reservation.ID, oldTableID, oldGroupID)
		}
	} else if err := s.resRepo.SaveReservation(ctx, reservation); err != nil {
		return nil, fmt.Errorf("failed to save reservation: %w", err)
	}

	s.publishReservationChanged(ctx, reservation)
	return reservation, nil
}

// editLockIDs collects the member tables of both the unit a reservation
// holds and the unit it is moving to, in one deduplicated set so a single
// ordered acquire covers the whole edit.
func (s *service) editLockIDs(ctx context.Context, orgID uuid.UUID, reservation *reservations.Reservation, newTableID *uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID

	if reservation.HoldsTable() {
		held, err := s.heldLockIDs(ctx, orgID, reservation)
		if err != nil {
			return nil, err
		}
		for _, id := range held {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	if newTableID != nil {
		table, err := s.tableRepo.GetTableByID(ctx, orgID, *newTableID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, faults.NotFound("table", newTableID.String())
			}
			return nil, fmt.Errorf("failed to load table: %w", err)
		}
		u, err := s.unitForTable(ctx, orgID, table)
		if err != nil {
			return nil, err
		}
		for _, id := range u.memberIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	return ids, nil
}

// movedOff reports whether a reservation left the unit it previously held
func movedOff(oldTableID, oldGroupID *uuid.UUID, r *reservations.Reservation) bool {
	if oldTableID == nil && oldGroupID == nil {
		return false
	}
	if oldTableID != nil && r.TableID != nil && *oldTableID == *r.TableID {
		return false
	}
	if oldGroupID != nil && r.GroupID != nil && *oldGroupID == *r.GroupID {
		return false
	}
	return true
}

//  QUERIES

func (s *service) TableStatus(ctx context.Context, orgID, tableID uuid.UUID) (*TableStatusView, error) {
	table, err := s.tableRepo.GetTableByID(ctx, orgID, tableID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.NotFound("table", tableID.String())
		}
		return nil, fmt.Errorf("failed to load table: %w", err)
	}

	u, err := s.unitForTable(ctx, orgID, table)
	if err != nil {
		return nil, err
	}

	now := s.nowFn()
	view := &TableStatusView{
		Table:       *table,
		Status:      u.derived(now, s.cfg.Floor.ReservationLookahead),
		Reservation: u.active,
		GroupID:     table.GroupID,
		Capacity:    u.capacity,
		Overdue:     s.overdue(u.active, now),
	}
	return view, nil
}

func (s *service) FloorStatus(ctx context.Context, orgID uuid.UUID) ([]TableStatusView, error) {
	allTables, err := s.tableRepo.ListTables(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	units, err := s.snapshot(ctx, orgID)
	if err != nil {
		return nil, err
	}

	// Index unit state by member table so grouped tables report uniformly
	type unitState struct {
		status   tables.DerivedStatus
		active   *reservations.Reservation
		capacity int
		overdue  bool
	}
	now := s.nowFn()
	lookahead := s.cfg.Floor.ReservationLookahead
	byTable := make(map[uuid.UUID]unitState)
	for i := range units {
		u := &units[i]
		state := unitState{
			status:   u.derived(now, lookahead),
			active:   u.active,
			capacity: u.capacity,
			overdue:  s.overdue(u.active, now),
		}
		for _, memberID := range u.memberIDs {
			byTable[memberID] = state
		}
	}

	views := make([]TableStatusView, 0, len(allTables))
	for _, t := range allTables {
		state := byTable[t.ID]
		views = append(views, TableStatusView{
			Table:       t,
			Status:      state.status,
			Reservation: state.active,
			GroupID:     t.GroupID,
			Capacity:    state.capacity,
			Overdue:     state.overdue,
		})
	}
	return views, nil
}

func (s *service) GetReservation(ctx context.Context, orgID, reservationID uuid.UUID) (*reservations.Reservation, error) {
	reservation, err := s.resRepo.GetReservationByID(ctx, orgID, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, faults.NotFound("reservation", reservationID.String())
		}
		return nil, fmt.Errorf("failed to load reservation: %w", err)
	}
	return reservation, nil
}

func (s *service) ListReservations(ctx context.Context, orgID uuid.UUID, query reservations.ListQuery) ([]reservations.Reservation, int64, error) {
	return s.resRepo.ListReservations(ctx, orgID, query)
}

func (s *service) ListWaitlist(ctx context.Context, orgID uuid.UUID) ([]waitlist.Entry, error) {
	return s.wlRepo.ListOpen(ctx, orgID)
}
