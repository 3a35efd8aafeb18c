package floor

import (
	"context"
	"errors"
	"fmt"

	"floorly/internal/shared/faults"
	"floorly/internal/tables"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *service) BlockTable(ctx context.Context, orgID, tableID uuid.UUID) (*TableStatusView, error) {
	return s.setBlocked(ctx, orgID, tableID, true)
}

func (s *service) UnblockTable(ctx context.Context, orgID, tableID uuid.UUID) (*TableStatusView, error) {
	return s.setBlocked(ctx, orgID, tableID, false)
}

// setBlocked flips the block flag under the unit lock. A table mid-service
// cannot be blocked or unblocked; the party has to finish first.
func (s *service) setBlocked(ctx context.Context, orgID, tableID uuid.UUID, blocked bool) (*TableStatusView, error) {
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

	release, err := s.acquire(ctx, orgID, u.memberIDs...)
	if err != nil {
		return nil, err
	}
	defer release()

	u, err = s.unitForTable(ctx, orgID, table)
	if err != nil {
		return nil, err
	}
	if u.derived(s.nowFn(), s.cfg.Floor.ReservationLookahead).MidService() {
		return nil, faults.TableOccupied(tableID.String())
	}

	if err := s.tableRepo.SetBlocked(ctx, orgID, tableID, blocked); err != nil {
		return nil, fmt.Errorf("failed to update block flag: %w", err)
	}

	return s.TableStatus(ctx, orgID, tableID)
}

func (s *service) CombineTables(ctx context.Context, orgID uuid.UUID, tableIDs []uuid.UUID) (*tables.CombinedGroup, error) {
	if len(tableIDs) < 2 {
		return nil, faults.Validation("combining requires at least two tables")
	}
	seen := make(map[uuid.UUID]bool, len(tableIDs))
	for _, id := range tableIDs {
		if seen[id] {
			return nil, faults.Validation("duplicate table in combine request")
		}
		seen[id] = true
	}

	members, err := s.tableRepo.GetTablesByIDs(ctx, orgID, tableIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}
	if len(members) != len(tableIDs) {
		return nil, faults.NotFound("table", "one or more combine members")
	}

	release, err := s.acquire(ctx, orgID, tableIDs...)
	if err != nil {
		return nil, err
	}
	defer release()

	// Every member must be a free-standing, assignable table
	capacity := 0
	now := s.nowFn()
	lookahead := s.cfg.Floor.ReservationLookahead
	for i := range members {
		member := &members[i]
		if member.InGroup() {
			return nil, faults.TableUnavailable(member.ID.String())
		}
		u, err := s.unitForTable(ctx, orgID, member)
		if err != nil {
			return nil, err
		}
		if !u.assignable(now, lookahead) {
			return nil, faults.TableUnavailable(member.ID.String())
		}
		capacity += member.Capacity
	}

	group := &tables.CombinedGroup{
		OrgID:    orgID,
		Capacity: capacity,
	}
	if err := s.tableRepo.CreateGroup(ctx, group, tableIDs); err != nil {
		if errors.Is(err, gorm.ErrInvalidData) {
			return nil, faults.TableUnavailable("combine member already grouped")
		}
		return nil, fmt.Errorf("failed to create combined group: %w", err)
	}

	return s.tableRepo.GetGroupByID(ctx, orgID, group.ID)
}

func (s *service) UncombineTables(ctx context.Context, orgID, groupID uuid.UUID) error {
	u, err := s.unitForGroup(ctx, orgID, groupID)
	if err != nil {
		return err
	}

	release, err := s.acquire(ctx, orgID, u.memberIDs...)
	if err != nil {
		return err
	}
	defer release()

	u, err = s.unitForGroup(ctx, orgID, groupID)
	if err != nil {
		return err
	}
	if u.active != nil {
		return faults.TableUnavailable(groupID.String())
	}

	if err := s.tableRepo.DissolveGroup(ctx, orgID, groupID); err != nil {
		return fmt.Errorf("failed to dissolve combined group: %w", err)
	}
	return nil
}
