package tables

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the contract for floor plan data operations
type Repository interface {
	// Table registry
	CreateTable(ctx context.Context, table *Table) error
	GetTableByID(ctx context.Context, orgID, id uuid.UUID) (*Table, error)
	GetTablesByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]Table, error)
	ListTables(ctx context.Context, orgID uuid.UUID) ([]Table, error)
	SetBlocked(ctx context.Context, orgID, id uuid.UUID, blocked bool) error

	// Combined groups
	CreateGroup(ctx context.Context, group *CombinedGroup, memberIDs []uuid.UUID) error
	GetGroupByID(ctx context.Context, orgID, id uuid.UUID) (*CombinedGroup, error)
	GetGroupTables(ctx context.Context, orgID, groupID uuid.UUID) ([]Table, error)
	ListGroups(ctx context.Context, orgID uuid.UUID) ([]CombinedGroup, error)
	DissolveGroup(ctx context.Context, orgID, groupID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateTable(ctx context.Context, table *Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

func (r *repository) GetTableByID(ctx context.Context, orgID, id uuid.UUID) (*Table, error) {
	var table Table
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&table).Error
	if err != nil {
		return nil, err
	}
	return &table, nil
}

func (r *repository) GetTablesByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]Table, error) {
	var list []Table
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id IN ?", orgID, ids).
		Find(&list).Error
	return list, err
}

func (r *repository) ListTables(ctx context.Context, orgID uuid.UUID) ([]Table, error) {
	var list []Table
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *repository) SetBlocked(ctx context.Context, orgID, id uuid.UUID, blocked bool) error {
	return r.db.WithContext(ctx).
		Model(&Table{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Updates(map[string]interface{}{
			"blocked":    blocked,
			"updated_at": time.Now(),
		}).Error
}

// CreateGroup creates the group row and claims every member table in one
// transaction, so a half-formed group is never visible.
func (r *repository) CreateGroup(ctx context.Context, group *CombinedGroup, memberIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}

		result := tx.Model(&Table{}).
			Where("org_id = ? AND id IN ? AND group_id IS NULL", group.OrgID, memberIDs).
			Update("group_id", group.ID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(memberIDs)) {
			return gorm.ErrInvalidData
		}
		return nil
	})
}

func (r *repository) GetGroupByID(ctx context.Context, orgID, id uuid.UUID) (*CombinedGroup, error) {
	var group CombinedGroup
	err := r.db.WithContext(ctx).
		Preload("Tables").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repository) GetGroupTables(ctx context.Context, orgID, groupID uuid.UUID) ([]Table, error) {
	var list []Table
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND group_id = ?", orgID, groupID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *repository) ListGroups(ctx context.Context, orgID uuid.UUID) ([]CombinedGroup, error) {
	var list []CombinedGroup
	err := r.db.WithContext(ctx).
		Preload("Tables").
		Where("org_id = ?", orgID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

// DissolveGroup releases the member tables and removes the group row atomically
func (r *repository) DissolveGroup(ctx context.Context, orgID, groupID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&Table{}).
			Where("org_id = ? AND group_id = ?", orgID, groupID).
			Update("group_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Where("org_id = ? AND id = ?", orgID, groupID).
			Delete(&CombinedGroup{}).Error
	})
}
