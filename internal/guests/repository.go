package guests

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the contract for guest data operations
type Repository interface {
	CreateGuest(ctx context.Context, guest *Guest) error
	GetGuestByID(ctx context.Context, orgID, id uuid.UUID) (*Guest, error)
	ListGuests(ctx context.Context, orgID uuid.UUID) ([]Guest, error)

	// Counter updates are the only engine-owned mutations
	IncrementVisitCount(ctx context.Context, orgID, id uuid.UUID) error
	IncrementNoShowCount(ctx context.Context, orgID, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateGuest(ctx context.Context, guest *Guest) error {
	return r.db.WithContext(ctx).Create(guest).Error
}

func (r *repository) GetGuestByID(ctx context.Context, orgID, id uuid.UUID) (*Guest, error) {
	var guest Guest
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&guest).Error
	if err != nil {
		return nil, err
	}
	return &guest, nil
}

func (r *repository) ListGuests(ctx context.Context, orgID uuid.UUID) ([]Guest, error) {
	var guests []Guest
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Order("name ASC").
		Find(&guests).Error
	return guests, err
}

func (r *repository) IncrementVisitCount(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Guest{}).
		Where("org_id = ? AND id = ?", orgID, id).
		UpdateColumn("visit_count", gorm.Expr("visit_count + 1")).Error
}

func (r *repository) IncrementNoShowCount(ctx context.Context, orgID, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&Guest{}).
		Where("org_id = ? AND id = ?", orgID, id).
		UpdateColumn("no_show_count", gorm.Expr("no_show_count + 1")).Error
}
