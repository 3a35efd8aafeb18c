package waitlist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository interface defines the contract for waitlist data operations
type Repository interface {
	CreateEntry(ctx context.Context, entry *Entry) error
	GetEntryByID(ctx context.Context, orgID, id uuid.UUID) (*Entry, error)
	SaveEntry(ctx context.Context, entry *Entry) error

	// ClaimTransition flips an entry to target with a conditional update so
	// two writers racing the same entry cannot both win. Returns the updated
	// entry, or nil when the current status no longer allows the transition.
	ClaimTransition(ctx context.Context, orgID, id uuid.UUID, target Status, now time.Time) (*Entry, error)

	// ListOpen returns WAITING and NOTIFIED entries in FIFO order
	ListOpen(ctx context.Context, orgID uuid.UUID) ([]Entry, error)

	// NextFitting returns the earliest WAITING entry with party size at most
	// capacity, or nil when the queue holds nothing that fits. Entries
	// already NOTIFIED are skipped so a freed table never re-offers.
	NextFitting(ctx context.Context, orgID uuid.UUID, capacity int) (*Entry, error)

	CountOpen(ctx context.Context, orgID uuid.UUID) (int64, error)

	// ListWaitingOrgIDs returns the org IDs that currently have WAITING
	// entries, for the promoter's periodic sweep.
	ListWaitingOrgIDs(ctx context.Context) ([]uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

var openStatuses = []Status{StatusWaiting, StatusNotified}

func (r *repository) CreateEntry(ctx context.Context, entry *Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) GetEntryByID(ctx context.Context, orgID, id uuid.UUID) (*Entry, error) {
	var entry Entry
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) SaveEntry(ctx context.Context, entry *Entry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *repository) ClaimTransition(ctx context.Context, orgID, id uuid.UUID, target Status, now time.Time) (*Entry, error) {
	updates := map[string]interface{}{
		"status":     target,
		"updated_at": now,
	}
	switch target {
	case StatusNotified:
		updates["notified_at"] = now
	case StatusSeated:
		updates["seated_at"] = now
	case StatusLeft:
		updates["left_at"] = now
	}

	res := r.db.WithContext(ctx).
		Model(&Entry{}).
		Where("org_id = ? AND id = ?", orgID, id).
		Where("status IN ?", TransitionSources(target)).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	return r.GetEntryByID(ctx, orgID, id)
}

func (r *repository) ListOpen(ctx context.Context, orgID uuid.UUID) ([]Entry, error) {
	var list []Entry
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Where("status IN ?", openStatuses).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *repository) NextFitting(ctx context.Context, orgID uuid.UUID, capacity int) (*Entry, error) {
	var entry Entry
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Where("status = ?", StatusWaiting).
		Where("party_size <= ?", capacity).
		Order("created_at ASC").
		First(&entry).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) CountOpen(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Entry{}).
		Where("org_id = ?", orgID).
		Where("status IN ?", openStatuses).
		Count(&count).Error
	return count, err
}

func (r *repository) ListWaitingOrgIDs(ctx context.Context) ([]uuid.UUID, error) {
	var orgIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&Entry{}).
		Where("status = ?", StatusWaiting).
		Distinct("org_id").
		Pluck("org_id", &orgIDs).Error
	return orgIDs, err
}
