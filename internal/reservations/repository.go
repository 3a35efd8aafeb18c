package reservations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListQuery carries the optional filters for reservation listings
type ListQuery struct {
	Status   string
	GuestID  string
	TableID  string
	DateFrom string
	DateTo   string
	Page     int
	Limit    int
}

// Repository interface defines the contract for reservation data operations
type Repository interface {
	CreateReservation(ctx context.Context, reservation *Reservation) error
	GetReservationByID(ctx context.Context, orgID, id uuid.UUID) (*Reservation, error)
	SaveReservation(ctx context.Context, reservation *Reservation) error

	// Occupancy lookups used by status derivation and assignment
	GetActiveByTableID(ctx context.Context, orgID, tableID uuid.UUID) (*Reservation, error)
	GetActiveByGroupID(ctx context.Context, orgID, groupID uuid.UUID) (*Reservation, error)
	ListActive(ctx context.Context, orgID uuid.UUID) ([]Reservation, error)

	ListReservations(ctx context.Context, orgID uuid.UUID, query ListQuery) ([]Reservation, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// terminalStatuses excludes finished reservations from occupancy lookups
var terminalStatuses = []Status{StatusCompleted, StatusCancelled, StatusNoShow}

func (r *repository) CreateReservation(ctx context.Context, reservation *Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *repository) GetReservationByID(ctx context.Context, orgID, id uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) SaveReservation(ctx context.Context, reservation *Reservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

func (r *repository) GetActiveByTableID(ctx context.Context, orgID, tableID uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND table_id = ?", orgID, tableID).
		Where("status NOT IN ?", terminalStatuses).
		First(&reservation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) GetActiveByGroupID(ctx context.Context, orgID, groupID uuid.UUID) (*Reservation, error) {
	var reservation Reservation
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND group_id = ?", orgID, groupID).
		Where("status NOT IN ?", terminalStatuses).
		First(&reservation).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) ListActive(ctx context.Context, orgID uuid.UUID) ([]Reservation, error) {
	var list []Reservation
	err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		Where("status NOT IN ?", terminalStatuses).
		Find(&list).Error
	return list, err
}

func (r *repository) ListReservations(ctx context.Context, orgID uuid.UUID, query ListQuery) ([]Reservation, int64, error) {
	var list []Reservation
	var totalCount int64

	// Set defaults
	if query.Page <= 0 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	baseQuery := r.db.WithContext(ctx).
		Model(&Reservation{}).
		Where("org_id = ?", orgID)

	baseQuery = r.applyFilters(baseQuery, query)

	if err := baseQuery.Count(&totalCount).Error; err != nil {
		return nil, 0, err
	}

	offset := (query.Page - 1) * query.Limit
	err := baseQuery.
		Order("scheduled_at ASC").
		Offset(offset).
		Limit(query.Limit).
		Find(&list).Error

	return list, totalCount, err
}

// applyFilters applies query filters to the GORM query
func (r *repository) applyFilters(query *gorm.DB, filters ListQuery) *gorm.DB {
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}

	if filters.GuestID != "" {
		if guestID, err := uuid.Parse(filters.GuestID); err == nil {
			query = query.Where("guest_id = ?", guestID)
		}
	}

	if filters.TableID != "" {
		if tableID, err := uuid.Parse(filters.TableID); err == nil {
			query = query.Where("table_id = ?", tableID)
		}
	}

	if filters.DateFrom != "" {
		if dateFrom, err := time.Parse("2006-01-02", filters.DateFrom); err == nil {
			query = query.Where("scheduled_at >= ?", dateFrom)
		}
	}

	if filters.DateTo != "" {
		if dateTo, err := time.Parse("2006-01-02", filters.DateTo); err == nil {
			// Include the entire day
			dateTo = dateTo.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
			query = query.Where("scheduled_at <= ?", dateTo)
		}
	}

	return query
}
