package tables

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Table represents a physical table on the floor plan. Status is never stored
// here; it is derived on demand from the reservation set and the blocked flag.
type Table struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID    uuid.UUID  `gorm:"type:uuid;index;not null" json:"org_id"`
	Name     string     `gorm:"not null" json:"name"`
	Capacity int        `gorm:"not null" json:"capacity"`
	Zone     string     `gorm:"type:varchar(50)" json:"zone"`
	Blocked  bool       `gorm:"default:false" json:"blocked"`
	GroupID  *uuid.UUID `gorm:"type:uuid;index" json:"group_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CombinedGroup merges two or more tables into one assignable unit with
// summed capacity. A table belongs to at most one active group.
type CombinedGroup struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID    uuid.UUID `gorm:"type:uuid;index;not null" json:"org_id"`
	Capacity int       `gorm:"not null" json:"capacity"`

	CreatedAt time.Time `json:"created_at"`

	Tables []Table `json:"tables,omitempty" gorm:"foreignKey:GroupID"`
}

// TableName sets the table name for Table
func (Table) TableName() string {
	return "floor_tables"
}

// TableName sets the table name for CombinedGroup
func (CombinedGroup) TableName() string {
	return "combined_groups"
}

// BeforeCreate generates an ID when the database does not
func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// BeforeCreate generates an ID when the database does not
func (g *CombinedGroup) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// InGroup reports whether the table is part of an active combined group
func (t *Table) InGroup() bool {
	return t.GroupID != nil
}
