package guests

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VipTier represents the loyalty tier assigned by the CRM
type VipTier string

const (
	TierNone   VipTier = "NONE"
	TierSilver VipTier = "SILVER"
	TierGold   VipTier = "GOLD"
)

// Guest represents a restaurant guest. The engine owns only the two counters;
// contact info and tier belong to the CRM.
type Guest struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrgID       uuid.UUID `gorm:"type:uuid;index;not null" json:"org_id"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	VisitCount  int       `gorm:"default:0" json:"visit_count"`
	NoShowCount int       `gorm:"default:0" json:"no_show_count"`
	VipTier     VipTier   `gorm:"type:varchar(20);default:'NONE'" json:"vip_tier"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName sets the table name for Guest
func (Guest) TableName() string {
	return "guests"
}

// BeforeCreate generates an ID when the database does not
func (g *Guest) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// Score derives a simple reliability score: visits count for, no-shows count
// against, tier adds a fixed bonus. Display-only, never persisted.
func (g *Guest) Score() int {
	score := g.VisitCount*2 - g.NoShowCount*5
	switch g.VipTier {
	case TierSilver:
		score += 10
	case TierGold:
		score += 25
	}
	return score
}
