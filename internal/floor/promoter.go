package floor

import (
	"context"
	"log"
	"time"

	"floorly/internal/waitlist"

	"github.com/google/uuid"
)

// Promoter watches for freed tables and offers them to waiting parties.
// Promotion runs out of band: the transition that frees a table only drops a
// trigger here, and the offer itself happens on this goroutine under the
// table lock.
type Promoter struct {
	service Service
	wlRepo  waitlist.Repository
	config  *PromoterConfig
	trigger chan freedTable
	done    chan struct{}
}

// PromoterConfig contains configuration for the waitlist promoter
type PromoterConfig struct {
	SweepInterval time.Duration
	TriggerBuffer int
}

// DefaultPromoterConfig returns default promoter configuration
func DefaultPromoterConfig() *PromoterConfig {
	return &PromoterConfig{
		SweepInterval: 5 * time.Second, // Safety net for triggers lost to a full buffer
		TriggerBuffer: 64,
	}
}

type freedTable struct {
	orgID   uuid.UUID
	tableID uuid.UUID
}

// NewPromoter creates a promoter and registers itself as the service's
// table-freed hook.
func NewPromoter(service Service, wlRepo waitlist.Repository, config *PromoterConfig) *Promoter {
	if config == nil {
		config = DefaultPromoterConfig()
	}

	p := &Promoter{
		service: service,
		wlRepo:  wlRepo,
		config:  config,
		trigger: make(chan freedTable, config.TriggerBuffer),
		done:    make(chan struct{}),
	}
	service.SetFreedHook(p.TriggerFreed)
	return p
}

// TriggerFreed queues a freed table for promotion. Never blocks the caller;
// a full buffer is caught by the next sweep.
func (p *Promoter) TriggerFreed(orgID, tableID uuid.UUID) {
	select {
	case p.trigger <- freedTable{orgID: orgID, tableID: tableID}:
	default:
	}
}

// Start starts the promotion loop
func (p *Promoter) Start(ctx context.Context) {
	log.Println("Starting waitlist promoter...")
	go p.run(ctx)
}

// Stop stops the promotion loop
func (p *Promoter) Stop() {
	log.Println("Stopping waitlist promoter...")
	close(p.done)
}

func (p *Promoter) run(ctx context.Context) {
	ticker := time.NewTicker(p.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case freed := <-p.trigger:
			p.promote(ctx, freed)
		case <-ticker.C:
			p.sweep(ctx)
		case <-p.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *Promoter) promote(ctx context.Context, freed freedTable) {
	promoted, err := p.service.PromoteFreedTable(ctx, freed.orgID, freed.tableID)
	if err != nil {
		log.Printf("Error promoting waitlist for table %s: %v", freed.tableID, err)
		return
	}
	if promoted {
		log.Printf("Promoted waitlist entry for freed table %s", freed.tableID)
	}
}

// sweep retries promotion across every org with waiting parties. Catches
// triggers dropped on a full buffer and tables freed while the process was
// down.
func (p *Promoter) sweep(ctx context.Context) {
	orgIDs, err := p.wlRepo.ListWaitingOrgIDs(ctx)
	if err != nil {
		log.Printf("Error listing orgs with waiting parties: %v", err)
		return
	}

	for _, orgID := range orgIDs {
		statuses, err := p.service.FloorStatus(ctx, orgID)
		if err != nil {
			log.Printf("Error reading floor status for org %s: %v", orgID, err)
			continue
		}
		for _, view := range statuses {
			if view.Status.Assignable() {
				p.promote(ctx, freedTable{orgID: orgID, tableID: view.Table.ID})
			}
		}
	}
}

// GetStatus returns the promoter's runtime configuration
func (p *Promoter) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"sweep_interval": p.config.SweepInterval.String(),
		"trigger_buffer": p.config.TriggerBuffer,
		"status":         "running",
	}
}
