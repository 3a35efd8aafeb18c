package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"floorly/internal/guests"
	"floorly/internal/shared/config"
	"floorly/internal/shared/database"
	"floorly/internal/tables"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Seeder struct {
	db    *database.DB
	orgID uuid.UUID
}

func main() {
	fmt.Println("🌱 Starting Floorly Database Seeder...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db, orgID: uuid.New()}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Printf("\n🎉 Seeding completed! Use X-Org-ID: %s\n", seeder.orgID)
}

// CleanDatabase truncates all tables in dependency order
func (s *Seeder) CleanDatabase() error {
	pg := s.db.GetPostgreSQL()
	for _, table := range []string{"waitlist_entries", "reservations", "floor_tables", "combined_groups", "guests"} {
		if err := pg.Exec("TRUNCATE TABLE " + table + " CASCADE").Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// SeedAll creates a demo floor plan and a handful of regulars
func (s *Seeder) SeedAll() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.seedTables(ctx); err != nil {
		return err
	}
	return s.seedGuests(ctx)
}

func (s *Seeder) seedTables(ctx context.Context) error {
	repo := tables.NewRepository(s.db.GetPostgreSQL())

	plan := []struct {
		name     string
		capacity int
		zone     string
	}{
		{"T1", 2, "window"},
		{"T2", 2, "window"},
		{"T3", 4, "main"},
		{"T4", 4, "main"},
		{"T5", 4, "main"},
		{"T6", 6, "main"},
		{"T7", 6, "patio"},
		{"T8", 8, "patio"},
		{"B1", 2, "bar"},
		{"B2", 2, "bar"},
	}

	for _, p := range plan {
		table := &tables.Table{
			OrgID:    s.orgID,
			Name:     p.name,
			Capacity: p.capacity,
			Zone:     p.zone,
		}
		if err := repo.CreateTable(ctx, table); err != nil {
			return fmt.Errorf("failed to create table %s: %w", p.name, err)
		}
		fmt.Printf("  Created table %s (seats %d, %s)\n", p.name, p.capacity, p.zone)
	}
	return nil
}

func (s *Seeder) seedGuests(ctx context.Context) error {
	repo := guests.NewRepository(s.db.GetPostgreSQL())

	regulars := []guests.Guest{
		{OrgID: s.orgID, Name: "Dana Whitfield", Email: "dana@example.com", Phone: "+1-555-0101", VipTier: guests.TierGold},
		{OrgID: s.orgID, Name: "Marcus Oyelaran", Email: "marcus@example.com", Phone: "+1-555-0102", VipTier: guests.TierSilver},
		{OrgID: s.orgID, Name: "Priya Raman", Email: "priya@example.com", Phone: "+1-555-0103", VipTier: guests.TierNone},
		{OrgID: s.orgID, Name: "Jonas Keller", Email: "jonas@example.com", Phone: "+1-555-0104", VipTier: guests.TierNone},
	}

	for i := range regulars {
		if err := repo.CreateGuest(ctx, &regulars[i]); err != nil {
			return fmt.Errorf("failed to create guest %s: %w", regulars[i].Name, err)
		}
		fmt.Printf("  Created guest %s\n", regulars[i].Name)
	}
	return nil
}
