package bootstrap

import (
	"context"
	"fmt"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/infrastructure/database/seeds"
)

// SeedingManager crée le cabinet de démonstration quand SEED_DEMO_DATA=true
type SeedingManager struct {
	seeder *seeds.DemoSeeder
	config *config.Config
}

func NewSeedingManager(seeder *seeds.DemoSeeder, cfg *config.Config) *SeedingManager {
	return &SeedingManager{seeder: seeder, config: cfg}
}

func (sm *SeedingManager) ApplySeeding(ctx context.Context) error {
	if !sm.config.Bootstrap.SeedDemoData {
		return nil
	}

	result, err := sm.seeder.Seed(ctx, seeds.DefaultOptions())
	if err != nil {
		return fmt.Errorf("seeding démo: %w", err)
	}
	if result.Existant {
		fmt.Printf("[SEEDING] ✅ Cabinet de démo déjà présent\n")
		return nil
	}

	fmt.Printf("[SEEDING] ✅ Cabinet %s créé (%d utilisateurs, %d patients, %d rdv)\n",
		result.CabinetCode, result.Utilisateurs, result.Patients, result.Rdv)
	return nil
}
