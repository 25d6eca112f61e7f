package bootstrap

import (
	"context"
	"fmt"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/infrastructure/database/migrations"
)

// MigrationManager applique les migrations SQL embarquées
type MigrationManager struct {
	runner *migrations.Runner
	config *config.Config
}

func NewMigrationManager(runner *migrations.Runner, cfg *config.Config) *MigrationManager {
	return &MigrationManager{runner: runner, config: cfg}
}

// EnsureMigrationsApplied applique les migrations en attente, sauf si BOOTSTRAP_AUTO_MIGRATE=false
func (mm *MigrationManager) EnsureMigrationsApplied(ctx context.Context) error {
	if !mm.config.Bootstrap.AutoMigrate {
		fmt.Printf("[MIGRATIONS] ⚠️  Migrations automatiques désactivées - utiliser cabinetctl migrate\n")
		return nil
	}

	applied, err := mm.runner.Apply(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		fmt.Printf("[MIGRATIONS] ✅ Schéma à jour\n")
		return nil
	}
	fmt.Printf("[MIGRATIONS] ✅ %d migration(s) appliquée(s)\n", len(applied))
	return nil
}
