package bootstrap

import (
	"context"
	"fmt"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
)

// Extensions requises par les migrations (gen_random_uuid, recherche par trigrammes)
var requiredExtensions = []string{"pgcrypto", "pg_trgm"}

// ExtensionManager gère la création des extensions PostgreSQL requises
type ExtensionManager struct {
	pgClient *postgres.Client
}

func NewExtensionManager(pgClient *postgres.Client) *ExtensionManager {
	return &ExtensionManager{pgClient: pgClient}
}

// EnsureRequiredExtensions crée toutes les extensions requises
func (em *ExtensionManager) EnsureRequiredExtensions(ctx context.Context) error {
	for _, name := range requiredExtensions {
		if err := em.ensureExtension(ctx, name); err != nil {
			return fmt.Errorf("extension %s: %w", name, err)
		}
	}
	fmt.Printf("[EXTENSIONS] ✅ Toutes les extensions requises sont installées\n")
	return nil
}

func (em *ExtensionManager) ensureExtension(ctx context.Context, extensionName string) error {
	exists, err := em.checkExtensionExists(ctx, extensionName)
	if err != nil {
		return fmt.Errorf("vérification: %w", err)
	}
	if exists {
		return nil
	}

	fmt.Printf("[EXTENSIONS] 🔧 Création extension %s...\n", extensionName)
	if err := em.pgClient.Exec(ctx, fmt.Sprintf(`CREATE EXTENSION IF NOT EXISTS "%s"`, extensionName)); err != nil {
		return fmt.Errorf("création: %w", err)
	}
	return nil
}

func (em *ExtensionManager) checkExtensionExists(ctx context.Context, extensionName string) (bool, error) {
	var exists bool
	err := em.pgClient.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = $1)`, extensionName).Scan(&exists)
	return exists, err
}
