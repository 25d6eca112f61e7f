package bootstrap

import (
	"context"
	"fmt"
	"time"

	"cabinet-suite-core/internal/infrastructure/database/seeds"
	adminServices "cabinet-suite-core/internal/modules/administrateur/services"
	patientServices "cabinet-suite-core/internal/modules/patients/services"
	rdvServices "cabinet-suite-core/internal/modules/rdv/services"

	"go.uber.org/fx"
)

// BootstrapSystem exécute les phases de démarrage avant le serveur HTTP
type BootstrapSystem struct {
	extensionManager *ExtensionManager
	migrationManager *MigrationManager
	seedingManager   *SeedingManager
	timeout          time.Duration
}

// BootstrapResult contient le résultat d'exécution du bootstrap
type BootstrapResult struct {
	Success        bool          `json:"success"`
	TotalDuration  time.Duration `json:"total_duration"`
	PhasesExecuted []PhaseResult `json:"phases_executed"`
	ErrorMessage   string        `json:"error_message,omitempty"`
}

// PhaseResult contient le résultat d'une phase du bootstrap
type PhaseResult struct {
	Phase    string        `json:"phase"`
	Success  bool          `json:"success"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

type phase struct {
	name string
	run  func(ctx context.Context) error
}

func NewBootstrapSystem(
	extensionManager *ExtensionManager,
	migrationManager *MigrationManager,
	seedingManager *SeedingManager,
) *BootstrapSystem {
	return &BootstrapSystem{
		extensionManager: extensionManager,
		migrationManager: migrationManager,
		seedingManager:   seedingManager,
		timeout:          5 * time.Minute,
	}
}

func (bs *BootstrapSystem) phases() []phase {
	return []phase{
		{name: "Phase 0: Extensions PostgreSQL", run: bs.extensionManager.EnsureRequiredExtensions},
		{name: "Phase 1: Migrations", run: bs.migrationManager.EnsureMigrationsApplied},
		{name: "Phase 2: Données de démonstration", run: bs.seedingManager.ApplySeeding},
	}
}

// Execute lance les phases dans l'ordre; la première erreur arrête le démarrage
func (bs *BootstrapSystem) Execute() (*BootstrapResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), bs.timeout)
	defer cancel()
	return runPhases(ctx, bs.phases())
}

func runPhases(ctx context.Context, phases []phase) (*BootstrapResult, error) {
	start := time.Now()
	result := &BootstrapResult{Success: true, PhasesExecuted: []PhaseResult{}}

	for _, p := range phases {
		phaseStart := time.Now()
		err := p.run(ctx)
		pr := PhaseResult{Phase: p.name, Success: err == nil, Duration: time.Since(phaseStart)}
		if err != nil {
			pr.Error = err.Error()
		}
		result.PhasesExecuted = append(result.PhasesExecuted, pr)

		if err != nil {
			fmt.Printf("[BOOTSTRAP] ❌ %s échouée en %v: %v\n", p.name, pr.Duration, err)
			result.Success = false
			result.ErrorMessage = fmt.Sprintf("%s: %s", p.name, err)
			result.TotalDuration = time.Since(start)
			return result, fmt.Errorf("bootstrap interrompu (%s): %w", p.name, err)
		}
		fmt.Printf("[BOOTSTRAP] ✅ %s terminée en %v\n", p.name, pr.Duration)
	}

	result.TotalDuration = time.Since(start)
	return result, nil
}

// RegisterBootstrapLifecycle exécute le bootstrap au démarrage fx, avant le serveur HTTP
func RegisterBootstrapLifecycle(lc fx.Lifecycle, bootstrap *BootstrapSystem) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			result, err := bootstrap.Execute()
			if err != nil {
				return fmt.Errorf("bootstrap system failed: %w", err)
			}
			fmt.Printf("[LIFECYCLE] ✅ Bootstrap terminé en %v\n", result.TotalDuration)
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(NewExtensionManager),
	fx.Provide(NewMigrationManager),
	fx.Provide(func(s *adminServices.CabinetService) seeds.CabinetRegistrar { return s }),
	fx.Provide(func(s *adminServices.UtilisateurService) seeds.StaffCreator { return s }),
	fx.Provide(func(s *patientServices.PatientService) seeds.PatientCreator { return s }),
	fx.Provide(func(s *rdvServices.RdvService) seeds.RdvCreator { return s }),
	fx.Provide(seeds.NewDemoSeeder),
	fx.Provide(NewSeedingManager),
	fx.Provide(NewBootstrapSystem),
	fx.Invoke(RegisterBootstrapLifecycle),
)
