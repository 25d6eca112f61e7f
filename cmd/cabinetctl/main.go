package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cabinet-suite-core/internal/app"
	"cabinet-suite-core/internal/app/config"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "cabinetctl",
		Short:         "Outils d'exploitation de Cabinet Suite",
		Long:          "cabinetctl applique les migrations, émet des clés d'activation, crée des données de démonstration et importe des patients.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd(), keygenCmd(), seedCmd(), importPatientsCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		stop()
		os.Exit(1)
	}
}

// cliConfig pas de tâches de fond ni de bootstrap automatique dans un outil en ligne de commande
func cliConfig(cfg *config.Config) *config.Config {
	cfg.Scheduler.Enabled = false
	cfg.Bootstrap.SeedDemoData = false
	return cfg
}

// withServices démarre les dépendances de l'API sans serveur HTTP, remplit targets puis exécute run
func withServices(ctx context.Context, run func(ctx context.Context) error, targets ...interface{}) error {
	application := fx.New(
		app.InfrastructureModule,
		fx.Provide(app.NewProbes),
		fx.Provide(app.NewRouter),
		app.DomainModule,
		fx.Decorate(cliConfig),
		fx.NopLogger,
		fx.Populate(targets...),
	)
	if err := application.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := application.Start(startCtx); err != nil {
		return fmt.Errorf("démarrage: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = application.Stop(stopCtx)
	}()

	return run(ctx)
}
