package main

import (
	"context"
	"fmt"

	"cabinet-suite-core/internal/app/bootstrap"
	"cabinet-suite-core/internal/infrastructure/database/migrations"
	"cabinet-suite-core/internal/infrastructure/database/postgres"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Applique les migrations SQL en attente",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				all, err := migrations.Load()
				if err != nil {
					return err
				}
				for _, m := range all {
					fmt.Println(m.Version)
				}
				return nil
			}

			var (
				pg     *postgres.Client
				runner *migrations.Runner
			)
			return withServices(cmd.Context(), func(ctx context.Context) error {
				if err := bootstrap.NewExtensionManager(pg).EnsureRequiredExtensions(ctx); err != nil {
					return err
				}
				applied, err := runner.Apply(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("✅ %d migration(s) appliquée(s)\n", len(applied))
				return nil
			}, &pg, &runner)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Liste les migrations embarquées sans les appliquer")
	return cmd
}
