package main

import (
	"context"
	"fmt"

	"cabinet-suite-core/internal/infrastructure/database/seeds"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	opts := seeds.DefaultOptions()

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Crée un cabinet de démonstration avec des données fictives",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seeder *seeds.DemoSeeder
			return withServices(cmd.Context(), func(ctx context.Context) error {
				result, err := seeder.Seed(ctx, opts)
				if err != nil {
					return err
				}
				if result.Existant {
					fmt.Printf("⚠️ Un cabinet existe déjà pour %s\n", opts.EmailAdmin)
					return nil
				}
				fmt.Printf("✅ Cabinet %s (admin %s / %s)\n", result.CabinetCode, result.Identifiant, opts.MotDePasse)
				fmt.Printf("   %d utilisateurs, %d patients, %d rdv, %d ignorés\n",
					result.Utilisateurs, result.Patients, result.Rdv, result.Ignores)
				return nil
			}, &seeder)
		},
	}

	cmd.Flags().StringVar(&opts.Cabinet, "nom", opts.Cabinet, "Nom du cabinet")
	cmd.Flags().StringVar(&opts.EmailAdmin, "email", opts.EmailAdmin, "Email de l'administrateur")
	cmd.Flags().StringVar(&opts.MotDePasse, "password", opts.MotDePasse, "Mot de passe des comptes créés")
	cmd.Flags().IntVar(&opts.Patients, "patients", opts.Patients, "Nombre de patients")
	cmd.Flags().IntVar(&opts.Rdv, "rdv", opts.Rdv, "Nombre de rendez-vous à venir")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", opts.Seed, "Graine du générateur")
	return cmd
}
