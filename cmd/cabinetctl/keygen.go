package main

import (
	"context"
	"fmt"

	"cabinet-suite-core/internal/modules/developpeur/dto"
	"cabinet-suite-core/internal/modules/developpeur/services"

	"github.com/spf13/cobra"
)

func keygenCmd() *cobra.Command {
	var req dto.EmettreClesRequest

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Émet des clés d'activation",
		Example: `  cabinetctl keygen --plan annuel --count 5
  cabinetctl keygen --plan mensuel --cabinet PARC042 --note "renouvellement"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cles *services.CleService
			return withServices(cmd.Context(), func(ctx context.Context) error {
				result, err := cles.Emettre(ctx, req)
				if err != nil {
					return err
				}
				for _, cle := range result.Cles {
					fmt.Printf("%s\t%s\n", cle.Cle, cle.Plan)
				}
				return nil
			}, &cles)
		},
	}

	cmd.Flags().StringVar(&req.Plan, "plan", "annuel", "Plan: mensuel, annuel ou illimite")
	cmd.Flags().IntVar(&req.Nombre, "count", 1, "Nombre de clés (1 à 100)")
	cmd.Flags().StringVar(&req.CabinetCode, "cabinet", "", "Réserve les clés à un code cabinet")
	cmd.Flags().StringVar(&req.Note, "note", "", "Note libre")
	return cmd
}
