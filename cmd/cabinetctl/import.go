package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cabinet-suite-core/internal/modules/patients/services"
	"cabinet-suite-core/internal/shared/middleware/authentication"
	"cabinet-suite-core/internal/shared/middleware/tenant"

	"github.com/spf13/cobra"
)

func importPatientsCmd() *cobra.Command {
	var code string

	cmd := &cobra.Command{
		Use:   "import-patients [fichier.xlsx]",
		Short: "Importe un classeur de patients dans un cabinet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("ouverture %s: %w", args[0], err)
			}
			defer file.Close()

			var (
				lookup   authentication.CabinetLookup
				patients *services.PatientService
			)
			return withServices(cmd.Context(), func(ctx context.Context) error {
				data, err := lookup.FindCabinetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
				if err != nil {
					return err
				}
				if data == nil {
					return fmt.Errorf("cabinet inconnu: %s", code)
				}
				cabinet := tenant.CabinetContext{ID: data.ID, Code: data.Code, Nom: data.Nom, EmailAdmin: data.EmailAdmin}

				result, err := patients.Import(ctx, cabinet, "", file)
				if err != nil {
					return err
				}
				fmt.Printf("✅ %d patient(s) importé(s), %d ignoré(s), %d erreur(s)\n",
					result.Importes, len(result.Ignores), len(result.Erreurs))
				for _, e := range result.Erreurs {
					fmt.Printf("   ligne %d: %s\n", e.Ligne, e.Message)
				}
				return nil
			}, &lookup, &patients)
		},
	}

	cmd.Flags().StringVar(&code, "cabinet", "", "Code du cabinet (obligatoire)")
	_ = cmd.MarkFlagRequired("cabinet")
	return cmd
}
