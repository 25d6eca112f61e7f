package sequence

import (
	"context"
	"fmt"
	"time"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
)

// Noms des compteurs par cabinet
const (
	Patients = "patients"
	// Factures est suffixé par le jour: factures:20260314
	Factures = "factures"
)

const nextSQL = `
	INSERT INTO sequences (cabinet_id, nom, valeur)
	VALUES ($1, $2, 1)
	ON CONFLICT (cabinet_id, nom)
	DO UPDATE SET valeur = sequences.valeur + 1, updated_at = now()
	RETURNING valeur`

// Next incrémente atomiquement le compteur nom du cabinet. À appeler dans la
// transaction qui consomme la valeur pour ne pas créer de trou en cas d'échec.
func Next(ctx context.Context, q postgres.Querier, cabinetID, nom string) (int64, error) {
	var valeur int64
	if err := q.QueryRow(ctx, nextSQL, cabinetID, nom).Scan(&valeur); err != nil {
		return 0, fmt.Errorf("séquence %s: %w", nom, err)
	}
	return valeur, nil
}

// FactureSequenceName compteur journalier des factures
func FactureSequenceName(day time.Time) string {
	return Factures + ":" + day.Format("20060102")
}

// FormatNumeroFacture F-YYYYMMDD-NNN
func FormatNumeroFacture(day time.Time, n int64) string {
	return fmt.Sprintf("F-%s-%03d", day.Format("20060102"), n)
}

// PatientSequenceName compteur annuel des dossiers patients
func PatientSequenceName(year int) string {
	return fmt.Sprintf("%s:%d", Patients, year)
}

// FormatCodePatient {CABINET}-{YYYY}-{NNNNN}
func FormatCodePatient(cabinetCode string, year int, n int64) string {
	return fmt.Sprintf("%s-%04d-%05d", cabinetCode, year, n)
}
