package queries

import (
	"context"
	"errors"
	"strings"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
	"cabinet-suite-core/internal/modules/patients/dto"
	"cabinet-suite-core/internal/shared/sequence"
)

const patientColumns = `id, code, nom, prenoms, sexe, date_naissance, telephone, adresse, antecedents, allergies, created_at, updated_at`

// PatientQueries requêtes SQL des dossiers patients
var PatientQueries = struct {
	Lock          string
	FindDuplicate string
	Insert        string
	Get           string
	Update        string
	CountFactures string
	Delete        string
	Count         string
	Search        string
	ListAll       string
	RendezVous    string
	Consultations string
	Factures      string
}{
	// Sérialise création et modification des dossiers d'un cabinet
	Lock: `SELECT pg_advisory_xact_lock(hashtext('patients:' || $1::text))`,

	/**
	 * Même nom, prénoms et date de naissance dans le cabinet
	 * $4 = id à exclure ('' à la création)
	 */
	FindDuplicate: `
		SELECT id FROM patients
		WHERE cabinet_id = $1
		  AND lower(nom) = lower($2)
		  AND lower(prenoms) = lower($3)
		  AND date_naissance IS NOT DISTINCT FROM $5::date
		  AND ($4 = '' OR id::text <> $4)
		LIMIT 1
	`,

	Insert: `
		INSERT INTO patients (cabinet_id, code, nom, prenoms, sexe, date_naissance, telephone, adresse, antecedents, allergies)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + patientColumns,

	Get: `SELECT ` + patientColumns + ` FROM patients WHERE cabinet_id = $1 AND id = $2`,

	Update: `
		UPDATE patients
		SET nom = $3, prenoms = $4, sexe = $5, date_naissance = $6, telephone = $7,
		    adresse = $8, antecedents = $9, allergies = $10, updated_at = now()
		WHERE cabinet_id = $1 AND id = $2
		RETURNING ` + patientColumns,

	CountFactures: `SELECT count(*) FROM factures WHERE cabinet_id = $1 AND patient_id = $2`,

	Delete: `DELETE FROM patients WHERE cabinet_id = $1 AND id = $2 RETURNING id`,

	/**
	 * $2 = motif ILIKE déjà échappé ('' pour tous)
	 */
	Count: `
		SELECT count(*) FROM patients
		WHERE cabinet_id = $1
		  AND ($2 = '' OR nom ILIKE $2 OR prenoms ILIKE $2 OR (nom || ' ' || prenoms) ILIKE $2
		       OR code ILIKE $2 OR telephone ILIKE $2)
	`,

	Search: `
		SELECT ` + patientColumns + ` FROM patients
		WHERE cabinet_id = $1
		  AND ($2 = '' OR nom ILIKE $2 OR prenoms ILIKE $2 OR (nom || ' ' || prenoms) ILIKE $2
		       OR code ILIKE $2 OR telephone ILIKE $2)
		ORDER BY lower(nom), lower(prenoms), code
		LIMIT $3 OFFSET $4
	`,

	ListAll: `SELECT ` + patientColumns + ` FROM patients WHERE cabinet_id = $1 ORDER BY code`,

	RendezVous: `
		SELECT r.id, r.date_rdv, r.heure, r.statut, r.motif, trim(u.nom || ' ' || u.prenoms)
		FROM rendez_vous r
		JOIN utilisateurs u ON u.id = r.medecin_id
		WHERE r.cabinet_id = $1 AND r.patient_id = $2
		ORDER BY r.date_rdv DESC, r.heure DESC
	`,

	Consultations: `
		SELECT c.id, c.date_consultation, c.motif, c.diagnostic, trim(u.nom || ' ' || u.prenoms)
		FROM consultations c
		JOIN utilisateurs u ON u.id = c.medecin_id
		WHERE c.cabinet_id = $1 AND c.patient_id = $2
		ORDER BY c.date_consultation DESC
	`,

	Factures: `
		SELECT id, numero, date_facture, total, statut
		FROM factures
		WHERE cabinet_id = $1 AND patient_id = $2
		ORDER BY date_facture DESC, numero DESC
	`,
}

// ErrDuplicate un dossier identique existe déjà
type ErrDuplicate struct {
	ExistingID string
}

func (e ErrDuplicate) Error() string { return "patient déjà enregistré: " + e.ExistingID }

// ErrHasInvoices le patient a des factures et ne peut pas être supprimé
var ErrHasInvoices = errors.New("patient avec factures")

type PatientRepository struct {
	db *postgres.Client
	tx *postgres.TransactionManager
}

func NewPatientRepository(db *postgres.Client, tx *postgres.TransactionManager) *PatientRepository {
	return &PatientRepository{db: db, tx: tx}
}

// Create attribue le code {CABINET}-{YYYY}-{NNNNN} et insère le dossier
func (r *PatientRepository) Create(ctx context.Context, cabinetID, cabinetCode string, year int, f dto.PatientFields) (*dto.Patient, error) {
	var created *dto.Patient
	err := r.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		if err := lockAndCheckDuplicate(ctx, tx, cabinetID, "", f); err != nil {
			return err
		}

		n, err := sequence.Next(ctx, tx, cabinetID, sequence.PatientSequenceName(year))
		if err != nil {
			return err
		}

		created, err = scanPatient(tx.QueryRow(ctx, PatientQueries.Insert,
			cabinetID, sequence.FormatCodePatient(cabinetCode, year, n),
			f.Nom, f.Prenoms, f.Sexe, f.DateNaissance, f.Telephone, f.Adresse, f.Antecedents, f.Allergies,
		))
		return err
	})
	return created, err
}

// Get retourne nil, nil pour un dossier inconnu
func (r *PatientRepository) Get(ctx context.Context, cabinetID, id string) (*dto.Patient, error) {
	return scanPatient(r.db.QueryRow(ctx, PatientQueries.Get, cabinetID, id))
}

func (r *PatientRepository) Update(ctx context.Context, cabinetID, id string, f dto.PatientFields) (*dto.Patient, error) {
	var updated *dto.Patient
	err := r.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		if err := lockAndCheckDuplicate(ctx, tx, cabinetID, id, f); err != nil {
			return err
		}
		var err error
		updated, err = scanPatient(tx.QueryRow(ctx, PatientQueries.Update,
			cabinetID, id, f.Nom, f.Prenoms, f.Sexe, f.DateNaissance, f.Telephone, f.Adresse, f.Antecedents, f.Allergies,
		))
		return err
	})
	return updated, err
}

// Delete retourne false pour un dossier inconnu, ErrHasInvoices s'il est facturé
func (r *PatientRepository) Delete(ctx context.Context, cabinetID, id string) (bool, error) {
	deleted := false
	err := r.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		var factures int
		if err := tx.QueryRow(ctx, PatientQueries.CountFactures, cabinetID, id).Scan(&factures); err != nil {
			return err
		}
		if factures > 0 {
			return ErrHasInvoices
		}

		var removed string
		err := tx.QueryRow(ctx, PatientQueries.Delete, cabinetID, id).Scan(&removed)
		if err != nil {
			if postgres.IsNoRows(err) {
				return nil
			}
			if postgres.IsForeignKeyViolation(err) {
				return ErrHasInvoices
			}
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// Search recherche paginée par nom, code ou téléphone
func (r *PatientRepository) Search(ctx context.Context, cabinetID string, req dto.SearchRequest) ([]dto.Patient, int, error) {
	motif := likePattern(req.Q)

	var total int
	if err := r.db.QueryRow(ctx, PatientQueries.Count, cabinetID, motif).Scan(&total); err != nil {
		return nil, 0, err
	}

	patients, err := r.list(ctx, PatientQueries.Search, cabinetID, motif, req.Limit, req.Offset())
	return patients, total, err
}

// ListAll tous les dossiers du cabinet, par code
func (r *PatientRepository) ListAll(ctx context.Context, cabinetID string) ([]dto.Patient, error) {
	return r.list(ctx, PatientQueries.ListAll, cabinetID)
}

func (r *PatientRepository) list(ctx context.Context, sql string, args ...interface{}) ([]dto.Patient, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	patients := []dto.Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, *p)
	}
	return patients, rows.Err()
}

// Historique rendez-vous, consultations et factures du patient
func (r *PatientRepository) Historique(ctx context.Context, cabinetID, id string) (*dto.Historique, error) {
	h := &dto.Historique{
		RendezVous:    []dto.HistoriqueRdv{},
		Consultations: []dto.HistoriqueConsultation{},
		Factures:      []dto.HistoriqueFacture{},
	}

	rows, err := r.db.Query(ctx, PatientQueries.RendezVous, cabinetID, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var item dto.HistoriqueRdv
		if err := rows.Scan(&item.ID, &item.Date, &item.Heure, &item.Statut, &item.Motif, &item.Medecin); err != nil {
			rows.Close()
			return nil, err
		}
		h.RendezVous = append(h.RendezVous, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, PatientQueries.Consultations, cabinetID, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var item dto.HistoriqueConsultation
		if err := rows.Scan(&item.ID, &item.Date, &item.Motif, &item.Diagnostic, &item.Medecin); err != nil {
			rows.Close()
			return nil, err
		}
		h.Consultations = append(h.Consultations, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, PatientQueries.Factures, cabinetID, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var item dto.HistoriqueFacture
		if err := rows.Scan(&item.ID, &item.Numero, &item.Date, &item.Total, &item.Statut); err != nil {
			return nil, err
		}
		h.Factures = append(h.Factures, item)
	}
	return h, rows.Err()
}

func lockAndCheckDuplicate(ctx context.Context, tx *postgres.Transaction, cabinetID, excludeID string, f dto.PatientFields) error {
	if err := tx.Exec(ctx, PatientQueries.Lock, cabinetID); err != nil {
		return err
	}

	var existing string
	err := tx.QueryRow(ctx, PatientQueries.FindDuplicate, cabinetID, f.Nom, f.Prenoms, excludeID, f.DateNaissance).Scan(&existing)
	switch {
	case err == nil:
		return ErrDuplicate{ExistingID: existing}
	case postgres.IsNoRows(err):
		return nil
	default:
		return err
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern %terme% échappé, "" quand la recherche est vide
func likePattern(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return ""
	}
	return "%" + likeEscaper.Replace(q) + "%"
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPatient(row rowScanner) (*dto.Patient, error) {
	var p dto.Patient
	err := row.Scan(&p.ID, &p.Code, &p.Nom, &p.Prenoms, &p.Sexe, &p.DateNaissance, &p.Telephone,
		&p.Adresse, &p.Antecedents, &p.Allergies, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}
