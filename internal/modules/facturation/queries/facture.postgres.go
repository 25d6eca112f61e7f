package queries

import (
	"context"
	"errors"
	"strings"
	"time"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
	"cabinet-suite-core/internal/modules/facturation/dto"
	"cabinet-suite-core/internal/shared/sequence"
)

const selectFacture = `
	SELECT f.id, f.numero, f.patient_id, p.code, trim(p.nom || ' ' || p.prenoms), f.consultation_id,
	       to_char(f.date_facture, 'YYYY-MM-DD'), f.lignes, f.sous_total, f.remise, f.total,
	       f.statut, f.mode_paiement, f.payee_le, f.motif_annulation, f.created_at, f.updated_at
	FROM factures f
	JOIN patients p ON p.id = f.patient_id
`

// FactureQueries requêtes SQL de la facturation
var FactureQueries = struct {
	PatientExiste       string
	ConsultationPatient string
	Insert              string
	Get                 string
	List                string
	Lock                string
	Pay                 string
	Cancel              string
	Impayees            string
}{
	PatientExiste: `SELECT EXISTS (SELECT 1 FROM patients WHERE cabinet_id = $1 AND id = $2)`,

	ConsultationPatient: `SELECT patient_id FROM consultations WHERE cabinet_id = $1 AND id = $2`,

	Insert: `
		INSERT INTO factures (cabinet_id, numero, patient_id, consultation_id, date_facture, lignes,
		                      sous_total, remise, total, statut, mode_paiement, payee_le, created_by)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5::date, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, '')::uuid)
		RETURNING id
	`,

	Get: selectFacture + `WHERE f.cabinet_id = $1 AND f.id = $2`,

	/**
	 * Filtres optionnels: '' pour ignorer
	 */
	List: selectFacture + `
		WHERE f.cabinet_id = $1
		  AND ($2 = '' OR f.date_facture >= $2::date)
		  AND ($3 = '' OR f.date_facture <= $3::date)
		  AND ($4 = '' OR f.statut = $4)
		  AND ($5 = '' OR f.patient_id::text = $5)
		ORDER BY f.date_facture DESC, f.numero DESC
		LIMIT $6
	`,

	Lock: `SELECT statut FROM factures WHERE cabinet_id = $1 AND id = $2 FOR UPDATE`,

	Pay: `
		UPDATE factures SET statut = 'payee', mode_paiement = $3, payee_le = $4, updated_at = now()
		WHERE cabinet_id = $1 AND id = $2
	`,

	Cancel: `
		UPDATE factures SET statut = 'annulee', motif_annulation = $3, updated_at = now()
		WHERE cabinet_id = $1 AND id = $2
	`,

	Impayees: `
		SELECT count(*), COALESCE(sum(total), 0) FROM factures
		WHERE cabinet_id = $1 AND statut = 'impayee'
	`,
}

var (
	ErrFactureAbsente       = errors.New("facture introuvable")
	ErrPatientInconnu       = errors.New("patient inconnu")
	ErrConsultationInvalide = errors.New("consultation inconnue ou d'un autre patient")
	ErrDejaPayee            = errors.New("facture déjà payée")
	ErrAnnulee              = errors.New("facture annulée")
)

type FactureRepository struct {
	db *postgres.Client
	tx *postgres.TransactionManager
}

func NewFactureRepository(db *postgres.Client, tx *postgres.TransactionManager) *FactureRepository {
	return &FactureRepository{db: db, tx: tx}
}

// Create numérote la facture sur le compteur du jour et l'écrit dans la même transaction
func (r *FactureRepository) Create(ctx context.Context, cabinetID string, f dto.NouvelleFacture) (string, error) {
	var id string
	err := r.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		var exists bool
		if err := tx.QueryRow(ctx, FactureQueries.PatientExiste, cabinetID, f.PatientID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrPatientInconnu
		}

		if f.ConsultationID != "" {
			var patientID string
			err := tx.QueryRow(ctx, FactureQueries.ConsultationPatient, cabinetID, f.ConsultationID).Scan(&patientID)
			if err != nil && !postgres.IsNoRows(err) {
				return err
			}
			if !strings.EqualFold(patientID, f.PatientID) {
				return ErrConsultationInvalide
			}
		}

		n, err := sequence.Next(ctx, tx, cabinetID, sequence.FactureSequenceName(f.Jour))
		if err != nil {
			return err
		}
		numero := sequence.FormatNumeroFacture(f.Jour, n)

		return tx.QueryRow(ctx, FactureQueries.Insert, cabinetID, numero, f.PatientID, f.ConsultationID,
			f.Jour.Format("2006-01-02"), f.Lignes, f.SousTotal, f.Remise, f.Total,
			f.Statut, f.ModePaiement, f.PayeeLe, f.CreatedBy).Scan(&id)
	})
	return id, err
}

// Get retourne nil, nil pour une facture inconnue
func (r *FactureRepository) Get(ctx context.Context, cabinetID, id string) (*dto.Facture, error) {
	return scanFacture(r.db.QueryRow(ctx, FactureQueries.Get, cabinetID, id))
}

func (r *FactureRepository) List(ctx context.Context, cabinetID string, filtre dto.Filtre) ([]dto.Facture, error) {
	rows, err := r.db.Query(ctx, FactureQueries.List, cabinetID, filtre.Du, filtre.Au, filtre.Statut, filtre.PatientID, filtre.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []dto.Facture{}
	for rows.Next() {
		f, err := scanFacture(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *f)
	}
	return list, rows.Err()
}

// Pay encaisse une facture impayée
func (r *FactureRepository) Pay(ctx context.Context, cabinetID, id, mode string, at time.Time) error {
	return r.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		statut, err := lockStatut(ctx, tx, cabinetID, id)
		if err != nil {
			return err
		}
		switch statut {
		case dto.StatutPayee:
			return ErrDejaPayee
		case dto.StatutAnnulee:
			return ErrAnnulee
		}
		return tx.Exec(ctx, FactureQueries.Pay, cabinetID, id, mode, at)
	})
}

// Cancel annule une facture impayée
func (r *FactureRepository) Cancel(ctx context.Context, cabinetID, id, motif string) error {
	return r.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		statut, err := lockStatut(ctx, tx, cabinetID, id)
		if err != nil {
			return err
		}
		switch statut {
		case dto.StatutPayee:
			return ErrDejaPayee
		case dto.StatutAnnulee:
			return ErrAnnulee
		}
		return tx.Exec(ctx, FactureQueries.Cancel, cabinetID, id, motif)
	})
}

// Impayees nombre et montant des factures à encaisser
func (r *FactureRepository) Impayees(ctx context.Context, cabinetID string) (int, int64, error) {
	var n int
	var montant int64
	err := r.db.QueryRow(ctx, FactureQueries.Impayees, cabinetID).Scan(&n, &montant)
	return n, montant, err
}

func lockStatut(ctx context.Context, q postgres.Querier, cabinetID, id string) (string, error) {
	var statut string
	if err := q.QueryRow(ctx, FactureQueries.Lock, cabinetID, id).Scan(&statut); err != nil {
		if postgres.IsNoRows(err) {
			return "", ErrFactureAbsente
		}
		return "", err
	}
	return statut, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFacture(row rowScanner) (*dto.Facture, error) {
	var f dto.Facture
	err := row.Scan(&f.ID, &f.Numero, &f.PatientID, &f.PatientCode, &f.PatientNom, &f.ConsultationID,
		&f.Date, &f.Lignes, &f.SousTotal, &f.Remise, &f.Total,
		&f.Statut, &f.ModePaiement, &f.PayeeLe, &f.MotifAnnulation, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}
