package queries

import (
	"context"
	"errors"
	"strings"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
	"cabinet-suite-core/internal/modules/consultations/dto"
	"cabinet-suite-core/internal/modules/rdv/agenda"
	rdvQueries "cabinet-suite-core/internal/modules/rdv/queries"
)

const selectConsultation = `
	SELECT c.id, c.patient_id, p.code, trim(p.nom || ' ' || p.prenoms), p.date_naissance,
	       c.medecin_id, trim(u.nom || ' ' || u.prenoms), c.rdv_id, c.date_consultation,
	       c.motif, c.examen, c.diagnostic, c.notes, c.constantes, c.prescriptions,
	       c.created_at, c.updated_at
	FROM consultations c
	JOIN patients p ON p.id = c.patient_id
	JOIN utilisateurs u ON u.id = c.medecin_id
`

// ConsultationQueries requêtes SQL des consultations
var ConsultationQueries = struct {
	PatientExiste string
	RdvPatient    string
	Insert        string
	Get           string
	List          string
	Update        string
}{
	PatientExiste: `SELECT EXISTS (SELECT 1 FROM patients WHERE cabinet_id = $1 AND id = $2)`,

	RdvPatient: `SELECT patient_id FROM rendez_vous WHERE cabinet_id = $1 AND id = $2`,

	Insert: `
		INSERT INTO consultations (cabinet_id, patient_id, medecin_id, rdv_id, motif, examen, diagnostic, notes, constantes, prescriptions)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`,

	Get: selectConsultation + `WHERE c.cabinet_id = $1 AND c.id = $2`,

	/**
	 * $2 = patient ('' pour tout le cabinet)
	 */
	List: selectConsultation + `
		WHERE c.cabinet_id = $1 AND ($2 = '' OR c.patient_id::text = $2)
		ORDER BY c.date_consultation DESC
		LIMIT $3
	`,

	Update: `
		UPDATE consultations
		SET motif = $3, examen = $4, diagnostic = $5, notes = $6, constantes = $7, prescriptions = $8, updated_at = now()
		WHERE cabinet_id = $1 AND id = $2
	`,
}

var (
	ErrPatientInconnu      = errors.New("patient inconnu")
	ErrRdvAutrePatient     = errors.New("le rendez-vous concerne un autre patient")
	ErrConsultationAbsente = errors.New("consultation introuvable")
)

// Terminaison rendez-vous clos par la consultation
type Terminaison struct {
	RdvID string
	De    string
}

type ConsultationRepository struct {
	db *postgres.Client
	tx *postgres.TransactionManager
}

func NewConsultationRepository(db *postgres.Client, tx *postgres.TransactionManager) *ConsultationRepository {
	return &ConsultationRepository{db: db, tx: tx}
}

// Create écrit la consultation et, si un rendez-vous est lié, le passe à terminé
// dans la même transaction
func (r *ConsultationRepository) Create(ctx context.Context, cabinetID string, c dto.NouvelleConsultation) (string, *Terminaison, error) {
	var id string
	var fin *Terminaison
	err := r.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		fin = nil
		var exists bool
		if err := tx.QueryRow(ctx, ConsultationQueries.PatientExiste, cabinetID, c.PatientID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrPatientInconnu
		}

		if c.RdvID != "" {
			var patientID string
			if err := tx.QueryRow(ctx, ConsultationQueries.RdvPatient, cabinetID, c.RdvID).Scan(&patientID); err != nil {
				if postgres.IsNoRows(err) {
					return rdvQueries.ErrRdvNotFound
				}
				return err
			}
			if !strings.EqualFold(patientID, c.PatientID) {
				return ErrRdvAutrePatient
			}
			from, err := rdvQueries.TransitionTx(ctx, tx, cabinetID, c.RdvID, agenda.StatutTermine)
			if err != nil {
				return err
			}
			fin = &Terminaison{RdvID: c.RdvID, De: from}
		}

		return tx.QueryRow(ctx, ConsultationQueries.Insert, cabinetID, c.PatientID, c.MedecinID, c.RdvID,
			c.Motif, c.Examen, c.Diagnostic, c.Notes, c.Constantes, prescriptions(c.Prescriptions)).Scan(&id)
	})
	return id, fin, err
}

// Get retourne nil, nil pour une consultation inconnue
func (r *ConsultationRepository) Get(ctx context.Context, cabinetID, id string) (*dto.Consultation, error) {
	return scanConsultation(r.db.QueryRow(ctx, ConsultationQueries.Get, cabinetID, id))
}

func (r *ConsultationRepository) List(ctx context.Context, cabinetID, patientID string, limit int) ([]dto.Consultation, error) {
	rows, err := r.db.Query(ctx, ConsultationQueries.List, cabinetID, patientID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []dto.Consultation{}
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *c)
	}
	return list, rows.Err()
}

func (r *ConsultationRepository) Update(ctx context.Context, cabinetID, id string, f dto.ConsultationFields) error {
	n, err := r.db.ExecRows(ctx, ConsultationQueries.Update, cabinetID, id,
		f.Motif, f.Examen, f.Diagnostic, f.Notes, f.Constantes, prescriptions(f.Prescriptions))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConsultationAbsente
	}
	return nil
}

// prescriptions évite un null JSON en base
func prescriptions(p []dto.Prescription) []dto.Prescription {
	if p == nil {
		return []dto.Prescription{}
	}
	return p
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanConsultation(row rowScanner) (*dto.Consultation, error) {
	var c dto.Consultation
	err := row.Scan(&c.ID, &c.PatientID, &c.PatientCode, &c.PatientNom, &c.PatientNaissance,
		&c.MedecinID, &c.MedecinNom, &c.RdvID, &c.DateConsultation,
		&c.Motif, &c.Examen, &c.Diagnostic, &c.Notes, &c.Constantes, &c.Prescriptions,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	if c.Prescriptions == nil {
		c.Prescriptions = []dto.Prescription{}
	}
	return &c, nil
}
