package queries

import (
	"context"
	"errors"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
	"cabinet-suite-core/internal/modules/rdv/agenda"
	"cabinet-suite-core/internal/modules/rdv/dto"
)

const selectRdv = `
	SELECT r.id, r.patient_id, p.code, trim(p.nom || ' ' || p.prenoms),
	       r.medecin_id, trim(u.nom || ' ' || u.prenoms),
	       to_char(r.date_rdv, 'YYYY-MM-DD'), r.heure, r.duree_minutes, r.motif, r.statut,
	       r.created_at, r.updated_at
	FROM rendez_vous r
	JOIN patients p ON p.id = r.patient_id
	JOIN utilisateurs u ON u.id = r.medecin_id
`

// RdvQueries requêtes SQL de l'agenda
var RdvQueries = struct {
	Get           string
	Day           string
	MedecinActif  string
	PatientExiste string
	MedecinDay    string
	PatientDay    string
	LockRdv       string
	Insert        string
	Reschedule    string
	UpdateStatut  string
	Delete        string
	Exists        string
	MarkNoShows   string
	Upcoming      string
}{
	Get: selectRdv + `WHERE r.cabinet_id = $1 AND r.id = $2`,

	/**
	 * $3 = médecin ('' pour tous)
	 */
	Day: selectRdv + `
		WHERE r.cabinet_id = $1 AND r.date_rdv = $2::date AND ($3 = '' OR r.medecin_id::text = $3)
		ORDER BY r.heure, u.nom
	`,

	MedecinActif: `
		SELECT EXISTS (
			SELECT 1 FROM utilisateurs
			WHERE cabinet_id = $1 AND id = $2 AND actif AND role IN ('medecin', 'admin')
		)
	`,

	PatientExiste: `SELECT EXISTS (SELECT 1 FROM patients WHERE cabinet_id = $1 AND id = $2)`,

	/**
	 * Plages du médecin qui bloquent un créneau; $4 = rendez-vous à exclure ('' sinon)
	 */
	MedecinDay: `
		SELECT heure, duree_minutes FROM rendez_vous
		WHERE cabinet_id = $1 AND medecin_id = $2 AND date_rdv = $3::date
		  AND statut NOT IN ('annule', 'absent')
		  AND ($4 = '' OR id::text <> $4)
	`,

	PatientDay: `
		SELECT count(*) FROM rendez_vous
		WHERE cabinet_id = $1 AND patient_id = $2 AND date_rdv = $3::date
		  AND statut IN ('planifie', 'confirme', 'arrive')
		  AND ($4 = '' OR id::text <> $4)
	`,

	LockRdv: `
		SELECT statut, patient_id, medecin_id FROM rendez_vous
		WHERE cabinet_id = $1 AND id = $2
		FOR UPDATE
	`,

	Insert: `
		INSERT INTO rendez_vous (cabinet_id, patient_id, medecin_id, date_rdv, heure, duree_minutes, motif, created_by)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, NULLIF($8, '')::uuid)
		RETURNING id
	`,

	Reschedule: `
		UPDATE rendez_vous
		SET date_rdv = $3::date, heure = $4, duree_minutes = $5, motif = $6, updated_at = now()
		WHERE cabinet_id = $1 AND id = $2
	`,

	UpdateStatut: `
		UPDATE rendez_vous SET statut = $3, updated_at = now()
		WHERE cabinet_id = $1 AND id = $2
	`,

	Delete: `
		DELETE FROM rendez_vous
		WHERE cabinet_id = $1 AND id = $2 AND statut = 'planifie'
		RETURNING to_char(date_rdv, 'YYYY-MM-DD')
	`,

	Exists: `SELECT EXISTS (SELECT 1 FROM rendez_vous WHERE cabinet_id = $1 AND id = $2)`,

	/**
	 * $1 = aujourd'hui dans le fuseau du cabinet
	 */
	MarkNoShows: `
		UPDATE rendez_vous SET statut = 'absent', updated_at = now()
		WHERE date_rdv < $1::date AND statut IN ('planifie', 'confirme')
		RETURNING cabinet_id, id, to_char(date_rdv, 'YYYY-MM-DD')
	`,

	/**
	 * Prochains rendez-vous ouverts à partir de ($2 jour, $3 heure)
	 */
	Upcoming: selectRdv + `
		WHERE r.cabinet_id = $1 AND r.statut IN ('planifie', 'confirme')
		  AND (r.date_rdv > $2::date OR (r.date_rdv = $2::date AND r.heure >= $3))
		ORDER BY r.date_rdv, r.heure
		LIMIT $4
	`,
}

var (
	ErrRdvNotFound     = errors.New("rendez-vous introuvable")
	ErrMedecinInvalide = errors.New("médecin inconnu ou inactif")
	ErrPatientInconnu  = errors.New("patient inconnu")
	ErrNonModifiable   = errors.New("rendez-vous non modifiable")
	ErrNonSupprimable  = errors.New("seul un rendez-vous planifié peut être supprimé")
)

// NoShow rendez-vous passé en absent par la tâche de fond
type NoShow struct {
	CabinetID string
	ID        string
	Date      string
}

type RdvRepository struct {
	db *postgres.Client
	tx *postgres.TransactionManager
}

func NewRdvRepository(db *postgres.Client, tx *postgres.TransactionManager) *RdvRepository {
	return &RdvRepository{db: db, tx: tx}
}

// Book contrôle les conflits et écrit le rendez-vous en isolation sérialisable.
// Avec excludeID le rendez-vous existant est déplacé; patient et médecin sont conservés.
func (r *RdvRepository) Book(ctx context.Context, cabinetID string, res dto.Reservation, excludeID string) (string, error) {
	var id string
	err := r.tx.WithSerializable(ctx, func(tx *postgres.Transaction) error {
		booking := res
		if excludeID != "" {
			var statut string
			err := tx.QueryRow(ctx, RdvQueries.LockRdv, cabinetID, excludeID).Scan(&statut, &booking.PatientID, &booking.MedecinID)
			if err != nil {
				if postgres.IsNoRows(err) {
					return ErrRdvNotFound
				}
				return err
			}
			if statut != agenda.StatutPlanifie && statut != agenda.StatutConfirme {
				return ErrNonModifiable
			}
		} else {
			var ok bool
			if err := tx.QueryRow(ctx, RdvQueries.PatientExiste, cabinetID, booking.PatientID).Scan(&ok); err != nil {
				return err
			}
			if !ok {
				return ErrPatientInconnu
			}
		}

		var medecinOK bool
		if err := tx.QueryRow(ctx, RdvQueries.MedecinActif, cabinetID, booking.MedecinID).Scan(&medecinOK); err != nil {
			return err
		}
		if !medecinOK {
			return ErrMedecinInvalide
		}

		occupees, err := occupied(ctx, tx, cabinetID, booking.MedecinID, booking.Date, excludeID)
		if err != nil {
			return err
		}
		demande := agenda.Plage{Debut: booking.Debut, Fin: booking.Debut + booking.Duree}
		for _, p := range occupees {
			if demande.Chevauche(p) {
				return &agenda.Error{Code: agenda.CodeCreneauOccupe, Message: "le médecin a déjà un rendez-vous sur ce créneau"}
			}
		}

		var actifs int
		if err := tx.QueryRow(ctx, RdvQueries.PatientDay, cabinetID, booking.PatientID, booking.Date, excludeID).Scan(&actifs); err != nil {
			return err
		}
		if actifs > 0 {
			return &agenda.Error{Code: agenda.CodePatientPlanifie, Message: "le patient a déjà un rendez-vous ce jour"}
		}

		if excludeID != "" {
			id = excludeID
			return tx.Exec(ctx, RdvQueries.Reschedule, cabinetID, excludeID, booking.Date, booking.Heure, booking.Duree, booking.Motif)
		}
		return tx.QueryRow(ctx, RdvQueries.Insert, cabinetID, booking.PatientID, booking.MedecinID,
			booking.Date, booking.Heure, booking.Duree, booking.Motif, booking.CreatedBy).Scan(&id)
	})
	return id, err
}

// Get retourne nil, nil pour un rendez-vous inconnu
func (r *RdvRepository) Get(ctx context.Context, cabinetID, id string) (*dto.RendezVous, error) {
	return scanRdv(r.db.QueryRow(ctx, RdvQueries.Get, cabinetID, id))
}

// Day agenda d'un jour, par heure
func (r *RdvRepository) Day(ctx context.Context, cabinetID, date, medecinID string) ([]dto.RendezVous, error) {
	rows, err := r.db.Query(ctx, RdvQueries.Day, cabinetID, date, medecinID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []dto.RendezVous{}
	for rows.Next() {
		rdv, err := scanRdv(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rdv)
	}
	return list, rows.Err()
}

// Upcoming prochains rendez-vous planifiés ou confirmés
func (r *RdvRepository) Upcoming(ctx context.Context, cabinetID, date, heure string, limit int) ([]dto.RendezVous, error) {
	rows, err := r.db.Query(ctx, RdvQueries.Upcoming, cabinetID, date, heure, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []dto.RendezVous{}
	for rows.Next() {
		rdv, err := scanRdv(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rdv)
	}
	return list, rows.Err()
}

// Occupied plages bloquées du médecin pour le jour donné
func (r *RdvRepository) Occupied(ctx context.Context, cabinetID, medecinID, date string) ([]agenda.Plage, error) {
	return occupied(ctx, r.db, cabinetID, medecinID, date, "")
}

// ChangeStatut applique une transition et retourne le statut précédent
func (r *RdvRepository) ChangeStatut(ctx context.Context, cabinetID, id, to string) (string, error) {
	var from string
	err := r.tx.WithTransaction(ctx, func(tx *postgres.Transaction) error {
		var err error
		from, err = TransitionTx(ctx, tx, cabinetID, id, to)
		return err
	})
	return from, err
}

// TransitionTx verrouille le rendez-vous et applique la transition dans la transaction q
func TransitionTx(ctx context.Context, q postgres.Querier, cabinetID, id, to string) (string, error) {
	var from, patientID, medecinID string
	if err := q.QueryRow(ctx, RdvQueries.LockRdv, cabinetID, id).Scan(&from, &patientID, &medecinID); err != nil {
		if postgres.IsNoRows(err) {
			return "", ErrRdvNotFound
		}
		return "", err
	}
	if !agenda.CanTransition(from, to) {
		return from, &agenda.Error{Code: agenda.CodeTransition, Message: "transition " + from + " -> " + to + " interdite"}
	}
	return from, q.Exec(ctx, RdvQueries.UpdateStatut, cabinetID, id, to)
}

// Delete supprime un rendez-vous planifié et retourne sa date
func (r *RdvRepository) Delete(ctx context.Context, cabinetID, id string) (string, error) {
	var date string
	err := r.db.QueryRow(ctx, RdvQueries.Delete, cabinetID, id).Scan(&date)
	if err == nil {
		return date, nil
	}
	if !postgres.IsNoRows(err) {
		return "", err
	}

	var exists bool
	if err := r.db.QueryRow(ctx, RdvQueries.Exists, cabinetID, id).Scan(&exists); err != nil {
		return "", err
	}
	if exists {
		return "", ErrNonSupprimable
	}
	return "", ErrRdvNotFound
}

// MarkNoShows passe en absent les rendez-vous des jours précédents restés ouverts
func (r *RdvRepository) MarkNoShows(ctx context.Context, today string) ([]NoShow, error) {
	rows, err := r.db.Query(ctx, RdvQueries.MarkNoShows, today)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var marked []NoShow
	for rows.Next() {
		var n NoShow
		if err := rows.Scan(&n.CabinetID, &n.ID, &n.Date); err != nil {
			return nil, err
		}
		marked = append(marked, n)
	}
	return marked, rows.Err()
}

func occupied(ctx context.Context, q postgres.Querier, cabinetID, medecinID, date, excludeID string) ([]agenda.Plage, error) {
	rows, err := q.Query(ctx, RdvQueries.MedecinDay, cabinetID, medecinID, date, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plages []agenda.Plage
	for rows.Next() {
		var heure string
		var duree int
		if err := rows.Scan(&heure, &duree); err != nil {
			return nil, err
		}
		debut, err := agenda.ParseHeure(heure)
		if err != nil {
			return nil, err
		}
		plages = append(plages, agenda.Plage{Debut: debut, Fin: debut + duree})
	}
	return plages, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRdv(row rowScanner) (*dto.RendezVous, error) {
	var r dto.RendezVous
	err := row.Scan(&r.ID, &r.PatientID, &r.PatientCode, &r.PatientNom, &r.MedecinID, &r.MedecinNom,
		&r.Date, &r.Heure, &r.DureeMinutes, &r.Motif, &r.Statut, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}
