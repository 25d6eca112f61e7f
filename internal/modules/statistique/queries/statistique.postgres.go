package queries

import (
	"context"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
	"cabinet-suite-core/internal/modules/statistique/dto"
)

// StatistiqueQueries agrégats; $2/$3 instants [début, fin), $4/$5 jours inclus
var StatistiqueQueries = struct {
	Compteurs   string
	RdvStatuts  string
	Medecins    string
	Diagnostics string
}{
	Compteurs: `
		SELECT
			(SELECT count(*) FROM patients
			 WHERE cabinet_id = $1 AND created_at >= $2 AND created_at < $3),
			(SELECT count(*) FROM rendez_vous
			 WHERE cabinet_id = $1 AND date_rdv BETWEEN $4::date AND $5::date),
			(SELECT count(*) FROM consultations
			 WHERE cabinet_id = $1 AND date_consultation >= $2 AND date_consultation < $3),
			(SELECT COALESCE(sum(total), 0) FROM factures
			 WHERE cabinet_id = $1 AND statut = 'payee' AND payee_le >= $2 AND payee_le < $3),
			(SELECT COALESCE(sum(total), 0) FROM factures
			 WHERE cabinet_id = $1 AND statut = 'impayee' AND date_facture BETWEEN $4::date AND $5::date)
	`,

	RdvStatuts: `
		SELECT statut, count(*) FROM rendez_vous
		WHERE cabinet_id = $1 AND date_rdv BETWEEN $2::date AND $3::date
		GROUP BY statut
	`,

	Medecins: `
		SELECT u.id, trim(u.nom || ' ' || u.prenoms),
			(SELECT count(*) FROM consultations c
			 WHERE c.medecin_id = u.id AND c.date_consultation >= $2 AND c.date_consultation < $3),
			(SELECT COALESCE(sum(f.total), 0) FROM factures f
			 JOIN consultations c ON c.id = f.consultation_id
			 WHERE c.medecin_id = u.id AND f.statut = 'payee' AND f.payee_le >= $2 AND f.payee_le < $3)
		FROM utilisateurs u
		WHERE u.cabinet_id = $1 AND u.role IN ('medecin', 'admin')
		ORDER BY 3 DESC, 2
	`,

	Diagnostics: `
		SELECT lower(trim(diagnostic)) AS libelle, count(*) AS nombre
		FROM consultations
		WHERE cabinet_id = $1 AND date_consultation >= $2 AND date_consultation < $3
		  AND trim(diagnostic) <> ''
		GROUP BY libelle
		ORDER BY nombre DESC, libelle
		LIMIT $4
	`,
}

type StatistiqueRepository struct {
	db *postgres.Client
}

func NewStatistiqueRepository(db *postgres.Client) *StatistiqueRepository {
	return &StatistiqueRepository{db: db}
}

func (r *StatistiqueRepository) Compteurs(ctx context.Context, cabinetID string, b dto.Bornes) (dto.Compteurs, error) {
	var c dto.Compteurs
	err := r.db.QueryRow(ctx, StatistiqueQueries.Compteurs, cabinetID, b.Debut, b.Fin, b.DuISO(), b.AuISO()).
		Scan(&c.NouveauxPatients, &c.RendezVous, &c.Consultations, &c.Encaisse, &c.EnAttente)
	return c, err
}

func (r *StatistiqueRepository) RdvParStatut(ctx context.Context, cabinetID string, b dto.Bornes) (map[string]int, error) {
	rows, err := r.db.Query(ctx, StatistiqueQueries.RdvStatuts, cabinetID, b.DuISO(), b.AuISO())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var statut string
		var n int
		if err := rows.Scan(&statut, &n); err != nil {
			return nil, err
		}
		counts[statut] = n
	}
	return counts, rows.Err()
}

func (r *StatistiqueRepository) Medecins(ctx context.Context, cabinetID string, b dto.Bornes) ([]dto.Medecin, error) {
	rows, err := r.db.Query(ctx, StatistiqueQueries.Medecins, cabinetID, b.Debut, b.Fin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []dto.Medecin{}
	for rows.Next() {
		var m dto.Medecin
		if err := rows.Scan(&m.ID, &m.Nom, &m.Consultations, &m.Encaisse); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func (r *StatistiqueRepository) Diagnostics(ctx context.Context, cabinetID string, b dto.Bornes, limit int) ([]dto.Diagnostic, error) {
	rows, err := r.db.Query(ctx, StatistiqueQueries.Diagnostics, cabinetID, b.Debut, b.Fin, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []dto.Diagnostic{}
	for rows.Next() {
		var d dto.Diagnostic
		if err := rows.Scan(&d.Libelle, &d.Nombre); err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
