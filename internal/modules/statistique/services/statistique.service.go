package services

import (
	"context"
	"fmt"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/infrastructure/documents/excel"
	"cabinet-suite-core/internal/infrastructure/storage"
	"cabinet-suite-core/internal/modules/rdv/agenda"
	"cabinet-suite-core/internal/modules/statistique/dto"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/periode"
)

const topDiagnostics = 10

var statuts = []string{
	agenda.StatutPlanifie, agenda.StatutConfirme, agenda.StatutArrive,
	agenda.StatutTermine, agenda.StatutAnnule, agenda.StatutAbsent,
}

// StatistiqueStore agrégats en lecture seule
type StatistiqueStore interface {
	Compteurs(ctx context.Context, cabinetID string, b dto.Bornes) (dto.Compteurs, error)
	RdvParStatut(ctx context.Context, cabinetID string, b dto.Bornes) (map[string]int, error)
	Medecins(ctx context.Context, cabinetID string, b dto.Bornes) ([]dto.Medecin, error)
	Diagnostics(ctx context.Context, cabinetID string, b dto.Bornes, limit int) ([]dto.Diagnostic, error)
}

// ExportArchive copie des exports dans le répertoire du cabinet
type ExportArchive interface {
	Save(adminEmail, sub, name string, data []byte) (string, error)
}

type StatistiqueService struct {
	store    StatistiqueStore
	exports  ExportArchive
	devise   string
	location *time.Location
	now      func() time.Time
}

func NewStatistiqueService(store StatistiqueStore, exports ExportArchive, cfg *config.Config) *StatistiqueService {
	location := cfg.Agenda.Location
	if location == nil {
		location = time.Local
	}
	return &StatistiqueService{
		store:    store,
		exports:  exports,
		devise:   cfg.Facturation.Devise,
		location: location,
		now:      time.Now,
	}
}

// Rapport synthèse de la période, série mensuelle complète
func (s *StatistiqueService) Rapport(ctx context.Context, cabinet tenant.CabinetContext, q dto.PeriodeQuery) (*dto.Rapport, error) {
	p, err := periode.Resoudre(q.Du, q.Au, s.now(), s.location)
	if err != nil {
		return nil, err
	}
	total := bornes(p.Du, p.Au)

	resume, err := s.store.Compteurs(ctx, cabinet.ID, total)
	if err != nil {
		return nil, apperr.Internal("STATS_FAILED", err)
	}
	parStatut, err := s.store.RdvParStatut(ctx, cabinet.ID, total)
	if err != nil {
		return nil, apperr.Internal("STATS_FAILED", err)
	}
	medecins, err := s.store.Medecins(ctx, cabinet.ID, total)
	if err != nil {
		return nil, apperr.Internal("STATS_FAILED", err)
	}
	diagnostics, err := s.store.Diagnostics(ctx, cabinet.ID, total, topDiagnostics)
	if err != nil {
		return nil, apperr.Internal("STATS_FAILED", err)
	}

	rapport := &dto.Rapport{
		Du:           p.DuISO(),
		Au:           p.AuISO(),
		Devise:       s.devise,
		Resume:       resume,
		RdvParStatut: make(map[string]int, len(statuts)),
		Medecins:     medecins,
		Diagnostics:  diagnostics,
	}
	for _, statut := range statuts {
		rapport.RdvParStatut[statut] = parStatut[statut]
	}

	for _, debutMois := range p.Mois() {
		debut := debutMois
		if debut.Before(p.Du) {
			debut = p.Du
		}
		fin := debutMois.AddDate(0, 1, -1)
		if fin.After(p.Au) {
			fin = p.Au
		}
		compteurs, err := s.store.Compteurs(ctx, cabinet.ID, bornes(debut, fin))
		if err != nil {
			return nil, apperr.Internal("STATS_FAILED", err)
		}
		rapport.Mensuel = append(rapport.Mensuel, dto.Mois{Mois: debutMois.Format("2006-01"), Compteurs: compteurs})
	}
	return rapport, nil
}

// Export même rapport en classeur multi-feuilles
func (s *StatistiqueService) Export(ctx context.Context, cabinet tenant.CabinetContext, q dto.PeriodeQuery) ([]byte, string, error) {
	r, err := s.Rapport(ctx, cabinet, q)
	if err != nil {
		return nil, "", err
	}

	resume := [][]interface{}{
		{"Période", r.Du + " au " + r.Au},
		{"Nouveaux patients", r.Resume.NouveauxPatients},
		{"Rendez-vous", r.Resume.RendezVous},
		{"Consultations", r.Resume.Consultations},
		{"Encaissé (" + s.devise + ")", excel.Montant(r.Resume.Encaisse)},
		{"En attente (" + s.devise + ")", excel.Montant(r.Resume.EnAttente)},
	}
	for _, statut := range statuts {
		resume = append(resume, []interface{}{"Rendez-vous " + statut, r.RdvParStatut[statut]})
	}

	mensuel := make([][]interface{}, 0, len(r.Mensuel))
	for _, m := range r.Mensuel {
		mensuel = append(mensuel, []interface{}{
			m.Mois, m.NouveauxPatients, m.RendezVous, m.Consultations, excel.Montant(m.Encaisse), excel.Montant(m.EnAttente),
		})
	}
	medecins := make([][]interface{}, 0, len(r.Medecins))
	for _, m := range r.Medecins {
		medecins = append(medecins, []interface{}{m.Nom, m.Consultations, excel.Montant(m.Encaisse)})
	}
	diagnostics := make([][]interface{}, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		diagnostics = append(diagnostics, []interface{}{d.Libelle, d.Nombre})
	}

	data, err := excel.WriteWorkbook(
		excel.Sheet{Name: "Résumé", Headers: []string{"Indicateur", "Valeur"}, Rows: resume, Widths: map[int]float64{0: 28, 1: 26}},
		excel.Sheet{Name: "Mensuel", Headers: []string{"Mois", "Nouveaux patients", "Rendez-vous", "Consultations", "Encaissé", "En attente"}, Rows: mensuel},
		excel.Sheet{Name: "Médecins", Headers: []string{"Médecin", "Consultations", "Encaissé"}, Rows: medecins, Widths: map[int]float64{0: 30}},
		excel.Sheet{Name: "Diagnostics", Headers: []string{"Diagnostic", "Nombre"}, Rows: diagnostics, Widths: map[int]float64{0: 40}},
	)
	if err != nil {
		return nil, "", apperr.Internal("STATS_EXPORT_FAILED", err)
	}

	name := fmt.Sprintf("statistiques-%s-%s.xlsx", r.Du, r.Au)
	if _, err := s.exports.Save(cabinet.EmailAdmin, storage.DirExports, name, data); err != nil {
		fmt.Printf("[STATISTIQUES] ⚠️ Archivage export %s échoué: %v\n", name, err)
	}
	return data, name, nil
}

// bornes jours inclus du..au en intervalle [du, au+1)
func bornes(du, au time.Time) dto.Bornes {
	return dto.Bornes{Debut: du, Fin: au.AddDate(0, 0, 1)}
}
