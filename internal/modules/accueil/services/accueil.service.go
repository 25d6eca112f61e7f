package services

import (
	"context"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/modules/accueil/dto"
	"cabinet-suite-core/internal/modules/rdv/agenda"
	rdvDto "cabinet-suite-core/internal/modules/rdv/dto"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/middleware/tenant"
)

const prochainsMax = 5

// AgendaSource rendez-vous du jour et à venir
type AgendaSource interface {
	Day(ctx context.Context, cabinetID, date, medecinID string) ([]rdvDto.RendezVous, error)
	Upcoming(ctx context.Context, cabinetID, date, heure string, limit int) ([]rdvDto.RendezVous, error)
}

// FactureSource encours de facturation
type FactureSource interface {
	Impayees(ctx context.Context, cabinetID string) (int, int64, error)
}

// LicenceSource résumé de licence, même expirée
type LicenceSource interface {
	Summary(ctx context.Context, cabinet tenant.CabinetContext) (*tenant.LicenceSummary, error)
}

type AccueilService struct {
	agenda   AgendaSource
	factures FactureSource
	licences LicenceSource
	devise   string
	location *time.Location
	now      func() time.Time
}

func NewAccueilService(agenda AgendaSource, factures FactureSource, licences LicenceSource, cfg *config.Config) *AccueilService {
	location := cfg.Agenda.Location
	if location == nil {
		location = time.Local
	}
	return &AccueilService{
		agenda:   agenda,
		factures: factures,
		licences: licences,
		devise:   cfg.Facturation.Devise,
		location: location,
		now:      time.Now,
	}
}

// Tableau vue d'ensemble de la journée du cabinet
func (s *AccueilService) Tableau(ctx context.Context, cabinet tenant.CabinetContext) (*dto.Tableau, error) {
	now := s.now().In(s.location)
	date := now.Format("2006-01-02")

	jour, err := s.agenda.Day(ctx, cabinet.ID, date, "")
	if err != nil {
		return nil, apperr.Internal("ACCUEIL_AGENDA_FAILED", err)
	}
	prochains, err := s.agenda.Upcoming(ctx, cabinet.ID, date, now.Format("15:04"), prochainsMax)
	if err != nil {
		return nil, apperr.Internal("ACCUEIL_AGENDA_FAILED", err)
	}
	nombre, montant, err := s.factures.Impayees(ctx, cabinet.ID)
	if err != nil {
		return nil, apperr.Internal("ACCUEIL_FACTURES_FAILED", err)
	}
	licence, err := s.licences.Summary(ctx, cabinet)
	if err != nil {
		return nil, err
	}

	tableau := &dto.Tableau{
		Date:         date,
		Devise:       s.devise,
		RdvDuJour:    len(jour),
		RdvParStatut: map[string][]rdvDto.RendezVous{},
		Prochains:    prochains,
		EnAttente:    []rdvDto.RendezVous{},
		Impayees:     dto.Impayees{Nombre: nombre, Montant: montant},
		Licence:      licence,
	}
	for _, r := range jour {
		tableau.RdvParStatut[r.Statut] = append(tableau.RdvParStatut[r.Statut], r)
		if r.Statut == agenda.StatutArrive {
			tableau.EnAttente = append(tableau.EnAttente, r)
		}
	}
	return tableau, nil
}
