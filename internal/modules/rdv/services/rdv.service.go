package services

import (
	"context"
	"errors"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/modules/rdv/agenda"
	"cabinet-suite-core/internal/modules/rdv/dto"
	"cabinet-suite-core/internal/modules/rdv/queries"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/audit"
	"cabinet-suite-core/internal/shared/middleware/tenant"
)

// RdvStore persistance de l'agenda
type RdvStore interface {
	Book(ctx context.Context, cabinetID string, res dto.Reservation, excludeID string) (string, error)
	Get(ctx context.Context, cabinetID, id string) (*dto.RendezVous, error)
	Day(ctx context.Context, cabinetID, date, medecinID string) ([]dto.RendezVous, error)
	Occupied(ctx context.Context, cabinetID, medecinID, date string) ([]agenda.Plage, error)
	ChangeStatut(ctx context.Context, cabinetID, id, to string) (string, error)
	Delete(ctx context.Context, cabinetID, id string) (string, error)
	MarkNoShows(ctx context.Context, today string) ([]queries.NoShow, error)
}

type RdvService struct {
	store    RdvStore
	broker   *Broker
	journal  *audit.Journal
	horaires agenda.Horaires
	now      func() time.Time
}

func NewRdvService(store RdvStore, broker *Broker, journal *audit.Journal, cfg *config.Config) *RdvService {
	return &RdvService{
		store:    store,
		broker:   broker,
		journal:  journal,
		horaires: agenda.NewHoraires(cfg.Agenda),
		now:      time.Now,
	}
}

// Horaires grille utilisée pour les contrôles
func (s *RdvService) Horaires() agenda.Horaires {
	return s.horaires
}

// Create réserve un créneau après contrôle de la grille puis des conflits
func (s *RdvService) Create(ctx context.Context, cabinet tenant.CabinetContext, userID string, req dto.CreateRdvRequest) (*dto.RendezVous, error) {
	res, err := s.reservation(req.Date, req.Heure, req.Duree, req.Motif)
	if err != nil {
		return nil, err
	}
	res.PatientID = req.PatientID
	res.MedecinID = req.MedecinID
	res.CreatedBy = userID

	id, err := s.store.Book(ctx, cabinet.ID, res, "")
	if err != nil {
		return nil, mapStoreError(err, "RDV_CREATE_FAILED")
	}
	return s.publish(ctx, cabinet.ID, dto.EvenementCree, id)
}

// Update déplace un rendez-vous planifié ou confirmé
func (s *RdvService) Update(ctx context.Context, cabinet tenant.CabinetContext, id string, req dto.UpdateRdvRequest) (*dto.RendezVous, error) {
	res, err := s.reservation(req.Date, req.Heure, req.Duree, req.Motif)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Book(ctx, cabinet.ID, res, id); err != nil {
		return nil, mapStoreError(err, "RDV_UPDATE_FAILED")
	}
	return s.publish(ctx, cabinet.ID, dto.EvenementModifie, id)
}

// Agenda rendez-vous d'un jour (aujourd'hui par défaut)
func (s *RdvService) Agenda(ctx context.Context, cabinet tenant.CabinetContext, q dto.AgendaQuery) ([]dto.RendezVous, error) {
	date, err := s.jour(q.Date)
	if err != nil {
		return nil, err
	}
	list, err := s.store.Day(ctx, cabinet.ID, date.Format("2006-01-02"), q.MedecinID)
	if err != nil {
		return nil, apperr.Internal("RDV_LIST_FAILED", err)
	}
	return list, nil
}

// Creneaux créneaux libres d'un médecin
func (s *RdvService) Creneaux(ctx context.Context, cabinet tenant.CabinetContext, q dto.AgendaQuery) (*dto.CreneauxResponse, error) {
	if q.MedecinID == "" {
		return nil, apperr.Validation("MEDECIN_REQUIS", "medecin_id est requis")
	}
	jour, err := s.jour(q.Date)
	if err != nil {
		return nil, err
	}
	duree := q.Duree
	if duree <= 0 {
		duree = s.horaires.Slot
	}

	date := jour.Format("2006-01-02")
	occupees, err := s.store.Occupied(ctx, cabinet.ID, q.MedecinID, date)
	if err != nil {
		return nil, apperr.Internal("RDV_CRENEAUX_FAILED", err)
	}
	return &dto.CreneauxResponse{
		Date:      date,
		MedecinID: q.MedecinID,
		Duree:     duree,
		Creneaux:  s.horaires.CreneauxLibres(jour, duree, occupees, s.now()),
	}, nil
}

// ChangeStatut applique une transition; 409 TRANSITION_INVALIDE sinon
func (s *RdvService) ChangeStatut(ctx context.Context, cabinet tenant.CabinetContext, userID, id, statut string) (*dto.RendezVous, error) {
	if !agenda.StatutValide(statut) {
		return nil, apperr.Validation("STATUT_INVALIDE", "Statut inconnu")
	}

	from, err := s.store.ChangeStatut(ctx, cabinet.ID, id, statut)
	if err != nil {
		return nil, mapStoreError(err, "RDV_STATUT_FAILED")
	}

	s.journal.Record(audit.Event{
		CabinetID:     cabinet.ID,
		UtilisateurID: userID,
		Action:        audit.ActionRdvStatut,
		Cible:         id,
		Details:       map[string]interface{}{"de": from, "vers": statut},
	})
	return s.publish(ctx, cabinet.ID, dto.EvenementStatut, id)
}

// Delete supprime un rendez-vous encore planifié
func (s *RdvService) Delete(ctx context.Context, cabinet tenant.CabinetContext, id string) error {
	date, err := s.store.Delete(ctx, cabinet.ID, id)
	if err != nil {
		return mapStoreError(err, "RDV_DELETE_FAILED")
	}
	s.broker.Publish(cabinet.ID, dto.Evenement{Type: dto.EvenementSupprime, ID: id, Date: date})
	return nil
}

// Subscribe flux des changements d'agenda du cabinet
func (s *RdvService) Subscribe(cabinet tenant.CabinetContext) (<-chan dto.Evenement, func()) {
	return s.broker.Subscribe(cabinet.ID)
}

// MarkNoShows passe en absent les rendez-vous des jours passés restés ouverts
func (s *RdvService) MarkNoShows(ctx context.Context) (int, error) {
	today := s.horaires.Aujourdhui(s.now()).Format("2006-01-02")
	marked, err := s.store.MarkNoShows(ctx, today)
	if err != nil {
		return 0, err
	}
	for _, n := range marked {
		s.broker.Publish(n.CabinetID, dto.Evenement{Type: dto.EvenementStatut, ID: n.ID, Date: n.Date})
	}
	return len(marked), nil
}

func (s *RdvService) reservation(date, heure string, duree int, motif string) (dto.Reservation, error) {
	jour, err := s.horaires.ParseJour(date)
	if err != nil {
		return dto.Reservation{}, mapStoreError(err, "")
	}
	debut, err := agenda.ParseHeure(heure)
	if err != nil {
		return dto.Reservation{}, mapStoreError(err, "")
	}
	if duree <= 0 {
		duree = s.horaires.Slot
	}
	if err := s.horaires.Valider(jour, debut, duree, s.now()); err != nil {
		return dto.Reservation{}, mapStoreError(err, "")
	}
	return dto.Reservation{
		Date:  jour.Format("2006-01-02"),
		Heure: agenda.FormatHeure(debut),
		Debut: debut,
		Duree: duree,
		Motif: motif,
	}, nil
}

func (s *RdvService) jour(date string) (time.Time, error) {
	if date == "" {
		return s.horaires.Aujourdhui(s.now()), nil
	}
	jour, err := s.horaires.ParseJour(date)
	if err != nil {
		return time.Time{}, mapStoreError(err, "")
	}
	return jour, nil
}

// publish relit le rendez-vous et le diffuse au cabinet
func (s *RdvService) publish(ctx context.Context, cabinetID, kind, id string) (*dto.RendezVous, error) {
	rdv, err := s.store.Get(ctx, cabinetID, id)
	if err != nil {
		return nil, apperr.Internal("RDV_LOOKUP_FAILED", err)
	}
	if rdv == nil {
		return nil, rdvNotFound()
	}
	s.broker.Publish(cabinetID, dto.Evenement{Type: kind, ID: id, Date: rdv.Date, RendezVous: rdv})
	return rdv, nil
}

func mapStoreError(err error, code string) error {
	var refus *agenda.Error
	if errors.As(err, &refus) {
		switch refus.Code {
		case agenda.CodeCreneauOccupe, agenda.CodePatientPlanifie, agenda.CodeTransition:
			return apperr.Conflict(refus.Code, refus.Message)
		}
		return apperr.Validation(refus.Code, refus.Message)
	}

	switch {
	case errors.Is(err, queries.ErrRdvNotFound):
		return rdvNotFound()
	case errors.Is(err, queries.ErrPatientInconnu):
		return apperr.NotFound("PATIENT_NOT_FOUND", "Patient introuvable")
	case errors.Is(err, queries.ErrMedecinInvalide):
		return apperr.Validation("MEDECIN_INVALIDE", "Le médecin doit être un praticien actif du cabinet")
	case errors.Is(err, queries.ErrNonModifiable):
		return apperr.Conflict("RDV_NON_MODIFIABLE", "Seul un rendez-vous planifié ou confirmé peut être déplacé")
	case errors.Is(err, queries.ErrNonSupprimable):
		return apperr.Conflict("RDV_NON_SUPPRIMABLE", "Seul un rendez-vous planifié peut être supprimé")
	}
	return apperr.Internal(code, err)
}

func rdvNotFound() *apperr.Error {
	return apperr.NotFound("RDV_NOT_FOUND", "Rendez-vous introuvable")
}
