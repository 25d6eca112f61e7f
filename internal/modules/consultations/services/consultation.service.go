package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cabinet-suite-core/internal/infrastructure/documents/pdf"
	"cabinet-suite-core/internal/infrastructure/storage"
	"cabinet-suite-core/internal/modules/consultations/dto"
	"cabinet-suite-core/internal/modules/consultations/queries"
	"cabinet-suite-core/internal/modules/rdv/agenda"
	rdvDto "cabinet-suite-core/internal/modules/rdv/dto"
	rdvQueries "cabinet-suite-core/internal/modules/rdv/queries"
	"cabinet-suite-core/internal/shared/apperr"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/utils"
)

const (
	listeParDefaut = 50
	joursReposMax  = 365
)

// ConsultationStore persistance des consultations
type ConsultationStore interface {
	Create(ctx context.Context, cabinetID string, c dto.NouvelleConsultation) (string, *queries.Terminaison, error)
	Get(ctx context.Context, cabinetID, id string) (*dto.Consultation, error)
	List(ctx context.Context, cabinetID, patientID string, limit int) ([]dto.Consultation, error)
	Update(ctx context.Context, cabinetID, id string, f dto.ConsultationFields) error
}

// CabinetHeader en-tête imprimé sur les documents
type CabinetHeader interface {
	EnTete(ctx context.Context, cabinet tenant.CabinetContext) (pdf.EnTete, error)
}

// DocumentArchive copie des PDF dans le répertoire du cabinet
type DocumentArchive interface {
	Save(adminEmail, sub, name string, data []byte) (string, error)
}

// AgendaNotifier prévient l'accueil qu'un rendez-vous est terminé
type AgendaNotifier interface {
	Publish(cabinetID string, evt rdvDto.Evenement)
}

// Document PDF généré
type Document struct {
	Nom  string
	Data []byte
}

type ConsultationService struct {
	store    ConsultationStore
	header   CabinetHeader
	renderer *pdf.Renderer
	archive  DocumentArchive
	agenda   AgendaNotifier
	now      func() time.Time
}

func NewConsultationService(store ConsultationStore, header CabinetHeader, renderer *pdf.Renderer, archive DocumentArchive, agenda AgendaNotifier) *ConsultationService {
	return &ConsultationService{
		store:    store,
		header:   header,
		renderer: renderer,
		archive:  archive,
		agenda:   agenda,
		now:      time.Now,
	}
}

// Create enregistre la consultation; le rendez-vous lié passe à terminé
func (s *ConsultationService) Create(ctx context.Context, cabinet tenant.CabinetContext, session authMiddleware.SessionContext, req dto.CreateConsultationRequest) (*dto.Consultation, error) {
	id, fin, err := s.store.Create(ctx, cabinet.ID, dto.NouvelleConsultation{
		PatientID:          utils.CanonicalUUID(req.PatientID),
		MedecinID:          session.UserID,
		RdvID:              utils.CanonicalUUID(req.RdvID),
		ConsultationFields: req.ConsultationFields,
	})
	if err != nil {
		return nil, mapStoreError(err, "CONSULTATION_CREATE_FAILED")
	}
	if fin != nil {
		s.agenda.Publish(cabinet.ID, rdvDto.Evenement{Type: rdvDto.EvenementStatut, ID: fin.RdvID})
	}
	return s.Get(ctx, cabinet, id)
}

func (s *ConsultationService) Get(ctx context.Context, cabinet tenant.CabinetContext, id string) (*dto.Consultation, error) {
	c, err := s.store.Get(ctx, cabinet.ID, id)
	if err != nil {
		return nil, apperr.Internal("CONSULTATION_LOOKUP_FAILED", err)
	}
	if c == nil {
		return nil, consultationNotFound()
	}
	return c, nil
}

// List consultations d'un patient, ou les plus récentes du cabinet
func (s *ConsultationService) List(ctx context.Context, cabinet tenant.CabinetContext, q dto.ListQuery) ([]dto.Consultation, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = listeParDefaut
	}
	list, err := s.store.List(ctx, cabinet.ID, q.PatientID, limit)
	if err != nil {
		return nil, apperr.Internal("CONSULTATION_LIST_FAILED", err)
	}
	return list, nil
}

// Update réservé à l'auteur et à l'administrateur
func (s *ConsultationService) Update(ctx context.Context, cabinet tenant.CabinetContext, session authMiddleware.SessionContext, id string, f dto.ConsultationFields) (*dto.Consultation, error) {
	current, err := s.Get(ctx, cabinet, id)
	if err != nil {
		return nil, err
	}
	if current.MedecinID != session.UserID && session.Role != authMiddleware.RoleAdmin {
		return nil, apperr.Forbidden("CONSULTATION_AUTEUR", "Seul l'auteur ou l'administrateur peut modifier la consultation")
	}

	if err := s.store.Update(ctx, cabinet.ID, id, f); err != nil {
		return nil, mapStoreError(err, "CONSULTATION_UPDATE_FAILED")
	}
	return s.Get(ctx, cabinet, id)
}

// Ordonnance PDF des prescriptions; 409 ORDONNANCE_VIDE sans ligne
func (s *ConsultationService) Ordonnance(ctx context.Context, cabinet tenant.CabinetContext, id string) (*Document, error) {
	c, err := s.Get(ctx, cabinet, id)
	if err != nil {
		return nil, err
	}
	if len(c.Prescriptions) == 0 {
		return nil, apperr.Conflict("ORDONNANCE_VIDE", "Aucune prescription pour cette consultation")
	}
	entete, err := s.header.EnTete(ctx, cabinet)
	if err != nil {
		return nil, err
	}

	lignes := make([]pdf.LigneOrdonnance, 0, len(c.Prescriptions))
	for _, p := range c.Prescriptions {
		lignes = append(lignes, pdf.LigneOrdonnance{Medicament: p.Medicament, Posologie: p.Posologie, Duree: p.Duree})
	}
	data, err := s.renderer.Ordonnance(pdf.Ordonnance{
		Cabinet:     entete,
		Medecin:     c.MedecinNom,
		Patient:     c.PatientNom,
		CodePatient: c.PatientCode,
		AgePatient:  Age(c.PatientNaissance, c.DateConsultation),
		Date:        c.DateConsultation,
		Lignes:      lignes,
	})
	if err != nil {
		return nil, apperr.Internal("ORDONNANCE_PDF_FAILED", err)
	}
	return s.archiver(cabinet, "ordonnance", c, data)
}

// Certificat PDF; un arrêt de repos couvre 1 à 365 jours
func (s *ConsultationService) Certificat(ctx context.Context, cabinet tenant.CabinetContext, id string, req dto.CertificatRequest) (*Document, error) {
	if req.Type == pdf.CertificatRepos && (req.Jours < 1 || req.Jours > joursReposMax) {
		return nil, apperr.Validation("CERTIFICAT_JOURS_INVALIDE", "Le repos doit couvrir de 1 à 365 jours")
	}
	c, err := s.Get(ctx, cabinet, id)
	if err != nil {
		return nil, err
	}

	debut := c.DateConsultation
	if req.Debut != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Debut, c.DateConsultation.Location())
		if err != nil {
			return nil, apperr.Validation("DATE_INVALIDE", "Date de début invalide")
		}
		debut = parsed
	}
	entete, err := s.header.EnTete(ctx, cabinet)
	if err != nil {
		return nil, err
	}

	data, err := s.renderer.Certificat(pdf.Certificat{
		Cabinet:       entete,
		Medecin:       c.MedecinNom,
		Patient:       c.PatientNom,
		DateNaissance: c.PatientNaissance,
		Type:          req.Type,
		Jours:         req.Jours,
		Debut:         debut,
		Observations:  req.Observations,
		Date:          s.now(),
	})
	if err != nil {
		return nil, apperr.Internal("CERTIFICAT_PDF_FAILED", err)
	}
	return s.archiver(cabinet, "certificat-"+req.Type, c, data)
}

// archiver écrit le document sous documents/<année>/; un échec d'écriture n'empêche pas la réponse
func (s *ConsultationService) archiver(cabinet tenant.CabinetContext, prefixe string, c *dto.Consultation, data []byte) (*Document, error) {
	now := s.now()
	nom := fmt.Sprintf("%s-%s-%s.pdf", prefixe, c.PatientCode, now.Format("20060102-150405"))
	sub := storage.DirDocuments + "/" + strconv.Itoa(now.Year())
	if _, err := s.archive.Save(cabinet.EmailAdmin, sub, nom, data); err != nil {
		fmt.Printf("[CONSULTATIONS] ⚠️ Archivage %s impossible: %v\n", nom, err)
	}
	return &Document{Nom: nom, Data: data}, nil
}

// Age en années révolues à la date donnée, en mois avant un an; "" si inconnue
func Age(naissance *time.Time, at time.Time) string {
	if naissance == nil {
		return ""
	}
	months := (at.Year()-naissance.Year())*12 + int(at.Month()) - int(naissance.Month())
	if at.Day() < naissance.Day() {
		months--
	}
	if months < 0 {
		months = 0
	}
	if months < 12 {
		return fmt.Sprintf("%d mois", months)
	}
	return fmt.Sprintf("%d ans", months/12)
}

func mapStoreError(err error, code string) error {
	var refus *agenda.Error
	switch {
	case errors.As(err, &refus):
		return apperr.Conflict(refus.Code, "Le rendez-vous ne peut pas être clos: "+refus.Message)
	case errors.Is(err, queries.ErrPatientInconnu):
		return apperr.NotFound("PATIENT_NOT_FOUND", "Patient introuvable")
	case errors.Is(err, queries.ErrRdvAutrePatient):
		return apperr.Validation("RDV_AUTRE_PATIENT", "Le rendez-vous concerne un autre patient")
	case errors.Is(err, rdvQueries.ErrRdvNotFound):
		return apperr.NotFound("RDV_NOT_FOUND", "Rendez-vous introuvable")
	case errors.Is(err, queries.ErrConsultationAbsente):
		return consultationNotFound()
	}
	return apperr.Internal(code, err)
}

func consultationNotFound() *apperr.Error {
	return apperr.NotFound("CONSULTATION_NOT_FOUND", "Consultation introuvable")
}
