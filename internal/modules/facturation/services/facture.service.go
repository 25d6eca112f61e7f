package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/infrastructure/documents/excel"
	"cabinet-suite-core/internal/infrastructure/documents/pdf"
	"cabinet-suite-core/internal/infrastructure/storage"
	"cabinet-suite-core/internal/modules/facturation/dto"
	"cabinet-suite-core/internal/modules/facturation/queries"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/audit"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/periode"
	"cabinet-suite-core/internal/shared/utils"
)

const (
	listeMax  = 500
	exportMax = 10000
)

// FactureStore persistance des factures
type FactureStore interface {
	Create(ctx context.Context, cabinetID string, f dto.NouvelleFacture) (string, error)
	Get(ctx context.Context, cabinetID, id string) (*dto.Facture, error)
	List(ctx context.Context, cabinetID string, filtre dto.Filtre) ([]dto.Facture, error)
	Pay(ctx context.Context, cabinetID, id, mode string, at time.Time) error
	Cancel(ctx context.Context, cabinetID, id, motif string) error
}

// CabinetHeader en-tête imprimé sur les factures
type CabinetHeader interface {
	EnTete(ctx context.Context, cabinet tenant.CabinetContext) (pdf.EnTete, error)
}

// FileArchive copie des documents dans le répertoire du cabinet
type FileArchive interface {
	Save(adminEmail, sub, name string, data []byte) (string, error)
}

// Fichier document généré
type Fichier struct {
	Nom  string
	Data []byte
}

type FactureService struct {
	store    FactureStore
	header   CabinetHeader
	renderer *pdf.Renderer
	archive  FileArchive
	journal  *audit.Journal
	location *time.Location
	now      func() time.Time
}

func NewFactureService(store FactureStore, header CabinetHeader, renderer *pdf.Renderer, archive FileArchive, journal *audit.Journal, cfg *config.Config) *FactureService {
	location := cfg.Agenda.Location
	if location == nil {
		location = time.Local
	}
	return &FactureService{
		store:    store,
		header:   header,
		renderer: renderer,
		archive:  archive,
		journal:  journal,
		location: location,
		now:      time.Now,
	}
}

// Calculer montants des lignes et totaux; la remise ne peut dépasser le sous-total
func Calculer(lignes []dto.Ligne, remise int64) ([]dto.Ligne, dto.Totaux, error) {
	if len(lignes) == 0 {
		return nil, dto.Totaux{}, apperr.Validation("LIGNES_REQUISES", "La facture doit contenir au moins une ligne")
	}
	if remise < 0 {
		return nil, dto.Totaux{}, apperr.Validation("REMISE_INVALIDE", "Remise négative")
	}

	calculees := make([]dto.Ligne, len(lignes))
	var sousTotal int64
	for i, l := range lignes {
		if l.Quantite < 1 || l.PrixUnitaire < 0 || l.PrixUnitaire > dto.MaxPrixUnitaire {
			return nil, dto.Totaux{}, apperr.Validation("LIGNE_INVALIDE", "Quantité ou prix invalide").WithDetail("ligne", i+1)
		}
		// débordement int64
		if l.PrixUnitaire > math.MaxInt64/int64(l.Quantite) {
			return nil, dto.Totaux{}, apperr.Validation("LIGNE_INVALIDE", "Montant de ligne hors limites").WithDetail("ligne", i+1)
		}
		l.Montant = int64(l.Quantite) * l.PrixUnitaire
		if sousTotal > math.MaxInt64-l.Montant {
			return nil, dto.Totaux{}, apperr.Validation("LIGNE_INVALIDE", "Total de la facture hors limites").WithDetail("ligne", i+1)
		}
		sousTotal += l.Montant
		calculees[i] = l
	}
	if remise > sousTotal {
		return nil, dto.Totaux{}, apperr.Validation("REMISE_INVALIDE", "La remise dépasse le sous-total")
	}
	return calculees, dto.Totaux{SousTotal: sousTotal, Remise: remise, Total: sousTotal - remise}, nil
}

// Create numérote et enregistre une facture, éventuellement déjà payée
func (s *FactureService) Create(ctx context.Context, cabinet tenant.CabinetContext, userID string, req dto.CreateFactureRequest) (*dto.Facture, error) {
	lignes, totaux, err := Calculer(req.Lignes, req.Remise)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.location)
	nouvelle := dto.NouvelleFacture{
		PatientID:      utils.CanonicalUUID(req.PatientID),
		ConsultationID: utils.CanonicalUUID(req.ConsultationID),
		Jour:           now,
		Lignes:         lignes,
		Totaux:         totaux,
		Statut:         dto.StatutImpayee,
		ModePaiement:   req.ModePaiement,
		CreatedBy:      userID,
	}
	if req.Payee {
		if req.ModePaiement == "" {
			return nil, apperr.Validation("MODE_PAIEMENT_REQUIS", "Mode de paiement requis pour une facture payée")
		}
		nouvelle.Statut = dto.StatutPayee
		nouvelle.PayeeLe = &now
	}

	id, err := s.store.Create(ctx, cabinet.ID, nouvelle)
	if err != nil {
		return nil, mapStoreError(err, "FACTURE_CREATE_FAILED")
	}
	return s.Get(ctx, cabinet, id)
}

func (s *FactureService) Get(ctx context.Context, cabinet tenant.CabinetContext, id string) (*dto.Facture, error) {
	f, err := s.store.Get(ctx, cabinet.ID, id)
	if err != nil {
		return nil, apperr.Internal("FACTURE_LOOKUP_FAILED", err)
	}
	if f == nil {
		return nil, factureNotFound()
	}
	return f, nil
}

// List factures filtrées, les plus récentes d'abord
func (s *FactureService) List(ctx context.Context, cabinet tenant.CabinetContext, q dto.ListQuery) ([]dto.Facture, error) {
	if q.Du != "" && q.Au != "" && q.Du > q.Au {
		return nil, apperr.Validation("PERIODE_INVALIDE", "La date de début doit précéder la date de fin")
	}
	list, err := s.store.List(ctx, cabinet.ID, dto.Filtre{
		Du: q.Du, Au: q.Au, Statut: q.Statut, PatientID: q.PatientID, Limit: listeMax,
	})
	if err != nil {
		return nil, apperr.Internal("FACTURE_LIST_FAILED", err)
	}
	return list, nil
}

// Payer encaisse une facture; 409 FACTURE_DEJA_PAYEE au second paiement
func (s *FactureService) Payer(ctx context.Context, cabinet tenant.CabinetContext, userID, id string, req dto.PaiementRequest) (*dto.Facture, error) {
	at := s.now()
	if req.Date != "" {
		jour, err := time.ParseInLocation(periode.Layout, req.Date, s.location)
		if err != nil {
			return nil, apperr.Validation("DATE_INVALIDE", "Date de paiement invalide")
		}
		if jour.After(at) {
			return nil, apperr.Validation("DATE_INVALIDE", "Date de paiement dans le futur")
		}
		at = jour
	}

	if err := s.store.Pay(ctx, cabinet.ID, id, req.Mode, at); err != nil {
		return nil, mapStoreError(err, "FACTURE_PAIEMENT_FAILED")
	}
	s.journal.Record(audit.Event{
		CabinetID:     cabinet.ID,
		UtilisateurID: userID,
		Action:        audit.ActionFacturePayee,
		Cible:         id,
		Details:       map[string]interface{}{"mode": req.Mode},
	})
	return s.Get(ctx, cabinet, id)
}

// Annuler une facture impayée
func (s *FactureService) Annuler(ctx context.Context, cabinet tenant.CabinetContext, userID, id string, req dto.AnnulationRequest) (*dto.Facture, error) {
	if err := s.store.Cancel(ctx, cabinet.ID, id, req.Motif); err != nil {
		if errors.Is(err, queries.ErrDejaPayee) {
			return nil, apperr.Conflict("FACTURE_PAYEE_NON_ANNULABLE", "Une facture payée ne peut pas être annulée")
		}
		return nil, mapStoreError(err, "FACTURE_ANNULATION_FAILED")
	}
	s.journal.Record(audit.Event{
		CabinetID:     cabinet.ID,
		UtilisateurID: userID,
		Action:        audit.ActionFactureAnnulee,
		Cible:         id,
		Details:       map[string]interface{}{"motif": req.Motif},
	})
	return s.Get(ctx, cabinet, id)
}

// PDF de la facture, archivé sous documents/<année>/
func (s *FactureService) PDF(ctx context.Context, cabinet tenant.CabinetContext, id string) (*Fichier, error) {
	f, err := s.Get(ctx, cabinet, id)
	if err != nil {
		return nil, err
	}
	entete, err := s.header.EnTete(ctx, cabinet)
	if err != nil {
		return nil, err
	}
	date, err := time.ParseInLocation(periode.Layout, f.Date, s.location)
	if err != nil {
		return nil, apperr.Internal("FACTURE_PDF_FAILED", err)
	}

	lignes := make([]pdf.LigneFacture, 0, len(f.Lignes))
	for _, l := range f.Lignes {
		lignes = append(lignes, pdf.LigneFacture{
			Designation: l.Designation, Quantite: l.Quantite, PrixUnitaire: l.PrixUnitaire, Montant: l.Montant,
		})
	}
	data, err := s.renderer.Facture(pdf.Facture{
		Cabinet:      entete,
		Numero:       f.Numero,
		Date:         date,
		Patient:      f.PatientNom,
		CodePatient:  f.PatientCode,
		Lignes:       lignes,
		SousTotal:    f.SousTotal,
		Remise:       f.Remise,
		Total:        f.Total,
		Statut:       f.Statut,
		ModePaiement: f.ModePaiement,
		PayeeLe:      f.PayeeLe,
	})
	if err != nil {
		return nil, apperr.Internal("FACTURE_PDF_FAILED", err)
	}

	nom := "facture-" + f.Numero + ".pdf"
	sub := storage.DirDocuments + "/" + strconv.Itoa(date.Year())
	if _, err := s.archive.Save(cabinet.EmailAdmin, sub, nom, data); err != nil {
		fmt.Printf("[FACTURATION] ⚠️ Archivage %s impossible: %v\n", nom, err)
	}
	return &Fichier{Nom: nom, Data: data}, nil
}

// Export classeur des factures de la période (mois courant par défaut)
func (s *FactureService) Export(ctx context.Context, cabinet tenant.CabinetContext, q dto.ListQuery) (*Fichier, error) {
	p, err := periode.Resoudre(q.Du, q.Au, s.now(), s.location)
	if err != nil {
		return nil, err
	}
	list, err := s.store.List(ctx, cabinet.ID, dto.Filtre{
		Du: p.DuISO(), Au: p.AuISO(), Statut: q.Statut, PatientID: q.PatientID, Limit: exportMax,
	})
	if err != nil {
		return nil, apperr.Internal("FACTURE_EXPORT_FAILED", err)
	}

	rows := make([][]interface{}, 0, len(list))
	for _, f := range list {
		payeeLe := ""
		if f.PayeeLe != nil {
			payeeLe = f.PayeeLe.In(s.location).Format("02/01/2006")
		}
		rows = append(rows, []interface{}{
			f.Numero, f.Date, f.PatientCode, f.PatientNom,
			excel.Montant(f.SousTotal), excel.Montant(f.Remise), excel.Montant(f.Total),
			f.Statut, f.ModePaiement, payeeLe, f.MotifAnnulation,
		})
	}

	data, err := excel.WriteWorkbook(excel.Sheet{
		Name: "Factures",
		Headers: []string{"Numéro", "Date", "Dossier", "Patient", "Sous-total", "Remise", "Total",
			"Statut", "Mode de paiement", "Payée le", "Motif d'annulation"},
		Rows:   rows,
		Widths: map[int]float64{0: 18, 3: 28, 10: 30},
	})
	if err != nil {
		return nil, apperr.Internal("FACTURE_EXPORT_FAILED", err)
	}

	nom := fmt.Sprintf("factures-%s.xlsx", p.Suffixe())
	if _, err := s.archive.Save(cabinet.EmailAdmin, storage.DirExports, nom, data); err != nil {
		fmt.Printf("[FACTURATION] ⚠️ Archivage export %s échoué: %v\n", nom, err)
	}
	return &Fichier{Nom: nom, Data: data}, nil
}

func mapStoreError(err error, code string) error {
	switch {
	case errors.Is(err, queries.ErrFactureAbsente):
		return factureNotFound()
	case errors.Is(err, queries.ErrPatientInconnu):
		return apperr.NotFound("PATIENT_NOT_FOUND", "Patient introuvable")
	case errors.Is(err, queries.ErrConsultationInvalide):
		return apperr.Validation("CONSULTATION_INVALIDE", "Consultation inconnue ou d'un autre patient")
	case errors.Is(err, queries.ErrDejaPayee):
		return apperr.Conflict("FACTURE_DEJA_PAYEE", "Facture déjà payée")
	case errors.Is(err, queries.ErrAnnulee):
		return apperr.Conflict("FACTURE_ANNULEE", "Facture annulée")
	}
	return apperr.Internal(code, err)
}

func factureNotFound() *apperr.Error {
	return apperr.NotFound("FACTURE_NOT_FOUND", "Facture introuvable")
}
