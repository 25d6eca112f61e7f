package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"cabinet-suite-core/internal/infrastructure/documents/excel"
	"cabinet-suite-core/internal/infrastructure/storage"
	"cabinet-suite-core/internal/modules/patients/dto"
	"cabinet-suite-core/internal/modules/patients/queries"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/audit"
	"cabinet-suite-core/internal/shared/middleware/tenant"
)

// PatientStore persistance des dossiers patients
type PatientStore interface {
	Create(ctx context.Context, cabinetID, cabinetCode string, year int, f dto.PatientFields) (*dto.Patient, error)
	Get(ctx context.Context, cabinetID, id string) (*dto.Patient, error)
	Update(ctx context.Context, cabinetID, id string, f dto.PatientFields) (*dto.Patient, error)
	Delete(ctx context.Context, cabinetID, id string) (bool, error)
	Search(ctx context.Context, cabinetID string, req dto.SearchRequest) ([]dto.Patient, int, error)
	ListAll(ctx context.Context, cabinetID string) ([]dto.Patient, error)
	Historique(ctx context.Context, cabinetID, id string) (*dto.Historique, error)
}

// PatientCache cache des fiches lues par identifiant
type PatientCache interface {
	Get(ctx context.Context, cabinetCode, id string) (*dto.Patient, bool)
	Set(ctx context.Context, cabinetCode string, patient *dto.Patient)
	Invalidate(ctx context.Context, cabinetCode, id string)
}

// ExportArchive conserve une copie des exports dans le répertoire du cabinet
type ExportArchive interface {
	Save(adminEmail, sub, name string, data []byte) (string, error)
}

type PatientService struct {
	store   PatientStore
	cache   PatientCache
	exports ExportArchive
	journal *audit.Journal
	now     func() time.Time
}

func NewPatientService(store PatientStore, cache PatientCache, exports ExportArchive, journal *audit.Journal) *PatientService {
	return &PatientService{
		store:   store,
		cache:   cache,
		exports: exports,
		journal: journal,
		now:     time.Now,
	}
}

// Create ouvre un dossier; 409 PATIENT_EXISTS pour un homonyme né le même jour
func (s *PatientService) Create(ctx context.Context, cabinet tenant.CabinetContext, userID string, req dto.PatientRequest) (*dto.Patient, error) {
	fields, err := s.fields(req)
	if err != nil {
		return nil, err
	}

	patient, err := s.store.Create(ctx, cabinet.ID, cabinet.Code, s.now().Year(), fields)
	if err != nil {
		return nil, mapStoreError(err, "PATIENT_CREATE_FAILED")
	}

	s.journal.Record(audit.Event{
		CabinetID:     cabinet.ID,
		UtilisateurID: userID,
		Action:        audit.ActionPatientCree,
		Cible:         patient.ID,
		Details:       map[string]interface{}{"code": patient.Code},
	})
	return patient, nil
}

func (s *PatientService) Get(ctx context.Context, cabinet tenant.CabinetContext, id string) (*dto.Patient, error) {
	if patient, ok := s.cache.Get(ctx, cabinet.Code, id); ok {
		return patient, nil
	}

	patient, err := s.store.Get(ctx, cabinet.ID, id)
	if err != nil {
		return nil, apperr.Internal("PATIENT_LOOKUP_FAILED", err)
	}
	if patient == nil {
		return nil, patientNotFound()
	}
	s.cache.Set(ctx, cabinet.Code, patient)
	return patient, nil
}

func (s *PatientService) Update(ctx context.Context, cabinet tenant.CabinetContext, id string, req dto.PatientRequest) (*dto.Patient, error) {
	fields, err := s.fields(req)
	if err != nil {
		return nil, err
	}

	patient, err := s.store.Update(ctx, cabinet.ID, id, fields)
	if err != nil {
		return nil, mapStoreError(err, "PATIENT_UPDATE_FAILED")
	}
	if patient == nil {
		return nil, patientNotFound()
	}
	s.cache.Invalidate(ctx, cabinet.Code, id)
	return patient, nil
}

// Delete refusé tant que le patient a des factures
func (s *PatientService) Delete(ctx context.Context, cabinet tenant.CabinetContext, userID, id string) error {
	deleted, err := s.store.Delete(ctx, cabinet.ID, id)
	if err != nil {
		return mapStoreError(err, "PATIENT_DELETE_FAILED")
	}
	if !deleted {
		return patientNotFound()
	}

	s.cache.Invalidate(ctx, cabinet.Code, id)
	s.journal.Record(audit.Event{
		CabinetID:     cabinet.ID,
		UtilisateurID: userID,
		Action:        audit.ActionPatientSupprime,
		Cible:         id,
	})
	return nil
}

func (s *PatientService) Search(ctx context.Context, cabinet tenant.CabinetContext, req dto.SearchRequest) (*dto.SearchResponse, error) {
	req.SetDefaults()

	patients, total, err := s.store.Search(ctx, cabinet.ID, req)
	if err != nil {
		return nil, apperr.Internal("PATIENT_SEARCH_FAILED", err)
	}
	return &dto.SearchResponse{
		Patients:   patients,
		Pagination: dto.NewPaginationInfo(req.Page, req.Limit, total),
	}, nil
}

func (s *PatientService) Historique(ctx context.Context, cabinet tenant.CabinetContext, id string) (*dto.Historique, error) {
	patient, err := s.Get(ctx, cabinet, id)
	if err != nil {
		return nil, err
	}

	historique, err := s.store.Historique(ctx, cabinet.ID, id)
	if err != nil {
		return nil, apperr.Internal("PATIENT_HISTORY_FAILED", err)
	}
	historique.Patient = *patient
	return historique, nil
}

// Import enregistre les lignes d'un classeur .xlsx; les doublons sont ignorés
func (s *PatientService) Import(ctx context.Context, cabinet tenant.CabinetContext, userID string, r io.Reader) (*dto.ImportResult, error) {
	rows, err := excel.ReadFirstSheet(r)
	if err != nil {
		return nil, apperr.Validation("IMPORT_FICHIER_INVALIDE", "Classeur illisible").WithDetail("raison", err.Error())
	}

	now := s.now()
	candidates, erreurs, err := ParseImport(rows, now)
	if err != nil {
		return nil, apperr.Validation("IMPORT_FICHIER_INVALIDE", err.Error())
	}

	result := &dto.ImportResult{Ignores: []dto.LigneImport{}, Erreurs: []dto.LigneImport{}}
	result.Erreurs = append(result.Erreurs, erreurs...)

	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, apperr.Internal("IMPORT_INTERRUPTED", err)
		}

		_, err := s.store.Create(ctx, cabinet.ID, cabinet.Code, now.Year(), candidate.Fields)
		var duplicate queries.ErrDuplicate
		switch {
		case err == nil:
			result.Importes++
		case errors.As(err, &duplicate):
			result.Ignores = append(result.Ignores, dto.LigneImport{Ligne: candidate.Ligne, Message: "patient déjà enregistré"})
		default:
			result.Erreurs = append(result.Erreurs, dto.LigneImport{Ligne: candidate.Ligne, Message: "enregistrement impossible"})
			fmt.Printf("[PATIENTS] ⚠️ Import ligne %d: %v\n", candidate.Ligne, err)
		}
	}

	s.journal.Record(audit.Event{
		CabinetID:     cabinet.ID,
		UtilisateurID: userID,
		Action:        audit.ActionPatientsImportes,
		Details: map[string]interface{}{
			"importes": result.Importes,
			"ignores":  len(result.Ignores),
			"erreurs":  len(result.Erreurs),
		},
	})
	return result, nil
}

// Export classeur des patients du cabinet, archivé dans exports/
func (s *PatientService) Export(ctx context.Context, cabinet tenant.CabinetContext) ([]byte, string, error) {
	patients, err := s.store.ListAll(ctx, cabinet.ID)
	if err != nil {
		return nil, "", apperr.Internal("PATIENT_EXPORT_FAILED", err)
	}

	rows := make([][]interface{}, 0, len(patients))
	for _, p := range patients {
		naissance := ""
		if p.DateNaissance != nil {
			naissance = p.DateNaissance.Format("02/01/2006")
		}
		rows = append(rows, []interface{}{
			p.Code, p.Nom, p.Prenoms, p.Sexe, naissance, p.Telephone, p.Adresse, p.CreatedAt.Format("02/01/2006"),
		})
	}

	data, err := excel.WriteWorkbook(excel.Sheet{
		Name:    "Patients",
		Headers: []string{"Code", "Nom", "Prénoms", "Sexe", "Date de naissance", "Téléphone", "Adresse", "Créé le"},
		Rows:    rows,
		Widths:  map[int]float64{0: 18, 1: 20, 2: 24, 6: 40},
	})
	if err != nil {
		return nil, "", apperr.Internal("PATIENT_EXPORT_FAILED", err)
	}

	name := fmt.Sprintf("patients-%s.xlsx", s.now().Format("20060102-150405"))
	if _, err := s.exports.Save(cabinet.EmailAdmin, storage.DirExports, name, data); err != nil {
		fmt.Printf("[PATIENTS] ⚠️ Archivage export %s échoué: %v\n", name, err)
	}
	return data, name, nil
}

func (s *PatientService) fields(req dto.PatientRequest) (dto.PatientFields, error) {
	fields := dto.PatientFields{
		Nom:         strings.TrimSpace(req.Nom),
		Prenoms:     strings.TrimSpace(req.Prenoms),
		Sexe:        req.Sexe,
		Telephone:   strings.TrimSpace(req.Telephone),
		Adresse:     strings.TrimSpace(req.Adresse),
		Antecedents: strings.TrimSpace(req.Antecedents),
		Allergies:   strings.TrimSpace(req.Allergies),
	}
	if fields.Nom == "" {
		return fields, apperr.Validation("NOM_REQUIS", "Nom du patient requis")
	}

	if req.DateNaissance != "" {
		date, err := time.Parse("2006-01-02", req.DateNaissance)
		if err != nil || date.After(s.now()) {
			return fields, apperr.Validation("DATE_NAISSANCE_INVALIDE", "Date de naissance invalide")
		}
		fields.DateNaissance = &date
	}
	return fields, nil
}

func mapStoreError(err error, code string) error {
	var duplicate queries.ErrDuplicate
	switch {
	case errors.As(err, &duplicate):
		return apperr.Conflict("PATIENT_EXISTS", "Un patient avec les mêmes nom, prénoms et date de naissance existe déjà").
			WithDetail("patient_id", duplicate.ExistingID)
	case errors.Is(err, queries.ErrHasInvoices):
		return apperr.Conflict("PATIENT_HAS_INVOICES", "Patient avec factures: suppression impossible")
	}
	return apperr.Internal(code, err)
}

func patientNotFound() *apperr.Error {
	return apperr.NotFound("PATIENT_NOT_FOUND", "Patient introuvable")
}
