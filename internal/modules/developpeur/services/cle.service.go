package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
	activationDto "cabinet-suite-core/internal/modules/activation/dto"
	activationServices "cabinet-suite-core/internal/modules/activation/services"
	"cabinet-suite-core/internal/modules/developpeur/dto"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/middleware/authentication"
)

const maxCollisions = 5

// KeyStore persistance des clés d'activation
type KeyStore interface {
	Insert(ctx context.Context, cle *activationDto.CleActivation) error
	List(ctx context.Context, statut string) ([]activationDto.CleActivation, error)
	Revoke(ctx context.Context, cle string) (bool, error)
}

// CabinetLicenceStore lecture des cabinets et de leur licence
type CabinetLicenceStore interface {
	CabinetsWithLicence(ctx context.Context) ([]dto.CabinetLicenceRow, error)
}

// LicenceEvaluator évalue une licence signée
type LicenceEvaluator interface {
	Evaluate(l *activationDto.Licence, cabinetID string, now time.Time) activationDto.Evaluation
}

type CleService struct {
	keys      KeyStore
	cabinets  CabinetLicenceStore
	lookup    authentication.CabinetLookup
	evaluator LicenceEvaluator
	generate  func() (string, error)
	now       func() time.Time
}

func NewCleService(
	keys KeyStore,
	cabinets CabinetLicenceStore,
	lookup authentication.CabinetLookup,
	evaluator LicenceEvaluator,
) *CleService {
	return &CleService{
		keys:      keys,
		cabinets:  cabinets,
		lookup:    lookup,
		evaluator: evaluator,
		generate:  activationServices.GenererCle,
		now:       time.Now,
	}
}

// Emettre crée req.Nombre clés, éventuellement liées à un cabinet
func (s *CleService) Emettre(ctx context.Context, req dto.EmettreClesRequest) (*dto.EmettreClesResponse, error) {
	if req.Nombre < 1 || req.Nombre > 100 {
		return nil, apperr.Validation("NOMBRE_INVALIDE", "Nombre de clés entre 1 et 100")
	}
	if !activationServices.PlanPayant(req.Plan) {
		return nil, apperr.Validation("CLE_PLAN_INVALIDE", "Plan attendu: mensuel, annuel ou illimite")
	}

	var cabinetCode *string
	if code := strings.ToUpper(strings.TrimSpace(req.CabinetCode)); code != "" {
		cabinet, err := s.lookup.FindCabinetByCode(ctx, code)
		if err != nil {
			return nil, apperr.Internal("CABINET_LOOKUP_FAILED", err)
		}
		if cabinet == nil {
			return nil, apperr.NotFound("CABINET_NOT_FOUND", "Cabinet inconnu").WithDetail("cabinet_code", code)
		}
		cabinetCode = &code
	}

	cles := make([]activationDto.CleActivation, 0, req.Nombre)
	for i := 0; i < req.Nombre; i++ {
		cle, err := s.insertUnique(ctx, req.Plan, cabinetCode, strings.TrimSpace(req.Note))
		if err != nil {
			return nil, apperr.Internal("CLE_EMISSION_FAILED", err).WithDetail("emises", len(cles))
		}
		cles = append(cles, *cle)
	}

	fmt.Printf("[DEVELOPPEUR] ✅ %d clé(s) %s émise(s)\n", len(cles), req.Plan)
	return &dto.EmettreClesResponse{Cles: cles}, nil
}

func (s *CleService) insertUnique(ctx context.Context, plan string, cabinetCode *string, note string) (*activationDto.CleActivation, error) {
	for attempt := 0; attempt < maxCollisions; attempt++ {
		value, err := s.generate()
		if err != nil {
			return nil, err
		}
		cle := &activationDto.CleActivation{Cle: value, Plan: plan, CabinetCode: cabinetCode, Note: note}
		err = s.keys.Insert(ctx, cle)
		if err == nil {
			return cle, nil
		}
		if !postgres.IsUniqueViolation(err) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%d collisions consécutives", maxCollisions)
}

// List clés filtrées par statut ("" pour toutes)
func (s *CleService) List(ctx context.Context, statut string) ([]activationDto.CleActivation, error) {
	switch statut {
	case "", activationDto.CleDisponible, activationDto.CleUtilisee, activationDto.CleRevoquee:
	default:
		return nil, apperr.Validation("STATUT_INVALIDE", "Statut attendu: disponible, utilisee ou revoquee")
	}
	cles, err := s.keys.List(ctx, statut)
	if err != nil {
		return nil, apperr.Internal("CLE_LOOKUP_FAILED", err)
	}
	return cles, nil
}

// Revoquer une clé encore disponible
func (s *CleService) Revoquer(ctx context.Context, saisie string) error {
	cle, ok := activationServices.NormaliserCle(saisie)
	if !ok {
		return apperr.Validation("CLE_FORMAT_INVALIDE", "Format de clé invalide (XXXX-XXXX-XXXX-XXXX)")
	}
	revoked, err := s.keys.Revoke(ctx, cle)
	if err != nil {
		return apperr.Internal("CLE_REVOKE_FAILED", err)
	}
	if !revoked {
		return apperr.Conflict("CLE_NON_REVOCABLE", "Clé inconnue ou déjà utilisée")
	}
	return nil
}

// Cabinets liste les cabinets avec l'état courant de leur licence
func (s *CleService) Cabinets(ctx context.Context) ([]dto.CabinetLicence, error) {
	rows, err := s.cabinets.CabinetsWithLicence(ctx)
	if err != nil {
		return nil, apperr.Internal("CABINETS_LOOKUP_FAILED", err)
	}

	now := s.now()
	result := make([]dto.CabinetLicence, 0, len(rows))
	for _, row := range rows {
		item := dto.CabinetLicence{
			ID:         row.ID,
			Code:       row.Code,
			Nom:        row.Nom,
			EmailAdmin: row.EmailAdmin,
			Statut:     row.Statut,
			CreatedAt:  row.CreatedAt,
			Licence:    s.evaluator.Evaluate(row.Licence, row.ID, now),
		}
		if row.Licence != nil {
			item.StatutLicence = row.Licence.Statut
		}
		result = append(result, item)
	}
	return result, nil
}
