package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cabinet-suite-core/internal/infrastructure/documents/pdf"
	activationDto "cabinet-suite-core/internal/modules/activation/dto"
	"cabinet-suite-core/internal/modules/administrateur/dto"
	"cabinet-suite-core/internal/modules/administrateur/queries"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/utils"
)

const maxTentativesCode = 5

// CabinetStore persistance des cabinets
type CabinetStore interface {
	Register(ctx context.Context, cabinet *dto.CabinetRecord, admin *dto.NouvelUtilisateur,
		licence func(cabinetID string) (*activationDto.Licence, error)) (*activationDto.Licence, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Get(ctx context.Context, cabinetID string) (*dto.CabinetRecord, error)
	Update(ctx context.Context, cabinetID string, req dto.UpdateCabinetRequest) (*dto.CabinetRecord, error)
}

// TrialIssuer signe la licence d'essai d'un nouveau cabinet
type TrialIssuer interface {
	IssueTrial(cabinetID string, now time.Time) (*activationDto.Licence, error)
}

// CabinetCacheInvalidator vide le cache du middleware cabinet
type CabinetCacheInvalidator interface {
	Invalidate(ctx context.Context, code string)
}

// CabinetDirectory prépare le répertoire de données du cabinet
type CabinetDirectory interface {
	Ensure(adminEmail string) error
}

type CabinetService struct {
	store     CabinetStore
	issuer    TrialIssuer
	cache     CabinetCacheInvalidator
	directory CabinetDirectory
	now       func() time.Time
}

func NewCabinetService(store CabinetStore, issuer TrialIssuer, cache CabinetCacheInvalidator, directory CabinetDirectory) *CabinetService {
	return &CabinetService{
		store:     store,
		issuer:    issuer,
		cache:     cache,
		directory: directory,
		now:       time.Now,
	}
}

// Register crée le cabinet, son administrateur et la licence d'essai
func (s *CabinetService) Register(ctx context.Context, req dto.RegisterCabinetRequest) (*dto.RegisterCabinetResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.EmailAdmin))

	exists, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return nil, apperr.Internal("CABINET_LOOKUP_FAILED", err)
	}
	if exists {
		return nil, cabinetExists()
	}

	hash, err := utils.HashPassword(req.MotDePasse)
	if err != nil {
		return nil, apperr.Validation("INVALID_PASSWORD", err.Error())
	}

	nomAdmin := strings.TrimSpace(req.NomAdmin)
	if nomAdmin == "" {
		nomAdmin = "Administrateur"
	}
	admin := &dto.NouvelUtilisateur{
		Identifiant:  email,
		Nom:          nomAdmin,
		Prenoms:      strings.TrimSpace(req.PrenomsAdmin),
		Role:         "admin",
		PasswordHash: hash,
	}

	now := s.now()
	for tentative := 0; tentative < maxTentativesCode; tentative++ {
		code, err := GenererCodeCabinet(req.Nom)
		if err != nil {
			return nil, apperr.Internal("CABINET_CODE_FAILED", err)
		}

		cabinet := &dto.CabinetRecord{
			Code:       code,
			Nom:        strings.TrimSpace(req.Nom),
			EmailAdmin: email,
			Telephone:  strings.TrimSpace(req.Telephone),
			Adresse:    strings.TrimSpace(req.Adresse),
			Specialite: strings.TrimSpace(req.Specialite),
		}

		licence, err := s.store.Register(ctx, cabinet, admin, func(cabinetID string) (*activationDto.Licence, error) {
			return s.issuer.IssueTrial(cabinetID, now)
		})
		switch {
		case err == nil:
			if err := s.directory.Ensure(email); err != nil {
				fmt.Printf("[CABINET] ⚠️ Répertoire %s non créé: %v\n", code, err)
			}
			fmt.Printf("[CABINET] ✅ Cabinet %s enregistré\n", code)
			return &dto.RegisterCabinetResponse{
				CabinetID:       cabinet.ID,
				Code:            cabinet.Code,
				Identifiant:     admin.Identifiant,
				Plan:            licence.Plan,
				ExpirationEssai: licence.DateExpiration,
			}, nil
		case errors.As(err, new(queries.ErrEmailTaken)):
			return nil, cabinetExists()
		case errors.As(err, new(queries.ErrCodeTaken)):
			continue
		default:
			return nil, apperr.Internal("CABINET_REGISTER_FAILED", err)
		}
	}
	return nil, apperr.Internal("CABINET_CODE_FAILED", fmt.Errorf("aucun code libre après %d tentatives", maxTentativesCode))
}

func (s *CabinetService) Get(ctx context.Context, cabinet tenant.CabinetContext) (*dto.CabinetRecord, error) {
	record, err := s.store.Get(ctx, cabinet.ID)
	if err != nil {
		return nil, apperr.Internal("CABINET_LOOKUP_FAILED", err)
	}
	if record == nil {
		return nil, apperr.NotFound("CABINET_NOT_FOUND", "Cabinet introuvable")
	}
	return record, nil
}

// Update modifie l'identité du cabinet imprimée sur les documents
func (s *CabinetService) Update(ctx context.Context, cabinet tenant.CabinetContext, req dto.UpdateCabinetRequest) (*dto.CabinetRecord, error) {
	req.Nom = strings.TrimSpace(req.Nom)
	record, err := s.store.Update(ctx, cabinet.ID, req)
	if err != nil {
		return nil, apperr.Internal("CABINET_UPDATE_FAILED", err)
	}
	if record == nil {
		return nil, apperr.NotFound("CABINET_NOT_FOUND", "Cabinet introuvable")
	}
	s.cache.Invalidate(ctx, cabinet.Code)
	return record, nil
}

// EnTete en-tête des PDF du cabinet
func (s *CabinetService) EnTete(ctx context.Context, cabinet tenant.CabinetContext) (pdf.EnTete, error) {
	record, err := s.Get(ctx, cabinet)
	if err != nil {
		return pdf.EnTete{}, err
	}
	return pdf.EnTete{
		Nom:        record.Nom,
		Specialite: record.Specialite,
		Adresse:    record.Adresse,
		Telephone:  record.Telephone,
		Email:      record.EmailAdmin,
	}, nil
}

func cabinetExists() *apperr.Error {
	return apperr.Conflict("CABINET_EXISTS", "Un cabinet existe déjà pour cet email")
}
