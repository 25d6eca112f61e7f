package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
	"cabinet-suite-core/internal/modules/administrateur/dto"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/audit"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/utils"
)

// UtilisateurStore persistance des comptes d'un cabinet
type UtilisateurStore interface {
	List(ctx context.Context, cabinetID string) ([]dto.Utilisateur, error)
	Get(ctx context.Context, cabinetID, id string) (*dto.Utilisateur, error)
	Create(ctx context.Context, cabinetID string, u *dto.NouvelUtilisateur) (*dto.Utilisateur, error)
	Update(ctx context.Context, cabinetID, id string, req dto.UpdateUtilisateurRequest) (*dto.Utilisateur, error)
	UpdatePassword(ctx context.Context, cabinetID, id, hash string) (bool, error)
}

// SessionRevoker ferme toutes les sessions d'un utilisateur
type SessionRevoker interface {
	RevokeUser(ctx context.Context, cabinetCode, userID string) error
}

type UtilisateurService struct {
	store    UtilisateurStore
	sessions SessionRevoker
	journal  *audit.Journal
}

func NewUtilisateurService(store UtilisateurStore, sessions SessionRevoker, journal *audit.Journal) *UtilisateurService {
	return &UtilisateurService{store: store, sessions: sessions, journal: journal}
}

func (s *UtilisateurService) List(ctx context.Context, cabinet tenant.CabinetContext) ([]dto.Utilisateur, error) {
	users, err := s.store.List(ctx, cabinet.ID)
	if err != nil {
		return nil, apperr.Internal("USERS_LOOKUP_FAILED", err)
	}
	return users, nil
}

// Create ajoute un médecin ou une assistante
func (s *UtilisateurService) Create(ctx context.Context, cabinet tenant.CabinetContext, adminID string, req dto.CreateUtilisateurRequest) (*dto.Utilisateur, error) {
	if req.Role != authMiddleware.RoleMedecin && req.Role != authMiddleware.RoleAssistante {
		return nil, apperr.Validation("ROLE_INVALIDE", "Rôle attendu: medecin ou assistante")
	}

	identifiant := strings.ToLower(strings.TrimSpace(req.Identifiant))
	if identifiant == "" {
		return nil, apperr.Validation("IDENTIFIANT_REQUIS", "Identifiant requis")
	}

	hash, err := utils.HashPassword(req.MotDePasse)
	if err != nil {
		return nil, apperr.Validation("INVALID_PASSWORD", err.Error())
	}

	user, err := s.store.Create(ctx, cabinet.ID, &dto.NouvelUtilisateur{
		Identifiant:  identifiant,
		Nom:          strings.TrimSpace(req.Nom),
		Prenoms:      strings.TrimSpace(req.Prenoms),
		Role:         req.Role,
		PasswordHash: hash,
	})
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperr.Conflict("USER_EXISTS", "Cet identifiant est déjà utilisé dans le cabinet")
		}
		return nil, apperr.Internal("USER_CREATE_FAILED", err)
	}

	s.journal.Record(audit.Event{
		CabinetID:     cabinet.ID,
		UtilisateurID: adminID,
		Action:        audit.ActionUtilisateurCree,
		Cible:         user.ID,
		Details:       map[string]interface{}{"identifiant": user.Identifiant, "role": user.Role},
	})
	return user, nil
}

// Update modifie un compte; l'administrateur ne peut ni se désactiver ni se rétrograder
func (s *UtilisateurService) Update(ctx context.Context, cabinet tenant.CabinetContext, adminID, id string, req dto.UpdateUtilisateurRequest) (*dto.Utilisateur, error) {
	if id == adminID && (!*req.Actif || req.Role != authMiddleware.RoleAdmin) {
		return nil, apperr.Forbidden("AUTO_MODIFICATION_INTERDITE", "Vous ne pouvez pas désactiver ou rétrograder votre propre compte")
	}

	current, err := s.store.Get(ctx, cabinet.ID, id)
	if err != nil {
		return nil, apperr.Internal("USER_LOOKUP_FAILED", err)
	}
	if current == nil {
		return nil, userNotFound()
	}

	req.Nom = strings.TrimSpace(req.Nom)
	req.Prenoms = strings.TrimSpace(req.Prenoms)
	updated, err := s.store.Update(ctx, cabinet.ID, id, req)
	if err != nil {
		return nil, apperr.Internal("USER_UPDATE_FAILED", err)
	}
	if updated == nil {
		return nil, userNotFound()
	}

	// Droits modifiés: les sessions ouvertes portent l'ancien rôle
	if current.Role != updated.Role || (current.Actif && !updated.Actif) {
		s.revoke(ctx, cabinet, id)
	}

	s.journal.Record(audit.Event{
		CabinetID:     cabinet.ID,
		UtilisateurID: adminID,
		Action:        audit.ActionUtilisateurModifie,
		Cible:         id,
		Details:       map[string]interface{}{"role": updated.Role, "actif": updated.Actif},
	})
	return updated, nil
}

// ResetPassword remplace le mot de passe et ferme les sessions de l'utilisateur
func (s *UtilisateurService) ResetPassword(ctx context.Context, cabinet tenant.CabinetContext, adminID, id, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return apperr.Validation("INVALID_PASSWORD", err.Error())
	}

	found, err := s.store.UpdatePassword(ctx, cabinet.ID, id, hash)
	if err != nil {
		return apperr.Internal("PASSWORD_UPDATE_FAILED", err)
	}
	if !found {
		return userNotFound()
	}

	s.revoke(ctx, cabinet, id)
	s.journal.Record(audit.Event{
		CabinetID:     cabinet.ID,
		UtilisateurID: adminID,
		Action:        audit.ActionMotDePasse,
		Cible:         id,
		Details:       map[string]interface{}{"reinitialise": true},
	})
	return nil
}

// Journal derniers événements du cabinet; vide quand MongoDB est indisponible
func (s *UtilisateurService) Journal(ctx context.Context, cabinet tenant.CabinetContext, limit int) (*dto.JournalResponse, error) {
	events, err := s.journal.List(ctx, cabinet.ID, limit)
	if err != nil {
		if errors.Is(err, audit.ErrIndisponible) {
			return &dto.JournalResponse{Evenements: []audit.Event{}, Disponible: false}, nil
		}
		return nil, apperr.Internal("JOURNAL_LOOKUP_FAILED", err)
	}
	if events == nil {
		events = []audit.Event{}
	}
	return &dto.JournalResponse{Evenements: events, Disponible: true}, nil
}

func (s *UtilisateurService) revoke(ctx context.Context, cabinet tenant.CabinetContext, userID string) {
	if err := s.sessions.RevokeUser(ctx, cabinet.Code, userID); err != nil {
		fmt.Printf("[ADMIN] ⚠️ Révocation sessions %s échouée: %v\n", userID, err)
	}
}

func userNotFound() *apperr.Error {
	return apperr.NotFound("USER_NOT_FOUND", "Utilisateur introuvable")
}
