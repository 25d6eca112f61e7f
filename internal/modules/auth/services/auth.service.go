package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/modules/auth/dto"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/audit"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/utils"

	"github.com/google/uuid"
)

// UserStore accès aux comptes utilisateurs
type UserStore interface {
	FindByIdentifiant(ctx context.Context, cabinetID, identifiant string) (*dto.UserRecord, error)
	FindByID(ctx context.Context, cabinetID, userID string) (*dto.UserRecord, error)
	TouchDerniereConnexion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, cabinetID, userID, hash string) error
}

// SessionStore stockage des sessions et du compteur d'échecs
type SessionStore interface {
	Create(ctx context.Context, token string, data *dto.SessionData, ttl time.Duration) error
	Get(ctx context.Context, cabinetCode, token string) (*dto.SessionData, error)
	Touch(ctx context.Context, cabinetCode, token, userID string, now time.Time, ttl time.Duration) error
	Delete(ctx context.Context, cabinetCode, token, userID string) error
	RevokeUser(ctx context.Context, cabinetCode, userID string) error
	RegisterFailure(ctx context.Context, cabinetCode, identifiant string, window time.Duration) (int64, error)
	FailureCount(ctx context.Context, cabinetCode, identifiant string) (int64, error)
	ResetFailures(ctx context.Context, cabinetCode, identifiant string) error
}

// LicenceReader résumé de licence, disponible même quand elle est expirée
type LicenceReader interface {
	Summary(ctx context.Context, cabinet tenant.CabinetContext) (*tenant.LicenceSummary, error)
}

type AuthService struct {
	users       UserStore
	sessions    SessionStore
	permissions *PermissionService
	licences    LicenceReader
	journal     *audit.Journal
	sessionCfg  config.SessionConfig
	now         func() time.Time
}

// NewAuthService crée une nouvelle instance du service d'authentification
func NewAuthService(
	users UserStore,
	sessions SessionStore,
	permissions *PermissionService,
	licences LicenceReader,
	journal *audit.Journal,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		users:       users,
		sessions:    sessions,
		permissions: permissions,
		licences:    licences,
		journal:     journal,
		sessionCfg:  cfg.Session,
		now:         time.Now,
	}
}

// Login vérifie les identifiants et ouvre une session
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest, cabinet tenant.CabinetContext, ipAddress, userAgent string) (*dto.LoginResponse, error) {
	identifiant := strings.ToLower(strings.TrimSpace(req.Identifiant))

	failures, err := s.sessions.FailureCount(ctx, cabinet.Code, identifiant)
	if err != nil {
		return nil, apperr.Internal("RATE_LIMIT_CHECK_FAILED", err)
	}
	if failures >= int64(s.sessionCfg.MaxLoginAttempts) {
		return nil, apperr.RateLimited("TOO_MANY_ATTEMPTS", "Trop de tentatives de connexion, réessayez plus tard").
			WithDetail("fenetre_minutes", int(s.sessionCfg.LockoutWindow.Minutes()))
	}

	user, err := s.users.FindByIdentifiant(ctx, cabinet.ID, identifiant)
	if err != nil {
		return nil, apperr.Internal("USER_LOOKUP_FAILED", err)
	}
	if user == nil || !utils.VerifyPassword(req.MotDePasse, user.PasswordHash) {
		count, _ := s.sessions.RegisterFailure(ctx, cabinet.Code, identifiant, s.sessionCfg.LockoutWindow)
		remaining := int64(s.sessionCfg.MaxLoginAttempts) - count
		if remaining < 0 {
			remaining = 0
		}
		return nil, apperr.Unauthorized("INVALID_CREDENTIALS", "Identifiant ou mot de passe incorrect").
			WithDetail("tentatives_restantes", remaining)
	}
	if !user.Actif {
		return nil, apperr.Forbidden("ACCOUNT_DISABLED", "Compte désactivé")
	}

	now := s.now()
	token := uuid.New().String()
	session := &dto.SessionData{
		UserID:       user.ID,
		CabinetID:    cabinet.ID,
		CabinetCode:  cabinet.Code,
		Identifiant:  user.Identifiant,
		Nom:          user.Nom,
		Prenoms:      user.Prenoms,
		Role:         user.Role,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(s.sessionCfg.TTL),
	}
	if err := s.sessions.Create(ctx, token, session, s.sessionCfg.TTL); err != nil {
		return nil, apperr.Internal("SESSION_CREATE_FAILED", err)
	}

	_ = s.sessions.ResetFailures(ctx, cabinet.Code, identifiant)
	if err := s.users.TouchDerniereConnexion(ctx, user.ID); err != nil {
		fmt.Printf("[AUTH] ⚠️ Mise à jour dernière connexion échouée: %v\n", err)
	}

	s.journal.Record(audit.Event{
		CabinetID:     cabinet.ID,
		UtilisateurID: user.ID,
		Action:        audit.ActionConnexion,
		Details:       map[string]interface{}{"ip": ipAddress},
	})

	return &dto.LoginResponse{
		Token:       token,
		ExpiresAt:   session.ExpiresAt,
		User:        user.ToUserData(),
		Permissions: s.permissions.ForRole(user.Role),
		Licence:     s.licenceSummary(ctx, cabinet),
	}, nil
}

// Logout idempotent: un token inconnu est considéré déjà déconnecté
func (s *AuthService) Logout(ctx context.Context, token string, cabinet tenant.CabinetContext) error {
	session, err := s.sessions.Get(ctx, cabinet.Code, token)
	if err != nil {
		return apperr.Internal("SESSION_LOOKUP_FAILED", err)
	}
	if session == nil {
		return nil
	}

	if err := s.sessions.Delete(ctx, cabinet.Code, token, session.UserID); err != nil {
		return apperr.Internal("SESSION_DELETE_FAILED", err)
	}

	s.journal.Record(audit.Event{
		CabinetID:     cabinet.ID,
		UtilisateurID: session.UserID,
		Action:        audit.ActionDeconnexion,
	})
	return nil
}

// ValidateSession contrôle le token pour le cabinet de la requête et prolonge la session
func (s *AuthService) ValidateSession(ctx context.Context, token string, cabinet tenant.CabinetContext) (*authMiddleware.SessionContext, error) {
	session, err := s.sessions.Get(ctx, cabinet.Code, token)
	if err != nil {
		return nil, apperr.Internal("SESSION_LOOKUP_FAILED", err)
	}
	if session == nil {
		return nil, apperr.Session("SESSION_INVALID", "Session invalide ou expirée")
	}
	if session.CabinetID != cabinet.ID || session.CabinetCode != cabinet.Code {
		return nil, apperr.Session("SESSION_CABINET_MISMATCH", "Session ouverte sur un autre cabinet")
	}

	now := s.now()
	if err := s.sessions.Touch(ctx, cabinet.Code, token, session.UserID, now, s.sessionCfg.TTL); err != nil {
		fmt.Printf("[AUTH] ⚠️ Prolongation session échouée: %v\n", err)
	}

	return &authMiddleware.SessionContext{
		Token:       token,
		UserID:      session.UserID,
		CabinetID:   session.CabinetID,
		CabinetCode: session.CabinetCode,
		Identifiant: session.Identifiant,
		Nom:         session.Nom,
		Prenoms:     session.Prenoms,
		Role:        session.Role,
		ExpiresAt:   now.Add(s.sessionCfg.TTL),
	}, nil
}

// Me informations de l'utilisateur connecté
func (s *AuthService) Me(ctx context.Context, session authMiddleware.SessionContext, cabinet tenant.CabinetContext) (*dto.MeResponse, error) {
	user, err := s.users.FindByID(ctx, cabinet.ID, session.UserID)
	if err != nil {
		return nil, apperr.Internal("USER_LOOKUP_FAILED", err)
	}
	if user == nil {
		return nil, apperr.Session("USER_NOT_FOUND", "Utilisateur introuvable")
	}

	return &dto.MeResponse{
		User:        user.ToUserData(),
		Cabinet:     cabinet,
		Permissions: s.permissions.ForRole(user.Role),
		Session:     dto.SessionInfo{ExpiresAt: session.ExpiresAt},
		Licence:     s.licenceSummary(ctx, cabinet),
	}, nil
}

// ChangePassword vérifie l'ancien mot de passe et ferme les autres sessions
func (s *AuthService) ChangePassword(ctx context.Context, session authMiddleware.SessionContext, req dto.ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, session.CabinetID, session.UserID)
	if err != nil {
		return apperr.Internal("USER_LOOKUP_FAILED", err)
	}
	if user == nil {
		return apperr.Session("USER_NOT_FOUND", "Utilisateur introuvable")
	}
	if !utils.VerifyPassword(req.AncienMotDePasse, user.PasswordHash) {
		return apperr.Unauthorized("INVALID_PASSWORD", "Ancien mot de passe incorrect")
	}
	if req.AncienMotDePasse == req.NouveauMotDePasse {
		return apperr.Validation("PASSWORD_UNCHANGED", "Le nouveau mot de passe doit être différent")
	}

	hash, err := utils.HashPassword(req.NouveauMotDePasse)
	if err != nil {
		return apperr.Validation("PASSWORD_TOO_WEAK", err.Error())
	}
	if err := s.users.UpdatePassword(ctx, session.CabinetID, session.UserID, hash); err != nil {
		return apperr.Internal("PASSWORD_UPDATE_FAILED", err)
	}

	// La session courante est recréée après révocation des autres
	current, _ := s.sessions.Get(ctx, session.CabinetCode, session.Token)
	if err := s.sessions.RevokeUser(ctx, session.CabinetCode, session.UserID); err != nil {
		fmt.Printf("[AUTH] ⚠️ Révocation des sessions échouée: %v\n", err)
	}
	if current != nil {
		_ = s.sessions.Create(ctx, session.Token, current, s.sessionCfg.TTL)
	}

	s.journal.Record(audit.Event{
		CabinetID:     session.CabinetID,
		UtilisateurID: session.UserID,
		Action:        audit.ActionMotDePasse,
	})
	return nil
}

func (s *AuthService) licenceSummary(ctx context.Context, cabinet tenant.CabinetContext) *tenant.LicenceSummary {
	if s.licences == nil {
		return nil
	}
	summary, err := s.licences.Summary(ctx, cabinet)
	if err != nil {
		return nil
	}
	return summary
}
