package dto

import (
	"time"

	"cabinet-suite-core/internal/shared/middleware/tenant"
)

// LoginRequest représente la requête de connexion
type LoginRequest struct {
	Identifiant string `json:"identifiant" binding:"required,min=3,max=255"`
	MotDePasse  string `json:"mot_de_passe" binding:"required"`
}

// LoginResponse représente la réponse de connexion réussie
type LoginResponse struct {
	Token       string                 `json:"token"`
	ExpiresAt   time.Time              `json:"expires_at"`
	User        UserData               `json:"user"`
	Permissions []string               `json:"permissions"`
	Licence     *tenant.LicenceSummary `json:"licence,omitempty"`
}

// UserData informations utilisateur exposées au client
type UserData struct {
	ID                string     `json:"id"`
	Identifiant       string     `json:"identifiant"`
	Nom               string     `json:"nom"`
	Prenoms           string     `json:"prenoms"`
	Role              string     `json:"role"`
	DerniereConnexion *time.Time `json:"derniere_connexion,omitempty"`
}

// MeResponse représente la réponse du endpoint /me
type MeResponse struct {
	User        UserData               `json:"user"`
	Cabinet     tenant.CabinetContext  `json:"cabinet"`
	Permissions []string               `json:"permissions"`
	Session     SessionInfo            `json:"session"`
	Licence     *tenant.LicenceSummary `json:"licence,omitempty"`
}

type SessionInfo struct {
	ExpiresAt time.Time `json:"expires_at"`
}

// ChangePasswordRequest représente la demande de changement de mot de passe
type ChangePasswordRequest struct {
	AncienMotDePasse  string `json:"ancien_mot_de_passe" binding:"required"`
	NouveauMotDePasse string `json:"nouveau_mot_de_passe" binding:"required,min=8,max=72"`
}

// UserRecord ligne utilisateurs
type UserRecord struct {
	ID                string
	CabinetID         string
	Identifiant       string
	Nom               string
	Prenoms           string
	Role              string
	PasswordHash      string
	Actif             bool
	DerniereConnexion *time.Time
}

func (u *UserRecord) ToUserData() UserData {
	return UserData{
		ID:                u.ID,
		Identifiant:       u.Identifiant,
		Nom:               u.Nom,
		Prenoms:           u.Prenoms,
		Role:              u.Role,
		DerniereConnexion: u.DerniereConnexion,
	}
}

// SessionData représente les données de session Redis
type SessionData struct {
	UserID       string
	CabinetID    string
	CabinetCode  string
	Identifiant  string
	Nom          string
	Prenoms      string
	Role         string
	IPAddress    string
	UserAgent    string
	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time
}

// ToMap convertit SessionData en map pour Redis HSET
func (s *SessionData) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"user_id":       s.UserID,
		"cabinet_id":    s.CabinetID,
		"cabinet_code":  s.CabinetCode,
		"identifiant":   s.Identifiant,
		"nom":           s.Nom,
		"prenoms":       s.Prenoms,
		"role":          s.Role,
		"ip_address":    s.IPAddress,
		"user_agent":    s.UserAgent,
		"created_at":    s.CreatedAt.Format(time.RFC3339),
		"last_activity": s.LastActivity.Format(time.RFC3339),
		"expires_at":    s.ExpiresAt.Format(time.RFC3339),
	}
}

// SessionFromMap créé SessionData depuis map Redis
func SessionFromMap(data map[string]string) *SessionData {
	parse := func(key string) time.Time {
		t, _ := time.Parse(time.RFC3339, data[key])
		return t
	}
	return &SessionData{
		UserID:       data["user_id"],
		CabinetID:    data["cabinet_id"],
		CabinetCode:  data["cabinet_code"],
		Identifiant:  data["identifiant"],
		Nom:          data["nom"],
		Prenoms:      data["prenoms"],
		Role:         data["role"],
		IPAddress:    data["ip_address"],
		UserAgent:    data["user_agent"],
		CreatedAt:    parse("created_at"),
		LastActivity: parse("last_activity"),
		ExpiresAt:    parse("expires_at"),
	}
}
