package dto

import (
	"time"

	"cabinet-suite-core/internal/shared/audit"
)

// RegisterCabinetRequest POST /cabinets
type RegisterCabinetRequest struct {
	Nom          string `json:"nom" binding:"required,min=2,max=150"`
	EmailAdmin   string `json:"email_admin" binding:"required,email,max=255"`
	Telephone    string `json:"telephone" binding:"omitempty,telephone"`
	Adresse      string `json:"adresse" binding:"max=500"`
	Specialite   string `json:"specialite" binding:"max=120"`
	NomAdmin     string `json:"nom_admin" binding:"max=100"`
	PrenomsAdmin string `json:"prenoms_admin" binding:"max=150"`
	MotDePasse   string `json:"mot_de_passe" binding:"required,min=8,max=72"`
}

// RegisterCabinetResponse informations nécessaires à la première connexion
type RegisterCabinetResponse struct {
	CabinetID       string     `json:"cabinet_id"`
	Code            string     `json:"code"`
	Identifiant     string     `json:"identifiant"`
	Plan            string     `json:"plan"`
	ExpirationEssai *time.Time `json:"expiration_essai"`
}

// CabinetRecord ligne cabinets
type CabinetRecord struct {
	ID         string    `json:"id"`
	Code       string    `json:"code"`
	Nom        string    `json:"nom"`
	EmailAdmin string    `json:"email_admin"`
	Telephone  string    `json:"telephone"`
	Adresse    string    `json:"adresse"`
	Specialite string    `json:"specialite"`
	Statut     string    `json:"statut"`
	CreatedAt  time.Time `json:"created_at"`
}

// UpdateCabinetRequest PUT /admin/cabinet
type UpdateCabinetRequest struct {
	Nom        string `json:"nom" binding:"required,min=2,max=150"`
	Telephone  string `json:"telephone" binding:"omitempty,telephone"`
	Adresse    string `json:"adresse" binding:"max=500"`
	Specialite string `json:"specialite" binding:"max=120"`
}

// Utilisateur compte exposé à l'administrateur
type Utilisateur struct {
	ID                string     `json:"id"`
	Identifiant       string     `json:"identifiant"`
	Nom               string     `json:"nom"`
	Prenoms           string     `json:"prenoms"`
	Role              string     `json:"role"`
	Actif             bool       `json:"actif"`
	DerniereConnexion *time.Time `json:"derniere_connexion,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// NouvelUtilisateur données d'insertion
type NouvelUtilisateur struct {
	Identifiant  string
	Nom          string
	Prenoms      string
	Role         string
	PasswordHash string
}

// CreateUtilisateurRequest POST /admin/utilisateurs
type CreateUtilisateurRequest struct {
	Identifiant string `json:"identifiant" binding:"required,min=3,max=255"`
	Nom         string `json:"nom" binding:"required,max=100"`
	Prenoms     string `json:"prenoms" binding:"max=150"`
	Role        string `json:"role" binding:"required,oneof=medecin assistante"`
	MotDePasse  string `json:"mot_de_passe" binding:"required,min=8,max=72"`
}

// UpdateUtilisateurRequest PUT /admin/utilisateurs/:id
type UpdateUtilisateurRequest struct {
	Nom     string `json:"nom" binding:"required,max=100"`
	Prenoms string `json:"prenoms" binding:"max=150"`
	Role    string `json:"role" binding:"required,oneof=admin medecin assistante"`
	Actif   *bool  `json:"actif" binding:"required"`
}

// ResetPasswordRequest POST /admin/utilisateurs/:id/reset-password
type ResetPasswordRequest struct {
	MotDePasse string `json:"mot_de_passe" binding:"required,min=8,max=72"`
}

// JournalResponse GET /admin/journal
type JournalResponse struct {
	Evenements []audit.Event `json:"evenements"`
	Disponible bool          `json:"disponible"`
}
