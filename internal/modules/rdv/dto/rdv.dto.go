package dto

import (
	"time"

	"cabinet-suite-core/internal/modules/rdv/agenda"
)

// RendezVous ligne d'agenda enrichie des noms patient et médecin
type RendezVous struct {
	ID           string    `json:"id"`
	PatientID    string    `json:"patient_id"`
	PatientCode  string    `json:"patient_code"`
	PatientNom   string    `json:"patient_nom"`
	MedecinID    string    `json:"medecin_id"`
	MedecinNom   string    `json:"medecin_nom"`
	Date         string    `json:"date"`
	Heure        string    `json:"heure"`
	DureeMinutes int       `json:"duree"`
	Motif        string    `json:"motif"`
	Statut       string    `json:"statut"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateRdvRequest POST /rdv
type CreateRdvRequest struct {
	PatientID string `json:"patient_id" binding:"required,uuid"`
	MedecinID string `json:"medecin_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required,datetime=2006-01-02"`
	Heure     string `json:"heure" binding:"required,datetime=15:04"`
	Duree     int    `json:"duree" binding:"omitempty,min=5,max=480"`
	Motif     string `json:"motif" binding:"max=500"`
}

// UpdateRdvRequest PUT /rdv/:id
type UpdateRdvRequest struct {
	Date  string `json:"date" binding:"required,datetime=2006-01-02"`
	Heure string `json:"heure" binding:"required,datetime=15:04"`
	Duree int    `json:"duree" binding:"omitempty,min=5,max=480"`
	Motif string `json:"motif" binding:"max=500"`
}

// StatutRequest PATCH /rdv/:id/statut
type StatutRequest struct {
	Statut string `json:"statut" binding:"required,oneof=planifie confirme arrive termine annule absent"`
}

// AgendaQuery GET /rdv et GET /rdv/creneaux
type AgendaQuery struct {
	Date      string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	MedecinID string `form:"medecin_id" binding:"omitempty,uuid"`
	Duree     int    `form:"duree" binding:"omitempty,min=5,max=480"`
}

// Reservation créneau contrôlé, prêt à être écrit
type Reservation struct {
	PatientID string
	MedecinID string
	Date      string
	Heure     string
	Debut     int
	Duree     int
	Motif     string
	CreatedBy string
}

// CreneauxResponse GET /rdv/creneaux
type CreneauxResponse struct {
	Date      string           `json:"date"`
	MedecinID string           `json:"medecin_id"`
	Duree     int              `json:"duree"`
	Creneaux  []agenda.Creneau `json:"creneaux"`
}

// Types d'événements du flux agenda
const (
	EvenementCree     = "rdv_cree"
	EvenementModifie  = "rdv_modifie"
	EvenementStatut   = "rdv_statut"
	EvenementSupprime = "rdv_supprime"
)

// Evenement changement d'agenda diffusé aux écrans du cabinet
type Evenement struct {
	Type       string      `json:"type"`
	ID         string      `json:"id"`
	Date       string      `json:"date,omitempty"`
	RendezVous *RendezVous `json:"rendez_vous,omitempty"`
}
