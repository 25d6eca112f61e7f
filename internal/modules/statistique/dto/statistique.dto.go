package dto

import "time"

// PeriodeQuery GET /statistiques et /statistiques/export
type PeriodeQuery struct {
	Du string `form:"du" binding:"omitempty,datetime=2006-01-02"`
	Au string `form:"au" binding:"omitempty,datetime=2006-01-02"`
}

// Bornes intervalle [Debut, Fin) des requêtes
type Bornes struct {
	Debut time.Time
	Fin   time.Time
}

// DuISO premier jour inclus
func (b Bornes) DuISO() string { return b.Debut.Format("2006-01-02") }

// AuISO dernier jour inclus
func (b Bornes) AuISO() string { return b.Fin.AddDate(0, 0, -1).Format("2006-01-02") }

// Compteurs indicateurs d'un intervalle; montants en centimes
type Compteurs struct {
	NouveauxPatients int   `json:"nouveaux_patients"`
	RendezVous       int   `json:"rendez_vous"`
	Consultations    int   `json:"consultations"`
	Encaisse         int64 `json:"encaisse"`
	EnAttente        int64 `json:"en_attente"`
}

// Mois point de la série mensuelle
type Mois struct {
	Mois string `json:"mois"`
	Compteurs
}

// Medecin activité d'un praticien
type Medecin struct {
	ID            string `json:"id"`
	Nom           string `json:"nom"`
	Consultations int    `json:"consultations"`
	Encaisse      int64  `json:"encaisse"`
}

// Diagnostic diagnostic fréquent
type Diagnostic struct {
	Libelle string `json:"libelle"`
	Nombre  int    `json:"nombre"`
}

// Rapport GET /statistiques
type Rapport struct {
	Du           string         `json:"du"`
	Au           string         `json:"au"`
	Devise       string         `json:"devise"`
	Resume       Compteurs      `json:"resume"`
	RdvParStatut map[string]int `json:"rdv_par_statut"`
	Mensuel      []Mois         `json:"mensuel"`
	Medecins     []Medecin      `json:"medecins"`
	Diagnostics  []Diagnostic   `json:"diagnostics"`
}
