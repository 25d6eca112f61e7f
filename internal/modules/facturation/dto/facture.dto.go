package dto

import "time"

// Statuts d'une facture
const (
	StatutImpayee = "impayee"
	StatutPayee   = "payee"
	StatutAnnulee = "annulee"
)

// MaxPrixUnitaire plafond d'un prix unitaire, en centimes
const MaxPrixUnitaire int64 = 1_000_000_000

// Ligne prestation facturée; montants en centimes
type Ligne struct {
	Designation  string `json:"designation" binding:"required,max=200"`
	Quantite     int    `json:"quantite" binding:"required,min=1,max=1000"`
	PrixUnitaire int64  `json:"prix_unitaire" binding:"min=0,max=1000000000"`
	Montant      int64  `json:"montant"`
}

type Facture struct {
	ID              string     `json:"id"`
	Numero          string     `json:"numero"`
	PatientID       string     `json:"patient_id"`
	PatientCode     string     `json:"patient_code"`
	PatientNom      string     `json:"patient_nom"`
	ConsultationID  *string    `json:"consultation_id,omitempty"`
	Date            string     `json:"date"`
	Lignes          []Ligne    `json:"lignes"`
	SousTotal       int64      `json:"sous_total"`
	Remise          int64      `json:"remise"`
	Total           int64      `json:"total"`
	Statut          string     `json:"statut"`
	ModePaiement    string     `json:"mode_paiement"`
	PayeeLe         *time.Time `json:"payee_le,omitempty"`
	MotifAnnulation string     `json:"motif_annulation,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CreateFactureRequest POST /factures
type CreateFactureRequest struct {
	PatientID      string  `json:"patient_id" binding:"required,uuid"`
	ConsultationID string  `json:"consultation_id" binding:"omitempty,uuid"`
	Lignes         []Ligne `json:"lignes" binding:"required,min=1,max=100,dive"`
	Remise         int64   `json:"remise" binding:"min=0,max=1000000000"`
	ModePaiement   string  `json:"mode_paiement" binding:"omitempty,oneof=especes carte cheque virement assurance"`
	Payee          bool    `json:"payee"`
}

// ListQuery GET /factures et GET /factures/export
type ListQuery struct {
	Du        string `form:"du" binding:"omitempty,datetime=2006-01-02"`
	Au        string `form:"au" binding:"omitempty,datetime=2006-01-02"`
	Statut    string `form:"statut" binding:"omitempty,oneof=impayee payee annulee"`
	PatientID string `form:"patient_id" binding:"omitempty,uuid"`
}

// PaiementRequest POST /factures/:id/paiement
type PaiementRequest struct {
	Mode string `json:"mode" binding:"required,oneof=especes carte cheque virement assurance"`
	Date string `json:"date" binding:"omitempty,datetime=2006-01-02"`
}

// AnnulationRequest POST /factures/:id/annulation
type AnnulationRequest struct {
	Motif string `json:"motif" binding:"required,max=500"`
}

// Totaux calculés côté serveur
type Totaux struct {
	SousTotal int64
	Remise    int64
	Total     int64
}

// NouvelleFacture facture prête à être numérotée et écrite
type NouvelleFacture struct {
	PatientID      string
	ConsultationID string
	Jour           time.Time
	Lignes         []Ligne
	Totaux
	Statut       string
	ModePaiement string
	PayeeLe      *time.Time
	CreatedBy    string
}

// Filtre critères de liste résolus
type Filtre struct {
	Du        string
	Au        string
	Statut    string
	PatientID string
	Limit     int
}
