package dto

import "time"

// Constantes relevées pendant l'examen; champs absents non mesurés
type Constantes struct {
	PoidsKg     *float64 `json:"poids,omitempty" binding:"omitempty,gt=0,lte=500"`
	TailleCm    *float64 `json:"taille,omitempty" binding:"omitempty,gt=0,lte=300"`
	Tension     string   `json:"tension,omitempty" binding:"max=20"`
	Temperature *float64 `json:"temperature,omitempty" binding:"omitempty,gte=25,lte=45"`
	Pouls       *int     `json:"pouls,omitempty" binding:"omitempty,gt=0,lte=300"`
}

// Prescription ligne d'ordonnance
type Prescription struct {
	Medicament string `json:"medicament" binding:"required,max=200"`
	Posologie  string `json:"posologie" binding:"max=300"`
	Duree      string `json:"duree" binding:"max=100"`
}

// Consultation fiche de consultation avec l'identité du patient et du médecin
type Consultation struct {
	ID               string         `json:"id"`
	PatientID        string         `json:"patient_id"`
	PatientCode      string         `json:"patient_code"`
	PatientNom       string         `json:"patient_nom"`
	PatientNaissance *time.Time     `json:"patient_date_naissance,omitempty"`
	MedecinID        string         `json:"medecin_id"`
	MedecinNom       string         `json:"medecin_nom"`
	RdvID            *string        `json:"rdv_id,omitempty"`
	DateConsultation time.Time      `json:"date_consultation"`
	Motif            string         `json:"motif"`
	Examen           string         `json:"examen"`
	Diagnostic       string         `json:"diagnostic"`
	Notes            string         `json:"notes"`
	Constantes       Constantes     `json:"constantes"`
	Prescriptions    []Prescription `json:"prescriptions"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// CreateConsultationRequest POST /consultations
type CreateConsultationRequest struct {
	PatientID string `json:"patient_id" binding:"required,uuid"`
	RdvID     string `json:"rdv_id" binding:"omitempty,uuid"`
	ConsultationFields
}

// ConsultationFields contenu modifiable d'une consultation
type ConsultationFields struct {
	Motif         string         `json:"motif" binding:"max=500"`
	Examen        string         `json:"examen" binding:"max=5000"`
	Diagnostic    string         `json:"diagnostic" binding:"max=500"`
	Notes         string         `json:"notes" binding:"max=5000"`
	Constantes    Constantes     `json:"constantes"`
	Prescriptions []Prescription `json:"prescriptions" binding:"max=50,dive"`
}

// ListQuery GET /consultations
type ListQuery struct {
	PatientID string `form:"patient_id" binding:"omitempty,uuid"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=200"`
}

// CertificatRequest POST /consultations/:id/certificat
type CertificatRequest struct {
	Type         string `json:"type" binding:"required,oneof=repos aptitude presence"`
	Jours        int    `json:"jours"`
	Debut        string `json:"debut" binding:"omitempty,datetime=2006-01-02"`
	Observations string `json:"observations" binding:"max=1000"`
}

// NouvelleConsultation consultation prête à être écrite
type NouvelleConsultation struct {
	PatientID string
	MedecinID string
	RdvID     string
	ConsultationFields
}
