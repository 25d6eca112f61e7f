package dto

import "time"

// Patient dossier administratif et médical
type Patient struct {
	ID            string     `json:"id"`
	Code          string     `json:"code"`
	Nom           string     `json:"nom"`
	Prenoms       string     `json:"prenoms"`
	Sexe          string     `json:"sexe"`
	DateNaissance *time.Time `json:"date_naissance,omitempty"`
	Telephone     string     `json:"telephone"`
	Adresse       string     `json:"adresse"`
	Antecedents   string     `json:"antecedents"`
	Allergies     string     `json:"allergies"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// PatientRequest corps de POST /patients et PUT /patients/:id
type PatientRequest struct {
	Nom           string `json:"nom" binding:"required,max=100"`
	Prenoms       string `json:"prenoms" binding:"max=150"`
	Sexe          string `json:"sexe" binding:"omitempty,oneof=M F"`
	DateNaissance string `json:"date_naissance" binding:"omitempty,datetime=2006-01-02"`
	Telephone     string `json:"telephone" binding:"omitempty,telephone"`
	Adresse       string `json:"adresse" binding:"max=500"`
	Antecedents   string `json:"antecedents" binding:"max=5000"`
	Allergies     string `json:"allergies" binding:"max=2000"`
}

// PatientFields valeurs normalisées prêtes à être enregistrées
type PatientFields struct {
	Nom           string
	Prenoms       string
	Sexe          string
	DateNaissance *time.Time
	Telephone     string
	Adresse       string
	Antecedents   string
	Allergies     string
}

// SearchRequest GET /patients?q=&page=&limit=
type SearchRequest struct {
	Q     string `form:"q" binding:"max=100"`
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
}

// SetDefaults page 1, 20 par page, 100 au maximum
func (r *SearchRequest) SetDefaults() {
	if r.Page <= 0 {
		r.Page = 1
	}
	if r.Limit <= 0 {
		r.Limit = 20
	}
	if r.Limit > 100 {
		r.Limit = 100
	}
}

// Offset décalage SQL de la page demandée
func (r *SearchRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

type PaginationInfo struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewPaginationInfo crée les informations de pagination
func NewPaginationInfo(page, limit, total int) PaginationInfo {
	totalPages := (total + limit - 1) / limit
	return PaginationInfo{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

type SearchResponse struct {
	Patients   []Patient      `json:"patients"`
	Pagination PaginationInfo `json:"pagination"`
}

// HistoriqueRdv ligne d'agenda du patient
type HistoriqueRdv struct {
	ID      string    `json:"id"`
	Date    time.Time `json:"date"`
	Heure   string    `json:"heure"`
	Statut  string    `json:"statut"`
	Motif   string    `json:"motif"`
	Medecin string    `json:"medecin"`
}

type HistoriqueConsultation struct {
	ID         string    `json:"id"`
	Date       time.Time `json:"date"`
	Motif      string    `json:"motif"`
	Diagnostic string    `json:"diagnostic"`
	Medecin    string    `json:"medecin"`
}

type HistoriqueFacture struct {
	ID     string    `json:"id"`
	Numero string    `json:"numero"`
	Date   time.Time `json:"date"`
	Total  int64     `json:"total"`
	Statut string    `json:"statut"`
}

// Historique GET /patients/:id/historique
type Historique struct {
	Patient       Patient                  `json:"patient"`
	RendezVous    []HistoriqueRdv          `json:"rendez_vous"`
	Consultations []HistoriqueConsultation `json:"consultations"`
	Factures      []HistoriqueFacture      `json:"factures"`
}

// LigneImport ligne rejetée ou ignorée, numérotée comme dans le classeur
type LigneImport struct {
	Ligne   int    `json:"ligne"`
	Message string `json:"message"`
}

// ImportResult POST /patients/import
type ImportResult struct {
	Importes int           `json:"importes"`
	Ignores  []LigneImport `json:"ignores"`
	Erreurs  []LigneImport `json:"erreurs"`
}
