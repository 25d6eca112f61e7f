package dto

import (
	"time"

	activationDto "cabinet-suite-core/internal/modules/activation/dto"
)

// EmettreClesRequest POST /developpeur/cles
type EmettreClesRequest struct {
	Plan        string `json:"plan" binding:"required,oneof=mensuel annuel illimite"`
	Nombre      int    `json:"nombre" binding:"required,min=1,max=100"`
	CabinetCode string `json:"cabinet_code" binding:"max=20"`
	Note        string `json:"note" binding:"max=500"`
}

// EmettreClesResponse clés créées, dans l'ordre d'émission
type EmettreClesResponse struct {
	Cles []activationDto.CleActivation `json:"cles"`
}

// CabinetLicenceRow cabinet et sa licence éventuelle
type CabinetLicenceRow struct {
	ID         string
	Code       string
	Nom        string
	EmailAdmin string
	Statut     string
	CreatedAt  time.Time
	Licence    *activationDto.Licence
}

// CabinetLicence GET /developpeur/cabinets
type CabinetLicence struct {
	ID            string                   `json:"id"`
	Code          string                   `json:"code"`
	Nom           string                   `json:"nom"`
	EmailAdmin    string                   `json:"email_admin"`
	Statut        string                   `json:"statut"`
	CreatedAt     time.Time                `json:"created_at"`
	Licence       activationDto.Evaluation `json:"licence"`
	StatutLicence string                   `json:"statut_licence,omitempty"`
}
