package dto

import (
	rdvDto "cabinet-suite-core/internal/modules/rdv/dto"
	"cabinet-suite-core/internal/shared/middleware/tenant"
)

// Impayees factures restant à encaisser; montant en centimes
type Impayees struct {
	Nombre  int   `json:"nombre"`
	Montant int64 `json:"montant"`
}

// Tableau GET /accueil
type Tableau struct {
	Date         string                         `json:"date"`
	Devise       string                         `json:"devise"`
	RdvDuJour    int                            `json:"rdv_du_jour"`
	RdvParStatut map[string][]rdvDto.RendezVous `json:"rdv_par_statut"`
	Prochains    []rdvDto.RendezVous            `json:"prochains"`
	EnAttente    []rdvDto.RendezVous            `json:"en_attente"`
	Impayees     Impayees                       `json:"impayees"`
	Licence      *tenant.LicenceSummary         `json:"licence"`
}
