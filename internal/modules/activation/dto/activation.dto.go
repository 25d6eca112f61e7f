package dto

import "time"

// Plans de licence
const (
	PlanEssai    = "essai"
	PlanMensuel  = "mensuel"
	PlanAnnuel   = "annuel"
	PlanIllimite = "illimite"
)

// Statuts de licence
const (
	StatutActive   = "active"
	StatutExpiree  = "expiree"
	StatutRevoquee = "revoquee"
)

// Statuts des clés d'activation
const (
	CleDisponible = "disponible"
	CleUtilisee   = "utilisee"
	CleRevoquee   = "revoquee"
)

// Raisons de refus
const (
	RaisonExpiree  = "LICENCE_EXPIRED"
	RaisonInvalide = "LICENCE_INVALID"
	RaisonAbsente  = "LICENCE_MISSING"
	RaisonRevoquee = "LICENCE_REVOKED"
)

// Licence ligne licences (une par cabinet)
type Licence struct {
	CabinetID      string     `json:"cabinet_id"`
	Plan           string     `json:"plan"`
	Statut         string     `json:"statut"`
	DateActivation time.Time  `json:"date_activation"`
	DateExpiration *time.Time `json:"date_expiration,omitempty"`
	Jeton          string     `json:"jeton"`
	Cle            *string    `json:"cle,omitempty"`
}

// CleActivation ligne cles_activation
type CleActivation struct {
	Cle         string     `json:"cle"`
	Plan        string     `json:"plan"`
	CabinetCode *string    `json:"cabinet_code,omitempty"`
	Statut      string     `json:"statut"`
	Note        string     `json:"note"`
	UtiliseePar *string    `json:"utilisee_par,omitempty"`
	UtiliseeLe  *time.Time `json:"utilisee_le,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Evaluation résultat du contrôle d'une licence à un instant donné
type Evaluation struct {
	Valide         bool       `json:"valide"`
	Plan           string     `json:"plan,omitempty"`
	DateExpiration *time.Time `json:"date_expiration,omitempty"`
	JoursRestants  int        `json:"jours_restants"`
	Illimitee      bool       `json:"illimitee"`
	Raison         string     `json:"raison,omitempty"`
}

// ActiverRequest POST /activation/activer
type ActiverRequest struct {
	Cle string `json:"cle" binding:"required,min=16,max=24"`
}

// StatutResponse GET /activation/statut
type StatutResponse struct {
	Evaluation
	Statut         string     `json:"statut,omitempty"`
	DateActivation *time.Time `json:"date_activation,omitempty"`
	Alerte         bool       `json:"alerte"`
}
