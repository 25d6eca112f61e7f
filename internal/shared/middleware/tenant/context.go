package tenant

import (
	"time"

	"github.com/gin-gonic/gin"
)

// Clés du contexte Gin
const (
	CabinetKey = "cabinet"
	LicenceKey = "licence"
)

// CabinetContext contient le cabinet résolu depuis X-Cabinet-Code
type CabinetContext struct {
	ID         string `json:"id"`
	Code       string `json:"code"`
	Nom        string `json:"nom"`
	EmailAdmin string `json:"email_admin"`
}

// LicenceContext résumé de licence injecté par le middleware licence
type LicenceContext struct {
	Plan           string     `json:"plan"`
	DateExpiration *time.Time `json:"date_expiration,omitempty"`
	JoursRestants  int        `json:"jours_restants"`
	Illimitee      bool       `json:"illimitee"`
}

// FromContext retourne le cabinet courant
func FromContext(c *gin.Context) (CabinetContext, bool) {
	value, exists := c.Get(CabinetKey)
	if !exists {
		return CabinetContext{}, false
	}
	cabinet, ok := value.(CabinetContext)
	return cabinet, ok
}

// LicenceFromContext retourne la licence validée pour la requête
func LicenceFromContext(c *gin.Context) (LicenceContext, bool) {
	value, exists := c.Get(LicenceKey)
	if !exists {
		return LicenceContext{}, false
	}
	licence, ok := value.(LicenceContext)
	return licence, ok
}

// LicenceSummary état de licence consultable même quand elle n'est plus valide
type LicenceSummary struct {
	LicenceContext
	Valide bool   `json:"valide"`
	Raison string `json:"raison,omitempty"`
	Alerte bool   `json:"alerte"`
}
