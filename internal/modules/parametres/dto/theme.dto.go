package dto

import "time"

// Theme paramètres visuels d'un cabinet (document MongoDB)
type Theme struct {
	CabinetID  string    `bson:"cabinet_id" json:"-"`
	Primaire   string    `bson:"primaire" json:"primaire"`
	Secondaire string    `bson:"secondaire" json:"secondaire"`
	Fond       string    `bson:"fond" json:"fond"`
	Texte      string    `bson:"texte" json:"texte"`
	Police     string    `bson:"police" json:"police"`
	ImageFond  string    `bson:"image_fond,omitempty" json:"image_fond,omitempty"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

type ThemeRequest struct {
	Primaire   string `json:"primaire" binding:"required,couleur"`
	Secondaire string `json:"secondaire" binding:"required,couleur"`
	Fond       string `json:"fond" binding:"required,couleur"`
	Texte      string `json:"texte" binding:"required,couleur"`
	Police     string `json:"police" binding:"required,max=80"`
}

// Defaults thème appliqué tant que le cabinet n'a rien enregistré
func Defaults(cabinetID string) Theme {
	return Theme{
		CabinetID:  cabinetID,
		Primaire:   "#1F4E79",
		Secondaire: "#2E86AB",
		Fond:       "#F5F7FA",
		Texte:      "#1B1B1B",
		Police:     "Roboto, sans-serif",
	}
}

type ManifestIcon struct {
	Src   string `json:"src"`
	Sizes string `json:"sizes"`
	Type  string `json:"type"`
}

// Manifest manifeste PWA
type Manifest struct {
	Name            string         `json:"name"`
	ShortName       string         `json:"short_name"`
	StartURL        string         `json:"start_url"`
	Display         string         `json:"display"`
	ThemeColor      string         `json:"theme_color"`
	BackgroundColor string         `json:"background_color"`
	Icons           []ManifestIcon `json:"icons"`
}
