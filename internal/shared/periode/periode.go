// Package periode résout les bornes du/au des rapports et exports.
package periode

import (
	"time"

	"cabinet-suite-core/internal/shared/apperr"
)

const (
	Layout   = "2006-01-02"
	MaxJours = 366
)

// Periode bornes incluses, à minuit dans le fuseau du cabinet
type Periode struct {
	Du time.Time
	Au time.Time
}

// Resoudre applique le mois courant par défaut; 400 si du > au ou au-delà de 366 jours
func Resoudre(du, au string, now time.Time, loc *time.Location) (Periode, error) {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	debutMois := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	p := Periode{Du: debutMois, Au: debutMois.AddDate(0, 1, -1)}
	if du != "" {
		t, err := time.ParseInLocation(Layout, du, loc)
		if err != nil {
			return Periode{}, apperr.Validation("PERIODE_INVALIDE", "Date de début invalide")
		}
		p.Du = t
	}
	if au != "" {
		t, err := time.ParseInLocation(Layout, au, loc)
		if err != nil {
			return Periode{}, apperr.Validation("PERIODE_INVALIDE", "Date de fin invalide")
		}
		p.Au = t
	}

	if p.Du.After(p.Au) {
		return Periode{}, apperr.Validation("PERIODE_INVALIDE", "La date de début doit précéder la date de fin")
	}
	if p.Jours() > MaxJours {
		return Periode{}, apperr.Validation("PERIODE_TROP_LONGUE", "La période ne peut dépasser 366 jours")
	}
	return p, nil
}

// Jours nombre de jours couverts, bornes incluses
func (p Periode) Jours() int {
	y1, m1, d1 := p.Du.Date()
	y2, m2, d2 := p.Au.Date()
	du := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	au := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(au.Sub(du).Hours()/24) + 1
}

// Mois premier jour de chaque mois touché par la période
func (p Periode) Mois() []time.Time {
	var mois []time.Time
	m := time.Date(p.Du.Year(), p.Du.Month(), 1, 0, 0, 0, 0, p.Du.Location())
	for !m.After(p.Au) {
		mois = append(mois, m)
		m = m.AddDate(0, 1, 0)
	}
	return mois
}

// DuISO et AuISO bornes au format 2006-01-02
func (p Periode) DuISO() string { return p.Du.Format(Layout) }
func (p Periode) AuISO() string { return p.Au.Format(Layout) }

// Suffixe pour les noms de fichiers: 20260301-20260331
func (p Periode) Suffixe() string {
	return p.Du.Format("20060102") + "-" + p.Au.Format("20060102")
}
