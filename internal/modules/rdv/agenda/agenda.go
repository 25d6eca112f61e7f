// Package agenda règles de l'agenda: grille des créneaux, chevauchements et
// transitions de statut. Les heures sont exprimées en minutes depuis minuit.
package agenda

import (
	"fmt"
	"time"

	"cabinet-suite-core/internal/app/config"
)

// Statuts d'un rendez-vous
const (
	StatutPlanifie = "planifie"
	StatutConfirme = "confirme"
	StatutArrive   = "arrive"
	StatutTermine  = "termine"
	StatutAnnule   = "annule"
	StatutAbsent   = "absent"
)

// Codes de refus
const (
	CodeDateInvalide     = "DATE_INVALIDE"
	CodeHeureInvalide    = "HEURE_INVALIDE"
	CodeRdvPasse         = "RDV_PASSE"
	CodeHorsHorizon      = "HORS_HORIZON"
	CodeHorsHoraires     = "HORS_HORAIRES"
	CodeCreneauNonAligne = "CRENEAU_NON_ALIGNE"
	CodeCreneauOccupe    = "CRENEAU_OCCUPE"
	CodePatientPlanifie  = "PATIENT_DEJA_PLANIFIE"
	CodeTransition       = "TRANSITION_INVALIDE"
)

var transitions = map[string][]string{
	StatutPlanifie: {StatutConfirme, StatutAnnule, StatutAbsent, StatutArrive},
	StatutConfirme: {StatutArrive, StatutAnnule, StatutAbsent},
	StatutArrive:   {StatutTermine, StatutAnnule},
}

// StatutValide indique un statut connu
func StatutValide(statut string) bool {
	switch statut {
	case StatutPlanifie, StatutConfirme, StatutArrive, StatutTermine, StatutAnnule, StatutAbsent:
		return true
	}
	return false
}

// CanTransition indique si from peut passer à to
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Final statut sans transition sortante
func Final(statut string) bool {
	return len(transitions[statut]) == 0
}

// OccupeCreneau statuts qui bloquent le créneau du médecin
func OccupeCreneau(statut string) bool {
	return statut != StatutAnnule && statut != StatutAbsent
}

// ActifPourPatient statuts comptés pour la règle d'un rendez-vous par jour
func ActifPourPatient(statut string) bool {
	return statut == StatutPlanifie || statut == StatutConfirme || statut == StatutArrive
}

// Plage intervalle [Debut, Fin) en minutes
type Plage struct {
	Debut int
	Fin   int
}

// Chevauche vrai si les deux plages ont une intersection non vide
func (p Plage) Chevauche(o Plage) bool {
	return p.Debut < o.Fin && o.Debut < p.Fin
}

// Creneau créneau libre proposé à la prise de rendez-vous
type Creneau struct {
	Heure string `json:"heure"`
	Fin   string `json:"fin"`
}

// Error refus d'une règle d'agenda
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func refus(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Horaires grille du cabinet
type Horaires struct {
	Ouverture    int
	Fermeture    int
	Slot         int
	HorizonJours int
	Location     *time.Location
}

// NewHoraires lit la configuration validée au chargement
func NewHoraires(cfg config.AgendaConfig) Horaires {
	ouverture, _ := ParseHeure(cfg.Ouverture)
	fermeture, _ := ParseHeure(cfg.Fermeture)
	location := cfg.Location
	if location == nil {
		location = time.Local
	}
	return Horaires{
		Ouverture:    ouverture,
		Fermeture:    fermeture,
		Slot:         cfg.SlotMinutes,
		HorizonJours: cfg.HorizonJours,
		Location:     location,
	}
}

// ParseHeure "15:04" en minutes depuis minuit
func ParseHeure(heure string) (int, error) {
	t, err := time.Parse("15:04", heure)
	if err != nil {
		return 0, refus(CodeHeureInvalide, "heure invalide: %q", heure)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatHeure minutes depuis minuit en "15:04"
func FormatHeure(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseJour "2006-01-02" à minuit dans le fuseau du cabinet
func (h Horaires) ParseJour(date string) (time.Time, error) {
	jour, err := time.ParseInLocation("2006-01-02", date, h.Location)
	if err != nil {
		return time.Time{}, refus(CodeDateInvalide, "date invalide: %q", date)
	}
	return jour, nil
}

// Aujourdhui minuit du jour courant dans le fuseau du cabinet
func (h Horaires) Aujourdhui(now time.Time) time.Time {
	y, m, d := now.In(h.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, h.Location)
}

// Debut instant de début d'un rendez-vous
func (h Horaires) Debut(jour time.Time, minutes int) time.Time {
	y, m, d := jour.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, h.Location).Add(time.Duration(minutes) * time.Minute)
}

// Valider contrôle date, horizon, horaires et alignement d'un créneau
func (h Horaires) Valider(jour time.Time, debut, duree int, now time.Time) error {
	if duree <= 0 {
		return refus(CodeHeureInvalide, "durée invalide: %d", duree)
	}
	if h.Debut(jour, debut).Before(now) {
		return refus(CodeRdvPasse, "le créneau est déjà passé")
	}
	limite := h.Aujourdhui(now).AddDate(0, 0, h.HorizonJours)
	if jour.After(limite) {
		return refus(CodeHorsHorizon, "prise de rendez-vous limitée à %d jours", h.HorizonJours)
	}
	if debut < h.Ouverture || debut+duree > h.Fermeture {
		return refus(CodeHorsHoraires, "horaires du cabinet: %s - %s", FormatHeure(h.Ouverture), FormatHeure(h.Fermeture))
	}
	if (debut-h.Ouverture)%h.Slot != 0 {
		return refus(CodeCreneauNonAligne, "les créneaux commencent toutes les %d minutes", h.Slot)
	}
	return nil
}

// CreneauxLibres grille du jour moins les plages occupées, et moins les
// créneaux passés quand jour est aujourd'hui
func (h Horaires) CreneauxLibres(jour time.Time, duree int, occupees []Plage, now time.Time) []Creneau {
	if duree <= 0 {
		duree = h.Slot
	}
	libres := []Creneau{}
	for debut := h.Ouverture; debut+duree <= h.Fermeture; debut += h.Slot {
		if h.Debut(jour, debut).Before(now) {
			continue
		}
		candidate := Plage{Debut: debut, Fin: debut + duree}
		occupe := false
		for _, p := range occupees {
			if candidate.Chevauche(p) {
				occupe = true
				break
			}
		}
		if !occupe {
			libres = append(libres, Creneau{Heure: FormatHeure(debut), Fin: FormatHeure(debut + duree)})
		}
	}
	return libres
}
