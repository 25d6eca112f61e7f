package pdf

import (
	"fmt"
	"time"
)

// Types de certificats
const (
	CertificatRepos    = "repos"
	CertificatAptitude = "aptitude"
	CertificatPresence = "presence"
)

type Certificat struct {
	Cabinet       EnTete
	Medecin       string
	Patient       string
	DateNaissance *time.Time
	Type          string
	Jours         int
	Debut         time.Time
	Observations  string
	Date          time.Time
}

// Certificat génère le PDF d'un certificat médical
func (r *Renderer) Certificat(c Certificat) ([]byte, error) {
	corps, err := texteCertificat(c)
	if err != nil {
		return nil, err
	}

	d := newDocument("Certificat médical", c.Cabinet, r.now())
	d.title("CERTIFICAT MÉDICAL")
	d.pdf.Ln(4)
	d.paragraph(corps)

	if c.Observations != "" {
		d.pdf.Ln(2)
		d.field("Observations :", c.Observations)
	}

	d.pdf.Ln(4)
	d.paragraph("Certificat établi à la demande de l'intéressé(e) et remis en main propre pour servir et valoir ce que de droit.")
	d.signature("Fait le "+FormatDate(c.Date), "Dr "+c.Medecin)
	return d.bytes()
}

func texteCertificat(c Certificat) (string, error) {
	patient := c.Patient
	if c.DateNaissance != nil {
		patient = fmt.Sprintf("%s, né(e) le %s", c.Patient, FormatDate(*c.DateNaissance))
	}
	intro := fmt.Sprintf("Je soussigné(e), Dr %s, certifie avoir examiné ce jour %s.", c.Medecin, patient)

	switch c.Type {
	case CertificatRepos:
		if c.Jours < 1 {
			return "", fmt.Errorf("nombre de jours de repos invalide: %d", c.Jours)
		}
		fin := c.Debut.AddDate(0, 0, c.Jours-1)
		return fmt.Sprintf("%s\n\nSon état de santé nécessite un repos de %d jour(s), du %s au %s inclus.",
			intro, c.Jours, FormatDate(c.Debut), FormatDate(fin)), nil
	case CertificatAptitude:
		return fmt.Sprintf("%s\n\nL'examen clinique ne révèle à ce jour aucune contre-indication apparente.", intro), nil
	case CertificatPresence:
		return fmt.Sprintf("Je soussigné(e), Dr %s, certifie que %s s'est présenté(e) à ma consultation le %s.",
			c.Medecin, patient, FormatDate(c.Date)), nil
	default:
		return "", fmt.Errorf("type de certificat inconnu: %s", c.Type)
	}
}
