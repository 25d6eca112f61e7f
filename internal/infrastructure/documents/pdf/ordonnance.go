package pdf

import (
	"fmt"
	"time"
)

type LigneOrdonnance struct {
	Medicament string
	Posologie  string
	Duree      string
}

// Ordonnance données imprimées sur une ordonnance
type Ordonnance struct {
	Cabinet      EnTete
	Medecin      string
	Patient      string
	CodePatient  string
	AgePatient   string
	Date         time.Time
	Lignes       []LigneOrdonnance
	Commentaires string
}

// Ordonnance génère le PDF d'une ordonnance
func (r *Renderer) Ordonnance(o Ordonnance) ([]byte, error) {
	if len(o.Lignes) == 0 {
		return nil, fmt.Errorf("ordonnance sans ligne")
	}

	d := newDocument("Ordonnance", o.Cabinet, r.now())
	d.title("ORDONNANCE")

	d.field("Patient :", o.Patient)
	d.field("Dossier :", o.CodePatient)
	d.field("Âge :", o.AgePatient)
	d.field("Date :", FormatDate(o.Date))
	d.pdf.Ln(6)

	for i, l := range o.Lignes {
		d.pdf.SetFont("Helvetica", "B", 11)
		d.pdf.MultiCell(0, 6, d.tr(fmt.Sprintf("%d. %s", i+1, l.Medicament)), "", "L", false)
		d.pdf.SetFont("Helvetica", "", 10)
		detail := joinNonEmpty(" - ", l.Posologie, l.Duree)
		if detail != "" {
			d.pdf.SetX(d.pdf.GetX() + 6)
			d.pdf.MultiCell(0, 5, d.tr(detail), "", "L", false)
		}
		d.pdf.Ln(3)
	}

	if o.Commentaires != "" {
		d.pdf.Ln(2)
		d.paragraph(o.Commentaires)
	}

	d.signature("Le "+FormatDate(o.Date), "Dr "+o.Medecin)
	return d.bytes()
}
