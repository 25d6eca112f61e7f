package pdf

import (
	"fmt"
	"time"
)

type LigneFacture struct {
	Designation  string
	Quantite     int
	PrixUnitaire int64
	Montant      int64
}

type Facture struct {
	Cabinet      EnTete
	Numero       string
	Date         time.Time
	Patient      string
	CodePatient  string
	Lignes       []LigneFacture
	SousTotal    int64
	Remise       int64
	Total        int64
	Statut       string
	ModePaiement string
	PayeeLe      *time.Time
}

// Facture génère le PDF d'une facture
func (r *Renderer) Facture(f Facture) ([]byte, error) {
	d := newDocument("Facture "+f.Numero, f.Cabinet, r.now())
	d.title("FACTURE N° " + f.Numero)

	d.field("Date :", FormatDate(f.Date))
	d.field("Patient :", f.Patient)
	d.field("Dossier :", f.CodePatient)
	d.pdf.Ln(4)

	widths := []float64{84, 18, 36, 36}
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.SetFillColor(225, 232, 245)
	for i, h := range []string{"Désignation", "Qté", "Prix unitaire", "Montant"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		d.pdf.CellFormat(widths[i], 8, d.tr(h), "1", 0, align, true, 0, "")
	}
	d.pdf.Ln(-1)

	d.pdf.SetFont("Helvetica", "", 10)
	for _, l := range f.Lignes {
		d.pdf.CellFormat(widths[0], 7, d.tr(l.Designation), "1", 0, "L", false, 0, "")
		d.pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", l.Quantite), "1", 0, "R", false, 0, "")
		d.pdf.CellFormat(widths[2], 7, d.tr(FormatMontant(l.PrixUnitaire)), "1", 0, "R", false, 0, "")
		d.pdf.CellFormat(widths[3], 7, d.tr(FormatMontant(l.Montant)), "1", 0, "R", false, 0, "")
		d.pdf.Ln(-1)
	}

	d.pdf.Ln(2)
	label := widths[0] + widths[1] + widths[2]
	totals := [][2]string{
		{"Sous-total", FormatMontant(f.SousTotal)},
		{"Remise", FormatMontant(f.Remise)},
		{"Total " + r.devise, FormatMontant(f.Total)},
	}
	for i, t := range totals {
		style := ""
		if i == len(totals)-1 {
			style = "B"
		}
		d.pdf.SetFont("Helvetica", style, 10)
		d.pdf.CellFormat(label, 7, d.tr(t[0]), "", 0, "R", false, 0, "")
		d.pdf.CellFormat(widths[3], 7, d.tr(t[1]), "1", 1, "R", false, 0, "")
	}

	d.pdf.Ln(6)
	switch {
	case f.Statut == "annulee":
		d.paragraph("Facture annulée.")
	case f.PayeeLe != nil:
		d.paragraph(fmt.Sprintf("Acquittée le %s (%s).", FormatDate(*f.PayeeLe), f.ModePaiement))
	default:
		d.paragraph("En attente de règlement.")
	}

	return d.bytes()
}
