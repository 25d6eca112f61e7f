package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// EnTete identité du cabinet imprimée en haut de chaque document
type EnTete struct {
	Nom        string
	Specialite string
	Adresse    string
	Telephone  string
	Email      string
}

// Renderer produit les documents PDF du cabinet
type Renderer struct {
	devise string
	now    func() time.Time
}

func NewRenderer(devise string) *Renderer {
	return &Renderer{devise: devise, now: time.Now}
}

// document encapsule fpdf avec la traduction cp1252 des accents
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newDocument(titre string, entete EnTete, genereLe time.Time) *document {
	p := fpdf.New("P", "mm", "A4", "")
	p.SetMargins(18, 15, 18)
	p.SetAutoPageBreak(true, 20)
	p.SetTitle(titre, true)
	p.SetAuthor(entete.Nom, true)
	p.SetCreator("cabinet-suite", true)
	p.SetCreationDate(genereLe)

	d := &document{pdf: p, tr: p.UnicodeTranslatorFromDescriptor("")}
	p.AliasNbPages("")
	p.SetFooterFunc(func() {
		p.SetY(-15)
		p.SetFont("Helvetica", "I", 8)
		p.SetTextColor(120, 120, 120)
		p.CellFormat(0, 10, d.tr(fmt.Sprintf("%s - page %d/{nb}", titre, p.PageNo())), "", 0, "C", false, 0, "")
	})
	p.AddPage()
	d.header(entete)
	return d
}

func (d *document) header(e EnTete) {
	p := d.pdf
	p.SetTextColor(20, 40, 80)
	p.SetFont("Helvetica", "B", 15)
	p.CellFormat(0, 8, d.tr(e.Nom), "", 1, "L", false, 0, "")

	p.SetFont("Helvetica", "", 9)
	p.SetTextColor(60, 60, 60)
	for _, line := range []string{e.Specialite, e.Adresse, joinNonEmpty(" - ", e.Telephone, e.Email)} {
		if line != "" {
			p.CellFormat(0, 5, d.tr(line), "", 1, "L", false, 0, "")
		}
	}

	left, _, right, _ := p.GetMargins()
	width, _ := p.GetPageSize()
	y := p.GetY() + 2
	p.SetDrawColor(20, 40, 80)
	p.Line(left, y, width-right, y)
	p.Ln(6)
	p.SetTextColor(0, 0, 0)
}

func (d *document) title(text string) {
	d.pdf.SetFont("Helvetica", "B", 14)
	d.pdf.CellFormat(0, 10, d.tr(text), "", 1, "C", false, 0, "")
	d.pdf.Ln(2)
}

func (d *document) field(label, value string) {
	if value == "" {
		return
	}
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(40, 6, d.tr(label), "", 0, "L", false, 0, "")
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.MultiCell(0, 6, d.tr(value), "", "L", false)
}

func (d *document) paragraph(text string) {
	d.pdf.SetFont("Helvetica", "", 11)
	d.pdf.MultiCell(0, 6, d.tr(text), "", "L", false)
	d.pdf.Ln(2)
}

func (d *document) signature(lieuDate, signataire string) {
	d.pdf.Ln(12)
	d.pdf.SetFont("Helvetica", "", 10)
	d.pdf.CellFormat(0, 6, d.tr(lieuDate), "", 1, "R", false, 0, "")
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(0, 6, d.tr(signataire), "", 1, "R", false, 0, "")
	d.pdf.Ln(18)
	d.pdf.SetFont("Helvetica", "I", 8)
	d.pdf.CellFormat(0, 5, d.tr("Signature et cachet"), "", 1, "R", false, 0, "")
}

func (d *document) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("génération PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatMontant formate un montant en centimes: 123456 -> "1 234,56"
func FormatMontant(centimes int64) string {
	negatif := centimes < 0
	if negatif {
		centimes = -centimes
	}
	entier := fmt.Sprintf("%d", centimes/100)

	var b strings.Builder
	for i, r := range entier {
		if i > 0 && (len(entier)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	out := fmt.Sprintf("%s,%02d", b.String(), centimes%100)
	if negatif {
		return "-" + out
	}
	return out
}

// FormatDate format jj/mm/aaaa
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
