package pdf

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

var entete = EnTete{
	Nom:        "Cabinet Médical Les Oliviers",
	Specialite: "Médecine générale",
	Adresse:    "12 rue des Écoles",
	Telephone:  "+33 1 23 45 67 89",
}

func assertPDF(t *testing.T, data []byte, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a PDF document")
	}
}

func TestOrdonnance(t *testing.T) {
	r := NewRenderer("EUR")
	data, err := r.Ordonnance(Ordonnance{
		Cabinet: entete,
		Medecin: "Kouassi Aya",
		Patient: "Yao Koffi",
		Date:    time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		Lignes: []LigneOrdonnance{
			{Medicament: "Paracétamol 1g", Posologie: "1 cp 3 fois par jour", Duree: "5 jours"},
		},
	})
	assertPDF(t, data, err)

	if _, err := r.Ordonnance(Ordonnance{Cabinet: entete}); err == nil {
		t.Fatal("expected error for an empty prescription")
	}
}

func TestCertificat(t *testing.T) {
	r := NewRenderer("EUR")
	debut := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	for _, typ := range []string{CertificatRepos, CertificatAptitude, CertificatPresence} {
		t.Run(typ, func(t *testing.T) {
			data, err := r.Certificat(Certificat{
				Cabinet: entete, Medecin: "Kouassi Aya", Patient: "Yao Koffi",
				Type: typ, Jours: 3, Debut: debut, Date: debut,
			})
			assertPDF(t, data, err)
		})
	}

	if _, err := r.Certificat(Certificat{Type: CertificatRepos, Jours: 0}); err == nil {
		t.Fatal("expected error for a rest certificate without days")
	}
	if _, err := r.Certificat(Certificat{Type: "inconnu"}); err == nil {
		t.Fatal("expected error for an unknown certificate type")
	}
}

func TestTexteCertificatRepos(t *testing.T) {
	txt, err := texteCertificat(Certificat{
		Medecin: "A", Patient: "B", Type: CertificatRepos, Jours: 3,
		Debut: time.Date(2026, 3, 30, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(txt, "du 30/03/2026 au 01/04/2026") {
		t.Fatalf("unexpected period in %q", txt)
	}
}

func TestFacture(t *testing.T) {
	r := NewRenderer("EUR")
	payee := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	data, err := r.Facture(Facture{
		Cabinet: entete,
		Numero:  "F-20260314-001",
		Date:    payee,
		Patient: "Yao Koffi",
		Lignes: []LigneFacture{
			{Designation: "Consultation", Quantite: 1, PrixUnitaire: 2500, Montant: 2500},
		},
		SousTotal: 2500, Total: 2500, Statut: "payee", ModePaiement: "especes", PayeeLe: &payee,
	})
	assertPDF(t, data, err)
}

func TestFormatMontant(t *testing.T) {
	cases := map[int64]string{
		0:        "0,00",
		5:        "0,05",
		123456:   "1 234,56",
		-250:     "-2,50",
		10000000: "100 000,00",
	}
	for in, want := range cases {
		if got := FormatMontant(in); got != want {
			t.Errorf("FormatMontant(%d) = %q, want %q", in, got, want)
		}
	}
}
