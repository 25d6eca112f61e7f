package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func TestWorkbookRoundTrip(t *testing.T) {
	data, err := WriteWorkbook(
		Sheet{
			Name:    "Patients",
			Headers: []string{"Code", "Nom", "Prénoms"},
			Rows: [][]interface{}{
				{"CAB01-2026-00001", "Yao", "Koffi"},
				{"CAB01-2026-00002", "Kouassi", "Aya"},
			},
		},
		Sheet{Name: "Résumé", Headers: []string{"Total"}, Rows: [][]interface{}{{2}}},
	)
	if err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}

	rows, err := ReadFirstSheet(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadFirstSheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][2] != "Prénoms" || rows[2][1] != "Kouassi" {
		t.Fatalf("unexpected content: %v", rows)
	}
}

func TestWriteWorkbookRequiresSheet(t *testing.T) {
	if _, err := WriteWorkbook(); err == nil {
		t.Fatal("expected error without sheet")
	}
}

func TestSafeSheetName(t *testing.T) {
	if got := SafeSheetName("CA/2026:[T1]"); got != "CA_2026__T1_" {
		t.Errorf("got %q", got)
	}
	if got := SafeSheetName("  "); got != "Feuille" {
		t.Errorf("got %q", got)
	}
	if got := SafeSheetName("Consultations par médecin et par mois"); len([]rune(got)) != 31 {
		t.Errorf("name not truncated: %q", got)
	}
}

func TestNormalizeHeader(t *testing.T) {
	cases := map[string]string{
		"Date de Naissance": "date de naissance",
		" PRÉNOMS ":         "prenoms",
		"Téléphone":         "telephone",
		"date_de_naissance": "date de naissance",
	}
	for in, want := range cases {
		if got := NormalizeHeader(in); got != want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"1990-05-17", "17/05/1990", "33010"} {
		got, ok := ParseDate(in)
		if !ok || !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, %v", in, got, ok)
		}
	}
	for _, in := range []string{"demain", "06-15-55"} {
		if _, ok := ParseDate(in); ok {
			t.Errorf("ParseDate(%q) accepted", in)
		}
	}
}

func TestReadFirstSheetKeepsDateSerials(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Nom", "Date de naissance"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue(sheet, "A2", "Bamba"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue(sheet, "B2", time.Date(1955, 6, 15, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatal(err)
	}
	style, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellStyle(sheet, "B2", "B2", style); err != nil {
		t.Fatal(err)
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	rows, err := ReadFirstSheet(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadFirstSheet: %v", err)
	}
	if len(rows) != 2 || len(rows[1]) != 2 {
		t.Fatalf("rows = %v", rows)
	}
	got, ok := ParseDate(rows[1][1])
	if !ok || !got.Equal(time.Date(1955, 6, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("cellule %q lue comme %v, %v", rows[1][1], got, ok)
	}
}

func TestMontant(t *testing.T) {
	if got := Montant(123456); got != 1234.56 {
		t.Errorf("Montant = %v", got)
	}
}
