package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/infrastructure/documents/excel"
	"cabinet-suite-core/internal/modules/statistique/dto"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/middleware/tenant"

	"github.com/xuri/excelize/v2"
)

var cabinetTest = tenant.CabinetContext{ID: "cab-1", Code: "CAB001", EmailAdmin: "admin@cab.fr"}

// fakeStats ne connaît que l'activité de janvier 2026
type fakeStats struct {
	bornes []dto.Bornes
}

func (f *fakeStats) Compteurs(_ context.Context, _ string, b dto.Bornes) (dto.Compteurs, error) {
	f.bornes = append(f.bornes, b)
	if b.DuISO() <= "2026-01-31" && b.AuISO() >= "2026-01-01" {
		return dto.Compteurs{NouveauxPatients: 4, RendezVous: 10, Consultations: 8, Encaisse: 20000, EnAttente: 2500}, nil
	}
	return dto.Compteurs{}, nil
}

func (f *fakeStats) RdvParStatut(context.Context, string, dto.Bornes) (map[string]int, error) {
	return map[string]int{"termine": 8, "absent": 2}, nil
}

func (f *fakeStats) Medecins(context.Context, string, dto.Bornes) ([]dto.Medecin, error) {
	return []dto.Medecin{{ID: "med-1", Nom: "Martin Paul", Consultations: 8, Encaisse: 20000}}, nil
}

func (f *fakeStats) Diagnostics(_ context.Context, _ string, _ dto.Bornes, limit int) ([]dto.Diagnostic, error) {
	if limit != topDiagnostics {
		return nil, nil
	}
	return []dto.Diagnostic{{Libelle: "angine", Nombre: 3}}, nil
}

type archive struct{ names []string }

func (a *archive) Save(_, _, name string, _ []byte) (string, error) {
	a.names = append(a.names, name)
	return name, nil
}

func newTestService() (*StatistiqueService, *fakeStats, *archive) {
	store := &fakeStats{}
	a := &archive{}
	cfg := &config.Config{
		Agenda:      config.AgendaConfig{Location: time.UTC},
		Facturation: config.FacturationConfig{Devise: "EUR"},
	}
	s := NewStatistiqueService(store, a, cfg)
	s.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return s, store, a
}

func TestRapportZeroFillsMonths(t *testing.T) {
	s, store, _ := newTestService()
	r, err := s.Rapport(context.Background(), cabinetTest, dto.PeriodeQuery{Du: "2025-12-15", Au: "2026-02-10"})
	if err != nil {
		t.Fatalf("Rapport: %v", err)
	}

	if len(r.Mensuel) != 3 {
		t.Fatalf("mois = %d", len(r.Mensuel))
	}
	want := []string{"2025-12", "2026-01", "2026-02"}
	for i, m := range r.Mensuel {
		if m.Mois != want[i] {
			t.Errorf("mois %d = %s", i, m.Mois)
		}
	}
	if r.Mensuel[0].Consultations != 0 || r.Mensuel[1].Consultations != 8 || r.Mensuel[2].Encaisse != 0 {
		t.Fatalf("série inattendue: %+v", r.Mensuel)
	}

	// le premier et le dernier mois sont bornés par la période
	first, last := store.bornes[1], store.bornes[len(store.bornes)-1]
	if first.DuISO() != "2025-12-15" || last.AuISO() != "2026-02-10" {
		t.Fatalf("bornes mensuelles = %s / %s", first.DuISO(), last.AuISO())
	}

	if len(r.RdvParStatut) != 6 || r.RdvParStatut["planifie"] != 0 || r.RdvParStatut["termine"] != 8 {
		t.Fatalf("statuts = %v", r.RdvParStatut)
	}
	if r.Devise != "EUR" || len(r.Diagnostics) != 1 {
		t.Fatalf("rapport inattendu: %+v", r)
	}
}

func TestRapportDefaultsAndRejections(t *testing.T) {
	s, _, _ := newTestService()
	r, err := s.Rapport(context.Background(), cabinetTest, dto.PeriodeQuery{})
	if err != nil {
		t.Fatalf("Rapport: %v", err)
	}
	if r.Du != "2026-03-01" || r.Au != "2026-03-31" || len(r.Mensuel) != 1 {
		t.Fatalf("période par défaut = %s..%s", r.Du, r.Au)
	}

	_, err = s.Rapport(context.Background(), cabinetTest, dto.PeriodeQuery{Du: "2026-03-02", Au: "2026-03-01"})
	if appErr, ok := apperr.As(err); !ok || appErr.Status() != 400 {
		t.Fatalf("attendu 400, obtenu %v", err)
	}
	_, err = s.Rapport(context.Background(), cabinetTest, dto.PeriodeQuery{Du: "2024-01-01", Au: "2026-01-01"})
	if !apperr.IsCode(err, "PERIODE_TROP_LONGUE") {
		t.Fatalf("attendu PERIODE_TROP_LONGUE, obtenu %v", err)
	}
}

func TestExportWritesAllSheets(t *testing.T) {
	s, _, a := newTestService()
	data, name, err := s.Export(context.Background(), cabinetTest, dto.PeriodeQuery{Du: "2026-01-01", Au: "2026-01-31"})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if name != "statistiques-2026-01-01-2026-01-31.xlsx" || len(a.names) != 1 {
		t.Fatalf("nom = %s, archives = %v", name, a.names)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	want := []string{"Résumé", "Mensuel", "Médecins", "Diagnostics"}
	if len(sheets) != len(want) {
		t.Fatalf("feuilles = %v", sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("feuille %d = %s", i, sheets[i])
		}
	}

	rows, err := excel.ReadFirstSheet(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadFirstSheet: %v", err)
	}
	if rows[2][0] != "Nouveaux patients" || rows[2][1] != "4" {
		t.Fatalf("résumé = %v", rows[2])
	}
}
