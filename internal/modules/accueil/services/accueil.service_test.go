package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/modules/rdv/agenda"
	rdvDto "cabinet-suite-core/internal/modules/rdv/dto"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/middleware/tenant"
)

var cabinetTest = tenant.CabinetContext{ID: "cab-1", Code: "CAB001"}

type fakeAgenda struct {
	jour        []rdvDto.RendezVous
	date, heure string
	limit       int
}

func (f *fakeAgenda) Day(_ context.Context, _, date, _ string) ([]rdvDto.RendezVous, error) {
	f.date = date
	return f.jour, nil
}

func (f *fakeAgenda) Upcoming(_ context.Context, _, date, heure string, limit int) ([]rdvDto.RendezVous, error) {
	f.heure, f.limit = heure, limit
	return []rdvDto.RendezVous{{ID: "r3", Heure: "11:00"}}, nil
}

type fakeFactures struct{ err error }

func (f fakeFactures) Impayees(context.Context, string) (int, int64, error) {
	return 2, 7500, f.err
}

type fakeLicence struct{}

func (fakeLicence) Summary(context.Context, tenant.CabinetContext) (*tenant.LicenceSummary, error) {
	return &tenant.LicenceSummary{
		LicenceContext: tenant.LicenceContext{Plan: "essai", JoursRestants: 5},
		Valide:         true,
		Alerte:         true,
	}, nil
}

func newTestService(a *fakeAgenda, f fakeFactures) *AccueilService {
	cfg := &config.Config{
		Agenda:      config.AgendaConfig{Location: time.UTC},
		Facturation: config.FacturationConfig{Devise: "EUR"},
	}
	s := NewAccueilService(a, f, fakeLicence{}, cfg)
	s.now = func() time.Time { return time.Date(2026, 3, 2, 10, 42, 0, 0, time.UTC) }
	return s
}

func TestTableauGroupsTodayByStatus(t *testing.T) {
	a := &fakeAgenda{jour: []rdvDto.RendezVous{
		{ID: "r1", Statut: agenda.StatutTermine},
		{ID: "r2", Statut: agenda.StatutArrive},
		{ID: "r3", Statut: agenda.StatutPlanifie},
		{ID: "r4", Statut: agenda.StatutArrive},
	}}
	tab, err := newTestService(a, fakeFactures{}).Tableau(context.Background(), cabinetTest)
	if err != nil {
		t.Fatalf("Tableau: %v", err)
	}

	if a.date != "2026-03-02" || a.heure != "10:42" || a.limit != prochainsMax {
		t.Fatalf("requêtes agenda: date=%s heure=%s limit=%d", a.date, a.heure, a.limit)
	}
	if tab.RdvDuJour != 4 || len(tab.RdvParStatut[agenda.StatutArrive]) != 2 || len(tab.EnAttente) != 2 {
		t.Fatalf("regroupement inattendu: %+v", tab.RdvParStatut)
	}
	if tab.Impayees.Nombre != 2 || tab.Impayees.Montant != 7500 {
		t.Fatalf("impayées = %+v", tab.Impayees)
	}
	if tab.Licence == nil || !tab.Licence.Alerte || tab.Devise != "EUR" {
		t.Fatalf("licence = %+v", tab.Licence)
	}
}

func TestTableauEmptyDay(t *testing.T) {
	tab, err := newTestService(&fakeAgenda{}, fakeFactures{}).Tableau(context.Background(), cabinetTest)
	if err != nil {
		t.Fatalf("Tableau: %v", err)
	}
	if tab.EnAttente == nil || tab.RdvParStatut == nil {
		t.Fatal("listes vides attendues plutôt que nil")
	}
}

func TestTableauStoreFailure(t *testing.T) {
	_, err := newTestService(&fakeAgenda{}, fakeFactures{err: errors.New("down")}).Tableau(context.Background(), cabinetTest)
	if !apperr.IsCode(err, "ACCUEIL_FACTURES_FAILED") {
		t.Fatalf("attendu ACCUEIL_FACTURES_FAILED, obtenu %v", err)
	}
}
