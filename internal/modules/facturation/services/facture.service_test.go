package services

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/infrastructure/documents/excel"
	"cabinet-suite-core/internal/infrastructure/documents/pdf"
	"cabinet-suite-core/internal/modules/facturation/dto"
	"cabinet-suite-core/internal/modules/facturation/queries"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/audit"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/sequence"

	"go.uber.org/zap"
)

var cabinetTest = tenant.CabinetContext{ID: "cab-1", Code: "CAB001", EmailAdmin: "admin@cab.fr"}

type memoryFactures struct {
	items    map[string]*dto.Facture
	compteur map[string]int64
	filtres  []dto.Filtre
	recues   []dto.NouvelleFacture
}

func newMemoryFactures() *memoryFactures {
	return &memoryFactures{items: map[string]*dto.Facture{}, compteur: map[string]int64{}}
}

func (m *memoryFactures) Create(_ context.Context, _ string, f dto.NouvelleFacture) (string, error) {
	m.recues = append(m.recues, f)
	if f.PatientID != "pat-1" {
		return "", queries.ErrPatientInconnu
	}
	nom := sequence.FactureSequenceName(f.Jour)
	m.compteur[nom]++
	id := fmt.Sprintf("f-%d", len(m.items)+1)
	m.items[id] = &dto.Facture{
		ID: id, Numero: sequence.FormatNumeroFacture(f.Jour, m.compteur[nom]),
		PatientID: f.PatientID, PatientCode: "CAB001-2026-00001", PatientNom: "DOE Jane",
		Date: f.Jour.Format("2006-01-02"), Lignes: f.Lignes,
		SousTotal: f.SousTotal, Remise: f.Remise, Total: f.Total,
		Statut: f.Statut, ModePaiement: f.ModePaiement, PayeeLe: f.PayeeLe,
	}
	return id, nil
}

func (m *memoryFactures) Get(_ context.Context, _, id string) (*dto.Facture, error) {
	f, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	rec := *f
	return &rec, nil
}

func (m *memoryFactures) List(_ context.Context, _ string, filtre dto.Filtre) ([]dto.Facture, error) {
	m.filtres = append(m.filtres, filtre)
	list := []dto.Facture{}
	for _, f := range m.items {
		list = append(list, *f)
	}
	return list, nil
}

func (m *memoryFactures) transition(id string) (*dto.Facture, error) {
	f, ok := m.items[id]
	if !ok {
		return nil, queries.ErrFactureAbsente
	}
	switch f.Statut {
	case dto.StatutPayee:
		return nil, queries.ErrDejaPayee
	case dto.StatutAnnulee:
		return nil, queries.ErrAnnulee
	}
	return f, nil
}

func (m *memoryFactures) Pay(_ context.Context, _, id, mode string, at time.Time) error {
	f, err := m.transition(id)
	if err != nil {
		return err
	}
	f.Statut, f.ModePaiement, f.PayeeLe = dto.StatutPayee, mode, &at
	return nil
}

func (m *memoryFactures) Cancel(_ context.Context, _, id, motif string) error {
	f, err := m.transition(id)
	if err != nil {
		return err
	}
	f.Statut, f.MotifAnnulation = dto.StatutAnnulee, motif
	return nil
}

type staticHeader struct{}

func (staticHeader) EnTete(context.Context, tenant.CabinetContext) (pdf.EnTete, error) {
	return pdf.EnTete{Nom: "Cabinet Test"}, nil
}

type archive struct{ saved []string }

func (a *archive) Save(adminEmail, sub, name string, _ []byte) (string, error) {
	a.saved = append(a.saved, sub+"/"+name)
	return name, nil
}

func newTestService() (*FactureService, *memoryFactures, *archive) {
	store := newMemoryFactures()
	a := &archive{}
	cfg := &config.Config{Agenda: config.AgendaConfig{Location: time.UTC}}
	s := NewFactureService(store, staticHeader{}, pdf.NewRenderer("EUR"), a, audit.NewJournal(nil, zap.NewNop()), cfg)
	s.now = func() time.Time { return time.Date(2026, 3, 14, 16, 0, 0, 0, time.UTC) }
	return s, store, a
}

func consultationStandard() dto.CreateFactureRequest {
	return dto.CreateFactureRequest{
		PatientID: "pat-1",
		Lignes: []dto.Ligne{
			{Designation: "Consultation", Quantite: 1, PrixUnitaire: 2500},
			{Designation: "ECG", Quantite: 2, PrixUnitaire: 1000},
		},
		Remise: 500,
	}
}

func TestCalculer(t *testing.T) {
	lignes, totaux, err := Calculer(consultationStandard().Lignes, 500)
	if err != nil {
		t.Fatalf("Calculer: %v", err)
	}
	if lignes[1].Montant != 2000 || totaux.SousTotal != 4500 || totaux.Total != 4000 {
		t.Fatalf("totaux = %+v, lignes = %+v", totaux, lignes)
	}

	if _, _, err := Calculer(consultationStandard().Lignes, 4501); !apperr.IsCode(err, "REMISE_INVALIDE") {
		t.Fatalf("remise > sous-total acceptée: %v", err)
	}
	if _, _, err := Calculer(nil, 0); !apperr.IsCode(err, "LIGNES_REQUISES") {
		t.Fatalf("facture vide acceptée: %v", err)
	}
	if _, _, err := Calculer([]dto.Ligne{{Designation: "x", Quantite: 0}}, 0); !apperr.IsCode(err, "LIGNE_INVALIDE") {
		t.Fatalf("quantité nulle acceptée: %v", err)
	}

	horsLimites := []struct {
		name   string
		lignes []dto.Ligne
	}{
		{"prix au-delà du plafond", []dto.Ligne{{Designation: "x", Quantite: 4, PrixUnitaire: 1 << 62}}},
		{"produit hors int64", []dto.Ligne{{Designation: "x", Quantite: 1 << 40, PrixUnitaire: dto.MaxPrixUnitaire}}},
		{"somme hors int64", []dto.Ligne{
			{Designation: "a", Quantite: 5_000_000_000, PrixUnitaire: dto.MaxPrixUnitaire},
			{Designation: "b", Quantite: 5_000_000_000, PrixUnitaire: dto.MaxPrixUnitaire},
		}},
	}
	for _, tc := range horsLimites {
		t.Run(tc.name, func(t *testing.T) {
			if _, totaux, err := Calculer(tc.lignes, 0); !apperr.IsCode(err, "LIGNE_INVALIDE") {
				t.Fatalf("attendu LIGNE_INVALIDE, obtenu %v (totaux %+v)", err, totaux)
			}
		})
	}
}

func TestCreateNumbersPerDay(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()

	first, err := s.Create(ctx, cabinetTest, "u", consultationStandard())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, _ := s.Create(ctx, cabinetTest, "u", consultationStandard())
	if first.Numero != "F-20260314-001" || second.Numero != "F-20260314-002" {
		t.Fatalf("numéros = %s, %s", first.Numero, second.Numero)
	}
	if first.Statut != dto.StatutImpayee || first.Total != 4000 {
		t.Fatalf("facture inattendue: %+v", first)
	}
}

func TestCreateCanonicalisesIDs(t *testing.T) {
	s, store, _ := newTestService()
	req := consultationStandard()
	req.PatientID = "6F9619FF-8B86-D011-B42D-00C04FC964FF"
	req.ConsultationID = "0E984725-C51C-4BF4-9960-E1C80E27ABA0"

	_, _ = s.Create(context.Background(), cabinetTest, "u", req)
	if len(store.recues) != 1 {
		t.Fatalf("store appelé %d fois", len(store.recues))
	}
	got := store.recues[0]
	if got.PatientID != "6f9619ff-8b86-d011-b42d-00c04fc964ff" || got.ConsultationID != "0e984725-c51c-4bf4-9960-e1c80e27aba0" {
		t.Fatalf("identifiants transmis: %q / %q", got.PatientID, got.ConsultationID)
	}
}

func TestCreatePaidRequiresMode(t *testing.T) {
	s, _, _ := newTestService()
	req := consultationStandard()
	req.Payee = true
	if _, err := s.Create(context.Background(), cabinetTest, "u", req); !apperr.IsCode(err, "MODE_PAIEMENT_REQUIS") {
		t.Fatalf("attendu MODE_PAIEMENT_REQUIS, obtenu %v", err)
	}

	req.ModePaiement = "especes"
	f, err := s.Create(context.Background(), cabinetTest, "u", req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if f.Statut != dto.StatutPayee || f.PayeeLe == nil {
		t.Fatalf("facture non payée: %+v", f)
	}
}

func TestPayTwiceConflicts(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()
	f, _ := s.Create(ctx, cabinetTest, "u", consultationStandard())

	paid, err := s.Payer(ctx, cabinetTest, "u", f.ID, dto.PaiementRequest{Mode: "carte"})
	if err != nil {
		t.Fatalf("Payer: %v", err)
	}
	if paid.Statut != dto.StatutPayee || paid.ModePaiement != "carte" {
		t.Fatalf("paiement non appliqué: %+v", paid)
	}

	_, err = s.Payer(ctx, cabinetTest, "u", f.ID, dto.PaiementRequest{Mode: "carte"})
	appErr, ok := apperr.As(err)
	if !ok || appErr.Code != "FACTURE_DEJA_PAYEE" || appErr.Status() != 409 {
		t.Fatalf("attendu 409 FACTURE_DEJA_PAYEE, obtenu %v", err)
	}

	_, err = s.Payer(ctx, cabinetTest, "u", f.ID, dto.PaiementRequest{Mode: "carte", Date: "2026-04-01"})
	if !apperr.IsCode(err, "DATE_INVALIDE") {
		t.Fatalf("paiement futur accepté: %v", err)
	}
}

func TestCancel(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()
	paid, _ := s.Create(ctx, cabinetTest, "u", consultationStandard())
	if _, err := s.Payer(ctx, cabinetTest, "u", paid.ID, dto.PaiementRequest{Mode: "cheque"}); err != nil {
		t.Fatalf("Payer: %v", err)
	}
	if _, err := s.Annuler(ctx, cabinetTest, "u", paid.ID, dto.AnnulationRequest{Motif: "erreur"}); !apperr.IsCode(err, "FACTURE_PAYEE_NON_ANNULABLE") {
		t.Fatalf("facture payée annulée: %v", err)
	}

	open, _ := s.Create(ctx, cabinetTest, "u", consultationStandard())
	cancelled, err := s.Annuler(ctx, cabinetTest, "u", open.ID, dto.AnnulationRequest{Motif: "doublon"})
	if err != nil {
		t.Fatalf("Annuler: %v", err)
	}
	if cancelled.Statut != dto.StatutAnnulee || cancelled.MotifAnnulation != "doublon" {
		t.Fatalf("annulation non appliquée: %+v", cancelled)
	}
	if _, err := s.Payer(ctx, cabinetTest, "u", open.ID, dto.PaiementRequest{Mode: "cheque"}); !apperr.IsCode(err, "FACTURE_ANNULEE") {
		t.Fatalf("facture annulée encaissée: %v", err)
	}
	if _, err := s.Annuler(ctx, cabinetTest, "u", "inconnue", dto.AnnulationRequest{Motif: "x"}); !apperr.IsCode(err, "FACTURE_NOT_FOUND") {
		t.Fatalf("attendu FACTURE_NOT_FOUND, obtenu %v", err)
	}
}

func TestPDFAndExport(t *testing.T) {
	s, store, a := newTestService()
	ctx := context.Background()
	f, _ := s.Create(ctx, cabinetTest, "u", consultationStandard())

	doc, err := s.PDF(ctx, cabinetTest, f.ID)
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(doc.Data, []byte("%PDF")) || doc.Nom != "facture-F-20260314-001.pdf" {
		t.Fatalf("document inattendu: %s", doc.Nom)
	}

	export, err := s.Export(ctx, cabinetTest, dto.ListQuery{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if export.Nom != "factures-20260301-20260331.xlsx" {
		t.Fatalf("nom export = %s", export.Nom)
	}
	last := store.filtres[len(store.filtres)-1]
	if last.Du != "2026-03-01" || last.Au != "2026-03-31" {
		t.Fatalf("période exportée = %s..%s", last.Du, last.Au)
	}
	rows, err := excel.ReadFirstSheet(bytes.NewReader(export.Data))
	if err != nil {
		t.Fatalf("ReadFirstSheet: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "F-20260314-001" {
		t.Fatalf("lignes exportées = %v", rows)
	}
	if len(a.saved) != 2 || a.saved[0] != "documents/2026/facture-F-20260314-001.pdf" || a.saved[1] != "exports/factures-20260301-20260331.xlsx" {
		t.Fatalf("archives = %v", a.saved)
	}

	if _, err := s.Export(ctx, cabinetTest, dto.ListQuery{Du: "2026-03-10", Au: "2026-03-01"}); !apperr.IsCode(err, "PERIODE_INVALIDE") {
		t.Fatalf("période inversée acceptée: %v", err)
	}
}
