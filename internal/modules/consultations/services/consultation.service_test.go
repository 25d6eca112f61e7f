package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"cabinet-suite-core/internal/infrastructure/documents/pdf"
	"cabinet-suite-core/internal/modules/consultations/dto"
	"cabinet-suite-core/internal/modules/consultations/queries"
	"cabinet-suite-core/internal/modules/rdv/agenda"
	rdvDto "cabinet-suite-core/internal/modules/rdv/dto"
	"cabinet-suite-core/internal/shared/apperr"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/tenant"
)

var (
	cabinetTest = tenant.CabinetContext{ID: "cab-1", Code: "CAB001", EmailAdmin: "admin@cab.fr"}
	medecin     = authMiddleware.SessionContext{UserID: "med-1", Role: authMiddleware.RoleMedecin}
	confrere    = authMiddleware.SessionContext{UserID: "med-2", Role: authMiddleware.RoleMedecin}
	admin       = authMiddleware.SessionContext{UserID: "adm-1", Role: authMiddleware.RoleAdmin}
)

type memoryConsultations struct {
	items   map[string]*dto.Consultation
	rdvs    map[string]string
	patient string
}

func newMemoryConsultations() *memoryConsultations {
	return &memoryConsultations{
		items:   map[string]*dto.Consultation{},
		rdvs:    map[string]string{"rdv-1": agenda.StatutArrive, "rdv-2": agenda.StatutAnnule},
		patient: "pat-1",
	}
}

func (m *memoryConsultations) Create(_ context.Context, _ string, c dto.NouvelleConsultation) (string, *queries.Terminaison, error) {
	if c.PatientID != m.patient {
		return "", nil, queries.ErrPatientInconnu
	}
	var fin *queries.Terminaison
	if c.RdvID != "" {
		from := m.rdvs[c.RdvID]
		if !agenda.CanTransition(from, agenda.StatutTermine) {
			return "", nil, &agenda.Error{Code: agenda.CodeTransition, Message: from + " -> termine"}
		}
		m.rdvs[c.RdvID] = agenda.StatutTermine
		fin = &queries.Terminaison{RdvID: c.RdvID, De: from}
	}
	id := fmt.Sprintf("c-%d", len(m.items)+1)
	naissance := time.Date(1990, 5, 20, 0, 0, 0, 0, time.UTC)
	m.items[id] = &dto.Consultation{
		ID: id, PatientID: c.PatientID, PatientCode: "CAB001-2026-00001", PatientNom: "DOE Jane",
		PatientNaissance: &naissance, MedecinID: c.MedecinID, MedecinNom: "Martin Paul",
		DateConsultation: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Motif:            c.Motif, Diagnostic: c.Diagnostic, Constantes: c.Constantes,
		Prescriptions: c.Prescriptions,
	}
	return id, fin, nil
}

func (m *memoryConsultations) Get(_ context.Context, _, id string) (*dto.Consultation, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	rec := *c
	return &rec, nil
}

func (m *memoryConsultations) List(_ context.Context, _, patientID string, limit int) ([]dto.Consultation, error) {
	list := []dto.Consultation{}
	for _, c := range m.items {
		if patientID == "" || c.PatientID == patientID {
			list = append(list, *c)
		}
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *memoryConsultations) Update(_ context.Context, _, id string, f dto.ConsultationFields) error {
	c, ok := m.items[id]
	if !ok {
		return queries.ErrConsultationAbsente
	}
	c.Motif, c.Diagnostic, c.Prescriptions = f.Motif, f.Diagnostic, f.Prescriptions
	return nil
}

type staticHeader struct{}

func (staticHeader) EnTete(context.Context, tenant.CabinetContext) (pdf.EnTete, error) {
	return pdf.EnTete{Nom: "Cabinet Test", Adresse: "1 rue de la Paix"}, nil
}

type archive struct{ saved []string }

func (a *archive) Save(adminEmail, sub, name string, _ []byte) (string, error) {
	path := adminEmail + "/" + sub + "/" + name
	a.saved = append(a.saved, path)
	return path, nil
}

type notifier struct{ events []rdvDto.Evenement }

func (n *notifier) Publish(_ string, evt rdvDto.Evenement) { n.events = append(n.events, evt) }

func newTestService() (*ConsultationService, *memoryConsultations, *archive, *notifier) {
	store := newMemoryConsultations()
	a := &archive{}
	n := &notifier{}
	s := NewConsultationService(store, staticHeader{}, pdf.NewRenderer("EUR"), a, n)
	s.now = func() time.Time { return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) }
	return s, store, a, n
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperr.IsCode(err, code) {
		t.Fatalf("attendu %s, obtenu %v", code, err)
	}
}

func TestCreateClosesLinkedAppointment(t *testing.T) {
	s, store, _, n := newTestService()
	c, err := s.Create(context.Background(), cabinetTest, medecin, dto.CreateConsultationRequest{
		PatientID:          "pat-1",
		RdvID:              "rdv-1",
		ConsultationFields: dto.ConsultationFields{Motif: "Toux"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.MedecinID != medecin.UserID {
		t.Fatalf("auteur = %s", c.MedecinID)
	}
	if store.rdvs["rdv-1"] != agenda.StatutTermine {
		t.Fatalf("rendez-vous non terminé: %s", store.rdvs["rdv-1"])
	}
	if len(n.events) != 1 || n.events[0].ID != "rdv-1" {
		t.Fatalf("accueil non prévenu: %+v", n.events)
	}
}

func TestCreateAcceptsUpperCaseIDs(t *testing.T) {
	s, store, _, _ := newTestService()
	store.patient = "6f9619ff-8b86-d011-b42d-00c04fc964ff"
	store.rdvs["0e984725-c51c-4bf4-9960-e1c80e27aba0"] = agenda.StatutArrive

	_, err := s.Create(context.Background(), cabinetTest, medecin, dto.CreateConsultationRequest{
		PatientID: "6F9619FF-8B86-D011-B42D-00C04FC964FF",
		RdvID:     "0E984725-C51C-4BF4-9960-E1C80E27ABA0",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if store.rdvs["0e984725-c51c-4bf4-9960-e1c80e27aba0"] != agenda.StatutTermine {
		t.Fatalf("rendez-vous non terminé")
	}
}

func TestCreateRejectsClosedAppointment(t *testing.T) {
	s, _, _, _ := newTestService()
	_, err := s.Create(context.Background(), cabinetTest, medecin, dto.CreateConsultationRequest{PatientID: "pat-1", RdvID: "rdv-2"})
	requireCode(t, err, agenda.CodeTransition)
	if appErr, _ := apperr.As(err); appErr.Status() != 409 {
		t.Fatalf("status = %d", appErr.Status())
	}

	_, err = s.Create(context.Background(), cabinetTest, medecin, dto.CreateConsultationRequest{PatientID: "pat-9"})
	requireCode(t, err, "PATIENT_NOT_FOUND")
}

func TestUpdateRestrictedToAuthorOrAdmin(t *testing.T) {
	s, _, _, _ := newTestService()
	ctx := context.Background()
	c, _ := s.Create(ctx, cabinetTest, medecin, dto.CreateConsultationRequest{PatientID: "pat-1"})

	_, err := s.Update(ctx, cabinetTest, confrere, c.ID, dto.ConsultationFields{Diagnostic: "Angine"})
	requireCode(t, err, "CONSULTATION_AUTEUR")

	updated, err := s.Update(ctx, cabinetTest, admin, c.ID, dto.ConsultationFields{Diagnostic: "Angine"})
	if err != nil {
		t.Fatalf("Update admin: %v", err)
	}
	if updated.Diagnostic != "Angine" {
		t.Fatalf("diagnostic = %q", updated.Diagnostic)
	}

	_, err = s.Update(ctx, cabinetTest, admin, "inconnue", dto.ConsultationFields{})
	requireCode(t, err, "CONSULTATION_NOT_FOUND")
}

func TestOrdonnance(t *testing.T) {
	s, _, a, _ := newTestService()
	ctx := context.Background()
	vide, _ := s.Create(ctx, cabinetTest, medecin, dto.CreateConsultationRequest{PatientID: "pat-1"})
	_, err := s.Ordonnance(ctx, cabinetTest, vide.ID)
	requireCode(t, err, "ORDONNANCE_VIDE")

	c, _ := s.Create(ctx, cabinetTest, medecin, dto.CreateConsultationRequest{
		PatientID: "pat-1",
		ConsultationFields: dto.ConsultationFields{Prescriptions: []dto.Prescription{
			{Medicament: "Paracétamol 1g", Posologie: "1 cp x 3/j", Duree: "5 jours"},
		}},
	})
	doc, err := s.Ordonnance(ctx, cabinetTest, c.ID)
	if err != nil {
		t.Fatalf("Ordonnance: %v", err)
	}
	if !bytes.HasPrefix(doc.Data, []byte("%PDF")) {
		t.Fatal("document non PDF")
	}
	if len(a.saved) != 1 || !strings.HasPrefix(a.saved[0], "admin@cab.fr/documents/2026/ordonnance-CAB001-2026-00001-") {
		t.Fatalf("archivage inattendu: %v", a.saved)
	}
}

func TestCertificatRestDays(t *testing.T) {
	s, _, _, _ := newTestService()
	ctx := context.Background()
	c, _ := s.Create(ctx, cabinetTest, medecin, dto.CreateConsultationRequest{PatientID: "pat-1"})

	for _, jours := range []int{0, 366} {
		_, err := s.Certificat(ctx, cabinetTest, c.ID, dto.CertificatRequest{Type: pdf.CertificatRepos, Jours: jours})
		requireCode(t, err, "CERTIFICAT_JOURS_INVALIDE")
	}

	doc, err := s.Certificat(ctx, cabinetTest, c.ID, dto.CertificatRequest{Type: pdf.CertificatRepos, Jours: 3, Debut: "2026-03-02"})
	if err != nil {
		t.Fatalf("Certificat: %v", err)
	}
	if !strings.HasPrefix(doc.Nom, "certificat-repos-") {
		t.Fatalf("nom = %s", doc.Nom)
	}

	if _, err := s.Certificat(ctx, cabinetTest, c.ID, dto.CertificatRequest{Type: pdf.CertificatPresence}); err != nil {
		t.Fatalf("certificat de présence: %v", err)
	}
}

func TestAge(t *testing.T) {
	at := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		naissance time.Time
		want      string
	}{
		{time.Date(1990, 3, 2, 0, 0, 0, 0, time.UTC), "36 ans"},
		{time.Date(1990, 3, 3, 0, 0, 0, 0, time.UTC), "35 ans"},
		{time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC), "5 mois"},
	}
	for _, tc := range cases {
		n := tc.naissance
		if got := Age(&n, at); got != tc.want {
			t.Errorf("Age(%s) = %s, attendu %s", n.Format("2006-01-02"), got, tc.want)
		}
	}
	if Age(nil, at) != "" {
		t.Error("âge inconnu attendu vide")
	}
}
