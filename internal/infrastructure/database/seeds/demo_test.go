package seeds

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cabinet-suite-core/internal/app/config"
	adminDto "cabinet-suite-core/internal/modules/administrateur/dto"
	patientDto "cabinet-suite-core/internal/modules/patients/dto"
	rdvDto "cabinet-suite-core/internal/modules/rdv/dto"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/middleware/tenant"
)

type fakeRegistrar struct{ emails map[string]bool }

func (f *fakeRegistrar) Register(_ context.Context, req adminDto.RegisterCabinetRequest) (*adminDto.RegisterCabinetResponse, error) {
	if f.emails[req.EmailAdmin] {
		return nil, apperr.Conflict("CABINET_EXISTS", "existe")
	}
	f.emails[req.EmailAdmin] = true
	return &adminDto.RegisterCabinetResponse{CabinetID: "cab-1", Code: "CAB001", Identifiant: req.EmailAdmin}, nil
}

type fakeStaff struct{ roles []string }

func (f *fakeStaff) Create(_ context.Context, _ tenant.CabinetContext, _ string, req adminDto.CreateUtilisateurRequest) (*adminDto.Utilisateur, error) {
	f.roles = append(f.roles, req.Role)
	return &adminDto.Utilisateur{ID: fmt.Sprintf("u-%d", len(f.roles)), Role: req.Role}, nil
}

type fakePatients struct{ created []patientDto.PatientRequest }

func (f *fakePatients) Create(_ context.Context, _ tenant.CabinetContext, _ string, req patientDto.PatientRequest) (*patientDto.Patient, error) {
	f.created = append(f.created, req)
	return &patientDto.Patient{ID: fmt.Sprintf("p-%d", len(f.created))}, nil
}

type fakeRdv struct {
	pris map[string]bool
}

func (f *fakeRdv) Create(_ context.Context, _ tenant.CabinetContext, _ string, req rdvDto.CreateRdvRequest) (*rdvDto.RendezVous, error) {
	key := req.Date + " " + req.Heure + " " + req.MedecinID
	if f.pris[key] {
		return nil, apperr.Conflict("CRENEAU_OCCUPE", "pris")
	}
	f.pris[key] = true
	return &rdvDto.RendezVous{ID: key}, nil
}

func newTestSeeder() (*DemoSeeder, *fakeStaff, *fakePatients) {
	cfg := &config.Config{Agenda: config.AgendaConfig{Ouverture: "08:00", SlotMinutes: 15, Location: time.UTC}}
	staff := &fakeStaff{}
	patients := &fakePatients{}
	s := NewDemoSeeder(&fakeRegistrar{emails: map[string]bool{}}, staff, patients, &fakeRdv{pris: map[string]bool{}}, cfg)
	s.now = func() time.Time { return time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC) }
	return s, staff, patients
}

func TestSeedCreatesDemoCabinet(t *testing.T) {
	s, staff, patients := newTestSeeder()
	opts := DefaultOptions()
	opts.Patients = 10
	opts.Rdv = 6

	result, err := s.Seed(context.Background(), opts)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if result.CabinetCode != "CAB001" || result.Utilisateurs != 4 {
		t.Errorf("résultat inattendu: %+v", result)
	}
	if len(staff.roles) != 3 || staff.roles[2] != "assistante" {
		t.Errorf("équipe: %v", staff.roles)
	}
	if result.Patients != 10 || len(patients.created) != 10 {
		t.Errorf("patients = %d", result.Patients)
	}
	if result.Rdv+result.Ignores < 6 || result.Rdv == 0 {
		t.Errorf("rdv = %d, ignorés = %d", result.Rdv, result.Ignores)
	}
	for _, p := range patients.created {
		if p.Sexe != "M" && p.Sexe != "F" {
			t.Errorf("sexe invalide %q", p.Sexe)
		}
		if _, err := time.Parse("2006-01-02", p.DateNaissance); err != nil {
			t.Errorf("date de naissance %q", p.DateNaissance)
		}
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	s, _, _ := newTestSeeder()
	opts := DefaultOptions()
	opts.Patients = 2
	opts.Rdv = 1

	if _, err := s.Seed(context.Background(), opts); err != nil {
		t.Fatalf("premier Seed: %v", err)
	}
	result, err := s.Seed(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if !result.Existant {
		t.Errorf("cabinet existant non détecté: %+v", result)
	}
}

func TestCreneauxSkipSunday(t *testing.T) {
	s, _, _ := newTestSeeder()

	// samedi 7 mars: le premier créneau tombe le lundi 9
	list := s.creneaux(5)
	if len(list) != 5 {
		t.Fatalf("len = %d", len(list))
	}
	if list[0].date != "2026-03-09" || list[0].heure != "08:00" || list[1].heure != "08:30" {
		t.Errorf("premiers créneaux: %+v", list[:2])
	}
	if list[4].date != "2026-03-10" {
		t.Errorf("cinquième créneau: %+v", list[4])
	}
}
