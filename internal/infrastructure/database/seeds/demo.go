package seeds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cabinet-suite-core/internal/app/config"
	adminDto "cabinet-suite-core/internal/modules/administrateur/dto"
	patientDto "cabinet-suite-core/internal/modules/patients/dto"
	rdvDto "cabinet-suite-core/internal/modules/rdv/dto"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/middleware/tenant"

	"github.com/brianvoe/gofakeit/v7"
)

// Interfaces satisfaites par les services métier: les données de démo passent par les mêmes règles que l'API
type (
	CabinetRegistrar interface {
		Register(ctx context.Context, req adminDto.RegisterCabinetRequest) (*adminDto.RegisterCabinetResponse, error)
	}
	StaffCreator interface {
		Create(ctx context.Context, cabinet tenant.CabinetContext, adminID string, req adminDto.CreateUtilisateurRequest) (*adminDto.Utilisateur, error)
	}
	PatientCreator interface {
		Create(ctx context.Context, cabinet tenant.CabinetContext, userID string, req patientDto.PatientRequest) (*patientDto.Patient, error)
	}
	RdvCreator interface {
		Create(ctx context.Context, cabinet tenant.CabinetContext, userID string, req rdvDto.CreateRdvRequest) (*rdvDto.RendezVous, error)
	}
)

// Options paramètres d'un jeu de démo
type Options struct {
	Cabinet    string
	EmailAdmin string
	MotDePasse string
	Patients   int
	Rdv        int
	Seed       uint64
}

// DefaultOptions cabinet DEMO utilisé par le bootstrap
func DefaultOptions() Options {
	return Options{
		Cabinet:    "Cabinet Démo",
		EmailAdmin: "demo@cabinet.local",
		MotDePasse: "demo-cabinet-2026",
		Patients:   25,
		Rdv:        15,
		Seed:       42,
	}
}

// Result résumé affiché par le bootstrap et cabinetctl
type Result struct {
	Existant     bool   `json:"existant"`
	CabinetCode  string `json:"cabinet_code,omitempty"`
	Identifiant  string `json:"identifiant,omitempty"`
	Utilisateurs int    `json:"utilisateurs"`
	Patients     int    `json:"patients"`
	Rdv          int    `json:"rdv"`
	Ignores      int    `json:"ignores"`
}

type DemoSeeder struct {
	cabinets CabinetRegistrar
	staff    StaffCreator
	patients PatientCreator
	rdv      RdvCreator
	agenda   config.AgendaConfig
	now      func() time.Time
}

func NewDemoSeeder(cabinets CabinetRegistrar, staff StaffCreator, patients PatientCreator, rdv RdvCreator, cfg *config.Config) *DemoSeeder {
	return &DemoSeeder{
		cabinets: cabinets,
		staff:    staff,
		patients: patients,
		rdv:      rdv,
		agenda:   cfg.Agenda,
		now:      time.Now,
	}
}

// Seed crée un cabinet, son équipe, des patients et des rendez-vous à venir.
// Un cabinet déjà enregistré pour l'email n'est pas modifié.
func (s *DemoSeeder) Seed(ctx context.Context, opts Options) (*Result, error) {
	faker := gofakeit.New(opts.Seed)

	reg, err := s.cabinets.Register(ctx, adminDto.RegisterCabinetRequest{
		Nom:          opts.Cabinet,
		EmailAdmin:   opts.EmailAdmin,
		Specialite:   "Médecine générale",
		Telephone:    telephone(faker),
		Adresse:      faker.Street() + ", " + faker.City(),
		NomAdmin:     faker.LastName(),
		PrenomsAdmin: faker.FirstName(),
		MotDePasse:   opts.MotDePasse,
	})
	if apperr.IsCode(err, "CABINET_EXISTS") {
		return &Result{Existant: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cabinet de démo: %w", err)
	}

	cabinet := tenant.CabinetContext{ID: reg.CabinetID, Code: reg.Code, Nom: opts.Cabinet, EmailAdmin: strings.ToLower(opts.EmailAdmin)}
	result := &Result{CabinetCode: reg.Code, Identifiant: reg.Identifiant, Utilisateurs: 1}

	medecins := []string{}
	for i, role := range []string{"medecin", "medecin", "assistante"} {
		u, err := s.staff.Create(ctx, cabinet, "", adminDto.CreateUtilisateurRequest{
			Identifiant: fmt.Sprintf("%s%d", role, i+1),
			Nom:         faker.LastName(),
			Prenoms:     faker.FirstName(),
			Role:        role,
			MotDePasse:  opts.MotDePasse,
		})
		if err != nil {
			return result, fmt.Errorf("utilisateur %s: %w", role, err)
		}
		result.Utilisateurs++
		if role == "medecin" {
			medecins = append(medecins, u.ID)
		}
	}

	patients := []string{}
	debut := time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC)
	fin := s.now().AddDate(0, -1, 0)
	for i := 0; i < opts.Patients; i++ {
		p, err := s.patients.Create(ctx, cabinet, "", patientDto.PatientRequest{
			Nom:           strings.ToUpper(faker.LastName()),
			Prenoms:       faker.FirstName(),
			Sexe:          faker.RandomString([]string{"M", "F"}),
			DateNaissance: faker.DateRange(debut, fin).Format("2006-01-02"),
			Telephone:     telephone(faker),
			Adresse:       faker.Street() + ", " + faker.City(),
			Allergies:     faker.RandomString([]string{"", "", "Pénicilline", "Arachide", "Aspirine"}),
		})
		if apperr.IsCode(err, "PATIENT_EXISTS") {
			result.Ignores++
			continue
		}
		if err != nil {
			return result, fmt.Errorf("patient %d: %w", i+1, err)
		}
		result.Patients++
		patients = append(patients, p.ID)
	}

	if len(patients) == 0 || len(medecins) == 0 {
		return result, nil
	}
	for _, c := range s.creneaux(opts.Rdv) {
		_, err := s.rdv.Create(ctx, cabinet, "", rdvDto.CreateRdvRequest{
			PatientID: patients[faker.Number(0, len(patients)-1)],
			MedecinID: medecins[faker.Number(0, len(medecins)-1)],
			Date:      c.date,
			Heure:     c.heure,
			Motif:     faker.RandomString([]string{"Consultation", "Contrôle", "Renouvellement ordonnance", "Certificat"}),
		})
		if err != nil {
			// créneau refusé par l'agenda (conflit, fermeture)
			result.Ignores++
			continue
		}
		result.Rdv++
	}
	return result, nil
}

type creneau struct {
	date  string
	heure string
}

// creneaux n premiers créneaux à partir de demain, deux par heure depuis l'ouverture
func (s *DemoSeeder) creneaux(n int) []creneau {
	loc := s.agenda.Location
	if loc == nil {
		loc = time.Local
	}
	ouverture, err := time.Parse("15:04", s.agenda.Ouverture)
	if err != nil {
		ouverture = time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC)
	}
	pas := s.agenda.SlotMinutes * 2
	if pas <= 0 {
		pas = 30
	}

	list := make([]creneau, 0, n)
	jour := s.now().In(loc).AddDate(0, 0, 1)
	for len(list) < n {
		if jour.Weekday() != time.Sunday {
			for k := 0; k < 4 && len(list) < n; k++ {
				heure := ouverture.Add(time.Duration(k*pas) * time.Minute)
				list = append(list, creneau{date: jour.Format("2006-01-02"), heure: heure.Format("15:04")})
			}
		}
		jour = jour.AddDate(0, 0, 1)
	}
	return list
}

func telephone(faker *gofakeit.Faker) string {
	return fmt.Sprintf("06%08d", faker.Number(0, 99999999))
}
