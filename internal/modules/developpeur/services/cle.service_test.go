package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	activationDto "cabinet-suite-core/internal/modules/activation/dto"
	"cabinet-suite-core/internal/modules/developpeur/dto"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/middleware/authentication"

	"github.com/jackc/pgx/v5/pgconn"
)

type memoryKeys struct {
	cles map[string]*activationDto.CleActivation
}

func (m *memoryKeys) Insert(_ context.Context, cle *activationDto.CleActivation) error {
	if _, ok := m.cles[cle.Cle]; ok {
		return &pgconn.PgError{Code: "23505", ConstraintName: "cles_activation_pkey"}
	}
	cle.Statut = activationDto.CleDisponible
	stored := *cle
	m.cles[cle.Cle] = &stored
	return nil
}

func (m *memoryKeys) List(_ context.Context, statut string) ([]activationDto.CleActivation, error) {
	out := []activationDto.CleActivation{}
	for _, c := range m.cles {
		if statut == "" || c.Statut == statut {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *memoryKeys) Revoke(_ context.Context, cle string) (bool, error) {
	c, ok := m.cles[cle]
	if !ok || c.Statut != activationDto.CleDisponible {
		return false, nil
	}
	c.Statut = activationDto.CleRevoquee
	return true, nil
}

type stubLookup map[string]*authentication.CabinetData

func (s stubLookup) FindCabinetByCode(_ context.Context, code string) (*authentication.CabinetData, error) {
	return s[code], nil
}

type stubCabinets []dto.CabinetLicenceRow

func (s stubCabinets) CabinetsWithLicence(context.Context) ([]dto.CabinetLicenceRow, error) {
	return s, nil
}

type stubEvaluator struct{}

func (stubEvaluator) Evaluate(l *activationDto.Licence, _ string, _ time.Time) activationDto.Evaluation {
	if l == nil {
		return activationDto.Evaluation{Raison: activationDto.RaisonAbsente}
	}
	return activationDto.Evaluation{Valide: true, Plan: l.Plan}
}

func newTestCleService(rows stubCabinets) (*CleService, *memoryKeys) {
	keys := &memoryKeys{cles: map[string]*activationDto.CleActivation{}}
	lookup := stubLookup{"CAB001": {ID: "cab-1", Code: "CAB001"}}
	return NewCleService(keys, rows, lookup, stubEvaluator{}), keys
}

func TestEmettreCles(t *testing.T) {
	svc, keys := newTestCleService(nil)

	res, err := svc.Emettre(context.Background(), dto.EmettreClesRequest{Plan: "annuel", Nombre: 3, CabinetCode: " cab001 ", Note: "salon"})
	if err != nil {
		t.Fatalf("Emettre: %v", err)
	}
	if len(res.Cles) != 3 || len(keys.cles) != 3 {
		t.Fatalf("attendu 3 clés, obtenu %d/%d", len(res.Cles), len(keys.cles))
	}
	for _, c := range res.Cles {
		if c.CabinetCode == nil || *c.CabinetCode != "CAB001" || c.Plan != "annuel" || c.Note != "salon" {
			t.Errorf("clé inattendue: %+v", c)
		}
	}
}

func TestEmettreRetriesOnCollision(t *testing.T) {
	svc, keys := newTestCleService(nil)
	sequence := []string{"AAAA-AAAA-AAAA-AAAA", "AAAA-AAAA-AAAA-AAAA", "BBBB-BBBB-BBBB-BBBB"}
	i := 0
	svc.generate = func() (string, error) {
		v := sequence[i]
		i++
		return v, nil
	}

	res, err := svc.Emettre(context.Background(), dto.EmettreClesRequest{Plan: "mensuel", Nombre: 2})
	if err != nil {
		t.Fatalf("Emettre: %v", err)
	}
	if res.Cles[1].Cle != "BBBB-BBBB-BBBB-BBBB" || len(keys.cles) != 2 {
		t.Fatalf("collision non gérée: %+v", res.Cles)
	}

	svc.generate = func() (string, error) { return "AAAA-AAAA-AAAA-AAAA", nil }
	_, err = svc.Emettre(context.Background(), dto.EmettreClesRequest{Plan: "mensuel", Nombre: 1})
	if !apperr.IsCode(err, "CLE_EMISSION_FAILED") {
		t.Fatalf("attendu CLE_EMISSION_FAILED, obtenu %v", err)
	}
}

func TestEmettreRejections(t *testing.T) {
	svc, _ := newTestCleService(nil)
	cases := []struct {
		req  dto.EmettreClesRequest
		code string
	}{
		{dto.EmettreClesRequest{Plan: "annuel", Nombre: 0}, "NOMBRE_INVALIDE"},
		{dto.EmettreClesRequest{Plan: "annuel", Nombre: 101}, "NOMBRE_INVALIDE"},
		{dto.EmettreClesRequest{Plan: "essai", Nombre: 1}, "CLE_PLAN_INVALIDE"},
		{dto.EmettreClesRequest{Plan: "annuel", Nombre: 1, CabinetCode: "ZZZ999"}, "CABINET_NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/%d/%s", tc.req.Plan, tc.req.Nombre, tc.req.CabinetCode), func(t *testing.T) {
			_, err := svc.Emettre(context.Background(), tc.req)
			if !apperr.IsCode(err, tc.code) {
				t.Fatalf("attendu %s, obtenu %v", tc.code, err)
			}
		})
	}
}

func TestRevoquer(t *testing.T) {
	svc, keys := newTestCleService(nil)
	svc.generate = func() (string, error) { return "CCCC-CCCC-CCCC-CCCC", nil }
	if _, err := svc.Emettre(context.Background(), dto.EmettreClesRequest{Plan: "annuel", Nombre: 1}); err != nil {
		t.Fatalf("Emettre: %v", err)
	}

	if err := svc.Revoquer(context.Background(), "cccccccccccccccc"); err != nil {
		t.Fatalf("Revoquer: %v", err)
	}
	if keys.cles["CCCC-CCCC-CCCC-CCCC"].Statut != activationDto.CleRevoquee {
		t.Fatal("clé non révoquée")
	}
	if err := svc.Revoquer(context.Background(), "CCCC-CCCC-CCCC-CCCC"); !apperr.IsCode(err, "CLE_NON_REVOCABLE") {
		t.Fatalf("attendu CLE_NON_REVOCABLE, obtenu %v", err)
	}
	if err := svc.Revoquer(context.Background(), "abc"); !apperr.IsCode(err, "CLE_FORMAT_INVALIDE") {
		t.Fatalf("attendu CLE_FORMAT_INVALIDE, obtenu %v", err)
	}

	listed, err := svc.List(context.Background(), activationDto.CleRevoquee)
	if err != nil || len(listed) != 1 {
		t.Fatalf("List: %v, %v", listed, err)
	}
	if _, err := svc.List(context.Background(), "perdue"); !apperr.IsCode(err, "STATUT_INVALIDE") {
		t.Fatalf("attendu STATUT_INVALIDE, obtenu %v", err)
	}
}

func TestCabinetsWithLicenceSummary(t *testing.T) {
	rows := stubCabinets{
		{ID: "cab-1", Code: "CAB001", Licence: &activationDto.Licence{Plan: "annuel", Statut: "active"}},
		{ID: "cab-2", Code: "CAB002"},
	}
	svc, _ := newTestCleService(rows)

	result, err := svc.Cabinets(context.Background())
	if err != nil {
		t.Fatalf("Cabinets: %v", err)
	}
	if !result[0].Licence.Valide || result[0].StatutLicence != "active" {
		t.Errorf("cabinet 1: %+v", result[0])
	}
	if result[1].Licence.Raison != activationDto.RaisonAbsente || result[1].StatutLicence != "" {
		t.Errorf("cabinet 2: %+v", result[1])
	}
}
