package services

import (
	"context"
	"testing"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/modules/activation/dto"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/audit"
	"cabinet-suite-core/internal/shared/middleware/tenant"

	"go.uber.org/zap"
)

type memoryLicences struct {
	licences map[string]*dto.Licence
	cles     map[string]*dto.CleActivation
}

func (m *memoryLicences) Get(_ context.Context, cabinetID string) (*dto.Licence, error) {
	return m.licences[cabinetID], nil
}

func (m *memoryLicences) Save(_ context.Context, l *dto.Licence) error {
	m.licences[l.CabinetID] = l
	return nil
}

func (m *memoryLicences) ActivateWithKey(_ context.Context, cabinetID, cle string, at time.Time,
	apply func(*dto.Licence, *dto.CleActivation) (*dto.Licence, error)) (*dto.Licence, error) {
	next, err := apply(m.licences[cabinetID], m.cles[cle])
	if err != nil {
		return nil, err
	}
	m.licences[cabinetID] = next
	key := m.cles[cle]
	key.Statut = dto.CleUtilisee
	key.UtiliseePar = &cabinetID
	key.UtiliseeLe = &at
	return next, nil
}

func (m *memoryLicences) ExpireOverdue(_ context.Context, now time.Time) ([]string, error) {
	codes := []string{}
	for id, l := range m.licences {
		if l.Statut == dto.StatutActive && l.DateExpiration != nil && !l.DateExpiration.After(now) {
			l.Statut = dto.StatutExpiree
			codes = append(codes, "CODE"+id)
		}
	}
	return codes, nil
}

type memoryCache struct {
	entries     map[string]*dto.Licence
	invalidated []string
}

func (c *memoryCache) Get(_ context.Context, code string) (*dto.Licence, bool) {
	l, ok := c.entries[code]
	return l, ok
}

func (c *memoryCache) Set(_ context.Context, code string, l *dto.Licence) { c.entries[code] = l }

func (c *memoryCache) Invalidate(_ context.Context, code string) {
	delete(c.entries, code)
	c.invalidated = append(c.invalidated, code)
}

var cabinet = tenant.CabinetContext{ID: "cab", Code: "CAB01", Nom: "Cabinet"}

type fixture struct {
	svc   *ActivationService
	store *memoryLicences
	cache *memoryCache
	now   time.Time
}

func newFixture(t *testing.T, masterKey string) *fixture {
	t.Helper()
	cfg := &config.Config{Activation: config.ActivationConfig{
		SigningSecret: "secret-test", TrialDays: 15, WarningDays: 7, MasterKey: masterKey,
	}}
	store := &memoryLicences{licences: map[string]*dto.Licence{}, cles: map[string]*dto.CleActivation{}}
	cache := &memoryCache{entries: map[string]*dto.Licence{}}
	svc := NewActivationService(store, cache, NewLicenceSigner(cfg), audit.NewJournal(nil, zap.NewNop()), cfg)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return &fixture{svc: svc, store: store, cache: cache, now: now}
}

func (f *fixture) addKey(cle, plan string, cabinetCode *string) {
	f.store.cles[cle] = &dto.CleActivation{Cle: cle, Plan: plan, Statut: dto.CleDisponible, CabinetCode: cabinetCode}
}

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	if !apperr.IsCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestCheckLicence(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	_, err := f.svc.CheckLicence(ctx, cabinet)
	expectCode(t, err, dto.RaisonAbsente)
	if appErr, _ := apperr.As(err); appErr.Status() != apperr.StatusLicenceError {
		t.Fatalf("status = %d", appErr.Status())
	}

	trial, _ := f.svc.signer.IssueTrial(cabinet.ID, f.now.AddDate(0, 0, -20))
	f.store.licences[cabinet.ID] = trial
	_, err = f.svc.CheckLicence(ctx, cabinet)
	expectCode(t, err, dto.RaisonExpiree)

	summary, err := f.svc.Summary(ctx, cabinet)
	if err != nil || summary.Valide || summary.Raison != dto.RaisonExpiree {
		t.Fatalf("summary = %+v, err %v", summary, err)
	}
}

func TestCheckLicenceUsesCache(t *testing.T) {
	f := newFixture(t, "")
	trial, _ := f.svc.signer.IssueTrial(cabinet.ID, f.now)
	f.store.licences[cabinet.ID] = trial

	if _, err := f.svc.CheckLicence(context.Background(), cabinet); err != nil {
		t.Fatal(err)
	}
	if _, ok := f.cache.entries[cabinet.Code]; !ok {
		t.Fatal("licence must be cached")
	}

	delete(f.store.licences, cabinet.ID)
	lic, err := f.svc.CheckLicence(context.Background(), cabinet)
	if err != nil || lic.Plan != dto.PlanEssai || lic.JoursRestants != 15 {
		t.Fatalf("cached licence not used: %+v, %v", lic, err)
	}
}

func TestActiverWithKeyStacksOnPaidPlan(t *testing.T) {
	f := newFixture(t, "")
	ctx := context.Background()

	current, _ := f.svc.signer.Issue(cabinet.ID, dto.PlanMensuel, f.now.AddDate(0, 0, -10), nil)
	f.store.licences[cabinet.ID] = current
	f.addKey("ABCD-EFGH-JKMN-PQRS", dto.PlanAnnuel, nil)

	res, err := f.svc.Activer(ctx, cabinet, "u1", "abcd efgh jkmn pqrs")
	if err != nil {
		t.Fatalf("Activer: %v", err)
	}
	want := current.DateExpiration.AddDate(1, 0, 0)
	if !res.Valide || res.Plan != dto.PlanAnnuel || !res.DateExpiration.Equal(want) {
		t.Fatalf("unexpected result %+v, want expiration %v", res, want)
	}
	if f.store.cles["ABCD-EFGH-JKMN-PQRS"].Statut != dto.CleUtilisee {
		t.Fatal("key must be consumed")
	}
	if len(f.cache.invalidated) == 0 {
		t.Fatal("cache must be invalidated")
	}

	_, err = f.svc.Activer(ctx, cabinet, "u1", "ABCD-EFGH-JKMN-PQRS")
	expectCode(t, err, "CLE_DEJA_UTILISEE")
}

func TestActiverFromTrialStartsNow(t *testing.T) {
	f := newFixture(t, "")
	trial, _ := f.svc.signer.IssueTrial(cabinet.ID, f.now.AddDate(0, 0, -3))
	f.store.licences[cabinet.ID] = trial
	f.addKey("MMMM-MMMM-MMMM-MMMM", dto.PlanMensuel, nil)

	res, err := f.svc.Activer(context.Background(), cabinet, "u1", "MMMM-MMMM-MMMM-MMMM")
	if err != nil {
		t.Fatal(err)
	}
	if want := f.now.AddDate(0, 1, 0); !res.DateExpiration.Equal(want) {
		t.Fatalf("expiration = %v, want %v", res.DateExpiration, want)
	}
}

func TestActiverRejections(t *testing.T) {
	other := "AUTRE"
	mine := cabinet.Code

	tests := []struct {
		name  string
		setup func(f *fixture)
		cle   string
		code  string
	}{
		{"bad format", func(*fixture) {}, "ABC", "CLE_FORMAT_INVALIDE"},
		{"ambiguous characters", func(*fixture) {}, "ABCD-EFGH-IJKL-MNO1", "CLE_FORMAT_INVALIDE"},
		{"unknown", func(*fixture) {}, "ZZZZ-ZZZZ-ZZZZ-ZZZZ", "CLE_INCONNUE"},
		{"other cabinet", func(f *fixture) { f.addKey("AAAA-BBBB-CCCC-DDDD", dto.PlanMensuel, &other) }, "AAAA-BBBB-CCCC-DDDD", "CLE_AUTRE_CABINET"},
		{"revoked", func(f *fixture) {
			f.addKey("AAAA-BBBB-CCCC-DDDD", dto.PlanMensuel, &mine)
			f.store.cles["AAAA-BBBB-CCCC-DDDD"].Statut = dto.CleRevoquee
		}, "AAAA-BBBB-CCCC-DDDD", "CLE_REVOQUEE"},
		{"trial key", func(f *fixture) { f.addKey("AAAA-BBBB-CCCC-DDDD", dto.PlanEssai, nil) }, "AAAA-BBBB-CCCC-DDDD", "CLE_PLAN_INVALIDE"},
		{"already unlimited", func(f *fixture) {
			l, _ := f.svc.signer.Issue(cabinet.ID, dto.PlanIllimite, f.now, nil)
			f.store.licences[cabinet.ID] = l
			f.addKey("AAAA-BBBB-CCCC-DDDD", dto.PlanMensuel, nil)
		}, "AAAA-BBBB-CCCC-DDDD", "LICENCE_DEJA_ILLIMITEE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "")
			tt.setup(f)
			_, err := f.svc.Activer(context.Background(), cabinet, "u1", tt.cle)
			expectCode(t, err, tt.code)
		})
	}
}

func TestActiverMasterKey(t *testing.T) {
	f := newFixture(t, "0000-0000-0000-0000")
	res, err := f.svc.Activer(context.Background(), cabinet, "u1", "0000000000000000")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Valide || !res.Illimitee || res.DateExpiration != nil {
		t.Fatalf("unexpected result %+v", res)
	}

	disabled := newFixture(t, "")
	_, err = disabled.svc.Activer(context.Background(), cabinet, "u1", "0000-0000-0000-0000")
	expectCode(t, err, "CLE_FORMAT_INVALIDE")
}

func TestExpireOverdue(t *testing.T) {
	f := newFixture(t, "")
	trial, _ := f.svc.signer.IssueTrial(cabinet.ID, f.now.AddDate(0, 0, -30))
	f.store.licences[cabinet.ID] = trial

	n, err := f.svc.ExpireOverdue(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("ExpireOverdue = %d, %v", n, err)
	}
	if f.store.licences[cabinet.ID].Statut != dto.StatutExpiree {
		t.Fatal("licence must be expired")
	}
}

func TestAlerte(t *testing.T) {
	f := newFixture(t, "")
	trial, _ := f.svc.signer.IssueTrial(cabinet.ID, f.now.AddDate(0, 0, -10))
	f.store.licences[cabinet.ID] = trial

	res, err := f.svc.Statut(context.Background(), cabinet)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Alerte || res.JoursRestants != 5 {
		t.Fatalf("expected warning with 5 days left, got %+v", res)
	}
}
