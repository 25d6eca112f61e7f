package services

import (
	"testing"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/modules/activation/dto"
)

func testSigner() *LicenceSigner {
	return NewLicenceSigner(&config.Config{Activation: config.ActivationConfig{SigningSecret: "secret-test", TrialDays: 15}})
}

func TestExpiration(t *testing.T) {
	start := time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		plan string
		want *time.Time
	}{
		{dto.PlanEssai, ptrTime(time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC))},
		{dto.PlanMensuel, ptrTime(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC))},
		{dto.PlanAnnuel, ptrTime(time.Date(2027, 1, 31, 10, 0, 0, 0, time.UTC))},
		{dto.PlanIllimite, nil},
	}
	for _, tt := range tests {
		t.Run(tt.plan, func(t *testing.T) {
			got := Expiration(tt.plan, start, 15)
			if (got == nil) != (tt.want == nil) || (got != nil && !got.Equal(*tt.want)) {
				t.Fatalf("Expiration(%s) = %v, want %v", tt.plan, got, tt.want)
			}
		})
	}
}

func TestJoursRestants(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		exp  time.Time
		want int
	}{
		{now.Add(time.Hour), 1},
		{now.Add(48 * time.Hour), 2},
		{now.Add(48*time.Hour + time.Minute), 3},
		{now.Add(-time.Hour), 0},
	}
	for _, c := range cases {
		if got := JoursRestants(c.exp, now); got != c.want {
			t.Errorf("JoursRestants(%v) = %d, want %d", c.exp, got, c.want)
		}
	}
}

func TestDebutActivation(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	signer := testSigner()

	mensuel, _ := signer.Issue("cab", dto.PlanMensuel, now.AddDate(0, 0, -10), nil)
	eval := signer.Evaluate(mensuel, "cab", now)
	if got := DebutActivation(mensuel, eval, now); !got.Equal(*mensuel.DateExpiration) {
		t.Fatalf("valid paid plan must stack, got %v", got)
	}

	essai, _ := signer.IssueTrial("cab", now.AddDate(0, 0, -2))
	eval = signer.Evaluate(essai, "cab", now)
	if got := DebutActivation(essai, eval, now); !got.Equal(now) {
		t.Fatalf("trial must not stack, got %v", got)
	}

	expired, _ := signer.Issue("cab", dto.PlanMensuel, now.AddDate(0, -3, 0), nil)
	eval = signer.Evaluate(expired, "cab", now)
	if got := DebutActivation(expired, eval, now); !got.Equal(now) {
		t.Fatalf("expired plan must restart now, got %v", got)
	}
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	signer := testSigner()

	valid, _ := signer.IssueTrial("cab", now)
	illimite, _ := signer.Issue("cab", dto.PlanIllimite, now, nil)

	tampered := *valid
	later := valid.DateExpiration.AddDate(1, 0, 0)
	tampered.DateExpiration = &later

	foreign, _ := testSigner().IssueTrial("autre", now)
	foreign.CabinetID = "cab"

	otherSecret := NewLicenceSigner(&config.Config{Activation: config.ActivationConfig{SigningSecret: "autre", TrialDays: 15}})
	forged, _ := otherSecret.IssueTrial("cab", now)

	revoked := *valid
	revoked.Statut = dto.StatutRevoquee

	tests := []struct {
		name    string
		licence *dto.Licence
		at      time.Time
		valide  bool
		raison  string
	}{
		{"trial day one", valid, now, true, ""},
		{"trial last second", valid, valid.DateExpiration.Add(-time.Second), true, ""},
		{"trial at expiration", valid, *valid.DateExpiration, false, dto.RaisonExpiree},
		{"unlimited far future", illimite, now.AddDate(50, 0, 0), true, ""},
		{"missing", nil, now, false, dto.RaisonAbsente},
		{"tampered expiration", &tampered, now, false, dto.RaisonInvalide},
		{"token of another cabinet", foreign, now, false, dto.RaisonInvalide},
		{"foreign secret", forged, now, false, dto.RaisonInvalide},
		{"revoked", &revoked, now, false, dto.RaisonRevoquee},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eval := signer.Evaluate(tt.licence, "cab", tt.at)
			if eval.Valide != tt.valide || eval.Raison != tt.raison {
				t.Fatalf("got valide=%v raison=%q, want %v %q", eval.Valide, eval.Raison, tt.valide, tt.raison)
			}
			if eval.JoursRestants < 0 {
				t.Fatal("remaining days must never be negative")
			}
		})
	}

	if eval := signer.Evaluate(valid, "cab", now); eval.JoursRestants != 15 {
		t.Fatalf("JoursRestants = %d, want 15", eval.JoursRestants)
	}
}

func TestNormaliserCle(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"abcd-efgh-jkmn-pqrs", "ABCD-EFGH-JKMN-PQRS", true},
		{" abcdefghjkmnpqrs ", "ABCD-EFGH-JKMN-PQRS", true},
		{"0000-0000-0000-0000", "0000-0000-0000-0000", false},
		{"ABCD-EFGH-IJKL-MNOP", "ABCD-EFGH-IJKL-MNOP", false},
		{"ABC1-EFGH-JKMN-PQRS", "ABC1-EFGH-JKMN-PQRS", false},
		{"ABCD-EFGH-JKMN", "ABCD-EFGH-JKMN", false},
		{"ABCD_EFGH_JKMN_PQRS", "ABCD_EFGH_JKMN_PQRS", false},
	}
	for _, c := range cases {
		got, ok := NormaliserCle(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("NormaliserCle(%q) = %q, %v", c.in, got, ok)
		}
	}

	if got, ok := NormaliserCleMaitresse("0000 0000 0000 0000"); !ok || got != "0000-0000-0000-0000" {
		t.Errorf("NormaliserCleMaitresse = %q, %v", got, ok)
	}
	if _, ok := NormaliserCleMaitresse("0000-0000-0000"); ok {
		t.Error("clé maîtresse tronquée acceptée")
	}

	cle, err := GenererCle()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := NormaliserCle(cle); !ok {
		t.Fatalf("generated key %q has an invalid format", cle)
	}
}

func ptrTime(t time.Time) *time.Time { return &t }
