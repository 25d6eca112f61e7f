package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if previous, ok := os.LookupEnv(key); ok {
			os.Unsetenv(key)
			t.Cleanup(func() { os.Setenv(key, previous) })
		}
	}
}

func TestLoadDevelopmentDefaults(t *testing.T) {
	unsetenv(t, "ACTIVATION_MASTER_KEY", "ACTIVATION_SIGNING_SECRET", "AGENDA_OUVERTURE", "AGENDA_FERMETURE",
		"AGENDA_SLOT_MINUTES", "AGENDA_TIMEZONE", "FACTURATION_DEVISE", "SESSION_TTL", "SERVER_PORT")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Activation.MasterKey != "0000-0000-0000-0000" {
		t.Errorf("master key = %q", cfg.Activation.MasterKey)
	}
	if cfg.Activation.SigningSecret == "" {
		t.Error("signing secret vide en développement")
	}
	if cfg.Agenda.SlotMinutes != 15 || cfg.Agenda.Location == nil {
		t.Errorf("agenda = %+v", cfg.Agenda)
	}
	if cfg.Session.TTL != 8*time.Hour {
		t.Errorf("session ttl = %s", cfg.Session.TTL)
	}
	if cfg.Facturation.Devise != "EUR" {
		t.Errorf("devise = %s", cfg.Facturation.Devise)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment = false")
	}
}

func TestLoadMasterKeyDisabledExplicitly(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("ACTIVATION_MASTER_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Activation.MasterKey != "" {
		t.Errorf("master key = %q, want vide", cfg.Activation.MasterKey)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"environnement inconnu", map[string]string{"APP_ENV": "staging"}, "environnement non supporté"},
		{"horaires inversés", map[string]string{"APP_ENV": "development", "AGENDA_OUVERTURE": "19:00"}, "AGENDA_OUVERTURE"},
		{"fuseau inconnu", map[string]string{"APP_ENV": "development", "AGENDA_TIMEZONE": "Mars/Olympus"}, "AGENDA_TIMEZONE"},
		{"port hors plage", map[string]string{"APP_ENV": "development", "SERVER_PORT": "70000"}, "SERVER_PORT"},
		{"production sans secrets", map[string]string{"APP_ENV": "production", "DB_PASSWORD": "", "ACTIVATION_SIGNING_SECRET": ""}, "DB_PASSWORD"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			unsetenv(t, "AGENDA_OUVERTURE", "AGENDA_FERMETURE", "AGENDA_TIMEZONE", "SERVER_PORT")
			for key, value := range tc.env {
				t.Setenv(key, value)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
}

func TestGetEnvStringSlice(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.fr, ,https://b.fr ")
	got := getEnvStringSlice("CORS_ALLOWED_ORIGINS", nil)
	if len(got) != 2 || got[0] != "https://a.fr" || got[1] != "https://b.fr" {
		t.Fatalf("got %v", got)
	}
	unsetenv(t, "CORS_ALLOWED_ORIGINS")
	if got := getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"x"}); len(got) != 1 {
		t.Fatalf("défaut ignoré: %v", got)
	}
}
