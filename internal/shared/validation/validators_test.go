package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestValidTelephone(t *testing.T) {
	cases := map[string]bool{
		"0555 12 34 56":    true,
		"+213555123456":    true,
		"1234567":          false,
		"05-55-12-34-56":   false,
		"+":                false,
		"1234567890123456": false,
	}
	for value, want := range cases {
		if got := ValidTelephone(value); got != want {
			t.Errorf("ValidTelephone(%q) = %v, want %v", value, got, want)
		}
	}
}

func TestValidCouleur(t *testing.T) {
	cases := map[string]bool{
		"#fff":    true,
		"#1A2b3C": true,
		"fff":     false,
		"#ffff":   false,
		"#12345g": false,
	}
	for value, want := range cases {
		if got := ValidCouleur(value); got != want {
			t.Errorf("ValidCouleur(%q) = %v, want %v", value, got, want)
		}
	}
}

func TestRegisterOnStructTags(t *testing.T) {
	v := validator.New()
	if err := RegisterOn(v); err != nil {
		t.Fatalf("RegisterOn: %v", err)
	}

	type form struct {
		Telephone string `validate:"omitempty,telephone"`
		Couleur   string `validate:"required,couleur"`
	}

	if err := v.Struct(form{Telephone: "0555123456", Couleur: "#00aa00"}); err != nil {
		t.Fatalf("valid form rejected: %v", err)
	}
	if err := v.Struct(form{Couleur: "vert"}); err == nil {
		t.Fatal("invalid colour accepted")
	}
	if err := v.Struct(form{Telephone: "abc", Couleur: "#000"}); err == nil {
		t.Fatal("invalid phone accepted")
	}
}
