package utils

import (
	"strings"
	"testing"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("motdepasse-solide")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword("motdepasse-solide", hash) {
		t.Fatal("expected password to match")
	}
	if VerifyPassword("autre", hash) {
		t.Fatal("expected mismatch")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("court"); err == nil {
		t.Error("short password accepted")
	}
	if err := ValidatePassword(strings.Repeat("a", 73)); err == nil {
		t.Error("password longer than 72 bytes accepted")
	}
	if err := ValidatePassword("éééééééé"); err != nil {
		t.Errorf("8 accented characters rejected: %v", err)
	}
}

func TestRandomString(t *testing.T) {
	s, err := RandomString(AlphabetSansAmbiguite, 16)
	if err != nil {
		t.Fatal(err)
	}
	if len(s) != 16 {
		t.Fatalf("len = %d", len(s))
	}
	for _, r := range s {
		if !strings.ContainsRune(AlphabetSansAmbiguite, r) {
			t.Fatalf("unexpected rune %q", r)
		}
	}
}
