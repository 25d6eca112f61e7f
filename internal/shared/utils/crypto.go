package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength longueur minimale d'un mot de passe
const MinPasswordLength = 8

// AlphabetSansAmbiguite exclut 0/O et 1/I pour les codes saisis à la main
const AlphabetSansAmbiguite = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// HashPassword hash un mot de passe avec bcrypt (coût par défaut)
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("impossible de hasher le mot de passe: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compare un mot de passe à son hash bcrypt
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword longueur entre 8 et 72 octets (limite bcrypt)
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("le mot de passe doit contenir au moins %d caractères", MinPasswordLength)
	}
	if len(password) > 72 {
		return fmt.Errorf("le mot de passe ne doit pas dépasser 72 octets")
	}
	return nil
}

// RandomString tire n caractères de alphabet avec crypto/rand
func RandomString(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("génération aléatoire: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}
