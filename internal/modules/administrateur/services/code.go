package services

import (
	"strings"
	"unicode"

	"cabinet-suite-core/internal/shared/utils"

	"golang.org/x/text/unicode/norm"
)

const (
	longueurPrefixe = 6
	longueurSuffixe = 4
)

// PrefixeCode lettres et chiffres du nom, sans accents, en majuscules
func PrefixeCode(nom string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(nom) {
		if b.Len() == longueurPrefixe {
			break
		}
		if r > unicode.MaxASCII {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// GenererCodeCabinet préfixe du nom suivi de 4 caractères aléatoires
func GenererCodeCabinet(nom string) (string, error) {
	suffixe, err := utils.RandomString(utils.AlphabetSansAmbiguite, longueurSuffixe)
	if err != nil {
		return "", err
	}
	return PrefixeCode(nom) + suffixe, nil
}
