package services

import (
	"regexp"
	"strings"

	"cabinet-suite-core/internal/shared/utils"
)

var (
	// clés émises: alphabet sans 0/O ni 1/I
	formatCle = regexp.MustCompile(`^[` + utils.AlphabetSansAmbiguite + `]{4}(-[` + utils.AlphabetSansAmbiguite + `]{4}){3}$`)
	// clé maîtresse configurée: tout l'alphanumérique
	formatCleMaitresse = regexp.MustCompile(`^[A-Z0-9]{4}(-[A-Z0-9]{4}){3}$`)
)

// NormaliserCle majuscules, sans espaces; ajoute les tirets à une saisie de 16 caractères.
// Seules les clés de l'alphabet d'émission sont valides.
func NormaliserCle(saisie string) (string, bool) {
	cle := normaliser(saisie)
	return cle, formatCle.MatchString(cle)
}

// NormaliserCleMaitresse même normalisation, 0, O, 1 et I acceptés
func NormaliserCleMaitresse(saisie string) (string, bool) {
	cle := normaliser(saisie)
	return cle, formatCleMaitresse.MatchString(cle)
}

func normaliser(saisie string) string {
	cle := strings.ToUpper(strings.Join(strings.Fields(saisie), ""))
	if len(cle) == 16 && !strings.Contains(cle, "-") {
		cle = cle[0:4] + "-" + cle[4:8] + "-" + cle[8:12] + "-" + cle[12:16]
	}
	return cle
}

// GenererCle XXXX-XXXX-XXXX-XXXX sans caractères ambigus
func GenererCle() (string, error) {
	raw, err := utils.RandomString(utils.AlphabetSansAmbiguite, 16)
	if err != nil {
		return "", err
	}
	return raw[0:4] + "-" + raw[4:8] + "-" + raw[8:12] + "-" + raw[12:16], nil
}
