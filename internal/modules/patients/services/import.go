package services

import (
	"fmt"
	"strings"
	"time"

	"cabinet-suite-core/internal/infrastructure/documents/excel"
	"cabinet-suite-core/internal/modules/patients/dto"
)

// MaxLignesImport nombre maximal de lignes de données par classeur
const MaxLignesImport = 5000

const (
	colNom = iota
	colPrenoms
	colSexe
	colDateNaissance
	colTelephone
	colAdresse
)

// En-têtes reconnus après NormalizeHeader
var entetesImport = map[string]int{
	"nom":               colNom,
	"nom de famille":    colNom,
	"prenom":            colPrenoms,
	"prenoms":           colPrenoms,
	"prenom s":          colPrenoms,
	"sexe":              colSexe,
	"genre":             colSexe,
	"date de naissance": colDateNaissance,
	"date naissance":    colDateNaissance,
	"naissance":         colDateNaissance,
	"ddn":               colDateNaissance,
	"telephone":         colTelephone,
	"tel":               colTelephone,
	"contact":           colTelephone,
	"adresse":           colAdresse,
}

// LigneCandidate ligne du classeur prête à être enregistrée
type LigneCandidate struct {
	Ligne  int
	Fields dto.PatientFields
}

// ParseImport lit un classeur dont la première ligne porte les en-têtes.
// Les numéros de ligne sont ceux du tableur (en-tête = 1).
func ParseImport(rows [][]string, today time.Time) ([]LigneCandidate, []dto.LigneImport, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("classeur vide")
	}

	colonnes := map[int]int{}
	for i, header := range rows[0] {
		if field, ok := entetesImport[excel.NormalizeHeader(header)]; ok {
			if _, dup := colonnes[field]; !dup {
				colonnes[field] = i
			}
		}
	}
	if _, ok := colonnes[colNom]; !ok {
		return nil, nil, fmt.Errorf("colonne nom absente")
	}
	if len(rows)-1 > MaxLignesImport {
		return nil, nil, fmt.Errorf("classeur trop volumineux (%d lignes, maximum %d)", len(rows)-1, MaxLignesImport)
	}

	cell := func(row []string, field int) string {
		i, ok := colonnes[field]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var candidates []LigneCandidate
	var erreurs []dto.LigneImport
	for i, row := range rows[1:] {
		ligne := i + 2
		if ligneVide(row) {
			continue
		}

		fields := dto.PatientFields{
			Nom:       cell(row, colNom),
			Prenoms:   cell(row, colPrenoms),
			Telephone: cell(row, colTelephone),
			Adresse:   cell(row, colAdresse),
		}
		if fields.Nom == "" {
			erreurs = append(erreurs, dto.LigneImport{Ligne: ligne, Message: "nom manquant"})
			continue
		}

		sexe, ok := NormaliserSexe(cell(row, colSexe))
		if !ok {
			erreurs = append(erreurs, dto.LigneImport{Ligne: ligne, Message: "sexe non reconnu: " + cell(row, colSexe)})
			continue
		}
		fields.Sexe = sexe

		if raw := cell(row, colDateNaissance); raw != "" {
			date, ok := excel.ParseDate(raw)
			if !ok || date.After(today) {
				erreurs = append(erreurs, dto.LigneImport{Ligne: ligne, Message: "date de naissance invalide: " + raw})
				continue
			}
			fields.DateNaissance = &date
		}

		candidates = append(candidates, LigneCandidate{Ligne: ligne, Fields: fields})
	}
	return candidates, erreurs, nil
}

// NormaliserSexe M ou F; une valeur vide reste vide
func NormaliserSexe(value string) (string, bool) {
	if strings.TrimSpace(value) == "" {
		return "", true
	}
	switch excel.NormalizeHeader(value) {
	case "m", "masculin", "h", "homme":
		return "M", true
	case "f", "feminin", "femme":
		return "F", true
	}
	return "", false
}

func ligneVide(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
