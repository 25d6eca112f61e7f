package validation

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	telephoneFormat = regexp.MustCompile(`^\+?[0-9 ]+$`)
	couleurFormat   = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// Register enregistre les règles personnalisées dans le validateur de gin
func Register() error {
	engine, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("moteur de validation gin inattendu")
	}
	return RegisterOn(engine)
}

// RegisterOn enregistre les règles sur un validateur donné
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("telephone", validateTelephone); err != nil {
		return fmt.Errorf("règle telephone: %w", err)
	}
	if err := v.RegisterValidation("couleur", validateCouleur); err != nil {
		return fmt.Errorf("règle couleur: %w", err)
	}
	return nil
}

// ValidTelephone accepte chiffres, espaces et "+" initial, 8 à 15 chiffres
func ValidTelephone(value string) bool {
	if !telephoneFormat.MatchString(value) {
		return false
	}
	digits := 0
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 8 && digits <= 15
}

// ValidCouleur accepte #RGB et #RRGGBB
func ValidCouleur(value string) bool {
	return couleurFormat.MatchString(value)
}

func validateTelephone(fl validator.FieldLevel) bool {
	return ValidTelephone(fl.Field().String())
}

func validateCouleur(fl validator.FieldLevel) bool {
	return ValidCouleur(fl.Field().String())
}
