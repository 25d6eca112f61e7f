package services

import (
	"math"
	"time"

	"cabinet-suite-core/internal/modules/activation/dto"
)

// PlanValide indique un plan connu
func PlanValide(plan string) bool {
	switch plan {
	case dto.PlanEssai, dto.PlanMensuel, dto.PlanAnnuel, dto.PlanIllimite:
		return true
	}
	return false
}

// PlanPayant plan obtenu par clé
func PlanPayant(plan string) bool {
	return plan == dto.PlanMensuel || plan == dto.PlanAnnuel || plan == dto.PlanIllimite
}

// Expiration calcule la fin d'un plan démarrant à start; nil pour illimité
func Expiration(plan string, start time.Time, trialDays int) *time.Time {
	var end time.Time
	switch plan {
	case dto.PlanEssai:
		end = start.AddDate(0, 0, trialDays)
	case dto.PlanMensuel:
		end = start.AddDate(0, 1, 0)
	case dto.PlanAnnuel:
		end = start.AddDate(1, 0, 0)
	default:
		return nil
	}
	end = end.Truncate(time.Second)
	return &end
}

// DebutActivation départ d'une nouvelle période: la fin de la période payante en cours
// si elle est encore valide, maintenant sinon
func DebutActivation(current *dto.Licence, eval dto.Evaluation, now time.Time) time.Time {
	if current != nil && eval.Valide && current.DateExpiration != nil &&
		(current.Plan == dto.PlanMensuel || current.Plan == dto.PlanAnnuel) &&
		current.DateExpiration.After(now) {
		return *current.DateExpiration
	}
	return now
}

// JoursRestants arrondi au jour supérieur, jamais négatif
func JoursRestants(expiration, now time.Time) int {
	remaining := expiration.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}
