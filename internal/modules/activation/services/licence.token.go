package services

import (
	"fmt"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/modules/activation/dto"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "cabinet-suite"

// LicenceClaims contenu signé du jeton de licence
type LicenceClaims struct {
	Plan string `json:"plan"`
	jwt.RegisteredClaims
}

// LicenceSigner signe et contrôle les jetons de licence (HS256)
type LicenceSigner struct {
	secret    []byte
	trialDays int
}

// NewLicenceSigner crée une nouvelle instance du signataire
func NewLicenceSigner(cfg *config.Config) *LicenceSigner {
	return &LicenceSigner{
		secret:    []byte(cfg.Activation.SigningSecret),
		trialDays: cfg.Activation.TrialDays,
	}
}

// Issue construit une licence active signée
func (s *LicenceSigner) Issue(cabinetID, plan string, start time.Time, cle *string) (*dto.Licence, error) {
	if !PlanValide(plan) {
		return nil, fmt.Errorf("plan inconnu: %s", plan)
	}
	start = start.Truncate(time.Second)
	expiration := Expiration(plan, start, s.trialDays)

	claims := LicenceClaims{
		Plan: plan,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   tokenIssuer,
			Subject:  cabinetID,
			IssuedAt: jwt.NewNumericDate(start),
		},
	}
	if expiration != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*expiration)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("signature licence: %w", err)
	}

	return &dto.Licence{
		CabinetID:      cabinetID,
		Plan:           plan,
		Statut:         dto.StatutActive,
		DateActivation: start,
		DateExpiration: expiration,
		Jeton:          signed,
		Cle:            cle,
	}, nil
}

// IssueTrial licence d'essai d'un nouveau cabinet
func (s *LicenceSigner) IssueTrial(cabinetID string, now time.Time) (*dto.Licence, error) {
	return s.Issue(cabinetID, dto.PlanEssai, now, nil)
}

// Verify contrôle la signature et la cohérence jeton / ligne en base
func (s *LicenceSigner) Verify(l *dto.Licence) error {
	claims := &LicenceClaims{}
	_, err := jwt.ParseWithClaims(l.Jeton, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return fmt.Errorf("jeton invalide: %w", err)
	}

	if claims.Issuer != tokenIssuer {
		return fmt.Errorf("émetteur inconnu")
	}
	if claims.Subject != l.CabinetID {
		return fmt.Errorf("jeton émis pour un autre cabinet")
	}
	if claims.Plan != l.Plan {
		return fmt.Errorf("plan du jeton différent")
	}
	switch {
	case claims.ExpiresAt == nil && l.DateExpiration == nil:
	case claims.ExpiresAt != nil && l.DateExpiration != nil &&
		claims.ExpiresAt.Unix() == l.DateExpiration.Unix():
	default:
		return fmt.Errorf("expiration du jeton différente")
	}
	return nil
}

// Evaluate état de la licence à l'instant now
func (s *LicenceSigner) Evaluate(l *dto.Licence, cabinetID string, now time.Time) dto.Evaluation {
	if l == nil {
		return dto.Evaluation{Raison: dto.RaisonAbsente}
	}

	eval := dto.Evaluation{
		Plan:           l.Plan,
		DateExpiration: l.DateExpiration,
		Illimitee:      l.Plan == dto.PlanIllimite && l.DateExpiration == nil,
	}
	if l.DateExpiration != nil {
		eval.JoursRestants = JoursRestants(*l.DateExpiration, now)
	}

	if l.Statut == dto.StatutRevoquee {
		eval.Raison = dto.RaisonRevoquee
		return eval
	}
	if l.CabinetID != cabinetID {
		eval.Raison = dto.RaisonInvalide
		return eval
	}
	if err := s.Verify(l); err != nil {
		eval.Raison = dto.RaisonInvalide
		return eval
	}
	if l.Statut == dto.StatutExpiree || (!eval.Illimitee && (l.DateExpiration == nil || !now.Before(*l.DateExpiration))) {
		eval.Raison = dto.RaisonExpiree
		eval.JoursRestants = 0
		return eval
	}

	eval.Valide = true
	return eval
}
