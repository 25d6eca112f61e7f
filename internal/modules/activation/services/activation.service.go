package services

import (
	"context"
	"crypto/subtle"
	"time"

	"cabinet-suite-core/internal/app/config"
	"cabinet-suite-core/internal/modules/activation/dto"
	"cabinet-suite-core/internal/shared/apperr"
	"cabinet-suite-core/internal/shared/audit"
	"cabinet-suite-core/internal/shared/middleware/tenant"
)

// LicenceStore persistance des licences
type LicenceStore interface {
	Get(ctx context.Context, cabinetID string) (*dto.Licence, error)
	Save(ctx context.Context, l *dto.Licence) error
	ActivateWithKey(ctx context.Context, cabinetID, cle string, at time.Time,
		apply func(current *dto.Licence, key *dto.CleActivation) (*dto.Licence, error)) (*dto.Licence, error)
	ExpireOverdue(ctx context.Context, now time.Time) ([]string, error)
}

// LicenceCache cache par code cabinet
type LicenceCache interface {
	Get(ctx context.Context, cabinetCode string) (*dto.Licence, bool)
	Set(ctx context.Context, cabinetCode string, l *dto.Licence)
	Invalidate(ctx context.Context, cabinetCode string)
}

var messagesRaison = map[string]string{
	dto.RaisonAbsente:  "Aucune licence pour ce cabinet",
	dto.RaisonExpiree:  "Licence expirée, veuillez activer une clé",
	dto.RaisonInvalide: "Licence invalide",
	dto.RaisonRevoquee: "Licence révoquée",
}

type ActivationService struct {
	store   LicenceStore
	cache   LicenceCache
	signer  *LicenceSigner
	journal *audit.Journal
	cfg     config.ActivationConfig
	master  string
	now     func() time.Time
}

// NewActivationService crée une nouvelle instance du service d'activation
func NewActivationService(store LicenceStore, cache LicenceCache, signer *LicenceSigner, journal *audit.Journal, cfg *config.Config) *ActivationService {
	// Clé maîtresse ignorée si elle ne respecte pas le format
	master, ok := NormaliserCleMaitresse(cfg.Activation.MasterKey)
	if !ok {
		master = ""
	}
	return &ActivationService{
		store:   store,
		cache:   cache,
		signer:  signer,
		journal: journal,
		cfg:     cfg.Activation,
		master:  master,
		now:     time.Now,
	}
}

func (s *ActivationService) load(ctx context.Context, cabinet tenant.CabinetContext) (*dto.Licence, error) {
	if licence, ok := s.cache.Get(ctx, cabinet.Code); ok {
		return licence, nil
	}

	licence, err := s.store.Get(ctx, cabinet.ID)
	if err != nil {
		return nil, apperr.Internal("LICENCE_LOOKUP_FAILED", err)
	}
	if licence != nil {
		s.cache.Set(ctx, cabinet.Code, licence)
	}
	return licence, nil
}

// CheckLicence refuse (465) un cabinet sans licence valide
func (s *ActivationService) CheckLicence(ctx context.Context, cabinet tenant.CabinetContext) (*tenant.LicenceContext, error) {
	licence, err := s.load(ctx, cabinet)
	if err != nil {
		return nil, err
	}

	eval := s.signer.Evaluate(licence, cabinet.ID, s.now())
	if !eval.Valide {
		return nil, apperr.Licence(eval.Raison, messagesRaison[eval.Raison]).
			WithDetail("plan", eval.Plan).
			WithDetail("activation_url", "/api/v1/activation/activer")
	}

	ctxLicence := toLicenceContext(eval)
	return &ctxLicence, nil
}

// Summary état de licence, y compris expirée
func (s *ActivationService) Summary(ctx context.Context, cabinet tenant.CabinetContext) (*tenant.LicenceSummary, error) {
	licence, err := s.load(ctx, cabinet)
	if err != nil {
		return nil, err
	}
	eval := s.signer.Evaluate(licence, cabinet.ID, s.now())
	return &tenant.LicenceSummary{
		LicenceContext: toLicenceContext(eval),
		Valide:         eval.Valide,
		Raison:         eval.Raison,
		Alerte:         s.alerte(eval),
	}, nil
}

// Statut détail de la licence pour GET /activation/statut
func (s *ActivationService) Statut(ctx context.Context, cabinet tenant.CabinetContext) (*dto.StatutResponse, error) {
	licence, err := s.load(ctx, cabinet)
	if err != nil {
		return nil, err
	}
	return s.statut(licence, cabinet), nil
}

func (s *ActivationService) statut(licence *dto.Licence, cabinet tenant.CabinetContext) *dto.StatutResponse {
	eval := s.signer.Evaluate(licence, cabinet.ID, s.now())
	res := &dto.StatutResponse{Evaluation: eval, Alerte: s.alerte(eval)}
	if licence != nil {
		activation := licence.DateActivation
		res.Statut = licence.Statut
		res.DateActivation = &activation
	}
	return res
}

// Activer applique une clé au cabinet
func (s *ActivationService) Activer(ctx context.Context, cabinet tenant.CabinetContext, userID, saisie string) (*dto.StatutResponse, error) {
	cle, ok := NormaliserCle(saisie)
	if !ok {
		// la clé maîtresse peut sortir de l'alphabet d'émission
		if maitresse, format := NormaliserCleMaitresse(saisie); format && s.isMasterKey(maitresse) {
			cle, ok = maitresse, true
		}
	}
	if !ok {
		return nil, apperr.Validation("CLE_FORMAT_INVALIDE", "Format de clé invalide (XXXX-XXXX-XXXX-XXXX)")
	}
	now := s.now()

	var licence *dto.Licence
	var err error
	if s.isMasterKey(cle) {
		licence, err = s.signer.Issue(cabinet.ID, dto.PlanIllimite, now, nil)
		if err != nil {
			return nil, apperr.Internal("LICENCE_SIGN_FAILED", err)
		}
		if err := s.store.Save(ctx, licence); err != nil {
			return nil, apperr.Internal("LICENCE_SAVE_FAILED", err)
		}
	} else {
		licence, err = s.store.ActivateWithKey(ctx, cabinet.ID, cle, now, func(current *dto.Licence, key *dto.CleActivation) (*dto.Licence, error) {
			return s.applyKey(cabinet, current, key, cle, now)
		})
		if err != nil {
			if _, isAppErr := apperr.As(err); isAppErr {
				return nil, err
			}
			return nil, apperr.Internal("ACTIVATION_FAILED", err)
		}
	}

	s.cache.Invalidate(ctx, cabinet.Code)
	s.journal.Record(audit.Event{
		CabinetID:     cabinet.ID,
		UtilisateurID: userID,
		Action:        audit.ActionActivation,
		Details:       map[string]interface{}{"plan": licence.Plan, "cle": masquerCle(cle)},
	})

	return s.statut(licence, cabinet), nil
}

func (s *ActivationService) applyKey(cabinet tenant.CabinetContext, current *dto.Licence, key *dto.CleActivation, cle string, now time.Time) (*dto.Licence, error) {
	if key == nil {
		return nil, apperr.NotFound("CLE_INCONNUE", "Clé d'activation inconnue")
	}
	switch key.Statut {
	case dto.CleUtilisee:
		return nil, apperr.Conflict("CLE_DEJA_UTILISEE", "Clé déjà utilisée")
	case dto.CleRevoquee:
		return nil, apperr.Conflict("CLE_REVOQUEE", "Clé révoquée")
	}
	if key.CabinetCode != nil && *key.CabinetCode != "" && *key.CabinetCode != cabinet.Code {
		return nil, apperr.Forbidden("CLE_AUTRE_CABINET", "Clé réservée à un autre cabinet")
	}
	if !PlanPayant(key.Plan) {
		return nil, apperr.Validation("CLE_PLAN_INVALIDE", "Plan de clé non activable")
	}

	eval := s.signer.Evaluate(current, cabinet.ID, now)
	if eval.Valide && eval.Illimitee {
		return nil, apperr.Conflict("LICENCE_DEJA_ILLIMITEE", "Le cabinet dispose déjà d'une licence illimitée")
	}

	start := DebutActivation(current, eval, now)
	licence, err := s.signer.Issue(cabinet.ID, key.Plan, start, &cle)
	if err != nil {
		return nil, err
	}
	return licence, nil
}

// ExpireOverdue marque les licences échues et vide leur cache
func (s *ActivationService) ExpireOverdue(ctx context.Context) (int, error) {
	codes, err := s.store.ExpireOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	for _, code := range codes {
		s.cache.Invalidate(ctx, code)
	}
	return len(codes), nil
}

func (s *ActivationService) isMasterKey(cle string) bool {
	if s.master == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cle), []byte(s.master)) == 1
}

func (s *ActivationService) alerte(eval dto.Evaluation) bool {
	return eval.Valide && !eval.Illimitee && eval.JoursRestants <= s.cfg.WarningDays
}

func toLicenceContext(eval dto.Evaluation) tenant.LicenceContext {
	return tenant.LicenceContext{
		Plan:           eval.Plan,
		DateExpiration: eval.DateExpiration,
		JoursRestants:  eval.JoursRestants,
		Illimitee:      eval.Illimitee,
	}
}

// masquerCle ne conserve que le dernier bloc
func masquerCle(cle string) string {
	if len(cle) != 19 {
		return "****"
	}
	return "****-****-****-" + cle[15:]
}
