package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Actions journalisées
const (
	ActionConnexion          = "connexion"
	ActionDeconnexion        = "deconnexion"
	ActionMotDePasse         = "mot_de_passe"
	ActionUtilisateurCree    = "utilisateur_cree"
	ActionUtilisateurModifie = "utilisateur_modifie"
	ActionPatientCree        = "patient_cree"
	ActionPatientSupprime    = "patient_supprime"
	ActionPatientsImportes   = "patients_importes"
	ActionRdvStatut          = "rdv_statut"
	ActionFacturePayee       = "facture_payee"
	ActionFactureAnnulee     = "facture_annulee"
	ActionActivation         = "activation"
	ActionThemeModifie       = "theme_modifie"
)

// ErrIndisponible le stockage du journal ne répond pas
var ErrIndisponible = errors.New("journal indisponible")

type Event struct {
	ID            primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	CabinetID     string                 `bson:"cabinet_id" json:"cabinet_id"`
	UtilisateurID string                 `bson:"utilisateur_id,omitempty" json:"utilisateur_id,omitempty"`
	Action        string                 `bson:"action" json:"action"`
	Cible         string                 `bson:"cible,omitempty" json:"cible,omitempty"`
	Details       map[string]interface{} `bson:"details,omitempty" json:"details,omitempty"`
	Horodatage    time.Time              `bson:"horodatage" json:"horodatage"`
}

type Store interface {
	Available() bool
	Insert(ctx context.Context, event Event) error
	List(ctx context.Context, cabinetID string, limit int) ([]Event, error)
}

// Journal écrit les événements en arrière-plan; les erreurs sont loggées, jamais remontées
type Journal struct {
	store   Store
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewJournal(store Store, logger *zap.Logger) *Journal {
	return &Journal{
		store:   store,
		log:     logger.Named("audit"),
		timeout: 5 * time.Second,
		now:     time.Now,
	}
}

// Record enregistre l'événement de façon asynchrone
func (j *Journal) Record(event Event) {
	if event.Horodatage.IsZero() {
		event.Horodatage = j.now().UTC()
	}

	if j.store == nil || !j.store.Available() {
		j.fallback(event, nil)
		return
	}

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()

		if err := j.store.Insert(ctx, event); err != nil {
			j.fallback(event, err)
		}
	}()
}

// List derniers événements du cabinet, du plus récent au plus ancien
func (j *Journal) List(ctx context.Context, cabinetID string, limit int) ([]Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if j.store == nil || !j.store.Available() {
		return []Event{}, ErrIndisponible
	}
	return j.store.List(ctx, cabinetID, limit)
}

// Wait attend la fin des écritures en cours
func (j *Journal) Wait() {
	j.wg.Wait()
}

func (j *Journal) fallback(event Event, err error) {
	fields := []zap.Field{
		zap.String("cabinet_id", event.CabinetID),
		zap.String("utilisateur_id", event.UtilisateurID),
		zap.String("action", event.Action),
		zap.String("cible", event.Cible),
		zap.Any("details", event.Details),
		zap.Time("horodatage", event.Horodatage),
	}
	if err != nil {
		j.log.Warn("écriture journal échouée", append(fields, zap.Error(err))...)
		return
	}
	j.log.Info("événement", fields...)
}
