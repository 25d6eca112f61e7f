package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cabinet-suite-core/internal/infrastructure/database/mongodb"
	"cabinet-suite-core/internal/modules/parametres/dto"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrIndisponible MongoDB n'a pas répondu au dernier ping
var ErrIndisponible = errors.New("paramètres indisponibles")

type ThemeRepository struct {
	client *mongodb.Client
}

func NewThemeRepository(client *mongodb.Client) *ThemeRepository {
	return &ThemeRepository{client: client}
}

func (r *ThemeRepository) collection() (*mongo.Collection, error) {
	if !r.client.Available() {
		return nil, ErrIndisponible
	}
	return r.client.Collection(mongodb.CollectionCabinetParametres), nil
}

// Get retourne nil, nil quand le cabinet n'a pas de thème enregistré
func (r *ThemeRepository) Get(ctx context.Context, cabinetID string) (*dto.Theme, error) {
	coll, err := r.collection()
	if err != nil {
		return nil, err
	}

	var theme dto.Theme
	err = coll.FindOne(ctx, bson.M{"cabinet_id": cabinetID}).Decode(&theme)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture thème: %w", err)
	}
	return &theme, nil
}

// Save remplace les couleurs et la police; l'image de fond est conservée
func (r *ThemeRepository) Save(ctx context.Context, theme dto.Theme) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"primaire":   theme.Primaire,
		"secondaire": theme.Secondaire,
		"fond":       theme.Fond,
		"texte":      theme.Texte,
		"police":     theme.Police,
		"updated_at": theme.UpdatedAt,
	}}
	_, err = coll.UpdateOne(ctx, bson.M{"cabinet_id": theme.CabinetID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("écriture thème: %w", err)
	}
	return nil
}

// SetImageFond enregistre le nom du fichier de fond; les couleurs par défaut sont posées à la création
func (r *ThemeRepository) SetImageFond(ctx context.Context, cabinetID, nom string, at time.Time) error {
	coll, err := r.collection()
	if err != nil {
		return err
	}

	defaults := dto.Defaults(cabinetID)
	update := bson.M{
		"$set": bson.M{"image_fond": nom, "updated_at": at},
		"$setOnInsert": bson.M{
			"primaire":   defaults.Primaire,
			"secondaire": defaults.Secondaire,
			"fond":       defaults.Fond,
			"texte":      defaults.Texte,
			"police":     defaults.Police,
		},
	}
	_, err = coll.UpdateOne(ctx, bson.M{"cabinet_id": cabinetID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("écriture image de fond: %w", err)
	}
	return nil
}
