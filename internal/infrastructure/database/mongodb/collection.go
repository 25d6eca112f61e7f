package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collections utilisées par l'application
const (
	CollectionJournalAudit      = "journal_audit"
	CollectionCabinetParametres = "cabinet_parametres"
)

type CollectionManager struct {
	client *Client
}

func NewCollectionManager(client *Client) *CollectionManager {
	return &CollectionManager{client: client}
}

// EnsureIndexes crée les index des collections applicatives (idempotent)
func (cm *CollectionManager) EnsureIndexes(ctx context.Context) error {
	if !cm.client.Available() {
		return nil
	}

	journalIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "cabinet_id", Value: 1}, {Key: "horodatage", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}}},
	}
	if err := cm.client.CreateIndexes(ctx, CollectionJournalAudit, journalIndexes); err != nil {
		return fmt.Errorf("index %s: %w", CollectionJournalAudit, err)
	}

	parametresIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "cabinet_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if err := cm.client.CreateIndexes(ctx, CollectionCabinetParametres, parametresIndexes); err != nil {
		return fmt.Errorf("index %s: %w", CollectionCabinetParametres, err)
	}

	return nil
}
