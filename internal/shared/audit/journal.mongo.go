package audit

import (
	"context"
	"fmt"

	"cabinet-suite-core/internal/infrastructure/database/mongodb"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	client *mongodb.Client
}

func NewMongoStore(client *mongodb.Client) *MongoStore {
	return &MongoStore{client: client}
}

func (s *MongoStore) Available() bool {
	return s.client.Available()
}

func (s *MongoStore) Insert(ctx context.Context, event Event) error {
	_, err := s.client.Collection(mongodb.CollectionJournalAudit).InsertOne(ctx, event)
	return err
}

func (s *MongoStore) List(ctx context.Context, cabinetID string, limit int) ([]Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "horodatage", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.client.Collection(mongodb.CollectionJournalAudit).Find(ctx, bson.M{"cabinet_id": cabinetID}, opts)
	if err != nil {
		return nil, fmt.Errorf("lecture journal: %w", err)
	}
	defer cursor.Close(ctx)

	events := []Event{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("décodage journal: %w", err)
	}
	return events, nil
}
