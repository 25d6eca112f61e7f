package mongodb

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Client struct {
	client    *mongo.Client
	database  *mongo.Database
	available atomic.Bool
}

type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
	MaxPoolSize    uint64
}

// NewClient prépare le client sans bloquer: la connexion est vérifiée au démarrage fx
func NewClient(config *MongoConfig) (*Client, error) {
	if config.URI == "" {
		fmt.Printf("[MONGODB] ⚠️ MONGODB_URI vide - journal et paramètres en mode dégradé\n")
		return &Client{}, nil
	}

	connectTimeout := config.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}
	maxPool := config.MaxPoolSize
	if maxPool == 0 {
		maxPool = 50
	}

	clientOptions := options.Client().ApplyURI(config.URI)
	clientOptions.SetMaxPoolSize(maxPool)
	clientOptions.SetMinPoolSize(1)
	clientOptions.SetMaxConnIdleTime(30 * time.Minute)
	clientOptions.SetConnectTimeout(connectTimeout)
	clientOptions.SetServerSelectionTimeout(5 * time.Second)
	clientOptions.SetRetryWrites(true)
	clientOptions.SetRetryReads(true)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	return &Client{
		client:   mongoClient,
		database: mongoClient.Database(config.Database),
	}, nil
}

// Available indique si MongoDB a répondu au dernier ping
func (c *Client) Available() bool {
	return c != nil && c.client != nil && c.available.Load()
}

func (c *Client) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("MongoDB client is nil")
	}

	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		c.available.Store(false)
		return fmt.Errorf("ping failed: %w", err)
	}

	c.available.Store(true)
	return nil
}

func (c *Client) Close(ctx context.Context) error {
	if c.client != nil {
		return c.client.Disconnect(ctx)
	}
	return nil
}

func (c *Client) Database() *mongo.Database {
	return c.database
}

func (c *Client) Collection(name string) *mongo.Collection {
	return c.database.Collection(name)
}

func (c *Client) CreateIndexes(ctx context.Context, collection string, models []mongo.IndexModel) error {
	_, err := c.Collection(collection).Indexes().CreateMany(ctx, models)
	return err
}
