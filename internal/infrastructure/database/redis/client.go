package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	rdb          *redis.Client
	keyGenerator *RedisKeyGenerator
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	Database int
	PoolSize int
}

func NewClient(config *RedisConfig, keyGenerator *RedisKeyGenerator) *Client {
	poolSize := config.PoolSize
	if poolSize <= 0 {
		poolSize = 10
	}

	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password:     config.Password,
		DB:           config.Database,
		MaxRetries:   3,
		PoolSize:     poolSize,
		PoolTimeout:  30 * time.Second,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MinIdleConns: 2,
	}

	return &Client{
		rdb:          redis.NewClient(opts),
		keyGenerator: keyGenerator,
	}
}

// IsNil indique une clé absente
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (c *Client) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	return nil
}

func (c *Client) Close() {
	if c.rdb != nil {
		c.rdb.Close()
	}
}

func (c *Client) Client() *redis.Client {
	return c.rdb
}

func (c *Client) Keys() *RedisKeyGenerator {
	return c.keyGenerator
}

func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Get conserve redis.Nil pour une clé absente
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.rdb.Get(ctx, key).Result()
}

func (c *Client) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	result := c.rdb.Exists(ctx, key)
	return result.Val() > 0, result.Err()
}

func (c *Client) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return c.rdb.Expire(ctx, key, expiration).Err()
}

func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return c.rdb.HGetAll(ctx, key).Result()
}

func (c *Client) SMembers(ctx context.Context, key string) ([]string, error) {
	return c.rdb.SMembers(ctx, key).Result()
}

// IncrWithWindow incrémente un compteur et pose le TTL au premier incrément
func (c *Client) IncrWithWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	count, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx)
}

func (c *Client) Stats() *redis.PoolStats {
	return c.rdb.PoolStats()
}

// SetWithPattern sauvegarde une valeur avec le TTL du pattern
func (c *Client) SetWithPattern(ctx context.Context, patternName, cabinetCode string, value interface{}, identifier ...string) error {
	key, err := c.keyGenerator.GenerateKey(patternName, cabinetCode, identifier...)
	if err != nil {
		return fmt.Errorf("erreur génération clé: %w", err)
	}

	ttl, err := c.keyGenerator.GetTTL(patternName)
	if err != nil {
		return fmt.Errorf("erreur récupération TTL: %w", err)
	}

	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// GetWithPattern récupère une valeur avec un pattern standardisé
func (c *Client) GetWithPattern(ctx context.Context, patternName, cabinetCode string, identifier ...string) (string, error) {
	key, err := c.keyGenerator.GenerateKey(patternName, cabinetCode, identifier...)
	if err != nil {
		return "", fmt.Errorf("erreur génération clé: %w", err)
	}

	return c.rdb.Get(ctx, key).Result()
}

// DelWithPattern supprime une valeur avec un pattern standardisé
func (c *Client) DelWithPattern(ctx context.Context, patternName, cabinetCode string, identifier ...string) error {
	key, err := c.keyGenerator.GenerateKey(patternName, cabinetCode, identifier...)
	if err != nil {
		return fmt.Errorf("erreur génération clé: %w", err)
	}

	return c.rdb.Del(ctx, key).Err()
}

// InvalidateCache supprime toutes les clés d'un domaine/context via SCAN
func (c *Client) InvalidateCache(ctx context.Context, cabinetCode, domain, context string) error {
	pattern := c.keyGenerator.GenerateWildcardPattern(cabinetCode, domain, context)

	iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("erreur parcours clés pattern: %w", err)
	}

	return c.Del(ctx, keys...)
}
