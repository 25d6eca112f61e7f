package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cabinet-suite-core/internal/app/config"
	redisInfra "cabinet-suite-core/internal/infrastructure/database/redis"
	"cabinet-suite-core/internal/modules/activation/dto"
)

const licenceCachePattern = "cache_licence"

// RedisLicenceCache cache de la ligne licence; l'évaluation est refaite à chaque requête
type RedisLicenceCache struct {
	redisClient *redisInfra.Client
	ttl         time.Duration
}

func NewRedisLicenceCache(redisClient *redisInfra.Client, cfg *config.Config) *RedisLicenceCache {
	return &RedisLicenceCache{redisClient: redisClient, ttl: cfg.Activation.CacheTTL}
}

func (c *RedisLicenceCache) Get(ctx context.Context, cabinetCode string) (*dto.Licence, bool) {
	raw, err := c.redisClient.GetWithPattern(ctx, licenceCachePattern, cabinetCode)
	if err != nil {
		return nil, false
	}

	var licence dto.Licence
	if err := json.Unmarshal([]byte(raw), &licence); err != nil {
		c.Invalidate(ctx, cabinetCode)
		return nil, false
	}
	return &licence, true
}

func (c *RedisLicenceCache) Set(ctx context.Context, cabinetCode string, licence *dto.Licence) {
	payload, err := json.Marshal(licence)
	if err != nil {
		return
	}
	key, err := c.redisClient.Keys().GenerateKey(licenceCachePattern, cabinetCode)
	if err != nil {
		return
	}
	_ = c.redisClient.Set(ctx, key, payload, c.ttl)
}

func (c *RedisLicenceCache) Invalidate(ctx context.Context, cabinetCode string) {
	if err := c.redisClient.DelWithPattern(ctx, licenceCachePattern, cabinetCode); err != nil {
		fmt.Printf("[ACTIVATION] ⚠️ Invalidation cache licence %s échouée: %v\n", cabinetCode, err)
	}
}
