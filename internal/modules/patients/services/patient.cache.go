package services

import (
	"context"
	"encoding/json"
	"fmt"

	redisInfra "cabinet-suite-core/internal/infrastructure/database/redis"
	"cabinet-suite-core/internal/modules/patients/dto"
)

const patientCachePattern = "cache_patient"

// RedisPatientCache fiche patient par identifiant, invalidée à chaque écriture
type RedisPatientCache struct {
	redisClient *redisInfra.Client
}

func NewRedisPatientCache(redisClient *redisInfra.Client) *RedisPatientCache {
	return &RedisPatientCache{redisClient: redisClient}
}

func (c *RedisPatientCache) Get(ctx context.Context, cabinetCode, id string) (*dto.Patient, bool) {
	raw, err := c.redisClient.GetWithPattern(ctx, patientCachePattern, cabinetCode, id)
	if err != nil {
		return nil, false
	}

	var patient dto.Patient
	if err := json.Unmarshal([]byte(raw), &patient); err != nil {
		c.Invalidate(ctx, cabinetCode, id)
		return nil, false
	}
	return &patient, true
}

func (c *RedisPatientCache) Set(ctx context.Context, cabinetCode string, patient *dto.Patient) {
	payload, err := json.Marshal(patient)
	if err != nil {
		return
	}
	_ = c.redisClient.SetWithPattern(ctx, patientCachePattern, cabinetCode, payload, patient.ID)
}

func (c *RedisPatientCache) Invalidate(ctx context.Context, cabinetCode, id string) {
	if err := c.redisClient.DelWithPattern(ctx, patientCachePattern, cabinetCode, id); err != nil {
		fmt.Printf("[PATIENTS] ⚠️ Invalidation cache patient %s échouée: %v\n", id, err)
	}
}
