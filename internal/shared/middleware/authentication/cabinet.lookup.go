package authentication

import (
	"context"
	"encoding/json"
	"fmt"

	"cabinet-suite-core/internal/infrastructure/database/postgres"
	redisInfra "cabinet-suite-core/internal/infrastructure/database/redis"
	"cabinet-suite-core/internal/shared/middleware/authentication/queries"
)

// CachedCabinetLookup lit le cabinet dans Redis puis PostgreSQL
type CachedCabinetLookup struct {
	db          *postgres.Client
	redisClient *redisInfra.Client
}

func NewCachedCabinetLookup(db *postgres.Client, redisClient *redisInfra.Client) *CachedCabinetLookup {
	return &CachedCabinetLookup{db: db, redisClient: redisClient}
}

func (l *CachedCabinetLookup) FindCabinetByCode(ctx context.Context, code string) (*CabinetData, error) {
	if cabinet, found := l.fromCache(ctx, code); found {
		return cabinet, nil
	}

	var cabinet CabinetData
	err := l.db.QueryRow(ctx, queries.CabinetQueries.GetByCode, code).Scan(
		&cabinet.ID,
		&cabinet.Code,
		&cabinet.Nom,
		&cabinet.EmailAdmin,
		&cabinet.Statut,
	)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("lecture cabinet %s: %w", code, err)
	}

	l.cache(ctx, &cabinet)
	return &cabinet, nil
}

// Invalidate supprime l'entrée de cache après une modification du cabinet
func (l *CachedCabinetLookup) Invalidate(ctx context.Context, code string) {
	if err := l.redisClient.DelWithPattern(ctx, "cache_cabinet", code); err != nil {
		fmt.Printf("[CABINET] ⚠️ Invalidation cache %s échouée: %v\n", code, err)
	}
}

func (l *CachedCabinetLookup) fromCache(ctx context.Context, code string) (*CabinetData, bool) {
	raw, err := l.redisClient.GetWithPattern(ctx, "cache_cabinet", code)
	if err != nil {
		return nil, false
	}

	var cabinet CabinetData
	if err := json.Unmarshal([]byte(raw), &cabinet); err != nil {
		l.Invalidate(ctx, code)
		return nil, false
	}
	return &cabinet, true
}

func (l *CachedCabinetLookup) cache(ctx context.Context, cabinet *CabinetData) {
	payload, err := json.Marshal(cabinet)
	if err != nil {
		return
	}
	// Non bloquant: le cache n'est qu'une optimisation
	_ = l.redisClient.SetWithPattern(ctx, "cache_cabinet", cabinet.Code, payload)
}
