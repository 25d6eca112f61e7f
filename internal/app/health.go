package app

import (
	"context"
	"net/http"
	"time"

	"cabinet-suite-core/internal/infrastructure/database/mongodb"
	"cabinet-suite-core/internal/infrastructure/database/postgres"
	"cabinet-suite-core/internal/infrastructure/database/redis"

	"github.com/gin-gonic/gin"
)

// Probe dépendance vérifiée par /ready; une sonde optionnelle en échec ne rend pas le service indisponible
type Probe struct {
	Name     string
	Optional bool
	Check    func(ctx context.Context) error
}

type Probes []Probe

func NewProbes(pg *postgres.Client, rd *redis.Client, mongo *mongodb.Client) Probes {
	return Probes{
		{Name: "postgres", Check: pg.HealthCheck},
		{Name: "redis", Check: rd.HealthCheck},
		{Name: "mongodb", Optional: true, Check: mongo.Ping},
	}
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"status": "healthy"},
	})
}

func readyHandler(probes Probes) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status := "ready"
		code := http.StatusOK
		checks := gin.H{}
		for _, p := range probes {
			if err := p.Check(ctx); err != nil {
				checks[p.Name] = err.Error()
				if p.Optional {
					if status == "ready" {
						status = "degraded"
					}
					continue
				}
				status = "unavailable"
				code = http.StatusServiceUnavailable
				continue
			}
			checks[p.Name] = "ok"
		}

		c.JSON(code, gin.H{
			"success": code == http.StatusOK,
			"data":    gin.H{"status": status, "checks": checks},
		})
	}
}
