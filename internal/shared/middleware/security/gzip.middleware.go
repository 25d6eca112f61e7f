package security

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// Téléchargements servis tels quels: PDF, classeurs, image de fond
var downloadPaths = []string{
	`^/api/v1/(patients|factures|statistiques)/export$`,
	`^/api/v1/factures/[^/]+/pdf$`,
	`^/api/v1/consultations/[^/]+/(ordonnance\.pdf|certificat)$`,
	`^/api/v1/parametres/theme/fond$`,
}

// CompressionMiddleware compresse les réponses JSON; le flux SSE et les fichiers binaires sont exclus
func CompressionMiddleware() gin.HandlerFunc {
	return gzip.Gzip(gzip.BestSpeed,
		gzip.WithExcludedPaths([]string{"/api/v1/rdv/flux"}),
		gzip.WithExcludedPathsRegexs(downloadPaths),
		gzip.WithExcludedExtensions([]string{".pdf", ".xlsx", ".png", ".jpg", ".jpeg", ".webp"}),
	)
}
