package controllers

import (
	"fmt"
	"net/http"

	"cabinet-suite-core/internal/infrastructure/documents/excel"
	"cabinet-suite-core/internal/modules/statistique/dto"
	"cabinet-suite-core/internal/modules/statistique/services"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type StatistiqueController struct {
	statistiqueService *services.StatistiqueService
}

func NewStatistiqueController(statistiqueService *services.StatistiqueService) *StatistiqueController {
	return &StatistiqueController{statistiqueService: statistiqueService}
}

// Rapport - GET /api/v1/statistiques?du=&au=
func (c *StatistiqueController) Rapport(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	var q dto.PeriodeQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.statistiqueService.Rapport(ctx.Request.Context(), cabinet, q)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Export - GET /api/v1/statistiques/export?du=&au=
func (c *StatistiqueController) Export(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	var q dto.PeriodeQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.BindError(ctx, err)
		return
	}

	data, name, err := c.statistiqueService.Export(ctx.Request.Context(), cabinet, q)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	ctx.Data(http.StatusOK, excel.ContentType, data)
}
