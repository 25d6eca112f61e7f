package controllers

import (
	"cabinet-suite-core/internal/modules/accueil/services"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type AccueilController struct {
	accueilService *services.AccueilService
}

func NewAccueilController(accueilService *services.AccueilService) *AccueilController {
	return &AccueilController{accueilService: accueilService}
}

// Tableau - GET /api/v1/accueil
func (c *AccueilController) Tableau(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	result, err := c.accueilService.Tableau(ctx.Request.Context(), cabinet)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}
