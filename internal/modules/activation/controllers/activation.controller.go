package controllers

import (
	"cabinet-suite-core/internal/modules/activation/dto"
	"cabinet-suite-core/internal/modules/activation/services"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type ActivationController struct {
	activationService *services.ActivationService
}

func NewActivationController(activationService *services.ActivationService) *ActivationController {
	return &ActivationController{activationService: activationService}
}

// Statut - GET /api/v1/activation/statut
func (c *ActivationController) Statut(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	result, err := c.activationService.Statut(ctx.Request.Context(), cabinet)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Activer - POST /api/v1/activation/activer
func (c *ActivationController) Activer(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	var req dto.ActiverRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.activationService.Activer(ctx.Request.Context(), cabinet, session.UserID, req.Cle)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}
