package controllers

import (
	"cabinet-suite-core/internal/modules/developpeur/dto"
	"cabinet-suite-core/internal/modules/developpeur/services"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type DeveloppeurController struct {
	cleService *services.CleService
}

func NewDeveloppeurController(cleService *services.CleService) *DeveloppeurController {
	return &DeveloppeurController{cleService: cleService}
}

// Emettre - POST /api/v1/developpeur/cles
func (c *DeveloppeurController) Emettre(ctx *gin.Context) {
	var req dto.EmettreClesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.cleService.Emettre(ctx.Request.Context(), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.Created(ctx, result)
}

// List - GET /api/v1/developpeur/cles?statut=
func (c *DeveloppeurController) List(ctx *gin.Context) {
	result, err := c.cleService.List(ctx.Request.Context(), ctx.Query("statut"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Revoquer - DELETE /api/v1/developpeur/cles/:cle
func (c *DeveloppeurController) Revoquer(ctx *gin.Context) {
	if err := c.cleService.Revoquer(ctx.Request.Context(), ctx.Param("cle")); err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, gin.H{"message": "Clé révoquée"})
}

// Cabinets - GET /api/v1/developpeur/cabinets
func (c *DeveloppeurController) Cabinets(ctx *gin.Context) {
	result, err := c.cleService.Cabinets(ctx.Request.Context())
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}
