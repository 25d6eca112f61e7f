package controllers

import (
	"fmt"
	"net/http"

	"cabinet-suite-core/internal/infrastructure/documents/excel"
	"cabinet-suite-core/internal/modules/facturation/dto"
	"cabinet-suite-core/internal/modules/facturation/services"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type FactureController struct {
	factureService *services.FactureService
}

func NewFactureController(factureService *services.FactureService) *FactureController {
	return &FactureController{factureService: factureService}
}

// Create - POST /api/v1/factures
func (c *FactureController) Create(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	var req dto.CreateFactureRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.factureService.Create(ctx.Request.Context(), cabinet, session.UserID, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.Created(ctx, result)
}

// List - GET /api/v1/factures?du=&au=&statut=&patient_id=
func (c *FactureController) List(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	var q dto.ListQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.factureService.List(ctx.Request.Context(), cabinet, q)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Get - GET /api/v1/factures/:id
func (c *FactureController) Get(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	result, err := c.factureService.Get(ctx.Request.Context(), cabinet, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Paiement - POST /api/v1/factures/:id/paiement
func (c *FactureController) Paiement(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	var req dto.PaiementRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.factureService.Payer(ctx.Request.Context(), cabinet, session.UserID, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Annulation - POST /api/v1/factures/:id/annulation
func (c *FactureController) Annulation(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	var req dto.AnnulationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.factureService.Annuler(ctx.Request.Context(), cabinet, session.UserID, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// PDF - GET /api/v1/factures/:id/pdf
func (c *FactureController) PDF(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	doc, err := c.factureService.PDF(ctx.Request.Context(), cabinet, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, doc.Nom))
	ctx.Data(http.StatusOK, "application/pdf", doc.Data)
}

// Export - GET /api/v1/factures/export?du=&au=
func (c *FactureController) Export(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	var q dto.ListQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.BindError(ctx, err)
		return
	}

	doc, err := c.factureService.Export(ctx.Request.Context(), cabinet, q)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, doc.Nom))
	ctx.Data(http.StatusOK, excel.ContentType, doc.Data)
}
