package controllers

import (
	"fmt"
	"net/http"

	"cabinet-suite-core/internal/modules/consultations/dto"
	"cabinet-suite-core/internal/modules/consultations/services"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type ConsultationController struct {
	consultationService *services.ConsultationService
}

func NewConsultationController(consultationService *services.ConsultationService) *ConsultationController {
	return &ConsultationController{consultationService: consultationService}
}

// Create - POST /api/v1/consultations
func (c *ConsultationController) Create(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	var req dto.CreateConsultationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.consultationService.Create(ctx.Request.Context(), cabinet, session, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.Created(ctx, result)
}

// List - GET /api/v1/consultations?patient_id=
func (c *ConsultationController) List(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	var q dto.ListQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.consultationService.List(ctx.Request.Context(), cabinet, q)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Get - GET /api/v1/consultations/:id
func (c *ConsultationController) Get(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	result, err := c.consultationService.Get(ctx.Request.Context(), cabinet, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Update - PUT /api/v1/consultations/:id
func (c *ConsultationController) Update(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	var req dto.ConsultationFields
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.consultationService.Update(ctx.Request.Context(), cabinet, session, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Ordonnance - GET /api/v1/consultations/:id/ordonnance.pdf
func (c *ConsultationController) Ordonnance(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	doc, err := c.consultationService.Ordonnance(ctx.Request.Context(), cabinet, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	sendPDF(ctx, doc)
}

// Certificat - POST /api/v1/consultations/:id/certificat
func (c *ConsultationController) Certificat(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	var req dto.CertificatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	doc, err := c.consultationService.Certificat(ctx.Request.Context(), cabinet, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	sendPDF(ctx, doc)
}

func sendPDF(ctx *gin.Context, doc *services.Document) {
	ctx.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, doc.Nom))
	ctx.Data(http.StatusOK, "application/pdf", doc.Data)
}
