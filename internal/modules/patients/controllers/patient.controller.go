package controllers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"cabinet-suite-core/internal/infrastructure/documents/excel"
	"cabinet-suite-core/internal/modules/patients/dto"
	"cabinet-suite-core/internal/modules/patients/services"
	"cabinet-suite-core/internal/shared/apperr"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

const maxImportSize = 10 << 20

type PatientController struct {
	patientService *services.PatientService
}

func NewPatientController(patientService *services.PatientService) *PatientController {
	return &PatientController{patientService: patientService}
}

// Create - POST /api/v1/patients
func (c *PatientController) Create(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	var req dto.PatientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.patientService.Create(ctx.Request.Context(), cabinet, session.UserID, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.Created(ctx, result)
}

// Search - GET /api/v1/patients?q=&page=&limit=
func (c *PatientController) Search(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	var req dto.SearchRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.patientService.Search(ctx.Request.Context(), cabinet, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Get - GET /api/v1/patients/:id
func (c *PatientController) Get(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	result, err := c.patientService.Get(ctx.Request.Context(), cabinet, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Update - PUT /api/v1/patients/:id
func (c *PatientController) Update(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	var req dto.PatientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.patientService.Update(ctx.Request.Context(), cabinet, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Delete - DELETE /api/v1/patients/:id
func (c *PatientController) Delete(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	if err := c.patientService.Delete(ctx.Request.Context(), cabinet, session.UserID, ctx.Param("id")); err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, gin.H{"message": "Patient supprimé"})
}

// Historique - GET /api/v1/patients/:id/historique
func (c *PatientController) Historique(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	result, err := c.patientService.Historique(ctx.Request.Context(), cabinet, ctx.Param("id"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Import - POST /api/v1/patients/import (multipart, champ "fichier")
func (c *PatientController) Import(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	header, err := ctx.FormFile("fichier")
	if err != nil {
		response.Error(ctx, apperr.Validation("FICHIER_REQUIS", "Fichier .xlsx requis (champ fichier)"))
		return
	}
	if !strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") {
		response.Error(ctx, apperr.Validation("FORMAT_NON_SUPPORTE", "Seuls les fichiers .xlsx sont acceptés"))
		return
	}
	if header.Size > maxImportSize {
		response.Error(ctx, apperr.Validation("FICHIER_TROP_VOLUMINEUX", "Fichier limité à 10 Mo"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(ctx, apperr.Internal("IMPORT_OPEN_FAILED", err))
		return
	}
	defer file.Close()

	result, err := c.patientService.Import(ctx.Request.Context(), cabinet, session.UserID, file)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Export - GET /api/v1/patients/export
func (c *PatientController) Export(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	data, name, err := c.patientService.Export(ctx.Request.Context(), cabinet)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	ctx.Data(http.StatusOK, excel.ContentType, data)
}
