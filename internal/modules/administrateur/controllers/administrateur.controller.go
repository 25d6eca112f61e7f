package controllers

import (
	"strconv"

	"cabinet-suite-core/internal/modules/administrateur/dto"
	"cabinet-suite-core/internal/modules/administrateur/services"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type AdministrateurController struct {
	cabinetService     *services.CabinetService
	utilisateurService *services.UtilisateurService
}

func NewAdministrateurController(
	cabinetService *services.CabinetService,
	utilisateurService *services.UtilisateurService,
) *AdministrateurController {
	return &AdministrateurController{
		cabinetService:     cabinetService,
		utilisateurService: utilisateurService,
	}
}

// RegisterCabinet - POST /api/v1/cabinets
func (c *AdministrateurController) RegisterCabinet(ctx *gin.Context) {
	var req dto.RegisterCabinetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.cabinetService.Register(ctx.Request.Context(), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.Created(ctx, result)
}

// GetCabinet - GET /api/v1/admin/cabinet
func (c *AdministrateurController) GetCabinet(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	result, err := c.cabinetService.Get(ctx.Request.Context(), cabinet)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// UpdateCabinet - PUT /api/v1/admin/cabinet
func (c *AdministrateurController) UpdateCabinet(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	var req dto.UpdateCabinetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.cabinetService.Update(ctx.Request.Context(), cabinet, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// ListUtilisateurs - GET /api/v1/admin/utilisateurs
func (c *AdministrateurController) ListUtilisateurs(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	result, err := c.utilisateurService.List(ctx.Request.Context(), cabinet)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// CreateUtilisateur - POST /api/v1/admin/utilisateurs
func (c *AdministrateurController) CreateUtilisateur(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	var req dto.CreateUtilisateurRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.utilisateurService.Create(ctx.Request.Context(), cabinet, session.UserID, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.Created(ctx, result)
}

// UpdateUtilisateur - PUT /api/v1/admin/utilisateurs/:id
func (c *AdministrateurController) UpdateUtilisateur(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	var req dto.UpdateUtilisateurRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.utilisateurService.Update(ctx.Request.Context(), cabinet, session.UserID, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// ResetPassword - POST /api/v1/admin/utilisateurs/:id/reset-password
func (c *AdministrateurController) ResetPassword(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	var req dto.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	if err := c.utilisateurService.ResetPassword(ctx.Request.Context(), cabinet, session.UserID, ctx.Param("id"), req.MotDePasse); err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, gin.H{"message": "Mot de passe réinitialisé"})
}

// Journal - GET /api/v1/admin/journal?limite=
func (c *AdministrateurController) Journal(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	limite, _ := strconv.Atoi(ctx.Query("limite"))

	result, err := c.utilisateurService.Journal(ctx.Request.Context(), cabinet, limite)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}
