package controllers

import (
	"cabinet-suite-core/internal/modules/auth/dto"
	"cabinet-suite-core/internal/modules/auth/services"
	"cabinet-suite-core/internal/shared/apperr"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	authService *services.AuthService
}

// NewAuthController crée une nouvelle instance du contrôleur d'authentification
func NewAuthController(authService *services.AuthService) *AuthController {
	return &AuthController{
		authService: authService,
	}
}

// Login - POST /api/v1/auth/login
func (c *AuthController) Login(ctx *gin.Context) {
	cabinet, ok := tenant.FromContext(ctx)
	if !ok {
		response.Error(ctx, apperr.Internal("CABINET_CONTEXT_MISSING", nil))
		return
	}

	var req dto.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.authService.Login(ctx.Request.Context(), req, cabinet, ctx.ClientIP(), ctx.GetHeader("User-Agent"))
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.OK(ctx, result)
}

// Logout - POST /api/v1/auth/logout
// Toujours 200 dès qu'un token est fourni
func (c *AuthController) Logout(ctx *gin.Context) {
	token := authMiddleware.ExtractBearerToken(ctx.GetHeader("Authorization"))
	if token == "" {
		response.Error(ctx, apperr.Session("TOKEN_REQUIRED", "Token d'authentification requis"))
		return
	}

	cabinet, ok := tenant.FromContext(ctx)
	if !ok {
		response.Error(ctx, apperr.Internal("CABINET_CONTEXT_MISSING", nil))
		return
	}

	if err := c.authService.Logout(ctx.Request.Context(), token, cabinet); err != nil {
		response.Error(ctx, err)
		return
	}

	response.OK(ctx, gin.H{"message": "Déconnexion réussie"})
}

// Me - GET /api/v1/auth/me
func (c *AuthController) Me(ctx *gin.Context) {
	session, _ := authMiddleware.SessionFromContext(ctx)
	cabinet, _ := tenant.FromContext(ctx)

	result, err := c.authService.Me(ctx.Request.Context(), session, cabinet)
	if err != nil {
		response.Error(ctx, err)
		return
	}

	response.OK(ctx, result)
}

// ChangePassword - POST /api/v1/auth/password
func (c *AuthController) ChangePassword(ctx *gin.Context) {
	session, _ := authMiddleware.SessionFromContext(ctx)

	var req dto.ChangePasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	if err := c.authService.ChangePassword(ctx.Request.Context(), session, req); err != nil {
		response.Error(ctx, err)
		return
	}

	response.OK(ctx, gin.H{"message": "Mot de passe modifié"})
}
