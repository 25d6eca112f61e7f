package controllers

import (
	"io"
	"net/http"

	"cabinet-suite-core/internal/modules/parametres/dto"
	"cabinet-suite-core/internal/modules/parametres/services"
	"cabinet-suite-core/internal/shared/apperr"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

type ThemeController struct {
	themeService *services.ThemeService
}

func NewThemeController(themeService *services.ThemeService) *ThemeController {
	return &ThemeController{themeService: themeService}
}

// Get - GET /api/v1/parametres/theme
func (c *ThemeController) Get(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	result, err := c.themeService.Get(ctx.Request.Context(), cabinet)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Update - PUT /api/v1/parametres/theme
func (c *ThemeController) Update(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	var req dto.ThemeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.themeService.Update(ctx.Request.Context(), cabinet, session.UserID, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// UploadFond - POST /api/v1/parametres/theme/fond (multipart, champ image)
func (c *ThemeController) UploadFond(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	header, err := ctx.FormFile("image")
	if err != nil {
		response.Error(ctx, apperr.Validation("FICHIER_REQUIS", "Image requise (champ image)"))
		return
	}
	if header.Size > c.themeService.MaxUpload() {
		response.Error(ctx, apperr.Validation("FICHIER_TROP_VOLUMINEUX", "Image trop volumineuse"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(ctx, apperr.Internal("UPLOAD_OPEN_FAILED", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, c.themeService.MaxUpload()+1))
	if err != nil {
		response.Error(ctx, apperr.Internal("UPLOAD_READ_FAILED", err))
		return
	}

	result, err := c.themeService.UploadFond(ctx.Request.Context(), cabinet, session.UserID, data)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Fond - GET /api/v1/parametres/theme/fond?cabinet=
func (c *ThemeController) Fond(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	path, err := c.themeService.ImageFond(ctx.Request.Context(), cabinet)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.Header("Cache-Control", "public, max-age=86400")
	ctx.File(path)
}

// CSS - GET /theme.css?cabinet=
func (c *ThemeController) CSS(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	css, err := c.themeService.CSS(ctx.Request.Context(), cabinet)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.Header("Cache-Control", "no-cache")
	ctx.Data(http.StatusOK, "text/css; charset=utf-8", []byte(css))
}

// Manifest - GET /manifest.webmanifest?cabinet=
func (c *ThemeController) Manifest(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	manifest, err := c.themeService.Manifest(ctx.Request.Context(), cabinet)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.Header("Content-Type", "application/manifest+json")
	ctx.JSON(http.StatusOK, manifest)
}

// Icone - GET /api/v1/parametres/icons/:fichier?cabinet=
func (c *ThemeController) Icone(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	data, err := c.themeService.Icone(ctx.Request.Context(), cabinet, ctx.Param("fichier"))
	if err != nil {
		response.Error(ctx, err)
		return
	}
	ctx.Header("Cache-Control", "no-cache")
	ctx.Data(http.StatusOK, "image/png", data)
}
