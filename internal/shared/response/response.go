package response

import (
	"net/http"

	"cabinet-suite-core/internal/shared/apperr"

	"github.com/gin-gonic/gin"
)

// OK écrit {"success": true, "data": data}
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// Created écrit une réponse 201
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// Error convertit une erreur de service en réponse JSON et interrompt la chaîne
func Error(c *gin.Context, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		appErr = apperr.Internal("INTERNAL_ERROR", err)
	}

	if appErr.Kind == apperr.KindInternal {
		// Conservé pour le logger d'accès
		_ = c.Error(err)
	}

	details := map[string]interface{}{"code": appErr.Code}
	for k, v := range appErr.Details {
		details[k] = v
	}

	c.AbortWithStatusJSON(appErr.Status(), gin.H{
		"error":   appErr.Message,
		"details": details,
	})
}

// BindError répond 400 pour un corps de requête invalide
func BindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"error": "Données de la requête invalides",
		"details": map[string]interface{}{
			"code":              "INVALID_REQUEST_FORMAT",
			"validation_errors": err.Error(),
		},
	})
}
