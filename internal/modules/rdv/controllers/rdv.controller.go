package controllers

import (
	"io"
	"net/http"
	"time"

	"cabinet-suite-core/internal/modules/rdv/dto"
	"cabinet-suite-core/internal/modules/rdv/services"
	authMiddleware "cabinet-suite-core/internal/shared/middleware/auth"
	"cabinet-suite-core/internal/shared/middleware/tenant"
	"cabinet-suite-core/internal/shared/response"

	"github.com/gin-gonic/gin"
)

const heartbeatFlux = 25 * time.Second

type RdvController struct {
	rdvService *services.RdvService
}

func NewRdvController(rdvService *services.RdvService) *RdvController {
	return &RdvController{rdvService: rdvService}
}

// Create - POST /api/v1/rdv
func (c *RdvController) Create(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	var req dto.CreateRdvRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.rdvService.Create(ctx.Request.Context(), cabinet, session.UserID, req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.Created(ctx, result)
}

// Agenda - GET /api/v1/rdv?date=&medecin_id=
func (c *RdvController) Agenda(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	var q dto.AgendaQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.rdvService.Agenda(ctx.Request.Context(), cabinet, q)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Creneaux - GET /api/v1/rdv/creneaux?date=&medecin_id=&duree=
func (c *RdvController) Creneaux(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	var q dto.AgendaQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.rdvService.Creneaux(ctx.Request.Context(), cabinet, q)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Update - PUT /api/v1/rdv/:id
func (c *RdvController) Update(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	var req dto.UpdateRdvRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.rdvService.Update(ctx.Request.Context(), cabinet, ctx.Param("id"), req)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// ChangeStatut - PATCH /api/v1/rdv/:id/statut
func (c *RdvController) ChangeStatut(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)
	session, _ := authMiddleware.SessionFromContext(ctx)

	var req dto.StatutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BindError(ctx, err)
		return
	}

	result, err := c.rdvService.ChangeStatut(ctx.Request.Context(), cabinet, session.UserID, ctx.Param("id"), req.Statut)
	if err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, result)
}

// Delete - DELETE /api/v1/rdv/:id
func (c *RdvController) Delete(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	if err := c.rdvService.Delete(ctx.Request.Context(), cabinet, ctx.Param("id")); err != nil {
		response.Error(ctx, err)
		return
	}
	response.OK(ctx, gin.H{"message": "Rendez-vous supprimé"})
}

// Flux - GET /api/v1/rdv/flux (text/event-stream)
func (c *RdvController) Flux(ctx *gin.Context) {
	cabinet, _ := tenant.FromContext(ctx)

	events, unsubscribe := c.rdvService.Subscribe(cabinet)
	defer unsubscribe()

	// Flux long: le WriteTimeout du serveur ne s'applique pas
	_ = http.NewResponseController(ctx.Writer).SetWriteDeadline(time.Time{})

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(heartbeatFlux)
	defer heartbeat.Stop()

	ctx.SSEvent("connecte", gin.H{"cabinet": cabinet.Code})
	ctx.Writer.Flush()

	done := ctx.Request.Context().Done()
	ctx.Stream(func(w io.Writer) bool {
		select {
		case <-done:
			return false
		case evt, ok := <-events:
			if !ok {
				return false
			}
			ctx.SSEvent(evt.Type, evt)
			return true
		case <-heartbeat.C:
			ctx.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
