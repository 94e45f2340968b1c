package handlers

import (
	"model-serving-adapters/internal/core/services"

	"github.com/gin-gonic/gin"
)

// Handler serves the adapter and forwarder surfaces. Either service may be nil,
// in which case its routes are not registered.
type Handler struct {
	adapterSvc   *services.AdapterService
	forwarderSvc *services.ForwarderService
}

func New(
	adapterSvc *services.AdapterService,
	forwarderSvc *services.ForwarderService,
) *Handler {
	return &Handler{
		adapterSvc:   adapterSvc,
		forwarderSvc: forwarderSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Model Adapter (hosting contract)
	if h.adapterSvc != nil {
		r.GET("/ping", h.Ping)
		r.POST("/invocations", h.Invocations)
		r.GET("/schema", h.Schema)
	}

	// Request Forwarder
	if h.forwarderSvc != nil {
		r.POST("/events", h.HandleEvent)
		r.POST("/forward", h.Forward)
	}
}
