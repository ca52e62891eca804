package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/velo-register/internal/application/service"
)

// HealthHandler reports whether the register can serve scans and checkouts
type HealthHandler struct {
	name          string
	catalog       *service.CatalogService
	printerStatus func() service.PrinterStatus
	breakerState  func() string
}

// NewHealthHandler creates a new health handler. printerStatus and
// breakerState may be nil.
func NewHealthHandler(name string, catalog *service.CatalogService, printerStatus func() service.PrinterStatus, breakerState func() string) *HealthHandler {
	return &HealthHandler{
		name:          name,
		catalog:       catalog,
		printerStatus: printerStatus,
		breakerState:  breakerState,
	}
}

// Health is public and never calls the back office
func (h *HealthHandler) Health(c *gin.Context) {
	body := gin.H{
		"status":  "ok",
		"service": h.name,
		"catalog": h.catalog.Stats(),
	}
	if h.printerStatus != nil {
		body["printer"] = h.printerStatus()
	}
	if h.breakerState != nil {
		state := h.breakerState()
		body["backoffice"] = state
		if state == "open" {
			body["status"] = "degraded"
		}
	}
	c.JSON(200, body)
}
