package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/velo-register/internal/application/service"
	"github.com/sangkips/velo-register/internal/presentation/http/dto/response"
	"github.com/sangkips/velo-register/pkg/pagination"
)

// CatalogHandler exposes the local catalog snapshot
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// Browse lists snapshot products matching the search term
func (h *CatalogHandler) Browse(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "24"))

	result := h.catalogService.Browse(c.Query("search"), &pagination.PaginationParams{
		Page:    page,
		PerPage: perPage,
	})
	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// Refresh reloads the snapshot from the back office with the operator's credential
func (h *CatalogHandler) Refresh(c *gin.Context) {
	operatorID, ok := requireOperator(c)
	if !ok {
		return
	}

	n, err := h.catalogService.RefreshForOperator(c.Request.Context(), operatorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Catalog refreshed", gin.H{
		"products": n,
		"stats":    h.catalogService.Stats(),
	})
}
