package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"printkit/internal/logger"
	"printkit/internal/services/printify"
)

type CatalogHandler struct {
	client *printify.Client
	logger *logger.Logger
}

func NewCatalogHandler(client *printify.Client, logger *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		client: client,
		logger: logger,
	}
}

func (h *CatalogHandler) Shops(c *gin.Context) {
	shops, err := h.client.GetShops(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": shops})
}

func (h *CatalogHandler) Blueprints(c *gin.Context) {
	blueprints, err := h.client.GetBlueprints(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": blueprints, "total": len(blueprints)})
}

func (h *CatalogHandler) Blueprint(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	bp, err := h.client.GetBlueprint(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": bp})
}

func (h *CatalogHandler) Providers(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	providers, err := h.client.GetPrintProviders(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": providers})
}

func (h *CatalogHandler) Variants(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	providerID, ok := intParam(c, "providerId")
	if !ok {
		return
	}
	variants, err := h.client.GetVariants(c.Request.Context(), id, providerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": variants, "total": len(variants)})
}
