package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"printkit/internal/logger"
	"printkit/internal/services/products"
)

type ProductHandler struct {
	service *products.Service
	logger  *logger.Logger
}

func NewProductHandler(service *products.Service, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger,
	}
}

func limitQuery(c *gin.Context) (int, bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
		return 0, false
	}
	return limit, true
}

// History lists ledger records, optionally filtered by status.
func (h *ProductHandler) History(c *gin.Context) {
	limit, ok := limitQuery(c)
	if !ok {
		return
	}
	status := c.Query("status")

	records, err := h.service.History(c.Request.Context(), status, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": records,
		"pagination": gin.H{
			"limit": limit,
			"total": len(records),
		},
	})
}

// Remote lists the shop's products on the remote side.
func (h *ProductHandler) Remote(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": list})
}

func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": product})
}

// Record returns the ledger entry of a product created through printkit.
func (h *ProductHandler) Record(c *gin.Context) {
	rec, err := h.service.Record(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// Images lists uploaded images recorded in the ledger.
func (h *ProductHandler) Images(c *gin.Context) {
	limit, ok := limitQuery(c)
	if !ok {
		return
	}

	images, err := h.service.Images(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": images,
		"pagination": gin.H{
			"limit": limit,
			"total": len(images),
		},
	})
}
