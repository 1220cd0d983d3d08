package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"printkit/internal/discovery"
	"printkit/internal/logger"
)

type DiscoveryHandler struct {
	helper *discovery.Helper
	logger *logger.Logger
}

func NewDiscoveryHandler(helper *discovery.Helper, logger *logger.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		helper: helper,
		logger: logger,
	}
}

func (h *DiscoveryHandler) Suggest(c *gin.Context) {
	opts := discovery.SuggestOptions{Category: c.Query("category")}
	if raw := c.Query("max_price"); raw != "" {
		maxPrice, err := strconv.Atoi(raw)
		if err != nil || maxPrice < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid max_price"})
			return
		}
		opts.MaxPrice = maxPrice
	}

	suggestions, err := h.helper.Suggest(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": suggestions})
}

// Search takes comma separated keywords in q.
func (h *DiscoveryHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}

	suggestions, err := h.helper.Search(c.Request.Context(), strings.Split(q, ","))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": suggestions})
}

func (h *DiscoveryHandler) Categories(c *gin.Context) {
	counts, err := h.helper.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": counts})
}
