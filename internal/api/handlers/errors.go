package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"printkit/internal/database"
	"printkit/internal/services/printify"
	"printkit/internal/services/products"
	"printkit/internal/templates"
)

// respondError maps domain errors onto status codes.
func respondError(c *gin.Context, err error) {
	var apiErr *printify.APIError
	switch {
	case errors.Is(err, templates.ErrNotFound), errors.Is(err, database.ErrNotFound), printify.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, products.ErrLedgerDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &apiErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func intParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}
