package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/prism/internal/engine"
)

// respondError maps engine error kinds onto HTTP statuses. Client input
// errors and transient infrastructure errors must stay distinguishable so
// callers know what is worth retrying.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrAlbumNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "album not found"})
	case errors.Is(err, engine.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, engine.ErrExtractorUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "face extraction service unavailable"})
	case errors.Is(err, engine.ErrCatalogUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
