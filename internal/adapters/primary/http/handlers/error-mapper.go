package handlers

import (
	"net/http"

	"model-serving-adapters/internal/core/domain"

	"github.com/gin-gonic/gin"
)

// mapDomainError is the only place unclassified failures are flattened.
func mapDomainError(c *gin.Context, err error) {
	switch domain.KindOf(err) {
	case domain.KindUnsupportedContentType:
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})

	case domain.KindUnsupportedAcceptType:
		c.JSON(http.StatusNotAcceptable, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case domain.KindMissingField,
		domain.KindInvalidRequest:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case domain.KindNotLoaded:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
