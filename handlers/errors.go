package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ourstory/scrapbook/internal/apperr"
	"github.com/ourstory/scrapbook/internal/collection"
	"github.com/ourstory/scrapbook/pkg/logger"
)

var log = logger.Named("http")

// writeError maps the error taxonomy to a status. Store failures are logged
// and reported with a generic message.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case collection.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apperr.ErrStoreUnavailable):
		log.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "store unavailable"})
	case errors.Is(err, apperr.ErrAssetOperationFailed):
		log.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "image storage unavailable"})
	default:
		log.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
