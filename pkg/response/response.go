package response

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"voy.com/portfolio/pkg/apperror"
)

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	// Superseded requests are not failures; nothing to report.
	if errors.Is(err, apperror.ErrRequestCancelled) {
		c.Status(http.StatusOK)
		return
	}

	code := apperror.MapErrorToStatus(err)

	// Log internal errors
	if code >= http.StatusInternalServerError {
		log.Printf("[Internal Error]: %v", err)
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
