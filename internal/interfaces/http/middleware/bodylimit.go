package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects requests whose declared Content-Length exceeds maxBytes
// and caps the body reader for the rest. Handlers that hit the cap while
// reading see an *http.MaxBytesError.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, TooLarge(maxBytes))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// TooLarge is the 413 body for a request over limit bytes.
func TooLarge(limit int64) dto.ErrorResponse {
	return dto.NewErrorResponse(http.StatusRequestEntityTooLarge,
		fmt.Sprintf("Request body exceeds the maximum allowed size of %d bytes.", limit))
}
