package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mdm/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects requests whose declared body size exceeds maxBytes and
// caps streaming bodies at the same limit.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Request body exceeds maximum allowed size"))
			return
		}

		// Chunked requests carry no Content-Length; the limited reader
		// still enforces the cap
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
