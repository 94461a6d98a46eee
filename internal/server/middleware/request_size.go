// file: internal/server/middleware/request_size.go
// version: 1.0.0
// guid: 9c3e7a15-2f68-4b04-a1d9-7e5b3c8f2d46

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func methodHasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

// MaxRequestBodySize caps request bodies. Every mutating endpoint in this
// API takes small JSON payloads, so one limit covers all routes.
func MaxRequestBodySize(limitBytes int64) gin.HandlerFunc {
	if limitBytes < 1 {
		limitBytes = 1 << 20
	}

	return func(c *gin.Context) {
		if !methodHasBody(c.Request.Method) {
			c.Next()
			return
		}

		if c.Request.ContentLength > limitBytes {
			abortWithError(c, http.StatusRequestEntityTooLarge, "request body too large", "BODY_TOO_LARGE")
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limitBytes)
		c.Next()
	}
}
