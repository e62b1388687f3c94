// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the admin authentication gate. The admin surface is
// protected by a single shared secret presented via the X-Admin-Secret
// header and compared in constant time against the configured value. The
// split between 401 (header absent) and 403 (header wrong) mirrors the
// public API's key handling.
package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HeaderAdminSecret is the request header carrying the admin shared secret.
const HeaderAdminSecret = "X-Admin-Secret"

// AdminAuth returns a middleware that guards admin routes with the shared
// secret. An empty configured secret disables the whole admin surface: every
// request is rejected, including ones presenting an empty header.
func AdminAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented := c.GetHeader(HeaderAdminSecret)
		if presented == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "unauthorized",
				"message":    "missing X-Admin-Secret header",
			})
			return
		}
		if secret == "" ||
			subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"request_id": c.Writer.Header().Get("X-Request-ID"),
				"code":       "forbidden",
				"message":    "invalid admin secret",
			})
			return
		}
		c.Next()
	}
}
