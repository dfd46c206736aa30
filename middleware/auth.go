package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"slotgate/utils"
)

// presentedCredential extracts the caller's credential, either as a bearer
// token or a dedicated API-key header.
func presentedCredential(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.GetHeader("X-API-Key")
}

// AuthMiddleware compares the presented credential against the configured
// shared secret using a constant-time comparison. An empty secret disables
// the check entirely; that is deliberate policy for trusted-network
// deployments, not an oversight.
func AuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		presented := presentedCredential(c)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(apiKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"status":  "error",
				"error":   string(utils.CodeUnauthorized),
				"message": "Missing or invalid credential",
			})
			return
		}
		c.Next()
	}
}
