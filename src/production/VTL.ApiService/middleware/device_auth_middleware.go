package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireDeviceKey validates the system-wide wearable shared secret. Passing
// it proves only that the caller is a legitimate device; the handler still
// resolves ownership from the deviceId in the payload.
func (m *AuthMiddleware) RequireDeviceKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.deviceKey == "" {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"kind":    "internal",
				"message": "device key not configured",
			})
			c.Abort()
			return
		}

		presented := c.GetHeader(m.config.DeviceKeyHeader)
		if subtle.ConstantTimeCompare([]byte(presented), []byte(m.deviceKey)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"kind":    "unauthenticated",
				"message": "Invalid device key",
			})
			c.Abort()
			return
		}

		c.Set(callerContextKey, Caller{Kind: CallerDevice})
		c.Next()
	}
}
