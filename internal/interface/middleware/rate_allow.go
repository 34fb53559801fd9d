package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// SkipPrivateIP lets loopback and private-range clients bypass a limiter.
func SkipPrivateIP() SkipFunc {
	return func(c *gin.Context) bool {
		ip := net.ParseIP(clientIP(c))
		return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
	}
}
