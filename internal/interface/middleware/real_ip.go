package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// proxy headers in order of trust; X-Forwarded-For uses its left-most entry
var clientIPHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

// RealIP stores the client IP under "real_ip", taken from the first proxy
// header that holds a valid address, else c.ClientIP(). Rate limit keys use it.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("real_ip", clientIP(c))
		c.Next()
	}
}

func clientIP(c *gin.Context) string {
	for _, h := range clientIPHeaders {
		v := c.GetHeader(h)
		if v == "" {
			continue
		}
		first, _, _ := strings.Cut(v, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return c.ClientIP()
}
