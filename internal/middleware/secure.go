package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"

	"pharmaledger/internal/logger"
)

// SecureHeaders sets the standard hardening headers. In production plain
// HTTP requests are redirected to HTTPS, honouring X-Forwarded-Proto.
func SecureHeaders(production bool) gin.HandlerFunc {
	s := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:",
		SSLRedirect:           production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !production,
	})

	return func(c *gin.Context) {
		if err := s.Process(c.Writer, c.Request); err != nil {
			logger.Named("http").Warnw("secure headers blocked request", "error", err, "path", c.Request.URL.Path)
			c.Abort()
			return
		}
		// Process may have written a redirect.
		if status := c.Writer.Status(); status >= 300 && status < 400 {
			c.Abort()
			return
		}
		c.Next()
	}
}
