package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// limitBody caps request bodies so an oversized payload fails at
// decode time instead of buffering unbounded input.
func (s *Server) limitBody(c *gin.Context) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	}
	c.Next()
}

func (s *Server) logRequest(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Info("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"ip", c.ClientIP(),
		"durationMs", time.Since(start).Milliseconds(),
	)
}
