package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// RequestLogger replaces gin's default logger with structured logrus output.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"ip":      c.ClientIP(),
		}
		if username := c.GetString(ContextUsername); username != "" {
			fields["username"] = username
		}

		entry := log.WithFields(fields)
		switch status := c.Writer.Status(); {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Debug("Request handled")
		}
	}
}

// Recovery logs panics through logrus and answers 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.WithFields(log.Fields{
			"path":  c.Request.URL.Path,
			"panic": recovered,
		}).Error("Recovered from panic")
		c.AbortWithStatusJSON(500, gin.H{"error": "Internal server error"})
	})
}
