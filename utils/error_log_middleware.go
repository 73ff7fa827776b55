package utils

import (
	"mediaalbums/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorLogWriter struct {
	gin.ResponseWriter
	gc *gin.Context
}

func (w errorLogWriter) Write(b []byte) (int, error) {
	status := w.gc.Writer.Status()
	if status >= 400 {
		logger.L().Debug("error response",
			zap.Int("status", status),
			zap.String("path", w.gc.Request.URL.Path),
			zap.ByteString("body", b))
	}
	return w.ResponseWriter.Write(b)
}

// ErrorLogMiddleware doesn't work with GZIP
func ErrorLogMiddleware(c *gin.Context) {
	blw := &errorLogWriter{gc: c, ResponseWriter: c.Writer}
	c.Writer = blw
	c.Next()
}
