package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"printkit/internal/logger"
)

// Logger writes one access line per request through the application logger.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			line := fmt.Sprintf("%s %s %d %s %s",
				param.Method,
				param.Path,
				param.StatusCode,
				param.Latency,
				param.ClientIP,
			)
			if param.ErrorMessage != "" {
				line += " " + strings.TrimSpace(param.ErrorMessage)
			}
			return line
		},
		Output:    accessWriter{log},
		SkipPaths: []string{"/health"},
	})
}

type accessWriter struct {
	log *logger.Logger
}

func (w accessWriter) Write(p []byte) (int, error) {
	w.log.Info("%s", strings.TrimSpace(string(p)))
	return len(p), nil
}
