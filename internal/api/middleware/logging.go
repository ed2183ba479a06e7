package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// StructuredLogging logs one line per request through logger. Requests to
// any of skipPaths are not logged.
func StructuredLogging(logger *slog.Logger, skipPaths ...string) gin.HandlerFunc {
	return gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		if lo.Contains(skipPaths, param.Path) {
			return ""
		}

		requestID := ""
		if id, ok := param.Keys[RequestIDKey].(string); ok {
			requestID = id
		}

		level := slog.LevelInfo
		switch {
		case param.StatusCode >= http.StatusInternalServerError:
			level = slog.LevelError
		case param.StatusCode >= http.StatusBadRequest:
			level = slog.LevelWarn
		}

		logger.Log(param.Request.Context(), level, "HTTP Request",
			"request_id", requestID,
			"method", param.Method,
			"path", param.Path,
			"status", param.StatusCode,
			"latency_ms", param.Latency.Milliseconds(),
			"client_ip", param.ClientIP,
			"body_size", param.BodySize,
			"error", param.ErrorMessage,
		)

		return ""
	})
}
