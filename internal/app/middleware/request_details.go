package middleware

import (
	"slices"
	"strings"
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxRequestIDLength = 64

// AttachRequestDetails gives every request an id, echoes it back in the
// response headers and logs one line when the handler returns.
func AttachRequestDetails() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := strings.TrimSpace(c.GetHeader(consts.RequestIDHeader))
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}
		c.Header(consts.RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		logger.CtxInfo(c.Request.Context(), log_messages.RequestCompleted,
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.Any("headers", maskHeaders(c.Request.Header)),
		)
	}
}

func maskHeaders(headers map[string][]string) map[string]string {
	out := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) == 0 {
			continue
		}
		if slices.ContainsFunc(consts.SensitiveHeaders, func(s string) bool { return strings.EqualFold(s, key) }) {
			out[key] = "*****"
			continue
		}
		out[key] = values[0]
	}
	return out
}
