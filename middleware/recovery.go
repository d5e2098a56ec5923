package middleware

import (
	"io"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weddingguard/backend/pkg/logger"
)

// MsgInternalError is shown on page requests that panicked.
const MsgInternalError = "일시적인 오류가 발생했습니다. 잠시 후 다시 시도해주세요."

// Recovery turns a panic into a 500. API requests get the JSON error
// envelope, page requests a short plain-text notice; both carry the request
// id and the stack goes to the log only. Broken client connections are
// handled by gin and never reach the handler below.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		requestID := GetRequestID(c)

		logger.Error(c.Request.Context(), "panic recovered",
			"error", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"stack", string(debug.Stack()),
		)

		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":       "internal",
				"message":    "Internal server error",
				"request_id": requestID,
			})
			return
		}
		c.Header(RequestIDHeader, requestID)
		c.String(http.StatusInternalServerError, "%s\n(request id: %s)\n", MsgInternalError, requestID)
		c.Abort()
	})
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}
