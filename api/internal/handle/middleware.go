package handle

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"analyze-skin/api/internal/logging"
	"analyze-skin/api/internal/skin"
)

const HeaderRequestID = "X-Request-ID"

// corsHeaders are attached to every response, errors included.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Access-Control-Allow-Methods": "POST, OPTIONS",
}

// CORS sets the cross-origin headers and answers OPTIONS on any path with an
// empty 200 before routing or body processing.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		for k, v := range corsHeaders {
			c.Header(k, v)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// RequestID reuses the caller's X-Request-ID or generates one, echoes it and
// stores a tagged logger in the request context. One access line is logged
// per request.
func RequestID(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)

		reqLogger := logging.WithOperation(logger, "http."+strings.ToLower(c.Request.Method), id)
		c.Request = c.Request.WithContext(logging.NewContext(c.Request.Context(), reqLogger))

		start := time.Now()
		c.Next()

		reqLogger.Info("request served",
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Recovery converts a panic into the JSON error envelope.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.FromContext(c.Request.Context(), logger).Error("panic in handler", zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, skin.ErrorResponse{Error: skin.MsgInternal})
	})
}
