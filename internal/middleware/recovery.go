package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"talib.app/backend/pkg/response"
)

// Recovery turns panics into a 500 envelope. The panic value is only exposed outside production.
func Recovery(logger *zap.Logger, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
					zap.String("query", c.Request.URL.RawQuery),
					zap.Stack("stacktrace"),
				)

				message := "internal server error"
				if !production {
					message = fmt.Sprintf("panic: %v", err)
				}
				response.Fail(c, http.StatusInternalServerError, message)
			}
		}()

		c.Next()
	}
}
