// Package middleware provides the gin middlewares of the HTTP server.
package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/datajpa/internal/audit"
)

// Recovery turns a handler panic into a 500 error response and logs it with
// the stack. http.ErrAbortHandler is re-raised so net/http drops the connection.
func Recovery(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			fields := []interface{}{
				"error", rec,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP(),
				"stack", string(debug.Stack()),
			}
			if actor, ok := audit.ActorFromContext(c.Request.Context()); ok {
				fields = append(fields, "actor", actor)
			}
			logger.Errorw("panic recovered", fields...)

			if c.Writer.Written() {
				// too late for a body, just stop the chain
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "internal server error",
				},
			})
		}()

		c.Next()
	}
}
