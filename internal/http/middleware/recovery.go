package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/educator-assistant-backend/internal/http/response"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
)

// Recovery turns a handler panic into a 500 error envelope.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if log != nil {
				log.Error("panic recovered",
					"panic", fmt.Sprint(rec),
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)
			}
			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal server error"))
			c.Abort()
		}()
		c.Next()
	}
}
