package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/educator-assistant-backend/internal/http/response"
	"github.com/yungbote/educator-assistant-backend/internal/platform/ctxutil"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
	debug       bool
}

// NewAuthMiddleware builds the bearer-token gate. With debug set, requests
// that carry no token run as the demo educator.
func NewAuthMiddleware(log *logger.Logger, authService services.AuthService, debug bool) *AuthMiddleware {
	middlewareLogger := log.With("Middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService, debug: debug}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		ctx := c.Request.Context()
		var err error
		switch {
		case tokenString != "":
			ctx, err = am.authService.SetContextFromToken(ctx, tokenString)
			if err != nil {
				response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
				c.Abort()
				return
			}
		case am.debug:
			ctx, err = am.authService.DemoContext(ctx)
			if err != nil {
				am.log.Error("demo educator unavailable", "error", err)
				response.RespondAPIError(c, err)
				c.Abort()
				return
			}
		default:
			response.RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
			c.Abort()
			return
		}
		c.Request = c.Request.WithContext(ctx)
		rd := ctxutil.GetRequestData(ctx)
		if rd == nil || rd.EducatorID == uuid.Nil {
			response.RespondError(c, http.StatusForbidden, "forbidden", errors.New("forbidden"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func extractTokenFromAll(c *gin.Context) string {
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
