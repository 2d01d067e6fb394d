package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/internal/permission"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
)

const userContextKey = "user"

// Authenticator resolves a bearer token to an account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// CurrentUser returns the authenticated caller, or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// Authenticate loads the caller from an optional "Bearer <token>" header.
// Requests without the header continue anonymously; a present but invalid
// token is rejected with 401.
func Authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			abort(c, apperrors.Unauthenticated("invalid authorization format, use: Bearer <token>"))
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			logger.Log.Warn("Authentication failed",
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			abort(c, apperrors.From(err))
			return
		}

		c.Set(userContextKey, user)
		c.Set("user_id", user.ID)
		c.Set("user_role", user.Role)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			abort(c, apperrors.Unauthenticated("authentication credentials were not provided"))
			return
		}
		c.Next()
	}
}

// RequireAdmin allows only admins: 401 for anonymous callers, 403 otherwise.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abort(c, apperrors.Unauthenticated("authentication credentials were not provided"))
			return
		}
		if !user.IsAdmin() {
			logger.Log.Warn("Admin access denied",
				zap.String("user_id", user.ID.String()),
				zap.String("path", c.Request.URL.Path),
			)
			abort(c, apperrors.Permission("admin access required"))
			return
		}
		c.Next()
	}
}

// Authorize gates a route group on resource by HTTP method: GET/HEAD read,
// POST create, anything else modify. Object-level checks happen later.
func Authorize(resource permission.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := permission.Precheck(CurrentUser(c), actionFor(c.Request.Method), resource); err != nil {
			abort(c, apperrors.From(err))
			return
		}
		c.Next()
	}
}

func actionFor(method string) permission.Action {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return permission.Read
	case http.MethodPost:
		return permission.Create
	}
	return permission.Modify
}

func abort(c *gin.Context, err *apperrors.Error) {
	c.AbortWithStatusJSON(err.HTTPStatus(), gin.H{
		"error": err.Message,
	})
}
