package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/yamdb/yamdb/internal/apperrors"
	"github.com/yamdb/yamdb/internal/models"
	"github.com/yamdb/yamdb/internal/permission"
	"github.com/yamdb/yamdb/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeAuthenticator maps tokens straight to accounts.
type fakeAuthenticator map[string]*models.User

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.User, error) {
	if user, ok := f[token]; ok {
		return user, nil
	}
	return nil, apperrors.Unauthenticated("invalid or expired token")
}

func newAuthRouter(auth Authenticator, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Authenticate(auth))
	handler := func(c *gin.Context) {
		name := "anonymous"
		if user := CurrentUser(c); user != nil {
			name = user.Username
		}
		c.JSON(http.StatusOK, gin.H{"user": name})
	}
	handlers := append(guards, handler)
	router.Any("/resource", handlers...)
	return router
}

func request(router *gin.Engine, method, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/resource", nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func testAccounts() fakeAuthenticator {
	return fakeAuthenticator{
		"user":  {ID: uuid.New(), Username: "plain", Role: models.RoleUser},
		"mod":   {ID: uuid.New(), Username: "mod", Role: models.RoleModerator},
		"admin": {ID: uuid.New(), Username: "root", Role: models.RoleAdmin},
	}
}

func TestAuthenticate(t *testing.T) {
	router := newAuthRouter(testAccounts())

	testCases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"anonymous", "", http.StatusOK, "anonymous"},
		{"valid token", "Bearer user", http.StatusOK, "plain"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, "invalid or expired token"},
		{"wrong scheme", "Token user", http.StatusUnauthorized, "invalid authorization format"},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, "invalid authorization format"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := request(router, http.MethodGet, tc.header)
			assert.Equal(t, tc.status, w.Code)
			assert.Contains(t, w.Body.String(), tc.body)
		})
	}
}

func TestAuthenticate_LogsRejections(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	previous := logger.Log
	logger.Log = zap.New(core)
	defer func() { logger.Log = previous }()

	router := newAuthRouter(testAccounts())
	request(router, http.MethodGet, "Bearer nope")

	assert.Equal(t, 1, logs.FilterMessage("Authentication failed").Len())
}

func TestRequireAuthAndAdmin(t *testing.T) {
	authOnly := newAuthRouter(testAccounts(), RequireAuth())
	assert.Equal(t, http.StatusUnauthorized, request(authOnly, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusOK, request(authOnly, http.MethodGet, "Bearer user").Code)

	adminOnly := newAuthRouter(testAccounts(), RequireAdmin())
	assert.Equal(t, http.StatusUnauthorized, request(adminOnly, http.MethodGet, "").Code)
	assert.Equal(t, http.StatusForbidden, request(adminOnly, http.MethodGet, "Bearer mod").Code)
	assert.Equal(t, http.StatusOK, request(adminOnly, http.MethodGet, "Bearer admin").Code)
}

func TestAuthorize(t *testing.T) {
	titles := newAuthRouter(testAccounts(), Authorize(permission.Title))
	reviews := newAuthRouter(testAccounts(), Authorize(permission.Review))

	testCases := []struct {
		name   string
		router *gin.Engine
		method string
		token  string
		status int
	}{
		{"anyone reads titles", titles, http.MethodGet, "", http.StatusOK},
		{"anonymous cannot create titles", titles, http.MethodPost, "", http.StatusUnauthorized},
		{"users cannot create titles", titles, http.MethodPost, "Bearer user", http.StatusForbidden},
		{"moderators cannot delete titles", titles, http.MethodDelete, "Bearer mod", http.StatusForbidden},
		{"admins edit titles", titles, http.MethodPatch, "Bearer admin", http.StatusOK},
		{"users create reviews", reviews, http.MethodPost, "Bearer user", http.StatusOK},
		{"anonymous cannot edit reviews", reviews, http.MethodPatch, "", http.StatusUnauthorized},
		{"ownership is checked later", reviews, http.MethodDelete, "Bearer user", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, request(tc.router, tc.method, tc.token).Code)
		})
	}
}
