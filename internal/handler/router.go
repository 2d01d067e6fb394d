package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yamdb/yamdb/internal/middleware"
	"github.com/yamdb/yamdb/internal/permission"
	"github.com/yamdb/yamdb/internal/service"
)

type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Catalog  *service.CatalogService
	Titles   *service.TitleService
	Reviews  *service.ReviewService
	Comments *service.CommentService
}

type RouterConfig struct {
	Pagination   Pagination
	CORSOrigins  []string
	IsProduction bool
	// AuthLimiter throttles the signup and token endpoints; nil disables it.
	AuthLimiter *middleware.RateLimiter
	// HealthCheck reports datastore health; nil always reports ok.
	HealthCheck func(ctx context.Context) error
}

func NewRouter(svc Services, cfg RouterConfig) *gin.Engine {
	useJSONFieldNames()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.HSTSMiddleware(cfg.IsProduction))
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/health", healthHandler(cfg.HealthCheck))

	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Users, cfg.Pagination)
	catalogHandler := NewCatalogHandler(svc.Catalog, cfg.Pagination)
	titleHandler := NewTitleHandler(svc.Titles, cfg.Pagination)
	reviewHandler := NewReviewHandler(svc.Reviews, cfg.Pagination)
	commentHandler := NewCommentHandler(svc.Comments, cfg.Pagination)

	v1 := router.Group("/api/v1")

	auth := v1.Group("/auth")
	if cfg.AuthLimiter != nil {
		auth.Use(cfg.AuthLimiter.Middleware())
	}
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/token", authHandler.Token)

	api := v1.Group("", middleware.Authenticate(svc.Auth))

	users := api.Group("/users")
	users.GET("/me", middleware.RequireAuth(), userHandler.Me)
	users.PATCH("/me", middleware.RequireAuth(), userHandler.UpdateMe)
	admin := users.Group("", middleware.RequireAdmin())
	{
		admin.GET("", userHandler.List)
		admin.POST("", userHandler.Create)
		admin.GET("/:username", userHandler.Get)
		admin.PATCH("/:username", userHandler.Update)
		admin.DELETE("/:username", userHandler.Delete)
	}

	categories := api.Group("/categories", middleware.Authorize(permission.Category))
	{
		categories.GET("", catalogHandler.ListCategories)
		categories.POST("", catalogHandler.CreateCategory)
		categories.DELETE("/:slug", catalogHandler.DeleteCategory)
	}

	genres := api.Group("/genres", middleware.Authorize(permission.Genre))
	{
		genres.GET("", catalogHandler.ListGenres)
		genres.POST("", catalogHandler.CreateGenre)
		genres.DELETE("/:slug", catalogHandler.DeleteGenre)
	}

	titles := api.Group("/titles")
	titleRoutes := titles.Group("", middleware.Authorize(permission.Title))
	{
		titleRoutes.GET("", titleHandler.List)
		titleRoutes.POST("", titleHandler.Create)
		titleRoutes.GET("/:title_id", titleHandler.Get)
		titleRoutes.PATCH("/:title_id", titleHandler.Update)
		titleRoutes.DELETE("/:title_id", titleHandler.Delete)
	}

	reviews := titles.Group("/:title_id/reviews", middleware.Authorize(permission.Review))
	{
		reviews.GET("", reviewHandler.List)
		reviews.POST("", reviewHandler.Create)
		reviews.GET("/:review_id", reviewHandler.Get)
		reviews.PATCH("/:review_id", reviewHandler.Update)
		reviews.DELETE("/:review_id", reviewHandler.Delete)
	}

	comments := titles.Group("/:title_id/reviews/:review_id/comments", middleware.Authorize(permission.Comment))
	{
		comments.GET("", commentHandler.List)
		comments.POST("", commentHandler.Create)
		comments.GET("/:comment_id", commentHandler.Get)
		comments.PATCH("/:comment_id", commentHandler.Update)
		comments.DELETE("/:comment_id", commentHandler.Delete)
	}

	return router
}

func healthHandler(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
