package api

import (
	"context"
	"net/http"
	"time"

	"github.com/blog-cms/internal/config"
	"github.com/blog-cms/internal/metrics"
	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/service"
	"github.com/blog-cms/pkg/logger"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const healthTimeout = 2 * time.Second

// HealthChecker reports whether a backing dependency is reachable
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, health HealthChecker, log zerolog.Logger) (*gin.Engine, error) {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	tpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tpl)

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(metricsMiddleware())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))
	router.Use(sessions.Sessions(sessionName, newSessionStore(cfg.Session)))

	// Handlers
	authHandler := NewAuthHandler(services, log)
	blogHandler := NewBlogHandler(services, log)
	articleHandler := NewAdminArticleHandler(services, log)
	accountHandler := NewAdminAccountHandler(services, log)

	// Health check
	router.GET("/health", healthCheck(health, log))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Public pages
	router.GET("/", blogHandler.Index)
	router.GET("/posts/:slug", blogHandler.Show)
	router.GET("/login", authHandler.ShowLogin)
	router.POST("/login", authHandler.Login)
	router.POST("/logout", authHandler.Logout)

	// Back office
	admin := router.Group("/admin", requireLogin(services.Account, log))
	{
		admin.GET("", func(c *gin.Context) { c.Redirect(http.StatusFound, articlesPath) })

		articles := admin.Group("/articles", requireRole(models.RoleAdmin, models.RoleEditor))
		{
			articles.GET("", articleHandler.List)
			articles.GET("/new", articleHandler.New)
			articles.POST("", articleHandler.Create)
			articles.GET("/:id/edit", articleHandler.Edit)
			articles.POST("/:id", articleHandler.Update)
			articles.POST("/:id/delete", articleHandler.Delete)
		}

		accounts := admin.Group("/accounts", requireRole(models.RoleAdmin))
		{
			accounts.GET("", accountHandler.List)
			accounts.GET("/new", accountHandler.New)
			accounts.POST("", accountHandler.Create)
			accounts.GET("/:id/edit", accountHandler.Edit)
			accounts.POST("/:id", accountHandler.Update)
			accounts.POST("/:id/delete", accountHandler.Delete)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		renderError(c, http.StatusNotFound, "Page not found.")
	})

	return router, nil
}

// healthCheck reports 503 while the database cannot be reached
func healthCheck(health HealthChecker, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := health.HealthCheck(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"timestamp": time.Now().Format(time.RFC3339),
				"service":   logger.ServiceName,
				"error":     "database unavailable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   logger.ServiceName,
		})
	}
}
