package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/blog-cms/internal/metrics"
	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	ctxAccountKey = "account"
	ctxRoleKey    = "role"
)

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Str("path", c.Request.URL.Path).Msg("Panic recovered")
				c.String(http.StatusInternalServerError, "Internal server error")
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		if account := currentAccount(c); account != nil {
			event = event.Int64("account_id", account.ID)
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// metricsMiddleware records request counts and latency per route
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// requireLogin redirects anonymous visitors to the login page. The
// account is reloaded on every request so removed accounts lose access.
func requireLogin(accounts service.AccountService, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := getLoginAccountID(c)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		account, err := accounts.FindByID(c.Request.Context(), id)
		if errors.Is(err, service.ErrNotFound) {
			_ = clearSession(c)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if err != nil {
			log.Error().Err(err).Int64("account_id", id).Msg("Failed to load session account")
			c.String(http.StatusInternalServerError, "Internal server error")
			c.Abort()
			return
		}

		c.Set(ctxAccountKey, account)
		c.Set(ctxRoleKey, account.Role)
		c.Next()
	}
}

// requireRole rejects authenticated accounts whose role is not listed
func requireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		roleVal, exists := c.Get(ctxRoleKey)
		if !exists {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		role, ok := roleVal.(models.Role)
		if !ok || !allowed[role] {
			renderError(c, http.StatusForbidden, "You do not have permission to view this page.")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentAccount(c *gin.Context) *models.Account {
	if v, ok := c.Get(ctxAccountKey); ok {
		if account, ok := v.(*models.Account); ok {
			return account
		}
	}
	return nil
}
