package api

import (
	"errors"
	"net/http"

	"github.com/blog-cms/internal/metrics"
	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/service"
	"github.com/blog-cms/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AuthHandler handles login and logout
type AuthHandler struct {
	accounts service.AccountService
	log      zerolog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(services *service.Services, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: services.Account,
		log:      log.With().Str("handler", "auth").Logger(),
	}
}

// ShowLogin handles GET /login
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	query := c.Request.URL.Query()
	data := formData(&models.LoginForm{}, nil, "")
	data["Title"] = "Login"
	data["LoggedOut"] = query.Has("logout")
	if query.Has("error") {
		data["GlobalError"] = "Invalid username or password."
	}
	render(c, http.StatusOK, "login", data)
}

// Login handles POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var form models.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderLogin(c, http.StatusBadRequest, &form, nil, "Invalid form submission.")
		return
	}

	if errs := validation.ValidateLoginForm(&form); len(errs) > 0 {
		h.renderLogin(c, http.StatusOK, &form, errs, "")
		return
	}

	account, err := h.accounts.Authenticate(c.Request.Context(), form.Username, form.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		h.log.Warn().Str("username", form.Username).Str("client_ip", c.ClientIP()).Msg("Login failed")
		c.Redirect(http.StatusFound, "/login?error")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to authenticate")
		renderError(c, http.StatusInternalServerError, "Login is temporarily unavailable.")
		return
	}

	if err := setLoginAccount(c, account.ID); err != nil {
		h.log.Error().Err(err).Msg("Failed to save session")
		renderError(c, http.StatusInternalServerError, "Login is temporarily unavailable.")
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	h.log.Info().Int64("account_id", account.ID).Msg("Login succeeded")
	c.Redirect(http.StatusFound, "/admin/articles")
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := clearSession(c); err != nil {
		h.log.Error().Err(err).Msg("Failed to clear session")
	}
	c.Redirect(http.StatusFound, "/login?logout")
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, form *models.LoginForm, errs validation.Errors, globalErr string) {
	form.Password = ""
	data := formData(form, errs, globalErr)
	data["Title"] = "Login"
	render(c, status, "login", data)
}
