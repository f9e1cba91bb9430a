package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/service"
	"github.com/blog-cms/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const accountsPath = "/admin/accounts"

// AdminAccountHandler handles account management pages
type AdminAccountHandler struct {
	accounts service.AccountService
	log      zerolog.Logger
}

// NewAdminAccountHandler creates a new account admin handler
func NewAdminAccountHandler(services *service.Services, log zerolog.Logger) *AdminAccountHandler {
	return &AdminAccountHandler{
		accounts: services.Account,
		log:      log.With().Str("handler", "admin_account").Logger(),
	}
}

// List handles GET /admin/accounts
func (h *AdminAccountHandler) List(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list accounts")
		renderError(c, http.StatusInternalServerError, "Accounts could not be loaded.")
		return
	}

	render(c, http.StatusOK, "admin/accounts/list", gin.H{
		"Title":    "Accounts",
		"Accounts": accounts,
		"Roles":    models.Roles,
	})
}

// New handles GET /admin/accounts/new
func (h *AdminAccountHandler) New(c *gin.Context) {
	form := models.NewAccountForm()
	h.renderForm(c, http.StatusOK, &form, nil, "")
}

// Create handles POST /admin/accounts
func (h *AdminAccountHandler) Create(c *gin.Context) {
	var form models.AccountForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, http.StatusBadRequest, &form, nil, "Invalid form submission.")
		return
	}
	form.ID = 0

	if errs := validation.ValidateAccountForm(&form); len(errs) > 0 {
		h.renderForm(c, http.StatusOK, &form, errs, "")
		return
	}

	account, err := h.accounts.Create(c.Request.Context(), &form)
	if err != nil {
		h.handleSaveError(c, &form, err)
		return
	}

	redirectWithFlash(c, flashMessage, fmt.Sprintf("Account %q created.", account.Username), accountsPath)
}

// Edit handles GET /admin/accounts/:id/edit
func (h *AdminAccountHandler) Edit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		redirectWithFlash(c, flashError, "Account not found.", accountsPath)
		return
	}

	account, err := h.accounts.FindByID(c.Request.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		redirectWithFlash(c, flashError, "Account not found.", accountsPath)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("account_id", id).Msg("Failed to load account")
		renderError(c, http.StatusInternalServerError, "The account could not be loaded.")
		return
	}

	form := account.ToForm()
	h.renderForm(c, http.StatusOK, &form, nil, "")
}

// Update handles POST /admin/accounts/:id
func (h *AdminAccountHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		redirectWithFlash(c, flashError, "Account not found.", accountsPath)
		return
	}

	var form models.AccountForm
	if err := c.ShouldBind(&form); err != nil {
		form.ID = id
		h.renderForm(c, http.StatusBadRequest, &form, nil, "Invalid form submission.")
		return
	}
	form.ID = id

	if errs := validation.ValidateAccountForm(&form); len(errs) > 0 {
		h.renderForm(c, http.StatusOK, &form, errs, "")
		return
	}

	account, err := h.accounts.Update(c.Request.Context(), id, &form)
	if errors.Is(err, service.ErrNotFound) {
		redirectWithFlash(c, flashError, "Account not found.", accountsPath)
		return
	}
	if err != nil {
		h.handleSaveError(c, &form, err)
		return
	}

	redirectWithFlash(c, flashMessage, fmt.Sprintf("Account %q updated.", account.Username), accountsPath)
}

// Delete handles POST /admin/accounts/:id/delete
func (h *AdminAccountHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		redirectWithFlash(c, flashError, "Account not found.", accountsPath)
		return
	}

	if err := h.accounts.Delete(c.Request.Context(), id); err != nil {
		var svcErr *service.Error
		if !errors.As(err, &svcErr) {
			h.log.Error().Err(err).Int64("account_id", id).Msg("Failed to delete account")
		}
		redirectWithFlash(c, flashError, service.Message(err, "The account could not be deleted."), accountsPath)
		return
	}

	redirectWithFlash(c, flashMessage, "Account deleted.", accountsPath)
}

func (h *AdminAccountHandler) handleSaveError(c *gin.Context, form *models.AccountForm, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		h.renderForm(c, http.StatusOK, form, nil, svcErr.Message)
		return
	}
	h.log.Error().Err(err).Int64("account_id", form.ID).Msg("Failed to save account")
	renderError(c, http.StatusInternalServerError, "The account could not be saved.")
}

func (h *AdminAccountHandler) renderForm(c *gin.Context, status int, form *models.AccountForm, errs validation.Errors, globalErr string) {
	form.Password = ""
	data := formData(form, errs, globalErr)
	data["Roles"] = models.Roles
	data["IsNew"] = form.ID == 0
	if form.ID == 0 {
		data["Title"] = "New account"
		data["Action"] = accountsPath
	} else {
		data["Title"] = "Edit account"
		data["Action"] = fmt.Sprintf("%s/%d", accountsPath, form.ID)
	}
	render(c, status, "admin/accounts/form", data)
}
