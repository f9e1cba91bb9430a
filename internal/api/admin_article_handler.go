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

const articlesPath = "/admin/articles"

// AdminArticleHandler handles article management pages
type AdminArticleHandler struct {
	articles service.ArticleService
	log      zerolog.Logger
}

// NewAdminArticleHandler creates a new article admin handler
func NewAdminArticleHandler(services *service.Services, log zerolog.Logger) *AdminArticleHandler {
	return &AdminArticleHandler{
		articles: services.Article,
		log:      log.With().Str("handler", "admin_article").Logger(),
	}
}

// List handles GET /admin/articles
func (h *AdminArticleHandler) List(c *gin.Context) {
	articles, err := h.articles.ListForAdmin(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list articles")
		renderError(c, http.StatusInternalServerError, "Articles could not be loaded.")
		return
	}

	render(c, http.StatusOK, "admin/articles/list", gin.H{
		"Title":    "Articles",
		"Articles": articles,
	})
}

// New handles GET /admin/articles/new
func (h *AdminArticleHandler) New(c *gin.Context) {
	h.renderForm(c, http.StatusOK, &models.ArticleForm{}, nil, "")
}

// Create handles POST /admin/articles
func (h *AdminArticleHandler) Create(c *gin.Context) {
	var form models.ArticleForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderForm(c, http.StatusBadRequest, &form, nil, "Invalid form submission.")
		return
	}
	form.ID = 0

	if errs := validation.ValidateArticleForm(&form); len(errs) > 0 {
		h.renderForm(c, http.StatusOK, &form, errs, "")
		return
	}

	article, err := h.articles.Create(c.Request.Context(), &form)
	if err != nil {
		h.handleSaveError(c, &form, err)
		return
	}

	redirectWithFlash(c, flashMessage, fmt.Sprintf("Article %q created.", article.Title), articlesPath)
}

// Edit handles GET /admin/articles/:id/edit
func (h *AdminArticleHandler) Edit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		redirectWithFlash(c, flashError, "Article not found.", articlesPath)
		return
	}

	article, err := h.articles.FindByID(c.Request.Context(), id)
	if errors.Is(err, service.ErrNotFound) {
		redirectWithFlash(c, flashError, "Article not found.", articlesPath)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Int64("article_id", id).Msg("Failed to load article")
		renderError(c, http.StatusInternalServerError, "The article could not be loaded.")
		return
	}

	form := article.ToForm()
	h.renderForm(c, http.StatusOK, &form, nil, "")
}

// Update handles POST /admin/articles/:id
func (h *AdminArticleHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		redirectWithFlash(c, flashError, "Article not found.", articlesPath)
		return
	}

	var form models.ArticleForm
	if err := c.ShouldBind(&form); err != nil {
		form.ID = id
		h.renderForm(c, http.StatusBadRequest, &form, nil, "Invalid form submission.")
		return
	}
	form.ID = id

	if errs := validation.ValidateArticleForm(&form); len(errs) > 0 {
		h.renderForm(c, http.StatusOK, &form, errs, "")
		return
	}

	article, err := h.articles.Update(c.Request.Context(), id, &form)
	if errors.Is(err, service.ErrNotFound) {
		redirectWithFlash(c, flashError, service.Message(err, "Article not found."), articlesPath)
		return
	}
	if err != nil {
		h.handleSaveError(c, &form, err)
		return
	}

	redirectWithFlash(c, flashMessage, fmt.Sprintf("Article %q updated.", article.Title), articlesPath)
}

// Delete handles POST /admin/articles/:id/delete
func (h *AdminArticleHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		redirectWithFlash(c, flashError, "Article not found.", articlesPath)
		return
	}

	if err := h.articles.Delete(c.Request.Context(), id); err != nil {
		h.log.Error().Err(err).Int64("article_id", id).Msg("Failed to delete article")
		redirectWithFlash(c, flashError, "The article could not be deleted.", articlesPath)
		return
	}

	redirectWithFlash(c, flashMessage, "Article deleted.", articlesPath)
}

// handleSaveError re-renders the form for domain errors and fails otherwise
func (h *AdminArticleHandler) handleSaveError(c *gin.Context, form *models.ArticleForm, err error) {
	if errors.Is(err, service.ErrInvalidInput) || errors.Is(err, service.ErrConflict) {
		h.renderForm(c, http.StatusOK, form, nil, service.Message(err, "The article could not be saved."))
		return
	}
	h.log.Error().Err(err).Int64("article_id", form.ID).Msg("Failed to save article")
	renderError(c, http.StatusInternalServerError, "The article could not be saved.")
}

func (h *AdminArticleHandler) renderForm(c *gin.Context, status int, form *models.ArticleForm, errs validation.Errors, globalErr string) {
	data := formData(form, errs, globalErr)
	data["IsNew"] = form.ID == 0
	if form.ID == 0 {
		data["Title"] = "New article"
		data["Action"] = articlesPath
	} else {
		data["Title"] = "Edit article"
		data["Action"] = fmt.Sprintf("%s/%d", articlesPath, form.ID)
	}
	render(c, status, "admin/articles/form", data)
}
