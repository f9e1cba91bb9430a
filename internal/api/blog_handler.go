package api

import (
	"errors"
	"net/http"

	"github.com/blog-cms/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// BlogHandler serves the public pages
type BlogHandler struct {
	articles service.ArticleService
	log      zerolog.Logger
}

// NewBlogHandler creates a new public blog handler
func NewBlogHandler(services *service.Services, log zerolog.Logger) *BlogHandler {
	return &BlogHandler{
		articles: services.Article,
		log:      log.With().Str("handler", "blog").Logger(),
	}
}

// Index handles GET /
func (h *BlogHandler) Index(c *gin.Context) {
	articles, err := h.articles.ListPublished(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list published articles")
		renderError(c, http.StatusInternalServerError, "Articles could not be loaded.")
		return
	}

	render(c, http.StatusOK, "blog/index", gin.H{
		"Title":    "Blog",
		"Articles": articles,
	})
}

// Show handles GET /posts/:slug
func (h *BlogHandler) Show(c *gin.Context) {
	article, err := h.articles.FindPublishedBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, service.ErrNotFound) {
		renderError(c, http.StatusNotFound, "The article you are looking for does not exist.")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("slug", c.Param("slug")).Msg("Failed to load article")
		renderError(c, http.StatusInternalServerError, "The article could not be loaded.")
		return
	}

	render(c, http.StatusOK, "blog/article", gin.H{
		"Title":   article.Title,
		"Article": article,
	})
}
