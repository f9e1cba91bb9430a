package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blog-cms/internal/metrics"
	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
	"github.com/rs/zerolog"
)

// maxSlugAttempts bounds how often a write is retried after losing a
// race on the slug unique constraint
const maxSlugAttempts = 5

// articleService is the concrete implementation of ArticleService
type articleService struct {
	repo repository.ArticleRepository
	now  func() time.Time
	log  zerolog.Logger
}

func newArticleService(repo repository.ArticleRepository, now func() time.Time, log zerolog.Logger) *articleService {
	return &articleService{
		repo: repo,
		now:  now,
		log:  log.With().Str("service", "article").Logger(),
	}
}

// ListForAdmin returns every article, most recently updated first
func (s *articleService) ListForAdmin(ctx context.Context) ([]models.Article, error) {
	return s.repo.ListByUpdatedDesc(ctx)
}

// ListPublished returns published articles, newest first
func (s *articleService) ListPublished(ctx context.Context) ([]models.Article, error) {
	return s.repo.ListPublished(ctx)
}

// FindByID loads an article for editing
func (s *articleService) FindByID(ctx context.Context, id int64) (*models.Article, error) {
	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if article == nil {
		return nil, notFound("article not found: %d", id)
	}
	return article, nil
}

// FindPublishedBySlug loads an article for public display. Drafts are
// reported as not found.
func (s *articleService) FindPublishedBySlug(ctx context.Context, slug string) (*models.Article, error) {
	article, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if article == nil || !article.Published {
		return nil, notFound("article not found: %s", slug)
	}
	return article, nil
}

// Create stores a new article built from form
func (s *articleService) Create(ctx context.Context, form *models.ArticleForm) (*models.Article, error) {
	article := &models.Article{}
	s.applyForm(form, article)

	if err := s.save(ctx, form, article, s.repo.Create); err != nil {
		return nil, err
	}

	metrics.ArticleSaves.WithLabelValues("create").Inc()
	s.log.Info().Int64("article_id", article.ID).Str("slug", article.Slug).Msg("Article created")
	return article, nil
}

// Update overwrites the article with the form contents
func (s *articleService) Update(ctx context.Context, id int64, form *models.ArticleForm) (*models.Article, error) {
	article, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.applyForm(form, article)

	err = s.save(ctx, form, article, s.repo.Update)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("article not found: %d", id)
	}
	if err != nil {
		return nil, err
	}

	metrics.ArticleSaves.WithLabelValues("update").Inc()
	s.log.Info().Int64("article_id", article.ID).Str("slug", article.Slug).Msg("Article updated")
	return article, nil
}

// Delete removes an article. A missing id is not an error.
func (s *articleService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete article %d: %w", id, err)
	}
	s.log.Info().Int64("article_id", id).Msg("Article deleted")
	return nil
}

// applyForm copies the editable fields and settles the publish timestamp
func (s *articleService) applyForm(form *models.ArticleForm, article *models.Article) {
	article.Title = form.Title
	article.Summary = form.Summary
	article.Content = form.Content
	article.Published = form.Published

	if !article.Published {
		article.PublishedAt = nil
	} else if article.PublishedAt == nil {
		now := s.now()
		article.PublishedAt = &now
	}
}

// save assigns a unique slug and writes the article. When a concurrent
// writer takes the slug between probe and write, the probe runs again.
func (s *articleService) save(ctx context.Context, form *models.ArticleForm, article *models.Article, write func(context.Context, *models.Article) error) error {
	base := NormalizeSlug(slugCandidate(form.Slug, form.Title))

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		slug, err := s.uniqueSlug(ctx, base, article.ID)
		if err != nil {
			return fmt.Errorf("failed to resolve slug: %w", err)
		}
		article.Slug = slug

		err = write(ctx, article)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return err
		}

		metrics.SlugConflicts.Inc()
		s.log.Warn().Str("slug", slug).Int("attempt", attempt).Msg("Slug taken by concurrent write, retrying")
	}

	return conflict("could not assign a unique slug for %q, please try again", base)
}

// uniqueSlug returns base, or base-N for the smallest N >= 1 that is
// free or already owned by the article with id
func (s *articleService) uniqueSlug(ctx context.Context, base string, id int64) (string, error) {
	candidate := base
	for n := 1; ; n++ {
		existing, err := s.repo.GetBySlug(ctx, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil || (id != 0 && existing.ID == id) {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}
