package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/blog-cms/internal/database"
	"github.com/blog-cms/internal/models"
)

const articleColumns = `id, title, summary, slug, content, published, published_at, created_at, updated_at`

// articleRepo is the concrete implementation of ArticleRepository
type articleRepo struct {
	db *database.DB
}

// NewArticleRepo creates a new article repository
func NewArticleRepo(db *database.DB) ArticleRepository {
	return &articleRepo{db: db}
}

// Create inserts a new article and fills in its generated fields
func (r *articleRepo) Create(ctx context.Context, article *models.Article) error {
	query := `
		INSERT INTO articles (title, summary, slug, content, published, published_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	err := executor(ctx, r.db).QueryRowxContext(ctx, query,
		article.Title, article.Summary, article.Slug, article.Content,
		article.Published, article.PublishedAt,
	).Scan(&article.ID, &article.CreatedAt, &article.UpdatedAt)
	return mapError(err)
}

// Update overwrites all editable fields of an existing article
func (r *articleRepo) Update(ctx context.Context, article *models.Article) error {
	query := `
		UPDATE articles
		SET title = $1, summary = $2, slug = $3, content = $4,
		    published = $5, published_at = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING created_at, updated_at
	`
	err := executor(ctx, r.db).QueryRowxContext(ctx, query,
		article.Title, article.Summary, article.Slug, article.Content,
		article.Published, article.PublishedAt, article.ID,
	).Scan(&article.CreatedAt, &article.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return sql.ErrNoRows
	}
	return mapError(err)
}

// Delete removes an article; deleting a missing id is not an error
func (r *articleRepo) Delete(ctx context.Context, id int64) error {
	_, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	return err
}

// GetByID retrieves an article by ID
func (r *articleRepo) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	return r.getOne(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
}

// GetBySlug retrieves an article by slug
func (r *articleRepo) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return r.getOne(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug)
}

// ListPublished returns published articles, newest publication first
func (r *articleRepo) ListPublished(ctx context.Context) ([]models.Article, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM articles
		WHERE published = TRUE
		ORDER BY published_at DESC NULLS LAST, id DESC
	`
	return r.list(ctx, query)
}

// ListByUpdatedDesc returns every article, most recently edited first
func (r *articleRepo) ListByUpdatedDesc(ctx context.Context) ([]models.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles ORDER BY updated_at DESC, id DESC`
	return r.list(ctx, query)
}

func (r *articleRepo) getOne(ctx context.Context, query string, arg interface{}) (*models.Article, error) {
	var article models.Article
	err := executor(ctx, r.db).GetContext(ctx, &article, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &article, nil
}

func (r *articleRepo) list(ctx context.Context, query string) ([]models.Article, error) {
	articles := []models.Article{}
	if err := executor(ctx, r.db).SelectContext(ctx, &articles, query); err != nil {
		return nil, err
	}
	return articles, nil
}
