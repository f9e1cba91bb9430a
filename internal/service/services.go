package service

import (
	"context"
	"time"

	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
	"github.com/blog-cms/pkg/crypto"
	"github.com/rs/zerolog"
)

// ArticleService defines the interface for article management
type ArticleService interface {
	ListForAdmin(ctx context.Context) ([]models.Article, error)
	ListPublished(ctx context.Context) ([]models.Article, error)
	FindByID(ctx context.Context, id int64) (*models.Article, error)
	FindPublishedBySlug(ctx context.Context, slug string) (*models.Article, error)
	Create(ctx context.Context, form *models.ArticleForm) (*models.Article, error)
	Update(ctx context.Context, id int64, form *models.ArticleForm) (*models.Article, error)
	Delete(ctx context.Context, id int64) error
}

// AccountService defines the interface for account management and login
type AccountService interface {
	List(ctx context.Context) ([]models.Account, error)
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	Create(ctx context.Context, form *models.AccountForm) (*models.Account, error)
	Update(ctx context.Context, id int64, form *models.AccountForm) (*models.Account, error)
	Delete(ctx context.Context, id int64) error
	Authenticate(ctx context.Context, username, password string) (*models.Account, error)
	Bootstrap(ctx context.Context, username, password string) (bool, error)
}

// Services holds all service interfaces
type Services struct {
	Article ArticleService
	Account AccountService
}

// Option customizes service construction
type Option func(*options)

type options struct {
	now  func() time.Time
	hash func(string) (string, error)
}

// WithClock replaces time.Now for publish timestamps
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithPasswordHasher replaces the bcrypt hasher
func WithPasswordHasher(hash func(string) (string, error)) Option {
	return func(o *options) { o.hash = hash }
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, log zerolog.Logger, opts ...Option) *Services {
	o := options{
		now:  time.Now,
		hash: crypto.HashPassword,
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Services{
		Article: newArticleService(repos.Article, o.now, log),
		Account: newAccountService(repos.Account, repos.Tx, o.hash, log),
	}
}
