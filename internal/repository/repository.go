package repository

import (
	"context"
	"errors"

	"github.com/blog-cms/internal/database"
	"github.com/blog-cms/internal/models"
	"github.com/lib/pq"
)

// ErrDuplicate is returned when a write violates a unique constraint
var ErrDuplicate = errors.New("duplicate key")

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

// ArticleRepository defines the interface for article data operations.
// Lookups return (nil, nil) when no row matches.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	Update(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	ListPublished(ctx context.Context) ([]models.Article, error)
	ListByUpdatedDesc(ctx context.Context) ([]models.Article, error)
}

// AccountRepository defines the interface for account data operations.
// Lookups return (nil, nil) when no row matches.
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	CountByRole(ctx context.Context, role models.Role) (int, error)
	List(ctx context.Context) ([]models.Account, error)
}

// TransactionManager runs a function inside a database transaction.
// Repositories called with the derived context join that transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Article ArticleRepository
	Account AccountRepository
	Tx      TransactionManager
}

// New creates all repositories with the given database connection
func New(db *database.DB) *Repositories {
	return &Repositories{
		Article: NewArticleRepo(db),
		Account: NewAccountRepo(db),
		Tx:      NewTxManager(db),
	}
}

// mapError converts driver errors into repository errors
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}
