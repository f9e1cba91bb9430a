package mocks

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/repository"
)

// MockArticleRepository is an in-memory ArticleRepository that enforces
// slug uniqueness like the articles_slug_key constraint
type MockArticleRepository struct {
	mu       sync.Mutex
	Articles map[int64]*models.Article
	nextID   int64

	// BeforeWrite runs ahead of every Create and Update, outside the lock.
	// Tests use it to slip in a competing row.
	BeforeWrite func(article *models.Article)

	GetBySlugCalls int
	InsertError    error
	DeleteError    error
}

func NewMockArticleRepository() *MockArticleRepository {
	return &MockArticleRepository{Articles: make(map[int64]*models.Article)}
}

// Seed stores a copy of article, assigning an ID if it has none
func (m *MockArticleRepository) Seed(article models.Article) *models.Article {
	m.mu.Lock()
	defer m.mu.Unlock()
	if article.ID == 0 {
		m.nextID++
		article.ID = m.nextID
	} else if article.ID > m.nextID {
		m.nextID = article.ID
	}
	if article.UpdatedAt.IsZero() {
		article.UpdatedAt = time.Now()
	}
	m.Articles[article.ID] = &article
	out := article
	return &out
}

func (m *MockArticleRepository) slugTakenLocked(slug string, id int64) bool {
	for _, a := range m.Articles {
		if a.Slug == slug && a.ID != id {
			return true
		}
	}
	return false
}

func (m *MockArticleRepository) Create(ctx context.Context, article *models.Article) error {
	if m.BeforeWrite != nil {
		m.BeforeWrite(article)
	}
	if m.InsertError != nil {
		return m.InsertError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slugTakenLocked(article.Slug, 0) {
		return repository.ErrDuplicate
	}

	m.nextID++
	now := time.Now()
	article.ID = m.nextID
	article.CreatedAt = now
	article.UpdatedAt = now
	stored := *article
	m.Articles[article.ID] = &stored
	return nil
}

func (m *MockArticleRepository) Update(ctx context.Context, article *models.Article) error {
	if m.BeforeWrite != nil {
		m.BeforeWrite(article)
	}
	if m.InsertError != nil {
		return m.InsertError
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.Articles[article.ID]
	if !ok {
		return sql.ErrNoRows
	}
	if m.slugTakenLocked(article.Slug, article.ID) {
		return repository.ErrDuplicate
	}

	article.CreatedAt = existing.CreatedAt
	article.UpdatedAt = time.Now()
	stored := *article
	m.Articles[article.ID] = &stored
	return nil
}

func (m *MockArticleRepository) Delete(ctx context.Context, id int64) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Articles, id)
	return nil
}

func (m *MockArticleRepository) GetByID(ctx context.Context, id int64) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Articles[id]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

func (m *MockArticleRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetBySlugCalls++
	for _, a := range m.Articles {
		if a.Slug == slug {
			out := *a
			return &out, nil
		}
	}
	return nil, nil
}

func (m *MockArticleRepository) ListPublished(ctx context.Context) ([]models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Article{}
	for _, a := range m.Articles {
		if a.Published {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := out[i].PublishedAt, out[j].PublishedAt
		switch {
		case pi == nil && pj == nil:
			return out[i].ID > out[j].ID
		case pi == nil:
			return false
		case pj == nil:
			return true
		case pi.Equal(*pj):
			return out[i].ID > out[j].ID
		}
		return pi.After(*pj)
	})
	return out, nil
}

func (m *MockArticleRepository) ListByUpdatedDesc(ctx context.Context) ([]models.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Article, 0, len(m.Articles))
	for _, a := range m.Articles {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

// Count reports how many articles are stored
func (m *MockArticleRepository) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Articles), nil
}

// MockAccountRepository is an in-memory AccountRepository with a unique username
type MockAccountRepository struct {
	mu       sync.Mutex
	Accounts map[int64]*models.Account
	nextID   int64

	CreateCalls int
	UpdateCalls int
	DeleteCalls int
	CreateError error
	CountError  error
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{Accounts: make(map[int64]*models.Account)}
}

// Seed stores a copy of account, assigning an ID if it has none
func (m *MockAccountRepository) Seed(account models.Account) *models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	if account.ID == 0 {
		m.nextID++
		account.ID = m.nextID
	} else if account.ID > m.nextID {
		m.nextID = account.ID
	}
	m.Accounts[account.ID] = &account
	out := account
	return &out
}

func (m *MockAccountRepository) usernameTakenLocked(username string, id int64) bool {
	for _, a := range m.Accounts {
		if a.Username == username && a.ID != id {
			return true
		}
	}
	return false
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls++
	if m.CreateError != nil {
		return m.CreateError
	}
	if m.usernameTakenLocked(account.Username, 0) {
		return repository.ErrDuplicate
	}

	m.nextID++
	now := time.Now()
	account.ID = m.nextID
	account.CreatedAt = now
	account.UpdatedAt = now
	stored := *account
	m.Accounts[account.ID] = &stored
	return nil
}

func (m *MockAccountRepository) Update(ctx context.Context, account *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	existing, ok := m.Accounts[account.ID]
	if !ok {
		return sql.ErrNoRows
	}
	if m.usernameTakenLocked(account.Username, account.ID) {
		return repository.ErrDuplicate
	}

	account.CreatedAt = existing.CreatedAt
	account.UpdatedAt = time.Now()
	stored := *account
	m.Accounts[account.ID] = &stored
	return nil
}

func (m *MockAccountRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteCalls++
	delete(m.Accounts, id)
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Accounts[id]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Accounts {
		if a.Username == username {
			out := *a
			return &out, nil
		}
	}
	return nil, nil
}

func (m *MockAccountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usernameTakenLocked(username, 0), nil
}

func (m *MockAccountRepository) CountByRole(ctx context.Context, role models.Role) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CountError != nil {
		return 0, m.CountError
	}
	n := 0
	for _, a := range m.Accounts {
		if a.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *MockAccountRepository) List(ctx context.Context) ([]models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Account, 0, len(m.Accounts))
	for _, a := range m.Accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockTransactionManager runs fn directly and records the outcome
type MockTransactionManager struct {
	Calls      int
	Committed  int
	RolledBack int
	BeginError error
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	if m.BeginError != nil {
		return m.BeginError
	}
	if err := fn(ctx); err != nil {
		m.RolledBack++
		return err
	}
	m.Committed++
	return nil
}

// NewRepositories bundles fresh in-memory repositories
func NewRepositories() (*repository.Repositories, *MockArticleRepository, *MockAccountRepository, *MockTransactionManager) {
	articles := NewMockArticleRepository()
	accounts := NewMockAccountRepository()
	tx := &MockTransactionManager{}
	return &repository.Repositories{Article: articles, Account: accounts, Tx: tx}, articles, accounts, tx
}

var (
	_ repository.ArticleRepository  = (*MockArticleRepository)(nil)
	_ repository.AccountRepository  = (*MockAccountRepository)(nil)
	_ repository.TransactionManager = (*MockTransactionManager)(nil)
)
