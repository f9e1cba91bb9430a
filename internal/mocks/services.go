package mocks

import (
	"context"

	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/service"
)

// MockArticleService returns canned results; unset funcs return zero values
type MockArticleService struct {
	ListForAdminFunc        func(ctx context.Context) ([]models.Article, error)
	ListPublishedFunc       func(ctx context.Context) ([]models.Article, error)
	FindByIDFunc            func(ctx context.Context, id int64) (*models.Article, error)
	FindPublishedBySlugFunc func(ctx context.Context, slug string) (*models.Article, error)
	CreateFunc              func(ctx context.Context, form *models.ArticleForm) (*models.Article, error)
	UpdateFunc              func(ctx context.Context, id int64, form *models.ArticleForm) (*models.Article, error)
	DeleteFunc              func(ctx context.Context, id int64) error
	DeleteCalls             []int64
}

func (m *MockArticleService) ListForAdmin(ctx context.Context) ([]models.Article, error) {
	if m.ListForAdminFunc != nil {
		return m.ListForAdminFunc(ctx)
	}
	return []models.Article{}, nil
}

func (m *MockArticleService) ListPublished(ctx context.Context) ([]models.Article, error) {
	if m.ListPublishedFunc != nil {
		return m.ListPublishedFunc(ctx)
	}
	return []models.Article{}, nil
}

func (m *MockArticleService) FindByID(ctx context.Context, id int64) (*models.Article, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, service.ErrNotFound
}

func (m *MockArticleService) FindPublishedBySlug(ctx context.Context, slug string) (*models.Article, error) {
	if m.FindPublishedBySlugFunc != nil {
		return m.FindPublishedBySlugFunc(ctx, slug)
	}
	return nil, service.ErrNotFound
}

func (m *MockArticleService) Create(ctx context.Context, form *models.ArticleForm) (*models.Article, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, form)
	}
	return &models.Article{ID: 1, Title: form.Title}, nil
}

func (m *MockArticleService) Update(ctx context.Context, id int64, form *models.ArticleForm) (*models.Article, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, form)
	}
	return &models.Article{ID: id, Title: form.Title}, nil
}

func (m *MockArticleService) Delete(ctx context.Context, id int64) error {
	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockAccountService returns canned results; unset funcs return zero values
type MockAccountService struct {
	ListFunc         func(ctx context.Context) ([]models.Account, error)
	FindByIDFunc     func(ctx context.Context, id int64) (*models.Account, error)
	CreateFunc       func(ctx context.Context, form *models.AccountForm) (*models.Account, error)
	UpdateFunc       func(ctx context.Context, id int64, form *models.AccountForm) (*models.Account, error)
	DeleteFunc       func(ctx context.Context, id int64) error
	AuthenticateFunc func(ctx context.Context, username, password string) (*models.Account, error)
	BootstrapFunc    func(ctx context.Context, username, password string) (bool, error)

	DeleteCalls []int64
}

func (m *MockAccountService) List(ctx context.Context) ([]models.Account, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []models.Account{}, nil
}

func (m *MockAccountService) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, service.ErrNotFound
}

func (m *MockAccountService) Create(ctx context.Context, form *models.AccountForm) (*models.Account, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, form)
	}
	return &models.Account{ID: 1, Username: form.Username, Role: models.Role(form.Role)}, nil
}

func (m *MockAccountService) Update(ctx context.Context, id int64, form *models.AccountForm) (*models.Account, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, form)
	}
	return &models.Account{ID: id, Username: form.Username, Role: models.Role(form.Role)}, nil
}

func (m *MockAccountService) Delete(ctx context.Context, id int64) error {
	m.DeleteCalls = append(m.DeleteCalls, id)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockAccountService) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, username, password)
	}
	return nil, service.ErrInvalidCredentials
}

func (m *MockAccountService) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	if m.BootstrapFunc != nil {
		return m.BootstrapFunc(ctx, username, password)
	}
	return false, nil
}

var (
	_ service.ArticleService = (*MockArticleService)(nil)
	_ service.AccountService = (*MockAccountService)(nil)
)
