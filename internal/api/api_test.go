package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/blog-cms/internal/api"
	"github.com/blog-cms/internal/config"
	"github.com/blog-cms/internal/mocks"
	"github.com/blog-cms/internal/models"
	"github.com/blog-cms/internal/service"
	"github.com/blog-cms/pkg/crypto"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHealth struct {
	err error
}

func (h stubHealth) HealthCheck(ctx context.Context) error {
	return h.err
}

type fixture struct {
	t        *testing.T
	router   *gin.Engine
	services *service.Services
	articles *mocks.MockArticleRepository
	accounts *mocks.MockAccountRepository
	cookies  map[string]*http.Cookie
}

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Port: "8080"},
		Session: config.SessionConfig{Secret: "0123456789abcdef0123456789abcdef", MaxAge: time.Hour},
	}
}

func newFixture(t *testing.T, customize ...func(*service.Services)) *fixture {
	t.Helper()
	return newFixtureWithHealth(t, stubHealth{}, customize...)
}

func newFixtureWithHealth(t *testing.T, health api.HealthChecker, customize ...func(*service.Services)) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos, articles, accounts, _ := mocks.NewRepositories()
	services := service.NewServices(repos, zerolog.Nop())
	for _, fn := range customize {
		fn(services)
	}

	router, err := api.NewRouter(services, testConfig(), health, zerolog.Nop())
	require.NoError(t, err)

	return &fixture{
		t:        t,
		router:   router,
		services: services,
		articles: articles,
		accounts: accounts,
		cookies:  make(map[string]*http.Cookie),
	}
}

func (f *fixture) seedAccount(username, password string, role models.Role) *models.Account {
	f.t.Helper()
	hash, err := crypto.HashPassword(password)
	require.NoError(f.t, err)
	return f.accounts.Seed(models.Account{Username: username, PasswordHash: hash, Role: role})
}

// do sends a request carrying the cookies collected so far
func (f *fixture) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range f.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(f.cookies, c.Name)
			continue
		}
		f.cookies[c.Name] = c
	}
	return w
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	return f.do(http.MethodGet, path, nil)
}

func (f *fixture) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return f.do(http.MethodPost, path, form)
}

func (f *fixture) login(username, password string) {
	f.t.Helper()
	w := f.post("/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(f.t, http.StatusFound, w.Code)
	require.Equal(f.t, "/admin/articles", w.Header().Get("Location"))
}

func (f *fixture) loginAdmin() *models.Account {
	f.t.Helper()
	admin := f.seedAccount("admin", "admin-pw", models.RoleAdmin)
	f.login("admin", "admin-pw")
	return admin
}

func assertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, location, w.Header().Get("Location"))
}

func TestHealthEndpoint(t *testing.T) {
	f := newFixture(t)

	w := f.get("/health")
	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
	assert.Equal(t, "blog-cms", response["service"])
}

func TestHealthEndpoint_DatabaseDown(t *testing.T) {
	f := newFixtureWithHealth(t, stubHealth{err: errors.New("dial tcp: connection refused")})

	w := f.get("/health")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "unhealthy", response["status"])
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.get("/health")

	w := f.get("/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "blog_http_requests_total")
}

func TestPublicIndex_ShowsPublishedOnly(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.articles.Seed(models.Article{Title: "Visible Post", Slug: "visible", Content: "x", Published: true, PublishedAt: &now})
	f.articles.Seed(models.Article{Title: "Hidden Draft", Slug: "hidden", Content: "x"})

	w := f.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Visible Post")
	assert.NotContains(t, w.Body.String(), "Hidden Draft")
}

func TestPublicArticle(t *testing.T) {
	f := newFixture(t)
	now := time.Now()
	f.articles.Seed(models.Article{Title: "Visible Post", Slug: "visible", Content: "Body text", Published: true, PublishedAt: &now})
	f.articles.Seed(models.Article{Title: "Hidden Draft", Slug: "hidden", Content: "x"})

	w := f.get("/posts/visible")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Body text")

	assert.Equal(t, http.StatusNotFound, f.get("/posts/hidden").Code)
	assert.Equal(t, http.StatusNotFound, f.get("/posts/missing").Code)
}

func TestAdmin_RequiresLogin(t *testing.T) {
	f := newFixture(t)

	assertRedirect(t, f.get("/admin/articles"), "/login")
	assertRedirect(t, f.get("/admin/accounts"), "/login")
	assertRedirect(t, f.post("/admin/articles", url.Values{"title": {"x"}}), "/login")
}

func TestLogin_Failure(t *testing.T) {
	f := newFixture(t)
	f.seedAccount("admin", "admin-pw", models.RoleAdmin)

	w := f.post("/login", url.Values{"username": {"admin"}, "password": {"nope"}})
	assertRedirect(t, w, "/login?error")

	page := f.get("/login?error")
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Invalid username or password.")

	assertRedirect(t, f.get("/admin/articles"), "/login")
}

func TestLogin_MissingFields(t *testing.T) {
	f := newFixture(t)

	w := f.post("/login", url.Values{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "username is required")
	assert.Contains(t, w.Body.String(), "password is required")
}

func TestLoginAndLogout(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()

	w := f.get("/admin/articles")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Articles")

	assertRedirect(t, f.post("/logout", nil), "/login?logout")
	assert.Contains(t, f.get("/login?logout").Body.String(), "You have been logged out.")
	assertRedirect(t, f.get("/admin/articles"), "/login")
}

func TestEditor_CannotManageAccounts(t *testing.T) {
	f := newFixture(t)
	f.seedAccount("editor", "editor-pw", models.RoleEditor)
	f.login("editor", "editor-pw")

	assert.Equal(t, http.StatusOK, f.get("/admin/articles").Code)
	assert.Equal(t, http.StatusForbidden, f.get("/admin/accounts").Code)
	assert.Equal(t, http.StatusForbidden, f.post("/admin/accounts/1/delete", nil).Code)
}

func TestDeletedAccount_LosesAccess(t *testing.T) {
	f := newFixture(t)
	editor := f.seedAccount("editor", "editor-pw", models.RoleEditor)
	f.login("editor", "editor-pw")

	require.NoError(t, f.accounts.Delete(context.Background(), editor.ID))

	assertRedirect(t, f.get("/admin/articles"), "/login")
}

func TestArticle_CreateFlow(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()

	w := f.post("/admin/articles", url.Values{
		"title":     {"Café au Lait"},
		"summary":   {"Morning notes"},
		"content":   {"Milk and coffee."},
		"published": {"true"},
	})
	assertRedirect(t, w, "/admin/articles")

	list := f.get("/admin/articles")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "created.")
	assert.Contains(t, list.Body.String(), "cafe-au-lait")

	// flash is shown once
	assert.NotContains(t, f.get("/admin/articles").Body.String(), "created.")

	public := f.get("/posts/cafe-au-lait")
	require.Equal(t, http.StatusOK, public.Code)
	assert.Contains(t, public.Body.String(), "Milk and coffee.")
}

func TestArticle_CreateValidationErrors(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()

	w := f.post("/admin/articles", url.Values{
		"title":   {"  "},
		"summary": {strings.Repeat("s", 501)},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "title is required")
	assert.Contains(t, body, "summary must be at most 500 characters")
	assert.Contains(t, body, "content is required")

	count, _ := f.articles.Count(context.Background())
	assert.Equal(t, 0, count)
}

func TestArticle_CreateDuplicateTitleGetsSuffix(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()
	f.articles.Seed(models.Article{Title: "Duplicate", Slug: "duplicate", Content: "x"})

	assertRedirect(t, f.post("/admin/articles", url.Values{"title": {"Duplicate"}, "content": {"y"}}), "/admin/articles")

	article, err := f.articles.GetBySlug(context.Background(), "duplicate-1")
	require.NoError(t, err)
	require.NotNil(t, article)
	assert.Equal(t, "y", article.Content)
}

func TestArticle_EditPrefillsForm(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()
	article := f.articles.Seed(models.Article{Title: "Existing", Slug: "existing-slug", Summary: "Short", Content: "Body"})

	w := f.get("/admin/articles/" + itoa(article.ID) + "/edit")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `value="Existing"`)
	assert.Contains(t, body, `value="existing-slug"`)
	assert.Contains(t, body, "Short")
}

func TestArticle_EditMissingRedirectsWithFlash(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()

	for _, path := range []string{"/admin/articles/999/edit", "/admin/articles/abc/edit"} {
		assertRedirect(t, f.get(path), "/admin/articles")
		assert.Contains(t, f.get("/admin/articles").Body.String(), "Article not found.")
	}
}

func TestArticle_UpdateFlow(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()
	article := f.articles.Seed(models.Article{Title: "Old", Slug: "old", Content: "x"})

	w := f.post("/admin/articles/"+itoa(article.ID), url.Values{
		"title":   {"New Title"},
		"slug":    {"old"},
		"content": {"updated"},
	})
	assertRedirect(t, w, "/admin/articles")

	stored, _ := f.articles.GetByID(context.Background(), article.ID)
	assert.Equal(t, "New Title", stored.Title)
	assert.Equal(t, "old", stored.Slug)
	assert.Equal(t, "updated", stored.Content)
}

func TestArticle_UpdateMissingRedirectsWithFlash(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()

	w := f.post("/admin/articles/404", url.Values{"title": {"T"}, "content": {"C"}})
	assertRedirect(t, w, "/admin/articles")
	assert.Contains(t, f.get("/admin/articles").Body.String(), "article not found: 404")
}

func TestArticle_Delete(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()
	article := f.articles.Seed(models.Article{Title: "Doomed", Slug: "doomed", Content: "x"})

	assertRedirect(t, f.post("/admin/articles/"+itoa(article.ID)+"/delete", nil), "/admin/articles")
	assert.Contains(t, f.get("/admin/articles").Body.String(), "Article deleted.")

	gone, _ := f.articles.GetByID(context.Background(), article.ID)
	assert.Nil(t, gone)
}

func TestArticle_DeleteFailureShowsGenericMessage(t *testing.T) {
	mock := &mocks.MockArticleService{
		DeleteFunc: func(ctx context.Context, id int64) error { return errors.New("connection refused") },
	}
	f := newFixture(t, func(s *service.Services) { s.Article = mock })
	f.loginAdmin()

	assertRedirect(t, f.post("/admin/articles/5/delete", nil), "/admin/articles")
	body := f.get("/admin/articles").Body.String()
	assert.Contains(t, body, "The article could not be deleted.")
	assert.NotContains(t, body, "connection refused")
	assert.Equal(t, []int64{5}, mock.DeleteCalls)
}

func TestAccount_NewFormDefaultsToEditor(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()

	w := f.get("/admin/accounts/new")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `<option value="EDITOR" selected>`)
}

func TestAccount_CreateFlow(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()

	w := f.post("/admin/accounts", url.Values{"username": {"writer"}, "password": {"pw"}, "role": {"EDITOR"}})
	assertRedirect(t, w, "/admin/accounts")

	list := f.get("/admin/accounts")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "writer")
	assert.Contains(t, list.Body.String(), "created.")

	created, _ := f.accounts.GetByUsername(context.Background(), "writer")
	require.NotNil(t, created)
	assert.Equal(t, models.RoleEditor, created.Role)
}

func TestAccount_CreateDuplicateShowsInlineError(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()

	w := f.post("/admin/accounts", url.Values{"username": {"admin"}, "password": {"pw"}, "role": {"EDITOR"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "username already exists")
	assert.Equal(t, 0, f.accounts.CreateCalls)
}

func TestAccount_CreateValidationErrors(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()

	w := f.post("/admin/accounts", url.Values{"username": {""}, "password": {"pw"}, "role": {""}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "username is required")
	assert.Contains(t, w.Body.String(), "role is required")
}

func TestAccount_EditNeverShowsPassword(t *testing.T) {
	f := newFixture(t)
	admin := f.loginAdmin()

	w := f.get("/admin/accounts/" + itoa(admin.ID) + "/edit")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `value="admin"`)
	assert.Contains(t, body, `<option value="ADMIN" selected>`)
	assert.NotContains(t, body, admin.PasswordHash)
	assert.NotContains(t, body, "admin-pw")
}

func TestAccount_UpdateBlankPasswordKeepsHash(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()
	editor := f.seedAccount("editor", "editor-pw", models.RoleEditor)

	w := f.post("/admin/accounts/"+itoa(editor.ID), url.Values{"username": {"editor2"}, "password": {""}, "role": {"EDITOR"}})
	assertRedirect(t, w, "/admin/accounts")

	stored, _ := f.accounts.GetByID(context.Background(), editor.ID)
	assert.Equal(t, "editor2", stored.Username)
	assert.Equal(t, editor.PasswordHash, stored.PasswordHash)
}

func TestAccount_DeleteLastAdminShowsError(t *testing.T) {
	f := newFixture(t)
	admin := f.loginAdmin()

	assertRedirect(t, f.post("/admin/accounts/"+itoa(admin.ID)+"/delete", nil), "/admin/accounts")
	assert.Contains(t, f.get("/admin/accounts").Body.String(), "the last administrator account cannot be deleted")

	still, _ := f.accounts.GetByID(context.Background(), admin.ID)
	assert.NotNil(t, still)
}

func TestAccount_DemoteLastAdminShowsInlineError(t *testing.T) {
	f := newFixture(t)
	admin := f.loginAdmin()

	w := f.post("/admin/accounts/"+itoa(admin.ID), url.Values{"username": {"admin"}, "password": {""}, "role": {"EDITOR"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "the last administrator account must keep the ADMIN role")

	stored, _ := f.accounts.GetByID(context.Background(), admin.ID)
	assert.Equal(t, models.RoleAdmin, stored.Role)

	// still allowed into the admin-only pages
	assert.Equal(t, http.StatusOK, f.get("/admin/accounts").Code)
}

func unexpectedAccountService(admin *models.Account) *mocks.MockAccountService {
	return &mocks.MockAccountService{
		AuthenticateFunc: func(ctx context.Context, username, password string) (*models.Account, error) {
			return admin, nil
		},
		FindByIDFunc: func(ctx context.Context, id int64) (*models.Account, error) {
			if id == admin.ID {
				return admin, nil
			}
			return nil, errors.New("connection reset by peer")
		},
		UpdateFunc: func(ctx context.Context, id int64, form *models.AccountForm) (*models.Account, error) {
			return nil, errors.New("connection reset by peer")
		},
		DeleteFunc: func(ctx context.Context, id int64) error {
			return errors.New("connection reset by peer")
		},
	}
}

func TestAccount_DeleteFailureShowsGenericMessage(t *testing.T) {
	admin := &models.Account{ID: 1, Username: "admin", Role: models.RoleAdmin}
	mock := unexpectedAccountService(admin)
	f := newFixture(t, func(s *service.Services) { s.Account = mock })
	f.login("admin", "admin-pw")

	assertRedirect(t, f.post("/admin/accounts/7/delete", nil), "/admin/accounts")
	body := f.get("/admin/accounts").Body.String()
	assert.Contains(t, body, "The account could not be deleted.")
	assert.NotContains(t, body, "connection reset")
	assert.Equal(t, []int64{7}, mock.DeleteCalls)
}

func TestAccount_UpdateFailureRendersServerError(t *testing.T) {
	admin := &models.Account{ID: 1, Username: "admin", Role: models.RoleAdmin}
	f := newFixture(t, func(s *service.Services) { s.Account = unexpectedAccountService(admin) })
	f.login("admin", "admin-pw")

	w := f.post("/admin/accounts/7", url.Values{"username": {"someone"}, "password": {""}, "role": {"EDITOR"}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "The account could not be saved.")
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestAccount_DeleteEditor(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()
	editor := f.seedAccount("editor", "editor-pw", models.RoleEditor)

	assertRedirect(t, f.post("/admin/accounts/"+itoa(editor.ID)+"/delete", nil), "/admin/accounts")
	assert.Contains(t, f.get("/admin/accounts").Body.String(), "Account deleted.")
}

func TestAccount_EditMissingRedirectsWithFlash(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin()

	assertRedirect(t, f.get("/admin/accounts/999/edit"), "/admin/accounts")
	assert.Contains(t, f.get("/admin/accounts").Body.String(), "Account not found.")
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.get("/nowhere").Code)
}
