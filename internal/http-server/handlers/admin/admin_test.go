package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-console/internal/client/api"
	"blog-console/internal/domain/models"
	"blog-console/internal/http-server/middleware/gate"
	"blog-console/internal/http-server/view"
	req "blog-console/internal/lib/api/request"
	"blog-console/internal/lib/inflight"
	"blog-console/internal/lib/logger/handlers/slogdiscard"
	"blog-console/internal/lib/validate"
	articleservice "blog-console/internal/service/article"
	"blog-console/internal/session"
)

type stubArticles struct {
	listFn     func(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error)
	editFormFn func(ctx context.Context, id string) (*models.Article, []models.Category, error)
	createFn   func(ctx context.Context, form req.Article, img *articleservice.Image) error
	updateFn   func(ctx context.Context, id string, form req.Article, img *articleservice.Image) error
	removeFn   func(ctx context.Context, id string) error
}

func (s *stubArticles) List(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error) {
	return s.listFn(ctx, q)
}

func (s *stubArticles) EditForm(ctx context.Context, id string) (*models.Article, []models.Category, error) {
	return s.editFormFn(ctx, id)
}

func (s *stubArticles) Create(ctx context.Context, form req.Article, img *articleservice.Image) error {
	return s.createFn(ctx, form, img)
}

func (s *stubArticles) Update(ctx context.Context, id string, form req.Article, img *articleservice.Image) error {
	return s.updateFn(ctx, id, form, img)
}

func (s *stubArticles) Remove(ctx context.Context, id string) error {
	return s.removeFn(ctx, id)
}

type stubCategories struct {
	listFn   func(ctx context.Context, q models.CategoryQuery) (*models.CategoryPage, error)
	createFn func(ctx context.Context, form req.Category) error
	updateFn func(ctx context.Context, id string, form req.Category) error
	removeFn func(ctx context.Context, id string) error
}

func (s *stubCategories) List(ctx context.Context, q models.CategoryQuery) (*models.CategoryPage, error) {
	return s.listFn(ctx, q)
}

func (s *stubCategories) Options(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "c1", Name: "Tech"}}, nil
}

func (s *stubCategories) Create(ctx context.Context, form req.Category) error {
	return s.createFn(ctx, form)
}

func (s *stubCategories) Update(ctx context.Context, id string, form req.Category) error {
	return s.updateFn(ctx, id, form)
}

func (s *stubCategories) Remove(ctx context.Context, id string) error {
	return s.removeFn(ctx, id)
}

type stubSessions struct {
	destroyed []session.Session
}

func (s *stubSessions) Destroy(_ context.Context, _ http.ResponseWriter, sess session.Session) error {
	s.destroyed = append(s.destroyed, sess)
	return nil
}

var admin = models.Credential{Token: "t1", Role: models.RoleAdmin, Username: "root"}

// newRouter mounts the admin area behind the role gate as main does.
func newRouter(arts ArticleService, cats CategoryService, sessions Sessions) http.Handler {
	log := slogdiscard.NewDiscardLogger()
	views := view.MustNew()
	registry := inflight.NewRegistry()

	r := chi.NewRouter()
	r.Route("/admin", func(r chi.Router) {
		r.Use(gate.New(log, views, 0).Require(models.RoleAdmin))
		r.Route("/articles", NewArticles(log, arts, cats, registry, views).Register())
		r.Route("/categories", NewCategories(log, cats, sessions, registry, views).Register())
	})

	return r
}

func serve(h http.Handler, r *http.Request, cred models.Credential) *httptest.ResponseRecorder {
	r = r.WithContext(session.NewContext(r.Context(), session.Session{ID: "sid", Credential: cred}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func formRequest(path string, form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestGate_NoAdminCallForUsers(t *testing.T) {
	h := newRouter(&stubArticles{
		listFn: func(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error) {
			t.Fatal("admin listing must not be fetched")
			return nil, nil
		},
	}, &stubCategories{}, &stubSessions{})

	w := serve(h, httptest.NewRequest(http.MethodGet, "/admin/articles", nil), models.Credential{Token: "t1", Role: models.RoleUser})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "1; url=/login?error=Unauthorized", w.Header().Get("Refresh"))
}

func TestArticles_List(t *testing.T) {
	var got models.ArticleQuery
	h := newRouter(&stubArticles{
		listFn: func(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error) {
			got = q
			return &models.ArticlePage{Data: []models.Article{{ID: "a1", Title: "Draft"}}, Total: 1, Limit: 10}, nil
		},
	}, &stubCategories{}, &stubSessions{})

	w := serve(h, httptest.NewRequest(http.MethodGet, "/admin/articles?category=c1&search=dr&success=delete", nil), admin)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ArticleQuery{Page: 1, Limit: articleservice.PageSize, Category: "c1", Search: "dr"}, got)
	assert.Contains(t, w.Body.String(), "Draft")
	assert.Contains(t, w.Body.String(), "Deleted successfully.")
}

func TestArticles_ListJSONError(t *testing.T) {
	h := newRouter(&stubArticles{
		listFn: func(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error) {
			return nil, &api.Error{Status: http.StatusInternalServerError, Message: "boom"}
		},
	}, &stubCategories{}, &stubSessions{})

	r := httptest.NewRequest(http.MethodGet, "/admin/articles", nil)
	r.Header.Set("Accept", "application/json")
	w := serve(h, r, admin)

	assert.Equal(t, http.StatusBadGateway, w.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, "boom", body["error"])
}

func TestArticles_CreateWithImage(t *testing.T) {
	var (
		gotForm req.Article
		gotName string
		gotBody string
	)
	h := newRouter(&stubArticles{
		createFn: func(ctx context.Context, form req.Article, img *articleservice.Image) error {
			gotForm = form
			require.NotNil(t, img)
			gotName = img.Filename
			data, _ := io.ReadAll(img.Body)
			gotBody = string(data)
			return nil
		},
	}, &stubCategories{}, &stubSessions{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("title", "Hello"))
	require.NoError(t, mw.WriteField("content", "World"))
	require.NoError(t, mw.WriteField("categoryId", "c1"))
	fw, err := mw.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/admin/articles/create", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := serve(h, r, admin)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/articles?success=create", w.Header().Get("Location"))
	assert.Equal(t, req.Article{Title: "Hello", Content: "World", CategoryID: "c1"}, gotForm)
	assert.Equal(t, "cover.png", gotName)
	assert.Equal(t, "png-bytes", gotBody)
}

func TestArticles_CreateValidationError(t *testing.T) {
	h := newRouter(&stubArticles{
		createFn: func(ctx context.Context, form req.Article, img *articleservice.Image) error {
			assert.Nil(t, img)
			return validate.FieldErrors{"title": "is required"}
		},
	}, &stubCategories{}, &stubSessions{})

	w := serve(h, formRequest("/admin/articles/create", url.Values{"content": {"World"}}), admin)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Title is required")
	assert.Contains(t, w.Body.String(), "World")
	assert.Contains(t, w.Body.String(), "Tech")
}

func TestArticles_EditPage(t *testing.T) {
	h := newRouter(&stubArticles{
		editFormFn: func(ctx context.Context, id string) (*models.Article, []models.Category, error) {
			return &models.Article{ID: id, Title: "Old title", Category: &models.Category{ID: "c2"}},
				[]models.Category{{ID: "c1", Name: "Tech"}, {ID: "c2", Name: "Life"}}, nil
		},
	}, &stubCategories{}, &stubSessions{})

	w := serve(h, httptest.NewRequest(http.MethodGet, "/admin/articles/a1", nil), admin)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Old title")
	assert.Contains(t, body, `<option value="c2" selected>Life</option>`)
	assert.Contains(t, body, `action="/admin/articles/a1"`)
}

func TestArticles_Update(t *testing.T) {
	var gotID string
	h := newRouter(&stubArticles{
		updateFn: func(ctx context.Context, id string, form req.Article, img *articleservice.Image) error {
			gotID = id
			assert.Equal(t, "https://cdn/old.png", form.ImageURL)
			return nil
		},
	}, &stubCategories{}, &stubSessions{})

	w := serve(h, formRequest("/admin/articles/a1", url.Values{
		"title": {"T"}, "content": {"C"}, "categoryId": {"c1"}, "imageUrl": {"https://cdn/old.png"},
	}), admin)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/articles?success=update", w.Header().Get("Location"))
	assert.Equal(t, "a1", gotID)
}

func TestArticles_RemoveError(t *testing.T) {
	h := newRouter(&stubArticles{
		listFn: func(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error) {
			return &models.ArticlePage{}, nil
		},
		removeFn: func(ctx context.Context, id string) error {
			return &api.Error{Status: http.StatusForbidden, Message: "Not your article"}
		},
	}, &stubCategories{}, &stubSessions{})

	w := serve(h, formRequest("/admin/articles/a1/delete", url.Values{}), admin)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/articles", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	next := httptest.NewRequest(http.MethodGet, "/admin/articles", nil)
	next.AddCookie(cookies[0])
	page := serve(h, next, admin)

	assert.Contains(t, page.Body.String(), "Not your article")

	cleared := page.Result().Cookies()
	require.Len(t, cleared, 1)
	assert.Less(t, cleared[0].MaxAge, 0)
}

func TestCategories_List(t *testing.T) {
	h := newRouter(&stubArticles{}, &stubCategories{
		listFn: func(ctx context.Context, q models.CategoryQuery) (*models.CategoryPage, error) {
			assert.Equal(t, "te", q.Search)
			assert.Equal(t, 2, q.Page)
			return &models.CategoryPage{Data: []models.Category{{ID: "c1", Name: "Tech"}}, TotalPages: 3}, nil
		},
	}, &stubSessions{})

	w := serve(h, httptest.NewRequest(http.MethodGet, "/admin/categories?search=te&page=2", nil), admin)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Tech")
	assert.Contains(t, w.Body.String(), "Page 2 of 3")
}

func TestCategories_Create(t *testing.T) {
	var got req.Category
	h := newRouter(&stubArticles{}, &stubCategories{
		createFn: func(ctx context.Context, form req.Category) error {
			got = form
			return nil
		},
	}, &stubSessions{})

	w := serve(h, formRequest("/admin/categories/create", url.Values{"name": {"Science"}}), admin)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/categories?success=create", w.Header().Get("Location"))
	assert.Equal(t, req.Category{Name: "Science"}, got)
}

func TestCategories_EditPagePrefilled(t *testing.T) {
	h := newRouter(&stubArticles{}, &stubCategories{}, &stubSessions{})

	w := serve(h, httptest.NewRequest(http.MethodGet, "/admin/categories/c1/edit?name=Tech", nil), admin)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `value="Tech"`)
	assert.Contains(t, w.Body.String(), `action="/admin/categories/c1/edit"`)
}

func TestCategories_UpdateValidation(t *testing.T) {
	h := newRouter(&stubArticles{}, &stubCategories{
		updateFn: func(ctx context.Context, id string, form req.Category) error {
			return validate.FieldErrors{"name": "must be at least 3 characters"}
		},
	}, &stubSessions{})

	w := serve(h, formRequest("/admin/categories/c1/edit", url.Values{"name": {"ab"}}), admin)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Name must be at least 3 characters")
}

func TestCategories_RemoveUnauthorizedDropsSession(t *testing.T) {
	sessions := &stubSessions{}
	h := newRouter(&stubArticles{}, &stubCategories{
		removeFn: func(ctx context.Context, id string) error {
			return &api.Error{Status: http.StatusUnauthorized, Message: "Unauthorized"}
		},
	}, sessions)

	w := serve(h, formRequest("/admin/categories/c1/delete", url.Values{}), admin)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	require.Len(t, sessions.destroyed, 1)
	assert.Equal(t, "sid", sessions.destroyed[0].ID)
}

func TestCategories_Remove(t *testing.T) {
	sessions := &stubSessions{}
	h := newRouter(&stubArticles{}, &stubCategories{
		removeFn: func(ctx context.Context, id string) error {
			return nil
		},
	}, sessions)

	w := serve(h, formRequest("/admin/categories/c1/delete", url.Values{}), admin)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/categories?success=delete", w.Header().Get("Location"))
	assert.Empty(t, sessions.destroyed)
}
