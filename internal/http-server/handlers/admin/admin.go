// Package admin holds the handlers of the /admin area. They assume the role
// gate already let the request through.
package admin

import (
	"context"
	"net/http"
	"net/url"

	"blog-console/internal/domain/models"
	"blog-console/internal/http-server/view"
	req "blog-console/internal/lib/api/request"
	articleservice "blog-console/internal/service/article"
	"blog-console/internal/session"
)

const (
	ArticleListView  = "admin:articles"
	CategoryListView = "admin:categories"
)

type ArticleService interface {
	List(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error)
	EditForm(ctx context.Context, id string) (*models.Article, []models.Category, error)
	Create(ctx context.Context, form req.Article, img *articleservice.Image) error
	Update(ctx context.Context, id string, form req.Article, img *articleservice.Image) error
	Remove(ctx context.Context, id string) error
}

type CategoryService interface {
	List(ctx context.Context, q models.CategoryQuery) (*models.CategoryPage, error)
	Options(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, form req.Category) error
	Update(ctx context.Context, id string, form req.Category) error
	Remove(ctx context.Context, id string) error
}

type Sessions interface {
	Destroy(ctx context.Context, w http.ResponseWriter, s session.Session) error
}

type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name string, p view.Page)
}

// redirect sends the browser to path with a single flash parameter.
func redirect(w http.ResponseWriter, r *http.Request, path, key, value string) {
	q := url.Values{}
	q.Set(key, value)

	http.Redirect(w, r, path+"?"+q.Encode(), http.StatusSeeOther)
}
