package article

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"blog-console/internal/client/api"
	"blog-console/internal/domain/models"
	"blog-console/internal/http-server/view"
	req "blog-console/internal/lib/api/request"
	resp "blog-console/internal/lib/api/response"
	"blog-console/internal/lib/inflight"
	"blog-console/internal/lib/logger/sl"
	articleservice "blog-console/internal/service/article"
	"blog-console/internal/session"
)

// ListView names the public listing in the in-flight registry.
const ListView = "articles"

type Service interface {
	List(ctx context.Context, q models.ArticleQuery) (*models.ArticlePage, error)
	Get(ctx context.Context, id string) (*models.Article, error)
	Related(ctx context.Context, art *models.Article) []models.Article
}

type Categories interface {
	Options(ctx context.Context) ([]models.Category, error)
}

type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name string, p view.Page)
}

type Article struct {
	log        *slog.Logger
	service    Service
	categories Categories
	inflight   *inflight.Registry
	views      Renderer
}

func New(log *slog.Logger, service Service, categories Categories, registry *inflight.Registry, views Renderer) *Article {
	return &Article{
		log:        log,
		service:    service,
		categories: categories,
		inflight:   registry,
		views:      views,
	}
}

func (a *Article) Register() func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/", a.getAllArticles)
		r.Get("/{id}", a.getArticleByID)
	}
}

func (a *Article) getAllArticles(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.article.getAllArticles"

	log := a.log.With(slog.String("op", op))

	query := r.URL.Query()
	q := models.ArticleQuery{
		Page:     req.Page(r),
		Limit:    articleservice.PageSize,
		Category: query.Get("category"),
		Search:   query.Get("search"),
	}

	s, _ := session.FromContext(r.Context())

	page, err := inflight.Do(r.Context(), a.inflight, inflight.Key(s.ID, ListView),
		func(ctx context.Context) (*models.ArticlePage, error) {
			return a.service.List(ctx, q)
		})
	if inflight.Discarded(err) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data := view.ArticleList{Search: q.Search, Category: q.Category}
	p := view.NewPage(r, "Articles")

	if err != nil {
		msg := api.Message(err, "Failed to load articles.")
		if view.WantsJSON(r) {
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, resp.Err(msg))
			return
		}

		p.Error = msg
		data.Pager = view.NewPager("/articles", query, q.Page, 1)
		p.Data = data
		a.views.Render(w, r, http.StatusBadGateway, "articles", p)
		return
	}

	if view.WantsJSON(r) {
		render.JSON(w, r, resp.OK(page.Data, q.Page, page.TotalPages()))
		return
	}

	cats, err := a.categories.Options(r.Context())
	if err != nil {
		log.Warn("category filter unavailable", sl.Error(err))
	}

	data.Articles = page.Data
	data.Categories = cats
	data.Pager = view.NewPager("/articles", query, q.Page, page.TotalPages())
	p.Data = data

	a.views.Render(w, r, http.StatusOK, "articles", p)
}

func (a *Article) getArticleByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	art, err := a.service.Get(r.Context(), id)
	if err != nil {
		if api.IsCanceled(err) {
			return
		}

		if errors.Is(err, articleservice.ErrArticleNotFound) || api.StatusOf(err) == http.StatusNotFound {
			a.views.Render(w, r, http.StatusNotFound, "error", view.NewPage(r, "Article not found"))
			return
		}

		p := view.NewPage(r, "Failed to load article")
		p.Error = api.Message(err, "Failed to load article.")
		a.views.Render(w, r, http.StatusBadGateway, "error", p)
		return
	}

	p := view.NewPage(r, art.Title)
	p.Data = view.ArticleDetail{
		Article: *art,
		Related: a.service.Related(r.Context(), art),
	}

	a.views.Render(w, r, http.StatusOK, "article", p)
}
