package admin

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

const (
	articlesPath  = "/admin/articles"
	maxUploadSize = 10 << 20
)

type Articles struct {
	log        *slog.Logger
	service    ArticleService
	categories CategoryService
	inflight   *inflight.Registry
	views      Renderer
}

func NewArticles(log *slog.Logger, service ArticleService, categories CategoryService, registry *inflight.Registry, views Renderer) *Articles {
	return &Articles{
		log:        log,
		service:    service,
		categories: categories,
		inflight:   registry,
		views:      views,
	}
}

func (a *Articles) Register() func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/", a.list)
		r.Get("/create", a.createPage)
		r.Post("/create", a.create)
		r.Get("/{id}", a.editPage)
		r.Post("/{id}", a.update)
		r.Post("/{id}/delete", a.remove)
	}
}

func (a *Articles) list(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.Articles.list"

	log := a.log.With(slog.String("op", op))

	query := r.URL.Query()
	q := models.ArticleQuery{
		Page:     req.Page(r),
		Limit:    articleservice.PageSize,
		Category: query.Get("category"),
		Search:   query.Get("search"),
	}

	s, _ := session.FromContext(r.Context())

	page, err := inflight.Do(r.Context(), a.inflight, inflight.Key(s.ID, ArticleListView),
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
		data.Pager = view.NewPager(articlesPath, query, q.Page, 1)
		p.Data = data
		a.views.Render(w, r, http.StatusBadGateway, "admin_articles", p)
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
	data.Pager = view.NewPager(articlesPath, query, q.Page, page.TotalPages())
	p.Data = data

	a.views.Render(w, r, http.StatusOK, "admin_articles", p)
}

func (a *Articles) createPage(w http.ResponseWriter, r *http.Request) {
	a.renderForm(w, r, http.StatusOK, view.NewPage(r, "Create article"), view.ArticleForm{Action: articlesPath + "/create"})
}

func (a *Articles) create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.Articles.create"

	log := a.log.With(slog.String("op", op))

	form, img, closeImg, err := parseArticleForm(r)
	if err != nil {
		log.Error("failed to parse form", sl.Error(err))
		p := view.NewPage(r, "Create article")
		p.Error = "invalid request"
		a.renderForm(w, r, http.StatusBadRequest, p, view.ArticleForm{Action: articlesPath + "/create"})
		return
	}
	defer closeImg()

	if err := a.service.Create(r.Context(), form, img); err != nil {
		p := view.NewPage(r, "Create article").WithError(err, "Failed to create article.")
		a.renderForm(w, r, view.ErrorStatus(err), p, formData(articlesPath+"/create", form))
		return
	}

	redirect(w, r, articlesPath, "success", "create")
}

func (a *Articles) editPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	art, cats, err := a.service.EditForm(r.Context(), id)
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

	categoryID := art.CategoryID
	if categoryID == "" && art.Category != nil {
		categoryID = art.Category.ID
	}

	p := view.NewPage(r, "Edit article")
	p.Data = view.ArticleForm{
		Action:     articlesPath + "/" + id,
		Title:      art.Title,
		Content:    art.Content,
		CategoryID: categoryID,
		ImageURL:   art.ImageURL,
		Categories: cats,
	}

	a.views.Render(w, r, http.StatusOK, "admin_article_form", p)
}

func (a *Articles) update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.Articles.update"

	log := a.log.With(slog.String("op", op))

	id := chi.URLParam(r, "id")
	action := articlesPath + "/" + id

	form, img, closeImg, err := parseArticleForm(r)
	if err != nil {
		log.Error("failed to parse form", sl.Error(err))
		p := view.NewPage(r, "Edit article")
		p.Error = "invalid request"
		a.renderForm(w, r, http.StatusBadRequest, p, view.ArticleForm{Action: action})
		return
	}
	defer closeImg()

	if err := a.service.Update(r.Context(), id, form, img); err != nil {
		p := view.NewPage(r, "Edit article").WithError(err, "Failed to update article.")
		a.renderForm(w, r, view.ErrorStatus(err), p, formData(action, form))
		return
	}

	redirect(w, r, articlesPath, "success", "update")
}

func (a *Articles) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := a.service.Remove(r.Context(), id); err != nil {
		view.SetError(w, api.Message(err, "Failed to delete article."))
		http.Redirect(w, r, articlesPath, http.StatusSeeOther)
		return
	}

	redirect(w, r, articlesPath, "success", "delete")
}

// renderForm renders the article form with the category options filled in.
func (a *Articles) renderForm(w http.ResponseWriter, r *http.Request, status int, p view.Page, data view.ArticleForm) {
	const op = "handlers.admin.Articles.renderForm"

	cats, err := a.categories.Options(r.Context())
	if err != nil {
		a.log.Warn("category options unavailable", slog.String("op", op), sl.Error(err))
	}

	data.Categories = cats
	p.Data = data

	a.views.Render(w, r, status, "admin_article_form", p)
}

func formData(action string, form req.Article) view.ArticleForm {
	return view.ArticleForm{
		Action:     action,
		Title:      form.Title,
		Content:    form.Content,
		CategoryID: form.CategoryID,
		ImageURL:   form.ImageURL,
	}
}

// parseArticleForm reads the article form, multipart or not. The returned
// close func releases the uploaded image, if any.
func parseArticleForm(r *http.Request) (req.Article, *articleservice.Image, func(), error) {
	noop := func() {}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return req.Article{}, nil, noop, err
	}

	form := req.Article{
		Title:      r.FormValue("title"),
		Content:    r.FormValue("content"),
		CategoryID: r.FormValue("categoryId"),
		ImageURL:   r.FormValue("imageUrl"),
	}

	file, hdr, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return form, nil, noop, nil
	}
	if err != nil {
		return req.Article{}, nil, noop, err
	}

	if hdr.Size == 0 {
		_ = file.Close()
		return form, nil, noop, nil
	}

	img := &articleservice.Image{Filename: hdr.Filename, Body: file}

	return form, img, func() { _ = file.Close() }, nil
}
