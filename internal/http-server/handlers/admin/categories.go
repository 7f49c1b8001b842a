package admin

import (
	"context"
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
	categoryservice "blog-console/internal/service/category"
	"blog-console/internal/session"
)

const categoriesPath = "/admin/categories"

type Categories struct {
	log      *slog.Logger
	service  CategoryService
	sessions Sessions
	inflight *inflight.Registry
	views    Renderer
}

func NewCategories(log *slog.Logger, service CategoryService, sessions Sessions, registry *inflight.Registry, views Renderer) *Categories {
	return &Categories{
		log:      log,
		service:  service,
		sessions: sessions,
		inflight: registry,
		views:    views,
	}
}

func (c *Categories) Register() func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/", c.list)
		r.Get("/create", c.createPage)
		r.Post("/create", c.create)
		r.Get("/{id}/edit", c.editPage)
		r.Post("/{id}/edit", c.update)
		r.Post("/{id}/delete", c.remove)
	}
}

func (c *Categories) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	q := models.CategoryQuery{
		Search: query.Get("search"),
		Page:   req.Page(r),
		Limit:  categoryservice.PageSize,
	}

	s, _ := session.FromContext(r.Context())

	page, err := inflight.Do(r.Context(), c.inflight, inflight.Key(s.ID, CategoryListView),
		func(ctx context.Context) (*models.CategoryPage, error) {
			return c.service.List(ctx, q)
		})
	if inflight.Discarded(err) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data := view.CategoryList{Search: q.Search}
	p := view.NewPage(r, "Categories")

	if err != nil {
		msg := api.Message(err, "Failed to load categories.")
		if view.WantsJSON(r) {
			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, resp.Err(msg))
			return
		}

		p.Error = msg
		data.Pager = view.NewPager(categoriesPath, query, q.Page, 1)
		p.Data = data
		c.views.Render(w, r, http.StatusBadGateway, "admin_categories", p)
		return
	}

	if view.WantsJSON(r) {
		render.JSON(w, r, resp.OK(page.Data, q.Page, page.TotalPages))
		return
	}

	data.Categories = page.Data
	data.Pager = view.NewPager(categoriesPath, query, q.Page, page.TotalPages)
	p.Data = data

	c.views.Render(w, r, http.StatusOK, "admin_categories", p)
}

func (c *Categories) createPage(w http.ResponseWriter, r *http.Request) {
	p := view.NewPage(r, "Add category")
	p.Data = view.CategoryForm{Action: categoriesPath + "/create"}

	c.views.Render(w, r, http.StatusOK, "admin_category_form", p)
}

func (c *Categories) create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.Categories.create"

	log := c.log.With(slog.String("op", op))

	action := categoriesPath + "/create"

	var form req.Category
	if err := render.DecodeForm(r.Body, &form); err != nil {
		log.Error("failed to decode request", sl.Error(err))
		p := view.NewPage(r, "Add category")
		p.Error = "invalid request"
		p.Data = view.CategoryForm{Action: action}
		c.views.Render(w, r, http.StatusBadRequest, "admin_category_form", p)
		return
	}

	if err := c.service.Create(r.Context(), form); err != nil {
		p := view.NewPage(r, "Add category").WithError(err, "Failed to create category.")
		p.Data = view.CategoryForm{Action: action, Name: form.Name}
		c.views.Render(w, r, view.ErrorStatus(err), "admin_category_form", p)
		return
	}

	redirect(w, r, categoriesPath, "success", "create")
}

// editPage takes the current name from the query string; the backend has
// no endpoint for a single category.
func (c *Categories) editPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	p := view.NewPage(r, "Edit category")
	p.Data = view.CategoryForm{
		Action: categoriesPath + "/" + id + "/edit",
		Name:   r.URL.Query().Get("name"),
	}

	c.views.Render(w, r, http.StatusOK, "admin_category_form", p)
}

func (c *Categories) update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.Categories.update"

	log := c.log.With(slog.String("op", op))

	id := chi.URLParam(r, "id")
	action := categoriesPath + "/" + id + "/edit"

	var form req.Category
	if err := render.DecodeForm(r.Body, &form); err != nil {
		log.Error("failed to decode request", sl.Error(err))
		p := view.NewPage(r, "Edit category")
		p.Error = "invalid request"
		p.Data = view.CategoryForm{Action: action}
		c.views.Render(w, r, http.StatusBadRequest, "admin_category_form", p)
		return
	}

	if err := c.service.Update(r.Context(), id, form); err != nil {
		p := view.NewPage(r, "Edit category").WithError(err, "Failed to update category.")
		p.Data = view.CategoryForm{Action: action, Name: form.Name}
		c.views.Render(w, r, view.ErrorStatus(err), "admin_category_form", p)
		return
	}

	redirect(w, r, categoriesPath, "success", "update")
}

// remove deletes a category. A 401 from the backend means the session's
// token is no longer accepted: the session is dropped and the user sent
// to log in again.
func (c *Categories) remove(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.Categories.remove"

	log := c.log.With(slog.String("op", op))

	id := chi.URLParam(r, "id")

	err := c.service.Remove(r.Context(), id)
	switch {
	case err == nil:
		redirect(w, r, categoriesPath, "success", "delete")
	case api.StatusOf(err) == http.StatusUnauthorized:
		s, _ := session.FromContext(r.Context())
		if err := c.sessions.Destroy(r.Context(), w, s); err != nil {
			log.Error("failed to destroy session", sl.Error(err))
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	default:
		view.SetError(w, api.Message(err, "Failed to delete category."))
		http.Redirect(w, r, categoriesPath, http.StatusSeeOther)
	}
}
