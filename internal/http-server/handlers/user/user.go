package user

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"blog-console/internal/domain/models"
	"blog-console/internal/http-server/view"
	req "blog-console/internal/lib/api/request"
	"blog-console/internal/lib/logger/sl"
	"blog-console/internal/service/auth"
	"blog-console/internal/session"
)

type Service interface {
	Login(ctx context.Context, form req.Login) (models.Credential, error)
	Register(ctx context.Context, form req.Register) error
}

type Sessions interface {
	Start(ctx context.Context, w http.ResponseWriter, cred models.Credential) (session.Session, error)
	Destroy(ctx context.Context, w http.ResponseWriter, s session.Session) error
}

type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name string, p view.Page)
}

type User struct {
	log      *slog.Logger
	service  Service
	sessions Sessions
	views    Renderer
}

func New(log *slog.Logger, service Service, sessions Sessions, views Renderer) *User {
	return &User{
		log:      log,
		service:  service,
		sessions: sessions,
		views:    views,
	}
}

func (u *User) Register() func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/login", u.loginPage)
		r.Post("/login", u.login)
		r.Get("/register", u.registerPage)
		r.Post("/register", u.register)
		r.Post("/logout", u.logout)
	}
}

func (u *User) loginPage(w http.ResponseWriter, r *http.Request) {
	s, _ := session.FromContext(r.Context())
	if s.Credential.Authenticated() {
		http.Redirect(w, r, auth.LandingPath(s.Credential.Role), http.StatusFound)
		return
	}

	p := view.NewPage(r, "Login")
	p.Data = view.AuthForm{}

	u.views.Render(w, r, http.StatusOK, "login", p)
}

func (u *User) login(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.login"

	log := u.log.With(slog.String("op", op))

	var form req.Login
	if err := render.DecodeForm(r.Body, &form); err != nil {
		log.Error("failed to decode request", sl.Error(err))
		p := view.NewPage(r, "Login")
		p.Error = "invalid request"
		p.Data = view.AuthForm{}
		u.views.Render(w, r, http.StatusBadRequest, "login", p)
		return
	}

	// Send to service layer
	cred, err := u.service.Login(r.Context(), form)
	if err != nil {
		p := view.NewPage(r, "Login").WithError(err, "Login failed. Please try again.")
		p.Data = view.AuthForm{Username: form.Username}
		u.views.Render(w, r, view.ErrorStatus(err), "login", p)
		return
	}

	if _, err := u.sessions.Start(r.Context(), w, cred); err != nil {
		log.Error("failed to start session", sl.Error(err))
		p := view.NewPage(r, "Login")
		p.Error = "internal error"
		p.Data = view.AuthForm{Username: form.Username}
		u.views.Render(w, r, http.StatusInternalServerError, "login", p)
		return
	}

	log.Info("user logged in", slog.String("username", cred.Username), slog.String("role", cred.Role))

	http.Redirect(w, r, auth.LandingPath(cred.Role), http.StatusSeeOther)
}

func (u *User) registerPage(w http.ResponseWriter, r *http.Request) {
	p := view.NewPage(r, "Register")
	p.Data = view.AuthForm{}

	u.views.Render(w, r, http.StatusOK, "register", p)
}

func (u *User) register(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.register"

	log := u.log.With(slog.String("op", op))

	var form req.Register
	if err := render.DecodeForm(r.Body, &form); err != nil {
		log.Error("failed to decode request", sl.Error(err))
		p := view.NewPage(r, "Register")
		p.Error = "invalid request"
		p.Data = view.AuthForm{}
		u.views.Render(w, r, http.StatusBadRequest, "register", p)
		return
	}

	// Send to service layer
	if err := u.service.Register(r.Context(), form); err != nil {
		p := view.NewPage(r, "Register").WithError(err, "Registration failed. Please try again.")
		p.Data = view.AuthForm{Username: form.Username, Email: form.Email, IsAdmin: form.IsAdmin}
		u.views.Render(w, r, view.ErrorStatus(err), "register", p)
		return
	}

	q := url.Values{}
	q.Set("registered", "true")
	q.Set("email", form.Email)

	http.Redirect(w, r, "/login?"+q.Encode(), http.StatusSeeOther)
}

func (u *User) logout(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.logout"

	log := u.log.With(slog.String("op", op))

	s, _ := session.FromContext(r.Context())
	if err := u.sessions.Destroy(r.Context(), w, s); err != nil {
		// The cookie is gone either way.
		log.Error("failed to destroy session", sl.Error(err))
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
