// Package view renders the console pages.
//
// Every page is an html/template file under templates/ that fills the
// "title" and "content" blocks of layout.html.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/go-chi/render"

	"blog-console/internal/domain/models"
	"blog-console/internal/session"
)

//go:embed templates/*.html
var files embed.FS

const layout = "templates/layout.html"

// Page is what every template receives.
type Page struct {
	Title  string
	User   models.Credential
	Flash  string
	Error  string
	Fields map[string]string
	Data   any
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"date":    formatDate,
	"excerpt": excerpt,
}

func New() (*Renderer, error) {
	const op = "view.New"

	base, err := template.New(path.Base(layout)).Funcs(funcs).ParseFS(files, layout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		if name == layout {
			continue
		}

		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if _, err := t.ParseFS(files, name); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", op, name, err)
		}

		pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}

	return &Renderer{pages: pages}, nil
}

func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes the named page and writes it with the given status.
// Nothing is written if the template fails.
func (v *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, name string, p Page) {
	t, ok := v.pages[name]
	if !ok {
		http.Error(w, fmt.Sprintf("unknown page %q", name), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", p); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if _, err := r.Cookie(errorCookie); err == nil {
		clearError(w)
	}

	render.Status(r, status)
	render.HTML(w, r, buf.String())
}

// NewPage starts a page for the request: the session user and the pending
// flash messages are filled in.
func NewPage(r *http.Request, title string) Page {
	s, _ := session.FromContext(r.Context())

	return Page{
		Title: title,
		User:  s.Credential,
		Flash: Flash(r),
		Error: FlashError(r),
	}
}

// WantsJSON reports whether the client asked for JSON instead of a page.
func WantsJSON(r *http.Request) bool {
	return render.GetAcceptedContentType(r) == render.ContentTypeJSON
}

var flashes = map[string]string{
	"login":  "Logged in successfully.",
	"create": "Created successfully.",
	"update": "Updated successfully.",
	"delete": "Deleted successfully.",
}

// Flash returns the success message named by the query string, if any.
func Flash(r *http.Request) string {
	q := r.URL.Query()

	if q.Get("registered") == "true" {
		return "Registration successful. Please log in."
	}

	return flashes[q.Get("success")]
}

const errorCookie = "flash_error"

// errorFlashes are the messages a link may ask for with ?error=.
var errorFlashes = map[string]string{
	"Unauthorized": "Unauthorized",
}

// SetError carries msg to the next page rendered for this browser. The
// message rides in a cookie so that it cannot be put there by a link.
func SetError(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     errorCookie,
		Value:    url.QueryEscape(msg),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearError(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     errorCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// FlashError returns the pending error message: one set by SetError, or a
// known key from the query string.
func FlashError(r *http.Request) string {
	if c, err := r.Cookie(errorCookie); err == nil {
		if msg, err := url.QueryUnescape(c.Value); err == nil && msg != "" {
			return msg
		}
	}

	return errorFlashes[r.URL.Query().Get("error")]
}

func formatDate(t models.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}
