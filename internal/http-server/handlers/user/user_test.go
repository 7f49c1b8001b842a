package user

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-console/internal/client/api"
	"blog-console/internal/domain/models"
	"blog-console/internal/http-server/view"
	"blog-console/internal/lib/logger/handlers/slogdiscard"
	"blog-console/internal/lib/validate"
	"blog-console/internal/service/auth"
	"blog-console/internal/session"
	"blog-console/internal/storage/sqlite"
)

type backend struct {
	logins    []api.LoginRequest
	registers []api.RegisterRequest
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/login":
		var req api.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.logins = append(b.logins, req)

		if req.Password != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message":"Invalid credentials"}`)
			return
		}
		_, _ = io.WriteString(w, `{"token":"t1","role":"User"}`)
	case "/api/auth/register":
		var req api.RegisterRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.registers = append(b.registers, req)

		if req.Username == "taken" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"message":"Username already exists"}`)
			return
		}
		w.WriteHeader(http.StatusCreated)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// newRouter wires the user handlers the way main does, plus a probe route
// that echoes the request's session credential.
func newRouter(t *testing.T) (http.Handler, *backend) {
	t.Helper()

	b := &backend{}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	log := slogdiscard.NewDiscardLogger()

	client, err := api.New(srv.URL+"/api", api.WithTokenSource(api.TokenFunc(session.Token)))
	require.NoError(t, err)

	repo, err := sqlite.New(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	sessions := session.New(log, repo, "test-secret", time.Hour)

	r := chi.NewRouter()
	r.Use(sessions.Load)
	r.Group(New(log, auth.New(log, client, validate.New()), sessions, view.MustNew()).Register())
	r.Get("/probe", func(w http.ResponseWriter, r *http.Request) {
		s, _ := session.FromContext(r.Context())
		_ = json.NewEncoder(w).Encode(s.Credential)
	})

	return r, b
}

func postForm(h http.Handler, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	return w
}

func get(h http.Handler, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)

	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	// An anonymous cookie may precede the one set on login; the last wins.
	var last *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			last = c
		}
	}
	require.NotNil(t, last, "no session cookie set")

	return last
}

func TestLogin_Scenario(t *testing.T) {
	h, b := newRouter(t)

	w := postForm(h, "/login", url.Values{"username": {"alice"}, "password": {"secret1"}})

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/articles?success=login", w.Header().Get("Location"))
	require.Len(t, b.logins, 1)
	assert.Equal(t, api.LoginRequest{Username: "alice", Password: "secret1"}, b.logins[0])

	probe := get(h, "/probe", sessionCookie(t, w))

	var cred models.Credential
	require.NoError(t, json.NewDecoder(probe.Body).Decode(&cred))
	assert.Equal(t, models.Credential{Token: "t1", Role: "User", Username: "alice"}, cred)
}

func TestLogin_InvalidForm(t *testing.T) {
	h, b := newRouter(t)

	w := postForm(h, "/login", url.Values{"username": {"alice"}, "password": {"123"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Password must be at least 6 characters")
	assert.Empty(t, b.logins)
}

func TestLogin_BackendMessageShown(t *testing.T) {
	h, _ := newRouter(t)

	w := postForm(h, "/login", url.Values{"username": {"alice"}, "password": {"wrong-pass"}})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestLoginPage_AuthenticatedRedirects(t *testing.T) {
	h, _ := newRouter(t)

	login := postForm(h, "/login", url.Values{"username": {"alice"}, "password": {"secret1"}})
	w := get(h, "/login", sessionCookie(t, login))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/articles?success=login", w.Header().Get("Location"))
}

func TestRegister(t *testing.T) {
	h, b := newRouter(t)

	w := postForm(h, "/register", url.Values{
		"username":  {"bob"},
		"email":     {"bob@example.com"},
		"password":  {"Secret1"},
		"adminCode": {""},
	})

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login?email=bob%40example.com&registered=true", w.Header().Get("Location"))
	require.Len(t, b.registers, 1)
	assert.Equal(t, models.RoleUser, b.registers[0].Role)
}

func TestRegister_AsAdmin(t *testing.T) {
	h, b := newRouter(t)

	w := postForm(h, "/register", url.Values{
		"username":  {"root"},
		"email":     {"root@example.com"},
		"password":  {"Secret1"},
		"isAdmin":   {"true"},
		"adminCode": {"c0de"},
	})

	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Len(t, b.registers, 1)
	assert.Equal(t, models.RoleAdmin, b.registers[0].Role)
	assert.Equal(t, "c0de", b.registers[0].AdminCode)
}

func TestRegister_BackendError(t *testing.T) {
	h, _ := newRouter(t)

	w := postForm(h, "/register", url.Values{
		"username": {"taken"},
		"email":    {"t@example.com"},
		"password": {"Secret1"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Username already exists")
}

func TestLogout(t *testing.T) {
	h, _ := newRouter(t)

	login := postForm(h, "/login", url.Values{"username": {"alice"}, "password": {"secret1"}})
	cookie := sessionCookie(t, login)

	w := postForm(h, "/logout", url.Values{}, cookie)
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// The old cookie no longer names a credential.
	probe := get(h, "/probe", cookie)

	var cred models.Credential
	require.NoError(t, json.NewDecoder(probe.Body).Decode(&cred))
	assert.False(t, cred.Authenticated())
}
