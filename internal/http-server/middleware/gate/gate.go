// Package gate keeps visitors without the required role out of a route
// group. It is a courtesy check for the console UI only: the backend
// authorizes every call on its own.
package gate

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"blog-console/internal/http-server/view"
	"blog-console/internal/session"
)

const (
	LoginPath  = "/login"
	DeniedPath = "/login?error=Unauthorized"

	DefaultDelay = time.Second
)

type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, name string, p view.Page)
}

type Gate struct {
	log   *slog.Logger
	views Renderer
	delay time.Duration
}

func New(log *slog.Logger, views Renderer, delay time.Duration) *Gate {
	if delay <= 0 {
		delay = DefaultDelay
	}

	return &Gate{
		log:   log,
		views: views,
		delay: delay,
	}
}

// Require lets a request through only when its session holds a token and
// the given role. Without a token the browser is sent to the login page;
// with another role it gets a denial page that redirects there after the
// gate's delay.
func (g *Gate) Require(role string) func(next http.Handler) http.Handler {
	const op = "middleware.gate.Require"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := g.log.With(
				slog.String("op", op),
				slog.String("path", r.URL.Path),
			)

			s, _ := session.FromContext(r.Context())
			cred := s.Credential

			if !cred.Authenticated() {
				log.Debug("no session token, redirecting to login")
				http.Redirect(w, r, LoginPath, http.StatusFound)
				return
			}

			if cred.Role != role {
				log.Info("access denied",
					slog.String("username", cred.Username),
					slog.String("role", cred.Role),
				)

				w.Header().Set("Refresh", fmt.Sprintf("%d; url=%s", seconds(g.delay), DeniedPath))

				p := view.NewPage(r, "Access denied")
				p.Data = DeniedPath
				g.views.Render(w, r, http.StatusForbidden, "denied", p)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// seconds rounds d up to whole seconds, the resolution of Refresh.
func seconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
