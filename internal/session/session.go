// Package session carries the console user's credential from login to
// logout.
//
// The browser holds only a signed cookie naming a session ID. The
// credential itself lives in a Repository, keyed by a hash of that ID.
// Every request gets a Session in its context: visitors without a cookie
// receive a fresh anonymous one so that per-view request tracking works for
// them too.
package session

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"blog-console/internal/domain/models"
	"blog-console/internal/lib/jwt"
	"blog-console/internal/lib/logger/sl"
	"blog-console/internal/storage"
)

// CookieName is the cookie jwtauth.TokenFromCookie looks for.
const CookieName = "jwt"

var ErrNoSession = errors.New("no session")

type Repository interface {
	SaveSession(ctx context.Context, id string, cred models.Credential, ttl time.Duration) error
	Session(ctx context.Context, id string) (models.Credential, error)
	DeleteSession(ctx context.Context, id string) error
}

type Session struct {
	ID         string
	Credential models.Credential
}

type Manager struct {
	log    *slog.Logger
	repo   Repository
	secret string
	ttl    time.Duration
	auth   *jwtauth.JWTAuth
	secure bool
	now    func() time.Time
}

func New(log *slog.Logger, repo Repository, secret string, ttl time.Duration) *Manager {
	return &Manager{
		log:    log,
		repo:   repo,
		secret: secret,
		ttl:    ttl,
		auth:   jwtauth.New("HS256", []byte(secret), nil),
		now:    time.Now,
	}
}

// SecureCookies marks issued cookies Secure. Use it behind HTTPS.
func (m *Manager) SecureCookies(secure bool) {
	m.secure = secure
}

// Load is middleware that puts the request's Session into its context.
func (m *Manager) Load(next http.Handler) http.Handler {
	return jwtauth.Verify(m.auth, jwtauth.TokenFromCookie)(m.attach(next))
}

func (m *Manager) attach(next http.Handler) http.Handler {
	const op = "session.Manager.attach"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := m.log.With(slog.String("op", op))

		s, err := m.resolve(r)
		switch {
		case err == nil:
		case errors.Is(err, ErrNoSession):
			s, err = m.issue(w, models.Credential{})
			if err != nil {
				log.Error("failed to issue session cookie", sl.Error(err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
		default:
			// The cookie stays: the credential is still stored, only
			// unreadable for now.
			log.Error("failed to load session", sl.Error(err))
		}

		next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), s)))
	})
}

// resolve finds the session named by the request's cookie. On a repository
// failure the returned Session still carries the ID, without a credential.
func (m *Manager) resolve(r *http.Request) (Session, error) {
	const op = "session.Manager.resolve"

	ctx := r.Context()

	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	sid, _ := claims[jwt.ClaimSessionID].(string)
	if sid == "" {
		return Session{}, ErrNoSession
	}

	cred, err := m.repo.Session(ctx, storageKey(sid))
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return Session{ID: sid}, nil
		}
		return Session{ID: sid}, fmt.Errorf("%s: %w", op, err)
	}

	if jwt.Expired(cred.Token, m.now()) {
		_ = m.repo.DeleteSession(ctx, storageKey(sid))
		return Session{ID: sid}, nil
	}

	return Session{ID: sid, Credential: cred}, nil
}

// Start stores cred under a new session ID and points the browser at it.
// The previous session ID, if any, is abandoned.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, cred models.Credential) (Session, error) {
	const op = "session.Manager.Start"

	s, err := m.issue(w, cred)
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := m.repo.SaveSession(ctx, storageKey(s.ID), cred, m.ttl); err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if prev, ok := FromContext(ctx); ok && prev.ID != "" && prev.ID != s.ID {
		_ = m.repo.DeleteSession(ctx, storageKey(prev.ID))
	}

	return s, nil
}

// Destroy forgets the session's credential and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s Session) error {
	const op = "session.Manager.Destroy"

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	if s.ID == "" {
		return nil
	}

	if err := m.repo.DeleteSession(ctx, storageKey(s.ID)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (m *Manager) issue(w http.ResponseWriter, cred models.Credential) (Session, error) {
	sid := uuid.NewString()

	token, err := jwt.NewToken(sid, m.ttl, m.secret)
	if err != nil {
		return Session{}, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  m.now().Add(m.ttl),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return Session{ID: sid, Credential: cred}, nil
}

// storageKey hashes a session ID so the repository never holds live IDs.
func storageKey(sid string) string {
	sum := blake2b.Sum256([]byte(sid))
	return hex.EncodeToString(sum[:])
}

type ctxKey struct{}

func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok
}

// Token returns the backend token of the session in ctx, or "".
func Token(ctx context.Context) string {
	s, _ := FromContext(ctx)
	return s.Credential.Token
}
