package api

import (
	"context"
	"net/http"
)

// TokenSource yields the bearer token for the session a request runs in.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) string
}

type TokenFunc func(ctx context.Context) string

func (f TokenFunc) Token(ctx context.Context) string {
	return f(ctx)
}

type noToken struct{}

func (noToken) Token(context.Context) string { return "" }

// bearerTransport attaches the session token to every outgoing request.
type bearerTransport struct {
	base   http.RoundTripper
	tokens TokenSource
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.tokens.Token(req.Context())
	if token == "" {
		return t.base.RoundTrip(req)
	}

	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "Bearer "+token)

	return t.base.RoundTrip(r)
}
