package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-console/internal/client/api"
	"blog-console/internal/domain/models"
	req "blog-console/internal/lib/api/request"
	"blog-console/internal/lib/logger/handlers/slogdiscard"
	"blog-console/internal/lib/validate"
)

type stubAPI struct {
	loginFn    func(ctx context.Context, r api.LoginRequest) (api.LoginResponse, error)
	registerFn func(ctx context.Context, r api.RegisterRequest) error
}

func (s *stubAPI) Login(ctx context.Context, r api.LoginRequest) (api.LoginResponse, error) {
	return s.loginFn(ctx, r)
}

func (s *stubAPI) Register(ctx context.Context, r api.RegisterRequest) error {
	return s.registerFn(ctx, r)
}

func newService(a API) *Service {
	return New(slogdiscard.NewDiscardLogger(), a, validate.New())
}

func TestLogin_Scenario(t *testing.T) {
	svc := newService(&stubAPI{
		loginFn: func(ctx context.Context, r api.LoginRequest) (api.LoginResponse, error) {
			assert.Equal(t, api.LoginRequest{Username: "alice", Password: "secret1"}, r)
			return api.LoginResponse{Token: "t1", Role: "User"}, nil
		},
	})

	cred, err := svc.Login(context.Background(), req.Login{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	assert.Equal(t, models.Credential{Token: "t1", Role: "User", Username: "alice"}, cred)
	assert.Equal(t, "/articles?success=login", LandingPath(cred.Role))
}

func TestLogin_InvalidFormNeverCallsBackend(t *testing.T) {
	svc := newService(&stubAPI{
		loginFn: func(ctx context.Context, r api.LoginRequest) (api.LoginResponse, error) {
			t.Fatal("backend must not be called")
			return api.LoginResponse{}, nil
		},
	})

	_, err := svc.Login(context.Background(), req.Login{Username: "alice", Password: "123"})

	fe, ok := validate.AsFieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fe, "password")
}

func TestLogin_BackendError(t *testing.T) {
	svc := newService(&stubAPI{
		loginFn: func(ctx context.Context, r api.LoginRequest) (api.LoginResponse, error) {
			return api.LoginResponse{}, &api.Error{Status: 401, Message: "Invalid credentials"}
		},
	})

	_, err := svc.Login(context.Background(), req.Login{Username: "alice", Password: "secret1"})

	apiErr, ok := api.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestLogin_MissingToken(t *testing.T) {
	svc := newService(&stubAPI{
		loginFn: func(ctx context.Context, r api.LoginRequest) (api.LoginResponse, error) {
			return api.LoginResponse{Role: "Admin"}, nil
		},
	})

	_, err := svc.Login(context.Background(), req.Login{Username: "alice", Password: "secret1"})
	assert.True(t, errors.Is(err, ErrNoToken))
}

func TestRegister_Roles(t *testing.T) {
	var got api.RegisterRequest
	svc := newService(&stubAPI{
		registerFn: func(ctx context.Context, r api.RegisterRequest) error {
			got = r
			return nil
		},
	})

	err := svc.Register(context.Background(), req.Register{Username: "bob", Email: "bob@example.com", Password: "Secret1", AdminCode: "ignored"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, got.Role)
	assert.Empty(t, got.AdminCode)

	err = svc.Register(context.Background(), req.Register{Username: "root", Email: "root@example.com", Password: "Secret1", IsAdmin: true, AdminCode: "c0de"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)
	assert.Equal(t, "c0de", got.AdminCode)
}

func TestLandingPath(t *testing.T) {
	assert.Equal(t, "/admin/articles?success=login", LandingPath(models.RoleAdmin))
	assert.Equal(t, "/articles?success=login", LandingPath(models.RoleUser))
	assert.Equal(t, "/articles?success=login", LandingPath(""))
}
