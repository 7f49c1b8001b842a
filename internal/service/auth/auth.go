package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"blog-console/internal/client/api"
	"blog-console/internal/domain/models"
	req "blog-console/internal/lib/api/request"
	"blog-console/internal/lib/logger/sl"
)

var ErrNoToken = errors.New("login response carries no token")

type API interface {
	Login(ctx context.Context, req api.LoginRequest) (api.LoginResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) error
}

type Validator interface {
	Struct(s any) error
}

type Service struct {
	log       *slog.Logger
	api       API
	validator Validator
}

func New(log *slog.Logger, api API, validator Validator) *Service {
	return &Service{
		log:       log,
		api:       api,
		validator: validator,
	}
}

// Login authenticates against the backend and returns the credential to
// keep for the session. The username is the one the user typed.
func (s *Service) Login(ctx context.Context, form req.Login) (models.Credential, error) {
	const op = "service.auth.Login"

	log := s.log.With(slog.String("op", op))

	if err := s.validator.Struct(form); err != nil {
		return models.Credential{}, err
	}

	resp, err := s.api.Login(ctx, api.LoginRequest{
		Username: form.Username,
		Password: form.Password,
	})
	if err != nil {
		log.Info("login failed", slog.String("username", form.Username), sl.Error(err))
		return models.Credential{}, fmt.Errorf("%s: %w", op, err)
	}

	if resp.Token == "" {
		log.Error("backend accepted login without a token", slog.String("username", form.Username))
		return models.Credential{}, fmt.Errorf("%s: %w", op, ErrNoToken)
	}

	return models.Credential{
		Token:    resp.Token,
		Role:     resp.Role,
		Username: form.Username,
	}, nil
}

func (s *Service) Register(ctx context.Context, form req.Register) error {
	const op = "service.auth.Register"

	log := s.log.With(slog.String("op", op))

	if err := s.validator.Struct(form); err != nil {
		return err
	}

	payload := api.RegisterRequest{
		Username: form.Username,
		Email:    form.Email,
		Password: form.Password,
		Role:     models.RoleUser,
	}
	if form.IsAdmin {
		payload.Role = models.RoleAdmin
		payload.AdminCode = form.AdminCode
	}

	if err := s.api.Register(ctx, payload); err != nil {
		log.Info("registration failed", slog.String("username", form.Username), sl.Error(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("account registered", slog.String("username", form.Username), slog.String("role", payload.Role))

	return nil
}

// LandingPath is where a freshly logged-in user is sent.
func LandingPath(role string) string {
	if role == models.RoleAdmin {
		return "/admin/articles?success=login"
	}
	return "/articles?success=login"
}
